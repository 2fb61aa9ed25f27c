package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"quiz-intake-service/internal/domain"
)

// QuizService serves quiz definitions to respondents and lets the operator author them.
type QuizService struct {
	loader  QuizLoader
	catalog QuizCatalog
	cache   *SnapshotCache
	monitor *ConnectivityMonitor
	sf      singleflight.Group
	now     func() time.Time
}

func NewQuizService(loader QuizLoader, catalog QuizCatalog, cache *SnapshotCache, monitor *ConnectivityMonitor) *QuizService {
	return &QuizService{
		loader:  loader,
		catalog: catalog,
		cache:   cache,
		monitor: monitor,
		now:     time.Now,
	}
}

// GetQuiz fetches a quiz from the remote store and refreshes its snapshot.
// When offline, or when the fetch fails, it falls back to the snapshot; cached
// reports whether the result came from there.
func (s *QuizService) GetQuiz(ctx context.Context, quizID string) (quiz domain.Quiz, cached bool, err error) {
	if !s.monitor.IsOnline() {
		if quiz, ok := s.fromSnapshot(ctx, quizID); ok {
			return quiz, true, nil
		}
		return domain.Quiz{}, false, fmt.Errorf("%w: offline and quiz %s is not cached", domain.ErrRemoteUnavailable, quizID)
	}

	// Concurrent requests for the same quiz share one remote fetch.
	result, err, _ := s.sf.Do(quizID, func() (interface{}, error) {
		return s.loader.LoadQuiz(ctx, quizID)
	})
	if err == nil {
		quiz := result.(domain.Quiz)
		s.cache.Put(ctx, quizID, quiz.Title, quiz.Questions)
		return quiz, false, nil
	}

	log.Printf("fetch quiz %s: %v", quizID, err)
	if quiz, ok := s.fromSnapshot(ctx, quizID); ok {
		return quiz, true, nil
	}
	if errors.Is(err, domain.ErrQuizNotFound) {
		return domain.Quiz{}, false, err
	}
	return domain.Quiz{}, false, fmt.Errorf("%w: %v", domain.ErrRemoteUnavailable, err)
}

// CachedQuiz returns the stored snapshot for quizID, if any.
func (s *QuizService) CachedQuiz(ctx context.Context, quizID string) (domain.Snapshot, bool) {
	return s.cache.Get(ctx, quizID)
}

// ClearCachedQuiz drops the snapshot for quizID.
func (s *QuizService) ClearCachedQuiz(ctx context.Context, quizID string) {
	s.cache.Clear(ctx, quizID)
}

func (s *QuizService) fromSnapshot(ctx context.Context, quizID string) (domain.Quiz, bool) {
	snapshot, ok := s.cache.Get(ctx, quizID)
	if !ok {
		return domain.Quiz{}, false
	}
	return domain.Quiz{
		ID:        snapshot.QuizID,
		Title:     snapshot.Title,
		Questions: snapshot.Questions,
	}, true
}

// CreateQuiz assigns an id and creation time to an operator-authored quiz and stores it.
func (s *QuizService) CreateQuiz(ctx context.Context, quiz domain.Quiz) (domain.Quiz, error) {
	if err := normalizeQuiz(&quiz); err != nil {
		return domain.Quiz{}, err
	}
	quiz.ID = uuid.NewString()
	quiz.CreatedAt = s.now().UTC()

	if err := s.catalog.SaveQuiz(ctx, quiz); err != nil {
		return domain.Quiz{}, fmt.Errorf("%w: save quiz: %v", domain.ErrRemoteUnavailable, err)
	}
	s.cache.Put(ctx, quiz.ID, quiz.Title, quiz.Questions)
	log.Printf("quiz %s created with %d question(s)", quiz.ID, len(quiz.Questions))
	return quiz, nil
}

// ListQuizzes returns all authored quizzes, newest first.
func (s *QuizService) ListQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	quizzes, err := s.catalog.ListQuizzes(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list quizzes: %v", domain.ErrRemoteUnavailable, err)
	}
	return quizzes, nil
}

func normalizeQuiz(quiz *domain.Quiz) error {
	quiz.Title = strings.TrimSpace(quiz.Title)
	if quiz.Title == "" {
		return fmt.Errorf("%w: title is required", domain.ErrInvalidQuiz)
	}
	if len(quiz.Questions) == 0 {
		return fmt.Errorf("%w: a quiz needs at least one question", domain.ErrInvalidQuiz)
	}
	if len(quiz.Questions) > domain.MaxQuestions {
		return fmt.Errorf("%w: at most %d questions are allowed", domain.ErrInvalidQuiz, domain.MaxQuestions)
	}
	for i := range quiz.Questions {
		q := &quiz.Questions[i]
		if q.ID == "" {
			q.ID = strconv.Itoa(i + 1)
		}
		switch q.Type {
		case "":
			q.Type = domain.QuestionSingle
		case domain.QuestionSingle, domain.QuestionText:
		default:
			return fmt.Errorf("%w: question %s has unsupported type %q", domain.ErrInvalidQuiz, q.ID, q.Type)
		}
		if q.Type == domain.QuestionText {
			q.Options = nil
		}
	}
	return nil
}
