package memory

import (
	"context"
	"sort"
	"sync"

	"quiz-intake-service/internal/domain"
)

// QuizCatalog keeps quizzes in memory; it satisfies both app.QuizLoader and
// app.QuizCatalog (useful for tests/demos without Postgres).
type QuizCatalog struct {
	mu      sync.RWMutex
	quizzes map[string]domain.Quiz
}

func NewQuizCatalog(seed map[string]domain.Quiz) *QuizCatalog {
	quizzes := make(map[string]domain.Quiz, len(seed))
	for id, quiz := range seed {
		quizzes[id] = quiz
	}
	return &QuizCatalog{quizzes: quizzes}
}

func (c *QuizCatalog) LoadQuiz(_ context.Context, quizID string) (domain.Quiz, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if quiz, ok := c.quizzes[quizID]; ok {
		return quiz, nil
	}
	return domain.Quiz{}, domain.ErrQuizNotFound
}

func (c *QuizCatalog) SaveQuiz(_ context.Context, quiz domain.Quiz) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.quizzes[quiz.ID] = quiz
	return nil
}

func (c *QuizCatalog) ListQuizzes(_ context.Context) ([]domain.Quiz, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Quiz, 0, len(c.quizzes))
	for _, quiz := range c.quizzes {
		out = append(out, quiz)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
