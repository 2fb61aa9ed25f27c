package app

import (
	"context"
	"time"

	"quiz-intake-service/internal/domain"
)

// KVStore abstracts the local durable key-value storage (SQLite, Redis, memory).
// Keys are grouped into buckets; values are opaque bytes.
type KVStore interface {
	// Add writes value under key only if the key is absent, returning domain.ErrKeyExists otherwise.
	Add(ctx context.Context, bucket, key string, value []byte) error
	// Get returns domain.ErrKeyNotFound for a missing key.
	Get(ctx context.Context, bucket, key string) ([]byte, error)
	GetAll(ctx context.Context, bucket string) (map[string][]byte, error)
	// Put upserts value under key.
	Put(ctx context.Context, bucket, key string, value []byte) error
	Delete(ctx context.Context, bucket, key string) error
	Clear(ctx context.Context, bucket string) error
}

// SubmissionRecorder persists a submission in the remote store.
type SubmissionRecorder interface {
	RecordSubmission(ctx context.Context, submission domain.Submission) error
}

// SubmissionNotifier tells the operator about a new submission (email, broker, ...).
type SubmissionNotifier interface {
	NotifySubmission(ctx context.Context, submission domain.Submission) error
}

// QuizLoader fetches quiz content from the remote store.
type QuizLoader interface {
	LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// QuizCatalog stores operator-authored quizzes.
type QuizCatalog interface {
	SaveQuiz(ctx context.Context, quiz domain.Quiz) error
	ListQuizzes(ctx context.Context) ([]domain.Quiz, error)
}

// AdminSessionStore keeps operator session tokens alive for a TTL.
type AdminSessionStore interface {
	Create(ctx context.Context, token string, ttl time.Duration) error
	Exists(ctx context.Context, token string) (bool, error)
	Delete(ctx context.Context, token string) error
}

// Probe checks whether the remote side is reachable.
type Probe func(ctx context.Context) error
