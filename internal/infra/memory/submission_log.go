package memory

import (
	"context"
	"sync"

	"quiz-intake-service/internal/domain"
)

// SubmissionLog is an in-memory stand-in for the remote submission store.
// Like the Postgres recorder, a repeated id is accepted without a second row.
type SubmissionLog struct {
	mu      sync.RWMutex
	order   []string
	records map[string]domain.Submission
}

func NewSubmissionLog() *SubmissionLog {
	return &SubmissionLog{records: make(map[string]domain.Submission)}
}

func (l *SubmissionLog) RecordSubmission(_ context.Context, submission domain.Submission) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.records[submission.ID]; ok {
		return nil
	}
	l.records[submission.ID] = submission
	l.order = append(l.order, submission.ID)
	return nil
}

// Submissions returns recorded submissions in arrival order.
func (l *SubmissionLog) Submissions() []domain.Submission {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.Submission, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.records[id])
	}
	return out
}
