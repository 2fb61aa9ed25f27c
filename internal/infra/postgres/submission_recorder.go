package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
	"quiz-intake-service/internal/domain"
)

// SubmissionRecorder writes submissions into quiz_submissions. The submission id
// is the primary key, so replaying an already delivered submission is a no-op.
type SubmissionRecorder struct {
	pool *pgxpool.Pool
}

func NewSubmissionRecorder(pool *pgxpool.Pool) *SubmissionRecorder {
	return &SubmissionRecorder{pool: pool}
}

func (r *SubmissionRecorder) RecordSubmission(ctx context.Context, submission domain.Submission) error {
	userInfo, err := json.Marshal(submission.Respondent)
	if err != nil {
		return fmt.Errorf("marshal user info: %w", err)
	}
	answers, err := json.Marshal(submission.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}
	consents, err := json.Marshal(submission.Consents)
	if err != nil {
		return fmt.Errorf("marshal consents: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO quiz_submissions (id, user_info, quiz_id, quiz_title, answers, consents, submitted_at)
		VALUES ($1, $2::jsonb, $3, $4, $5::jsonb, $6::jsonb, $7)
		ON CONFLICT (id) DO NOTHING`,
		submission.ID, string(userInfo), submission.QuizID, submission.QuizTitle,
		string(answers), string(consents), submission.SubmittedAt,
	)
	if err != nil {
		return fmt.Errorf("insert submission %s: %w", submission.ID, err)
	}
	return nil
}

// CountSubmissions returns how many rows exist for quizID.
func (r *SubmissionRecorder) CountSubmissions(ctx context.Context, quizID string) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM quiz_submissions WHERE quiz_id=$1`, quizID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count submissions: %w", err)
	}
	return n, nil
}
