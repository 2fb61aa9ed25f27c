package notify

import (
	"context"
	"log"

	"quiz-intake-service/internal/domain"
)

// LogNotifier only logs submissions. Used when no mail transport is configured.
type LogNotifier struct{}

func (LogNotifier) NotifySubmission(_ context.Context, submission domain.Submission) error {
	log.Printf("notify: submission %s for quiz %q from %s %s <%s>",
		submission.ID, submission.QuizTitle,
		submission.Respondent.FirstName, submission.Respondent.LastName, submission.Respondent.Email)
	return nil
}
