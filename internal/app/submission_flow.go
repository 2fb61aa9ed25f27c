package app

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"quiz-intake-service/internal/domain"
)

// SubmissionSaver is the part of the local submission store the flow queues into.
type SubmissionSaver interface {
	SaveWithID(ctx context.Context, id string, draft domain.SubmissionDraft) (string, error)
}

// SubmissionFlow decides, per submission, between direct delivery and the offline queue.
type SubmissionFlow struct {
	monitor         *ConnectivityMonitor
	queue           SubmissionSaver
	recorder        SubmissionRecorder
	notifier        SubmissionNotifier
	notices         *NoticeBoard
	queueOnFailure  bool
	newSubmissionID func() string
}

// FlowOptions tunes the submission flow.
type FlowOptions struct {
	// QueueOnRemoteFailure sends a submission to the offline queue when the
	// remote store rejects it while online, instead of failing outright.
	QueueOnRemoteFailure bool
}

func NewSubmissionFlow(monitor *ConnectivityMonitor, queue SubmissionSaver, recorder SubmissionRecorder, notifier SubmissionNotifier, notices *NoticeBoard, opts FlowOptions) *SubmissionFlow {
	return &SubmissionFlow{
		monitor:         monitor,
		queue:           queue,
		recorder:        recorder,
		notifier:        notifier,
		notices:         notices,
		queueOnFailure:  opts.QueueOnRemoteFailure,
		newSubmissionID: uuid.NewString,
	}
}

// ValidateDraft checks the fields the entry form requires.
func ValidateDraft(draft domain.SubmissionDraft) error {
	r := draft.Respondent
	fields := []struct{ name, value string }{
		{"quizId", draft.QuizID},
		{"firstName", r.FirstName},
		{"lastName", r.LastName},
		{"email", r.Email},
		{"phone", r.Phone},
	}
	var missing []string
	for _, field := range fields {
		if strings.TrimSpace(field.value) == "" {
			missing = append(missing, field.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", domain.ErrInvalidSubmission, strings.Join(missing, ", "))
	}
	return nil
}

// Submit runs one submission attempt: Idle → Attempting → {Delivered, Queued, Failed}.
// A returned error always comes with a FlowFailed result.
func (f *SubmissionFlow) Submit(ctx context.Context, draft domain.SubmissionDraft) (domain.FlowResult, error) {
	if err := ValidateDraft(draft); err != nil {
		return f.fail(err.Error()), err
	}
	if draft.SubmittedAt.IsZero() {
		draft.SubmittedAt = time.Now().UTC()
	}

	if !f.monitor.IsOnline() {
		return f.enqueue(ctx, "", draft, "You are offline. Your answers were saved and will be sent once the connection is back.")
	}

	submission := domain.Submission{ID: f.newSubmissionID(), SubmissionDraft: draft}
	if err := f.recorder.RecordSubmission(ctx, submission); err != nil {
		log.Printf("submit %s: record: %v", submission.ID, err)
		if f.queueOnFailure {
			// The insert may have committed before the reply was lost; keep the id.
			return f.enqueue(ctx, submission.ID, draft, "The server could not be reached. Your answers were saved and will be sent later.")
		}
		err = fmt.Errorf("%w: %v", domain.ErrRemoteUnavailable, err)
		return f.fail("Your answers could not be submitted. Please try again."), err
	}

	if err := f.notifier.NotifySubmission(ctx, submission); err != nil {
		log.Printf("submit %s: notification failed, submission was saved: %v", submission.ID, err)
		return domain.FlowResult{
			State:        domain.FlowDelivered,
			SubmissionID: submission.ID,
			Degraded:     true,
			Notice:       f.post(domain.NoticeWarning, "Your answers were submitted, but the confirmation email could not be sent."),
		}, nil
	}

	return domain.FlowResult{
		State:        domain.FlowDelivered,
		SubmissionID: submission.ID,
		Notice:       f.post(domain.NoticeSuccess, "Quiz submitted successfully."),
	}, nil
}

func (f *SubmissionFlow) enqueue(ctx context.Context, id string, draft domain.SubmissionDraft, message string) (domain.FlowResult, error) {
	id, err := f.queue.SaveWithID(ctx, id, draft)
	if err != nil {
		log.Printf("submit: save offline: %v", err)
		return f.fail("Your answers could not be saved on this device."), err
	}
	return domain.FlowResult{
		State:        domain.FlowQueued,
		SubmissionID: id,
		Notice:       f.post(domain.NoticeInfo, message),
	}, nil
}

func (f *SubmissionFlow) fail(message string) domain.FlowResult {
	return domain.FlowResult{State: domain.FlowFailed, Notice: f.post(domain.NoticeError, message)}
}

func (f *SubmissionFlow) post(level domain.NoticeLevel, message string) domain.Notice {
	if f.notices == nil {
		return domain.Notice{Level: level, Message: message}
	}
	return f.notices.Post(level, message)
}
