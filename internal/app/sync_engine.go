package app

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/sync/singleflight"
	"quiz-intake-service/internal/domain"
)

// PendingQueue is the part of the local submission store the sync engine drains.
type PendingQueue interface {
	ListUnsynced(ctx context.Context) ([]domain.PendingSubmission, error)
	MarkSynced(ctx context.Context, id string) error
}

// SyncEngine delivers locally queued submissions to the remote collaborators.
// Delivery is at-least-once: an item is marked synced only after the remote
// store accepted it.
type SyncEngine struct {
	queue    PendingQueue
	recorder SubmissionRecorder
	notifier SubmissionNotifier
	notices  *NoticeBoard
	sf       singleflight.Group
}

func NewSyncEngine(queue PendingQueue, recorder SubmissionRecorder, notifier SubmissionNotifier, notices *NoticeBoard) *SyncEngine {
	return &SyncEngine{
		queue:    queue,
		recorder: recorder,
		notifier: notifier,
		notices:  notices,
	}
}

// SyncAll runs one pass over every unsynced submission. Triggers that arrive
// while a pass is running share that pass's report instead of starting another.
func (e *SyncEngine) SyncAll(ctx context.Context) (domain.SyncReport, error) {
	result, err, shared := e.sf.Do("sync", func() (interface{}, error) {
		return e.syncPass(ctx)
	})
	if shared {
		log.Printf("sync trigger joined an in-flight pass")
	}
	if err != nil {
		return domain.SyncReport{}, err
	}
	return result.(domain.SyncReport), nil
}

// OnBecameOnline adapts SyncAll to a connectivity handler.
func (e *SyncEngine) OnBecameOnline(ctx context.Context) {
	if _, err := e.SyncAll(ctx); err != nil {
		log.Printf("sync after reconnect: %v", err)
	}
}

func (e *SyncEngine) syncPass(ctx context.Context) (domain.SyncReport, error) {
	report := domain.SyncReport{}

	unsynced, err := e.queue.ListUnsynced(ctx)
	if err != nil {
		// Unreadable queue means nothing to sync this round.
		log.Printf("sync: list unsynced submissions: %v", err)
		return report, nil
	}
	if len(unsynced) == 0 {
		return report, nil
	}

	log.Printf("syncing %d offline submission(s)", len(unsynced))
	report.Attempted = len(unsynced)
	for _, pending := range unsynced {
		ok, notified := e.syncOne(ctx, pending.Submission)
		if !notified && ok {
			report.NotificationFailures++
		}
		if ok {
			report.Succeeded++
		} else {
			report.Failed = append(report.Failed, pending.ID)
		}
	}

	log.Printf("sync finished: %d/%d delivered", report.Succeeded, report.Attempted)
	if e.notices != nil {
		if report.Succeeded > 0 {
			e.notices.Post(domain.NoticeSuccess, fmt.Sprintf("%d offline submission(s) sent", report.Succeeded))
		}
		if report.Succeeded < report.Attempted {
			e.notices.Post(domain.NoticeWarning, "Some submissions could not be sent. They will be retried later.")
		}
	}
	return report, nil
}

// syncOne delivers a single submission; ok reports whether it is now synced.
func (e *SyncEngine) syncOne(ctx context.Context, submission domain.Submission) (ok, notified bool) {
	if err := e.recorder.RecordSubmission(ctx, submission); err != nil {
		log.Printf("sync: record submission %s: %v", submission.ID, err)
		return false, false
	}

	notified = true
	if err := e.notifier.NotifySubmission(ctx, submission); err != nil {
		log.Printf("sync: notification for %s failed, submission was saved: %v", submission.ID, err)
		notified = false
	}

	if err := e.queue.MarkSynced(ctx, submission.ID); err != nil {
		log.Printf("sync: mark %s synced: %v", submission.ID, err)
		return false, notified
	}
	return true, notified
}
