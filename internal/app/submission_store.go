package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"
	"quiz-intake-service/internal/domain"
)

// DefaultSubmissionBucket is the KV bucket holding queued submissions.
const DefaultSubmissionBucket = "quiz-submissions"

const maxIDAttempts = 3

// SubmissionStore keeps submissions that could not be delivered yet.
// Records are written once on Save and only ever flipped to synced afterwards.
type SubmissionStore struct {
	kv     KVStore
	bucket string
	now    func() time.Time
	newID  func() string
}

func NewSubmissionStore(kv KVStore, bucket string) *SubmissionStore {
	return NewSubmissionStoreWithClock(kv, bucket, time.Now)
}

// NewSubmissionStoreWithClock allows deterministic timestamps in tests.
func NewSubmissionStoreWithClock(kv KVStore, bucket string, now func() time.Time) *SubmissionStore {
	if bucket == "" {
		bucket = DefaultSubmissionBucket
	}
	return &SubmissionStore{
		kv:     kv,
		bucket: bucket,
		now:    now,
		newID:  func() string { return "submission-" + uuid.NewString() },
	}
}

// Save persists a new pending submission and returns its identifier.
// It returns only after the durable write has completed.
func (s *SubmissionStore) Save(ctx context.Context, draft domain.SubmissionDraft) (string, error) {
	return s.SaveWithID(ctx, "", draft)
}

// SaveWithID queues draft under id, the identifier already handed to the
// remote store, so a replay after a lost reply hits the same row. An empty id
// mints a fresh one. Saving an id that is already queued is a no-op.
func (s *SubmissionStore) SaveWithID(ctx context.Context, id string, draft domain.SubmissionDraft) (string, error) {
	record := domain.PendingSubmission{
		Submission: domain.Submission{SubmissionDraft: draft},
		Synced:     false,
		CreatedAt:  s.now(),
	}

	attempts := maxIDAttempts
	if id != "" {
		attempts = 1
	}
	for attempt := 0; attempt < attempts; attempt++ {
		record.ID = id
		if record.ID == "" {
			record.ID = s.newID()
		}
		data, err := json.Marshal(record)
		if err != nil {
			return "", fmt.Errorf("%w: encode submission: %v", domain.ErrStorage, err)
		}
		err = s.kv.Add(ctx, s.bucket, record.ID, data)
		if errors.Is(err, domain.ErrKeyExists) {
			if id != "" {
				return id, nil
			}
			continue
		}
		if err != nil {
			return "", fmt.Errorf("%w: save submission: %v", domain.ErrStorage, err)
		}
		log.Printf("submission %s saved offline", record.ID)
		return record.ID, nil
	}
	return "", fmt.Errorf("%w: could not allocate a unique submission id", domain.ErrStorage)
}

// List returns every stored submission, synced or not, oldest first.
func (s *SubmissionStore) List(ctx context.Context) ([]domain.PendingSubmission, error) {
	raw, err := s.kv.GetAll(ctx, s.bucket)
	if err != nil {
		return nil, fmt.Errorf("%w: list submissions: %v", domain.ErrStorage, err)
	}
	out := make([]domain.PendingSubmission, 0, len(raw))
	for key, data := range raw {
		var record domain.PendingSubmission
		if err := json.Unmarshal(data, &record); err != nil {
			log.Printf("skipping unreadable submission %s: %v", key, err)
			continue
		}
		out = append(out, record)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// ListUnsynced returns submissions still awaiting delivery. Callers must not rely on the order.
func (s *SubmissionStore) ListUnsynced(ctx context.Context) ([]domain.PendingSubmission, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	unsynced := all[:0]
	for _, record := range all {
		if !record.Synced {
			unsynced = append(unsynced, record)
		}
	}
	return unsynced, nil
}

// PendingCount reports how many submissions are waiting to be synced.
func (s *SubmissionStore) PendingCount(ctx context.Context) (int, error) {
	unsynced, err := s.ListUnsynced(ctx)
	if err != nil {
		return 0, err
	}
	return len(unsynced), nil
}

// Get returns a single stored submission.
func (s *SubmissionStore) Get(ctx context.Context, id string) (domain.PendingSubmission, error) {
	data, err := s.kv.Get(ctx, s.bucket, id)
	if errors.Is(err, domain.ErrKeyNotFound) {
		return domain.PendingSubmission{}, fmt.Errorf("%w: %w %s", domain.ErrStorage, domain.ErrSubmissionNotFound, id)
	}
	if err != nil {
		return domain.PendingSubmission{}, fmt.Errorf("%w: get submission %s: %v", domain.ErrStorage, id, err)
	}
	var record domain.PendingSubmission
	if err := json.Unmarshal(data, &record); err != nil {
		return domain.PendingSubmission{}, fmt.Errorf("%w: decode submission %s: %v", domain.ErrStorage, id, err)
	}
	return record, nil
}

// MarkSynced flips the synced flag. Marking an already-synced record is a no-op.
func (s *SubmissionStore) MarkSynced(ctx context.Context, id string) error {
	record, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if record.Synced {
		return nil
	}
	record.Synced = true
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("%w: encode submission %s: %v", domain.ErrStorage, id, err)
	}
	if err := s.kv.Put(ctx, s.bucket, id, data); err != nil {
		return fmt.Errorf("%w: mark submission %s synced: %v", domain.ErrStorage, id, err)
	}
	return nil
}

// ClearAll removes every stored submission regardless of its synced state.
func (s *SubmissionStore) ClearAll(ctx context.Context) error {
	if err := s.kv.Clear(ctx, s.bucket); err != nil {
		return fmt.Errorf("%w: clear submissions: %v", domain.ErrStorage, err)
	}
	return nil
}
