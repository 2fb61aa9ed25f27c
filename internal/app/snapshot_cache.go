package app

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"quiz-intake-service/internal/domain"
)

// DefaultSnapshotBucket is the KV bucket holding cached quiz snapshots.
const DefaultSnapshotBucket = "quiz-cache"

// SnapshotCache keeps the last successfully fetched version of each quiz.
// Caching is an optimization: write failures are logged and never returned.
type SnapshotCache struct {
	kv     KVStore
	bucket string
	now    func() time.Time
}

func NewSnapshotCache(kv KVStore, bucket string) *SnapshotCache {
	if bucket == "" {
		bucket = DefaultSnapshotBucket
	}
	return &SnapshotCache{kv: kv, bucket: bucket, now: time.Now}
}

// Put overwrites the snapshot for quizID.
func (c *SnapshotCache) Put(ctx context.Context, quizID, title string, questions []domain.Question) {
	snapshot := domain.Snapshot{
		QuizID:    quizID,
		Title:     title,
		Questions: questions,
		CachedAt:  c.now(),
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		log.Printf("cache quiz %s: %v", quizID, err)
		return
	}
	if err := c.kv.Put(ctx, c.bucket, quizID, data); err != nil {
		log.Printf("cache quiz %s: %v", quizID, err)
	}
}

// Get returns the cached snapshot; ok is false when nothing usable is stored.
func (c *SnapshotCache) Get(ctx context.Context, quizID string) (domain.Snapshot, bool) {
	data, err := c.kv.Get(ctx, c.bucket, quizID)
	if err != nil {
		if !errors.Is(err, domain.ErrKeyNotFound) {
			log.Printf("read quiz cache %s: %v", quizID, err)
		}
		return domain.Snapshot{}, false
	}
	var snapshot domain.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		log.Printf("ignoring malformed snapshot for quiz %s: %v", quizID, err)
		return domain.Snapshot{}, false
	}
	return snapshot, true
}

// Clear drops the snapshot for quizID.
func (c *SnapshotCache) Clear(ctx context.Context, quizID string) {
	if err := c.kv.Delete(ctx, c.bucket, quizID); err != nil {
		log.Printf("clear quiz cache %s: %v", quizID, err)
	}
}
