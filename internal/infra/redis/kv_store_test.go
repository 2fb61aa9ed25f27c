package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"quiz-intake-service/internal/app"
	"quiz-intake-service/internal/domain"
)

func TestKVStoreHashPerBucket(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store := NewKVStore(newClient(mr))

	if err := store.Add(ctx, "quiz-submissions", "s1", []byte(`{"id":"s1"}`)); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := store.Add(ctx, "quiz-submissions", "s1", []byte(`{}`)); !errors.Is(err, domain.ErrKeyExists) {
		t.Fatalf("expected key exists, got %v", err)
	}
	if got := mr.HGet("offline:quiz-submissions", "s1"); got != `{"id":"s1"}` {
		t.Fatalf("unexpected stored value %q", got)
	}
	if _, err := store.Get(ctx, "quiz-submissions", "nope"); !errors.Is(err, domain.ErrKeyNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	if err := store.Clear(ctx, "quiz-submissions"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if mr.Exists("offline:quiz-submissions") {
		t.Fatalf("expected bucket hash removed")
	}
}

func TestSubmissionStoreSurvivesReconnect(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	first := app.NewSubmissionStore(NewKVStore(newClient(mr)), "")
	idA, err := first.Save(ctx, sampleDraft())
	if err != nil {
		t.Fatalf("save A: %v", err)
	}
	idB, err := first.Save(ctx, sampleDraft())
	if err != nil {
		t.Fatalf("save B: %v", err)
	}
	if err := first.MarkSynced(ctx, idA); err != nil {
		t.Fatalf("mark synced: %v", err)
	}

	// A fresh client models a process restart.
	second := app.NewSubmissionStore(NewKVStore(newClient(mr)), "")
	unsynced, err := second.ListUnsynced(ctx)
	if err != nil {
		t.Fatalf("list unsynced: %v", err)
	}
	if len(unsynced) != 1 || unsynced[0].ID != idB {
		t.Fatalf("expected only %s unsynced, got %+v", idB, unsynced)
	}
}

func sampleDraft() domain.SubmissionDraft {
	return domain.SubmissionDraft{
		Respondent: domain.Respondent{FirstName: "Alice", LastName: "Novak", Email: "alice@example.com", Phone: "+420123"},
		QuizID:     "quiz-1",
		QuizTitle:  "Sample",
		Answers: []domain.Answer{
			{QuestionID: "q1", Question: "What is 2 + 2?", Answer: domain.TextAnswer("4")},
		},
		Consents:    domain.Consents{Terms: true},
		SubmittedAt: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
