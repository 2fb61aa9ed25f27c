package app_test

import (
	"context"
	"errors"
	"sync"

	"quiz-intake-service/internal/domain"
	"quiz-intake-service/internal/infra/memory"
)

var errRemote = errors.New("remote down")

// fakeRecorder records submissions, failing for the ids in failIDs or for all when failAll is set.
type fakeRecorder struct {
	mu       sync.Mutex
	failAll  bool
	failIDs  map[string]bool
	failQuiz map[string]bool
	calls    int
	recorded []domain.Submission
	block    chan struct{}
}

func (r *fakeRecorder) RecordSubmission(_ context.Context, s domain.Submission) error {
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.failAll || r.failIDs[s.ID] || r.failQuiz[s.QuizID] {
		return errRemote
	}
	r.recorded = append(r.recorded, s)
	return nil
}

func (r *fakeRecorder) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func (r *fakeRecorder) Recorded() []domain.Submission {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Submission(nil), r.recorded...)
}

type fakeNotifier struct {
	mu    sync.Mutex
	fail  bool
	calls int
}

func (n *fakeNotifier) NotifySubmission(context.Context, domain.Submission) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls++
	if n.fail {
		return domain.ErrNotificationFailed
	}
	return nil
}

func (n *fakeNotifier) Calls() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.calls
}

// flakyKV wraps the in-memory store and fails selected operations.
type flakyKV struct {
	*memory.KVStore
	failAdd    bool
	failPut    bool
	failGetAll bool
	adds       int
}

func newFlakyKV() *flakyKV {
	return &flakyKV{KVStore: memory.NewKVStore()}
}

func (k *flakyKV) Add(ctx context.Context, bucket, key string, value []byte) error {
	k.adds++
	if k.failAdd {
		return errors.New("disk full")
	}
	return k.KVStore.Add(ctx, bucket, key, value)
}

func (k *flakyKV) Put(ctx context.Context, bucket, key string, value []byte) error {
	if k.failPut {
		return errors.New("disk full")
	}
	return k.KVStore.Put(ctx, bucket, key, value)
}

func (k *flakyKV) GetAll(ctx context.Context, bucket string) (map[string][]byte, error) {
	if k.failGetAll {
		return nil, errors.New("corrupt store")
	}
	return k.KVStore.GetAll(ctx, bucket)
}

func draft(quizID, firstName string) domain.SubmissionDraft {
	return domain.SubmissionDraft{
		Respondent: domain.Respondent{FirstName: firstName, LastName: "Tester", Email: firstName + "@example.com", Phone: "+100"},
		QuizID:     quizID,
		QuizTitle:  "Sample",
		Answers: []domain.Answer{
			{QuestionID: "1", Question: "Colour?", Answer: domain.TextAnswer("blue")},
		},
		Consents: domain.Consents{Terms: true, DataProcessing: true},
	}
}
