package app_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"quiz-intake-service/internal/app"
	"quiz-intake-service/internal/domain"
	"quiz-intake-service/internal/infra/memory"
)

func TestSyncDeliversWhatItCanAndKeepsTheRest(t *testing.T) {
	ctx := context.Background()
	store := app.NewSubmissionStore(memory.NewKVStore(), "")
	a, _ := store.Save(ctx, draft("q1", "ada"))
	b, _ := store.Save(ctx, draft("q2", "grace"))

	recorder := &fakeRecorder{failQuiz: map[string]bool{"q2": true}}
	notifier := &fakeNotifier{}
	notices := app.NewNoticeBoard()
	updates, cancel := notices.Subscribe()
	defer cancel()

	report, err := app.NewSyncEngine(store, recorder, notifier, notices).SyncAll(ctx)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if report.Attempted != 2 || report.Succeeded != 1 {
		t.Fatalf("expected 1 of 2 delivered, got %+v", report)
	}
	if len(report.Failed) != 1 || report.Failed[0] != b {
		t.Fatalf("expected %s to fail, got %v", b, report.Failed)
	}

	unsynced, _ := store.ListUnsynced(ctx)
	if len(unsynced) != 1 || unsynced[0].ID != b {
		t.Fatalf("expected only %s left, got %+v", b, unsynced)
	}
	if rec, _ := store.Get(ctx, a); !rec.Synced {
		t.Fatalf("expected %s marked synced", a)
	}
	if recorded := recorder.Recorded(); len(recorded) != 1 || recorded[0].ID != a {
		t.Fatalf("remote should hold %s under its local id, got %+v", a, recorded)
	}

	first := <-updates
	second := <-updates
	if first.Level != domain.NoticeSuccess || first.Message != "1 offline submission(s) sent" {
		t.Fatalf("unexpected success notice %+v", first)
	}
	if second.Level != domain.NoticeWarning {
		t.Fatalf("expected partial-failure warning, got %+v", second)
	}
}

func TestSyncCountsNotificationFailuresAsDelivered(t *testing.T) {
	ctx := context.Background()
	store := app.NewSubmissionStore(memory.NewKVStore(), "")
	store.Save(ctx, draft("q1", "ada"))
	store.Save(ctx, draft("q1", "grace"))
	store.Save(ctx, draft("q1", "alan"))

	notifier := &fakeNotifier{fail: true}
	report, err := app.NewSyncEngine(store, &fakeRecorder{}, notifier, nil).SyncAll(ctx)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if report.Attempted != 3 || report.Succeeded != 3 || report.NotificationFailures != 3 {
		t.Fatalf("unexpected report %+v", report)
	}
	if n, _ := store.PendingCount(ctx); n != 0 {
		t.Fatalf("notification failures must not keep items queued, %d left", n)
	}
}

func TestSyncWithEmptyOrUnreadableQueue(t *testing.T) {
	ctx := context.Background()
	recorder := &fakeRecorder{}

	empty := app.NewSubmissionStore(memory.NewKVStore(), "")
	report, err := app.NewSyncEngine(empty, recorder, &fakeNotifier{}, nil).SyncAll(ctx)
	if err != nil || report.Attempted != 0 {
		t.Fatalf("expected empty report, got %+v %v", report, err)
	}

	kv := newFlakyKV()
	broken := app.NewSubmissionStore(kv, "")
	broken.Save(ctx, draft("q1", "ada"))
	kv.failGetAll = true
	report, err = app.NewSyncEngine(broken, recorder, &fakeNotifier{}, nil).SyncAll(ctx)
	if err != nil || report.Attempted != 0 {
		t.Fatalf("unreadable queue should mean nothing to sync, got %+v %v", report, err)
	}
	if recorder.Calls() != 0 {
		t.Fatalf("recorder must not be called, got %d", recorder.Calls())
	}
}

func TestSyncKeepsItemWhenMarkSyncedFails(t *testing.T) {
	ctx := context.Background()
	kv := newFlakyKV()
	store := app.NewSubmissionStore(kv, "")
	id, _ := store.Save(ctx, draft("q1", "ada"))
	kv.failPut = true

	recorder := &fakeRecorder{}
	report, err := app.NewSyncEngine(store, recorder, &fakeNotifier{}, nil).SyncAll(ctx)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if report.Succeeded != 0 || len(report.Failed) != 1 || report.Failed[0] != id {
		t.Fatalf("expected item reported as failed, got %+v", report)
	}

	// The next pass delivers it again under the same id.
	kv.failPut = false
	report, _ = app.NewSyncEngine(store, recorder, &fakeNotifier{}, nil).SyncAll(ctx)
	if report.Succeeded != 1 {
		t.Fatalf("expected retry to succeed, got %+v", report)
	}
	recorded := recorder.Recorded()
	if len(recorded) != 2 || recorded[0].ID != recorded[1].ID {
		t.Fatalf("expected same id redelivered, got %+v", recorded)
	}
}

func TestConcurrentSyncTriggersShareOnePass(t *testing.T) {
	ctx := context.Background()
	store := app.NewSubmissionStore(memory.NewKVStore(), "")
	store.Save(ctx, draft("q1", "ada"))
	store.Save(ctx, draft("q1", "grace"))

	recorder := &fakeRecorder{block: make(chan struct{})}
	engine := app.NewSyncEngine(store, recorder, &fakeNotifier{}, nil)

	var wg sync.WaitGroup
	reports := make([]domain.SyncReport, 3)
	for i := range reports {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			reports[i], _ = engine.SyncAll(ctx)
		}(i)
	}
	// Let the triggers pile up on the blocked pass before releasing it.
	time.Sleep(50 * time.Millisecond)
	close(recorder.block)
	wg.Wait()

	if recorder.Calls() != 2 {
		t.Fatalf("expected each item delivered once, got %d remote calls", recorder.Calls())
	}
	for i, r := range reports {
		if r.Succeeded != 2 {
			t.Fatalf("trigger %d got report %+v", i, r)
		}
	}
}

func TestReconnectTriggersSyncOnce(t *testing.T) {
	ctx := context.Background()
	store := app.NewSubmissionStore(memory.NewKVStore(), "")
	store.Save(ctx, draft("q1", "ada"))

	recorder := &fakeRecorder{}
	engine := app.NewSyncEngine(store, recorder, &fakeNotifier{}, nil)
	monitor := app.NewConnectivityMonitor(false)
	monitor.OnBecameOnline(engine.OnBecameOnline)

	monitor.SetOnline(ctx, true)
	monitor.SetOnline(ctx, true)

	if recorder.Calls() != 1 {
		t.Fatalf("expected one delivery, got %d", recorder.Calls())
	}
	if n, _ := store.PendingCount(ctx); n != 0 {
		t.Fatalf("expected queue drained, %d left", n)
	}
}
