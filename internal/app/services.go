package app

import (
	"errors"
	"time"
)

// Dependencies are the infrastructure pieces the application is assembled from.
type Dependencies struct {
	Local         KVStore
	Recorder      SubmissionRecorder
	Notifier      SubmissionNotifier
	Loader        QuizLoader
	Catalog       QuizCatalog
	AdminSessions AdminSessionStore

	SubmissionBucket string
	SnapshotBucket   string
	StartOnline      bool
	Flow             FlowOptions

	AdminUsername     string
	AdminPasswordHash []byte
	AdminSessionTTL   time.Duration
}

// Services is the application context: every long-lived collaborator is
// built here once and handed to the transports explicitly.
type Services struct {
	Monitor     *ConnectivityMonitor
	Notices     *NoticeBoard
	Submissions *SubmissionStore
	Snapshots   *SnapshotCache
	Sync        *SyncEngine
	Flow        *SubmissionFlow
	Quizzes     *QuizService
	Admin       *AdminGate

	closers []func() error
}

func NewServices(deps Dependencies) *Services {
	monitor := NewConnectivityMonitor(deps.StartOnline)
	notices := NewNoticeBoard()
	submissions := NewSubmissionStore(deps.Local, deps.SubmissionBucket)
	snapshots := NewSnapshotCache(deps.Local, deps.SnapshotBucket)
	syncEngine := NewSyncEngine(submissions, deps.Recorder, deps.Notifier, notices)
	monitor.OnBecameOnline(syncEngine.OnBecameOnline)

	return &Services{
		Monitor:     monitor,
		Notices:     notices,
		Submissions: submissions,
		Snapshots:   snapshots,
		Sync:        syncEngine,
		Flow:        NewSubmissionFlow(monitor, submissions, deps.Recorder, deps.Notifier, notices, deps.Flow),
		Quizzes:     NewQuizService(deps.Loader, deps.Catalog, snapshots, monitor),
		Admin:       NewAdminGate(deps.AdminUsername, deps.AdminPasswordHash, deps.AdminSessions, deps.AdminSessionTTL),
	}
}

// OnClose registers a teardown step; steps run in reverse order on Close.
func (s *Services) OnClose(fn func() error) {
	s.closers = append(s.closers, fn)
}

// Close releases every registered resource.
func (s *Services) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}
