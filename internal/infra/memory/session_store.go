package memory

import (
	"context"
	"sync"
	"time"
)

// AdminSessionStore is an in-memory implementation of app.AdminSessionStore.
type AdminSessionStore struct {
	mu       sync.Mutex
	now      func() time.Time
	sessions map[string]time.Time
}

func NewAdminSessionStore() *AdminSessionStore {
	return NewAdminSessionStoreWithClock(time.Now)
}

// NewAdminSessionStoreWithClock allows deterministic expiry in tests.
func NewAdminSessionStoreWithClock(now func() time.Time) *AdminSessionStore {
	return &AdminSessionStore{
		now:      now,
		sessions: make(map[string]time.Time),
	}
}

func (s *AdminSessionStore) Create(_ context.Context, token string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = s.now().Add(ttl)
	return nil
}

func (s *AdminSessionStore) Exists(_ context.Context, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	expiresAt, ok := s.sessions[token]
	if !ok {
		return false, nil
	}
	if !expiresAt.After(s.now()) {
		delete(s.sessions, token)
		return false, nil
	}
	return true, nil
}

func (s *AdminSessionStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}
