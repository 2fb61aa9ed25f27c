package memory

import (
	"context"
	"sync"

	"quiz-intake-service/internal/domain"
)

// KVStore is an in-memory implementation of app.KVStore. It does not survive
// restarts and is meant for tests and throwaway demos.
type KVStore struct {
	mu      sync.RWMutex
	buckets map[string]map[string][]byte
}

func NewKVStore() *KVStore {
	return &KVStore{buckets: make(map[string]map[string][]byte)}
}

func (s *KVStore) Add(_ context.Context, bucket, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.bucketLocked(bucket)
	if _, ok := b[key]; ok {
		return domain.ErrKeyExists
	}
	b[key] = clone(value)
	return nil
}

func (s *KVStore) Get(_ context.Context, bucket, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.buckets[bucket][key]
	if !ok {
		return nil, domain.ErrKeyNotFound
	}
	return clone(value), nil
}

func (s *KVStore) GetAll(_ context.Context, bucket string) (map[string][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string][]byte, len(s.buckets[bucket]))
	for key, value := range s.buckets[bucket] {
		out[key] = clone(value)
	}
	return out, nil
}

func (s *KVStore) Put(_ context.Context, bucket, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bucketLocked(bucket)[key] = clone(value)
	return nil
}

func (s *KVStore) Delete(_ context.Context, bucket, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.buckets[bucket], key)
	return nil
}

func (s *KVStore) Clear(_ context.Context, bucket string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.buckets, bucket)
	return nil
}

func (s *KVStore) bucketLocked(bucket string) map[string][]byte {
	b, ok := s.buckets[bucket]
	if !ok {
		b = make(map[string][]byte)
		s.buckets[bucket] = b
	}
	return b
}

func clone(b []byte) []byte {
	return append([]byte(nil), b...)
}
