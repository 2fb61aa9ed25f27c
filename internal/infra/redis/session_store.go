package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// AdminSessionStore keeps operator session tokens in Redis; expiry is the key TTL.
type AdminSessionStore struct {
	client *redis.Client
}

func NewAdminSessionStore(client *redis.Client) *AdminSessionStore {
	return &AdminSessionStore{client: client}
}

func (s *AdminSessionStore) Create(ctx context.Context, token string, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.key(token), "1", ttl).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

func (s *AdminSessionStore) Exists(ctx context.Context, token string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(token)).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists session: %w", err)
	}
	return n == 1, nil
}

func (s *AdminSessionStore) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, s.key(token)).Err(); err != nil {
		return fmt.Errorf("redis del session: %w", err)
	}
	return nil
}

func (s *AdminSessionStore) key(token string) string {
	return "quiz:admin-session:" + token
}
