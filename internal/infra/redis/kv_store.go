package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"quiz-intake-service/internal/domain"
)

// KVStore implements app.KVStore on Redis, one hash per bucket:
//
//	HSETNX offline:{bucket} {key} {value}   (Add)
//	HGETALL offline:{bucket}                 (GetAll)
//
// Durability follows the Redis server's persistence settings (AOF recommended).
type KVStore struct {
	client *redis.Client
	prefix string
}

func NewKVStore(client *redis.Client) *KVStore {
	return &KVStore{client: client, prefix: "offline:"}
}

func (s *KVStore) Add(ctx context.Context, bucket, key string, value []byte) error {
	added, err := s.client.HSetNX(ctx, s.key(bucket), key, value).Result()
	if err != nil {
		return fmt.Errorf("redis hsetnx: %w", err)
	}
	if !added {
		return domain.ErrKeyExists
	}
	return nil
}

func (s *KVStore) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	value, err := s.client.HGet(ctx, s.key(bucket), key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis hget: %w", err)
	}
	return value, nil
}

func (s *KVStore) GetAll(ctx context.Context, bucket string) (map[string][]byte, error) {
	values, err := s.client.HGetAll(ctx, s.key(bucket)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall: %w", err)
	}
	out := make(map[string][]byte, len(values))
	for k, v := range values {
		out[k] = []byte(v)
	}
	return out, nil
}

func (s *KVStore) Put(ctx context.Context, bucket, key string, value []byte) error {
	if err := s.client.HSet(ctx, s.key(bucket), key, value).Err(); err != nil {
		return fmt.Errorf("redis hset: %w", err)
	}
	return nil
}

func (s *KVStore) Delete(ctx context.Context, bucket, key string) error {
	if err := s.client.HDel(ctx, s.key(bucket), key).Err(); err != nil {
		return fmt.Errorf("redis hdel: %w", err)
	}
	return nil
}

func (s *KVStore) Clear(ctx context.Context, bucket string) error {
	if err := s.client.Del(ctx, s.key(bucket)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (s *KVStore) key(bucket string) string {
	return s.prefix + bucket
}
