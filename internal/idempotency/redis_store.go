package idempotency

import (
	"context"
	"errors"

	redis "github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "payrelay:processed:"

// RedisStore keeps processed references in Redis so the ledger survives
// process restarts and is shared across instances.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Contains(ctx context.Context, reference string) (bool, error) {
	if s == nil || s.client == nil {
		return false, errors.New("redis client not configured")
	}
	n, err := s.client.Exists(ctx, redisKeyPrefix+reference).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *RedisStore) Add(ctx context.Context, reference string) error {
	if s == nil || s.client == nil {
		return errors.New("redis client not configured")
	}
	return s.client.Set(ctx, redisKeyPrefix+reference, 1, 0).Err()
}
