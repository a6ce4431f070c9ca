// internal/intake/memory/redis.go
package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "conversation:"

// RedisStore backs the conversation backlog with a Redis list so the backlog
// survives process restarts. Entries expire after the configured TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		ttl:    ttl,
	}
}

func (s *RedisStore) Get(ctx context.Context, userID string) ([]string, error) {
	lines, err := s.client.LRange(ctx, keyPrefix+userID, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis lrange: %w", err)
	}
	return lines, nil
}

func (s *RedisStore) Append(ctx context.Context, userID, line string) error {
	key := keyPrefix + userID
	if err := s.client.RPush(ctx, key, line).Err(); err != nil {
		return fmt.Errorf("redis rpush: %w", err)
	}
	if s.ttl > 0 {
		if err := s.client.Expire(ctx, key, s.ttl).Err(); err != nil {
			return fmt.Errorf("redis expire: %w", err)
		}
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, keyPrefix+userID).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
