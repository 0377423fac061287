package ratelimit

import (
	"context"
	"fmt"
	"time"

	"gradpredict/pkg/errors"
)

// Counter is the subset of the Redis client the fixed-window store needs
type Counter interface {
	Increment(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
	TTL(ctx context.Context, key string) (time.Duration, error)
	Close() error
}

// RedisStore counts requests per key in fixed windows shared by every replica
type RedisStore struct {
	counter Counter
	prefix  string
}

// NewRedisStore creates a store that keeps counters under prefix
func NewRedisStore(counter Counter, prefix string) *RedisStore {
	return &RedisStore{counter: counter, prefix: prefix}
}

// Allow increments the window counter for key
func (s *RedisStore) Allow(ctx context.Context, key string, quota Quota) (Decision, error) {
	redisKey := fmt.Sprintf("%s:%s", s.prefix, key)

	count, err := s.counter.Increment(ctx, redisKey)
	if err != nil {
		return Decision{}, errors.Wrap(err, "failed to increment rate limit counter")
	}

	// First hit opens the window
	if count == 1 {
		if err := s.counter.Expire(ctx, redisKey, quota.Window); err != nil {
			return Decision{}, errors.Wrap(err, "failed to set rate limit window")
		}
	}

	if count <= int64(quota.Limit) {
		return Decision{Allowed: true}, nil
	}

	ttl, err := s.counter.TTL(ctx, redisKey)
	if err != nil {
		return Decision{}, errors.Wrap(err, "failed to read rate limit window")
	}
	if ttl < 0 {
		// Key lost its expiry; reopen the window
		if err := s.counter.Expire(ctx, redisKey, quota.Window); err != nil {
			return Decision{}, errors.Wrap(err, "failed to set rate limit window")
		}
		ttl = quota.Window
	}

	return Decision{Allowed: false, RetryAfter: ttl}, nil
}

// Close closes the underlying client
func (s *RedisStore) Close() error {
	return s.counter.Close()
}
