package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"gradpredict/internal/adapters/config"
	"gradpredict/pkg/errors"
)

// Client backs the shared rate limit counters.
// It exposes only the commands the fixed-window limiter needs.
type Client struct {
	rdb *redis.Client
}

// NewClient connects to Redis and pings it within ctx
func NewClient(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	opts := &redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	}
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if cfg.OpTimeout > 0 {
		opts.ReadTimeout = cfg.OpTimeout
		opts.WriteTimeout = cfg.OpTimeout
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errors.Wrapf(err, "ping redis %s", cfg.Addr())
	}

	return &Client{rdb: rdb}, nil
}

// Increment adds one to the window counter at key and returns the new value
func (c *Client) Increment(ctx context.Context, key string) (int64, error) {
	return c.rdb.Incr(ctx, key).Result()
}

// Expire starts the window by setting key's lifetime
func (c *Client) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return c.rdb.Expire(ctx, key, ttl).Err()
}

// TTL returns how long the window at key has left.
// Negative values mean the key has no expiry (-1) or does not exist (-2).
func (c *Client) TTL(ctx context.Context, key string) (time.Duration, error) {
	return c.rdb.PTTL(ctx, key).Result()
}

// Health pings Redis for the readiness probe
func (c *Client) Health(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close closes the connection pool
func (c *Client) Close() error {
	return c.rdb.Close()
}
