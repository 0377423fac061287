package ratelimit

import (
	"context"
	"time"
)

// Quota is the number of requests a client may make per window
type Quota struct {
	Limit  int
	Window time.Duration
}

// PerMinute creates a quota of n requests per minute
func PerMinute(n int) Quota {
	return Quota{Limit: n, Window: time.Minute}
}

// Decision is the outcome of a rate limit check
type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
}

// Store decides whether a request identified by key fits in its quota
type Store interface {
	Allow(ctx context.Context, key string, quota Quota) (Decision, error)
	Close() error
}

// RetryAfterSeconds rounds a retry delay up to whole seconds, minimum 1
func RetryAfterSeconds(d time.Duration) int {
	secs := int((d + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}
