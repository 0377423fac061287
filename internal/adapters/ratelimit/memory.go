package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// MemoryStore keeps one token bucket per key in process memory.
// Buckets refill at Limit/Window and hold at most Limit tokens.
type MemoryStore struct {
	mu      sync.Mutex
	buckets map[string]*entry
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		buckets: make(map[string]*entry),
		now:     time.Now,
	}
}

// Allow takes one token from the bucket for key
func (s *MemoryStore) Allow(_ context.Context, key string, quota Quota) (Decision, error) {
	if quota.Limit <= 0 {
		return Decision{Allowed: false, RetryAfter: quota.Window}, nil
	}

	now := s.now()

	s.mu.Lock()
	e, ok := s.buckets[key]
	if !ok {
		every := quota.Window / time.Duration(quota.Limit)
		e = &entry{limiter: rate.NewLimiter(rate.Every(every), quota.Limit)}
		s.buckets[key] = e
	}
	e.lastSeen = now
	s.mu.Unlock()

	r := e.limiter.ReserveN(now, 1)
	if !r.OK() {
		return Decision{Allowed: false, RetryAfter: quota.Window}, nil
	}

	if delay := r.DelayFrom(now); delay > 0 {
		// Rejected requests do not consume a token
		r.CancelAt(now)
		return Decision{Allowed: false, RetryAfter: delay}, nil
	}

	return Decision{Allowed: true}, nil
}

// Sweep removes buckets not used for idle and returns how many were removed
func (s *MemoryStore) Sweep(idle time.Duration) int {
	cutoff := s.now().Add(-idle)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, e := range s.buckets {
		if e.lastSeen.Before(cutoff) {
			delete(s.buckets, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked keys
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buckets)
}

// RunSweeper sweeps idle buckets every interval until ctx is done
func (s *MemoryStore) RunSweeper(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(idle)
		}
	}
}

// Close implements Store
func (s *MemoryStore) Close() error {
	return nil
}
