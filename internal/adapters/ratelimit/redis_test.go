package ratelimit

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCounter struct {
	counts  map[string]int64
	ttls    map[string]time.Duration
	failInc bool
	closed  bool
}

func newFakeCounter() *fakeCounter {
	return &fakeCounter{counts: map[string]int64{}, ttls: map[string]time.Duration{}}
}

func (f *fakeCounter) Increment(_ context.Context, key string) (int64, error) {
	if f.failInc {
		return 0, fmt.Errorf("connection refused")
	}
	f.counts[key]++
	return f.counts[key], nil
}

func (f *fakeCounter) Expire(_ context.Context, key string, ttl time.Duration) error {
	f.ttls[key] = ttl
	return nil
}

func (f *fakeCounter) TTL(_ context.Context, key string) (time.Duration, error) {
	ttl, ok := f.ttls[key]
	if !ok {
		return -1, nil
	}
	return ttl, nil
}

func (f *fakeCounter) Close() error {
	f.closed = true
	return nil
}

func TestRedisStore_FixedWindow(t *testing.T) {
	counter := newFakeCounter()
	s := NewRedisStore(counter, "ratelimit")
	quota := PerMinute(2)

	for i := 0; i < 2; i++ {
		d, err := s.Allow(context.Background(), "predict:1.2.3.4", quota)
		require.NoError(t, err)
		assert.True(t, d.Allowed)
	}
	assert.Equal(t, time.Minute, counter.ttls["ratelimit:predict:1.2.3.4"])

	counter.ttls["ratelimit:predict:1.2.3.4"] = 42 * time.Second
	d, err := s.Allow(context.Background(), "predict:1.2.3.4", quota)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 42*time.Second, d.RetryAfter)
}

func TestRedisStore_MissingExpiryIsReset(t *testing.T) {
	counter := newFakeCounter()
	counter.counts["ratelimit:k"] = 5
	s := NewRedisStore(counter, "ratelimit")

	d, err := s.Allow(context.Background(), "k", PerMinute(1))
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, time.Minute, d.RetryAfter)
	assert.Equal(t, time.Minute, counter.ttls["ratelimit:k"])
}

func TestRedisStore_ErrorsPropagate(t *testing.T) {
	counter := newFakeCounter()
	counter.failInc = true
	s := NewRedisStore(counter, "ratelimit")

	_, err := s.Allow(context.Background(), "k", PerMinute(1))
	assert.Error(t, err)

	require.NoError(t, s.Close())
	assert.True(t, counter.closed)
}
