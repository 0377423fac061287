package bootstrap

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gradpredict/internal/adapters/config"
	"gradpredict/internal/adapters/ratelimit"
	"gradpredict/internal/domain/graduation"
	"gradpredict/internal/services/predictionlog"
	"gradpredict/pkg/errors"
	"gradpredict/pkg/logger"
)

type countingSink struct {
	mu      sync.Mutex
	records int
	closed  bool
}

func (s *countingSink) Name() string { return "counting" }

func (s *countingSink) Record(_ context.Context, records []graduation.PredictionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records += len(records)
	return nil
}

func (s *countingSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

type closeTracker struct {
	flushed bool
}

func (t *closeTracker) CaptureError(context.Context, error, map[string]string) error { return nil }
func (t *closeTracker) CaptureMessage(context.Context, string, errors.Level, map[string]string) error {
	return nil
}
func (t *closeTracker) AddBreadcrumb(context.Context, string, string, errors.Level, map[string]interface{}) {
}
func (t *closeTracker) Flush(context.Context) error {
	t.flushed = true
	return nil
}

func TestLifecycle_ShutdownDrainsPredictionLog(t *testing.T) {
	log := logger.Nop()
	sink := &countingSink{}
	dispatcher := predictionlog.NewDispatcher(predictionlog.Config{
		QueueSize:     10,
		BatchSize:     5,
		FlushInterval: time.Hour,
	}, []graduation.Sink{sink}, log)
	dispatcher.Start()

	for i := 0; i < 3; i++ {
		require.True(t, dispatcher.Enqueue(graduation.PredictionRecord{}))
	}

	tracker := &closeTracker{}
	NewLifecycle().Shutdown(ShutdownDeps{
		WG:             &sync.WaitGroup{},
		PredictionLog:  dispatcher,
		RateLimitStore: ratelimit.NewMemoryStore(),
		ErrorTracker:   tracker,
	}, log)

	assert.Equal(t, 3, sink.records)
	assert.True(t, sink.closed)
	assert.True(t, tracker.flushed)
	assert.False(t, dispatcher.Enqueue(graduation.PredictionRecord{}))
}

func TestLifecycle_ShutdownWithNothingConfigured(t *testing.T) {
	assert.NotPanics(t, func() {
		NewLifecycle().Shutdown(ShutdownDeps{}, logger.Nop())
	})
}

func TestProvideRateLimitStore_DefaultsToMemory(t *testing.T) {
	cfg := &config.Config{RateLimit: config.RateLimitConfig{Enabled: true, Storage: "memory"}}

	store := provideRateLimitStore(cfg, nil, logger.Nop())
	_, ok := store.(*ratelimit.MemoryStore)
	assert.True(t, ok)
}
