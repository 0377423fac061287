package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gradpredict/internal/adapters/ratelimit"
	"gradpredict/pkg/errors"
	"gradpredict/pkg/logger"
)

type failingStore struct{}

func (failingStore) Allow(context.Context, string, ratelimit.Quota) (ratelimit.Decision, error) {
	return ratelimit.Decision{}, fmt.Errorf("redis: connection refused")
}

func (failingStore) Close() error { return nil }

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestRecover_ReturnsJSON500(t *testing.T) {
	h := Recover(logger.Nop(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	require.NotPanics(t, func() {
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, rec.Body.String())
}

func TestRequestID_StoredInContext(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = errors.RequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.1.2.3:5555"
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")

	assert.Equal(t, "10.1.2.3", ClientIP(req, false))
	assert.Equal(t, "203.0.113.9", ClientIP(req, true))

	req.Header.Del("X-Forwarded-For")
	assert.Equal(t, "10.1.2.3", ClientIP(req, true))

	req.RemoteAddr = "pipe"
	assert.Equal(t, "pipe", ClientIP(req, false))
}

func TestRateLimiter_FailsOpen(t *testing.T) {
	l := NewRateLimiter(failingStore{}, true, false, logger.Nop())
	h := l.Limit("predict", ratelimit.PerMinute(1))(okHandler)

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/predict", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestRateLimiter_Disabled(t *testing.T) {
	l := NewRateLimiter(ratelimit.NewMemoryStore(), false, false, logger.Nop())
	h := l.Limit("predict", ratelimit.PerMinute(1))(okHandler)

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/predict", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestRateLimiter_PerClient(t *testing.T) {
	l := NewRateLimiter(ratelimit.NewMemoryStore(), true, false, logger.Nop())
	h := l.Limit("health", ratelimit.PerMinute(1))(okHandler)

	send := func(addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1:1000"))
	assert.Equal(t, http.StatusOK, send("10.0.0.2:1000"))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1:2000"))
}
