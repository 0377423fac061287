package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"

	"gradpredict/internal/adapters/ratelimit"
	"gradpredict/internal/api/respond"
	"gradpredict/internal/metrics"
	"gradpredict/pkg/errors"
	"gradpredict/pkg/logger"
)

// RateLimitMessage is the error text of every 429 response
const RateLimitMessage = "Rate limit exceeded. Please try again later."

// RateLimiter applies per-route, per-client quotas backed by a ratelimit.Store
type RateLimiter struct {
	store      ratelimit.Store
	enabled    bool
	trustProxy bool
	log        *logger.Logger
}

// NewRateLimiter creates a rate limiter. A disabled limiter lets everything through.
func NewRateLimiter(store ratelimit.Store, enabled, trustProxy bool, log *logger.Logger) *RateLimiter {
	return &RateLimiter{
		store:      store,
		enabled:    enabled && store != nil,
		trustProxy: trustProxy,
		log:        log.Component("rate_limiter"),
	}
}

// Limit rejects requests on route beyond quota with 429.
// Rejected requests never reach next, so they are not counted by the service.
func (l *RateLimiter) Limit(route string, quota ratelimit.Quota) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !l.enabled {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := route + ":" + ClientIP(r, l.trustProxy)

			decision, err := l.store.Allow(r.Context(), key, quota)
			if err != nil {
				// Fail open while the store is unreachable
				l.log.Warnw("Rate limit check failed, allowing request",
					"route", route,
					"request_id", errors.RequestID(r.Context()),
					"error", err,
				)
				next.ServeHTTP(w, r)
				return
			}

			if !decision.Allowed {
				metrics.RateLimitRejections.WithLabelValues(route).Inc()
				rejected := errors.NewKind(errors.KindRateLimit, RateLimitMessage, errors.ErrRateLimitExceeded)
				l.log.Debugw("Rate limit exceeded",
					"route", route,
					"key", key,
					"retry_after", decision.RetryAfter,
				)
				writeRateLimited(w, rejected, ratelimit.RetryAfterSeconds(decision.RetryAfter))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeRateLimited(w http.ResponseWriter, err error, retryAfter int) {
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	respond.JSON(w, http.StatusTooManyRequests, respond.ErrorBody{
		Error:      err.Error(),
		RetryAfter: &retryAfter,
	})
}

// ClientIP returns the address used as the rate limit identity.
// X-Forwarded-For is honored only when the service runs behind a trusted proxy.
func ClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			first, _, _ := strings.Cut(fwd, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
