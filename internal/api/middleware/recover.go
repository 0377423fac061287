package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"gradpredict/internal/api/respond"
	"gradpredict/pkg/errors"
	"gradpredict/pkg/logger"
)

// Recover turns a panic in any handler into a JSON 500 and reports it
func Recover(log *logger.Logger, tracker errors.Tracker) func(http.Handler) http.Handler {
	log = log.Component("http")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				err := errors.Wrapf(errors.ErrInternal, "panic: %v", rec)
				log.Errorw("Recovered panic in HTTP handler",
					"path", r.URL.Path,
					"request_id", errors.RequestID(r.Context()),
					"panic", fmt.Sprintf("%v", rec),
					"stack", string(debug.Stack()),
				)
				if tracker != nil {
					_ = tracker.CaptureError(r.Context(), err, map[string]string{
						"component": "http",
						"path":      r.URL.Path,
					})
				}

				respond.Error(w, http.StatusInternalServerError, "Internal server error")
			}()

			next.ServeHTTP(w, r)
		})
	}
}
