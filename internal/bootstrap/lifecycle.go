package bootstrap

import (
	"context"
	"sync"
	"time"

	chclient "gradpredict/internal/adapters/clickhouse"
	pgclient "gradpredict/internal/adapters/postgres"
	"gradpredict/internal/adapters/ratelimit"
	"gradpredict/internal/api"
	"gradpredict/internal/ml"
	mlgrad "gradpredict/internal/ml/graduation"
	"gradpredict/internal/services/predictionlog"
	"gradpredict/pkg/errors"
	"gradpredict/pkg/logger"
)

// Lifecycle manages graceful shutdown of components
type Lifecycle struct {
	shutdownTimeout time.Duration
	httpTimeout     time.Duration
}

// NewLifecycle creates a new lifecycle manager
func NewLifecycle() *Lifecycle {
	return &Lifecycle{
		shutdownTimeout: 30 * time.Second,
		httpTimeout:     15 * time.Second,
	}
}

// ShutdownDeps lists what Shutdown tears down. Nil fields are skipped.
type ShutdownDeps struct {
	WG             *sync.WaitGroup
	HTTPServer     *api.Server
	PredictionLog  *predictionlog.Dispatcher
	RateLimitStore ratelimit.Store
	Model          *mlgrad.Classifier
	PG             *pgclient.Client
	CH             *chclient.Client
	ErrorTracker   errors.Tracker
}

// Shutdown performs coordinated cleanup in order:
// requests stop first, queued predictions drain to the sinks
// while the databases are still open, then the model is released.
func (l *Lifecycle) Shutdown(deps ShutdownDeps, log *logger.Logger) {
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), l.shutdownTimeout)
	defer shutdownCancel()

	// ========================================
	// Step 1: Stop HTTP Server
	// ========================================
	log.Info("[1/7] Stopping HTTP server...")
	if deps.HTTPServer != nil {
		httpCtx, httpCancel := context.WithTimeout(shutdownCtx, l.httpTimeout)
		if err := deps.HTTPServer.Shutdown(httpCtx); err != nil {
			log.Errorw("HTTP server shutdown failed", "error", err)
		}
		httpCancel()
	}

	// ========================================
	// Step 2: Wait for background goroutines
	// ========================================
	log.Info("[2/7] Waiting for background goroutines...")
	l.waitForGoroutines(deps.WG, 5*time.Second, log)

	// ========================================
	// Step 3: Drain prediction log (closes sinks and the Kafka producer)
	// ========================================
	log.Info("[3/7] Draining prediction log...")
	if deps.PredictionLog != nil {
		if err := deps.PredictionLog.Close(shutdownCtx); err != nil {
			log.Errorw("Prediction log drain failed", "error", err)
		}
	} else {
		log.Info("✓ No prediction log sinks configured")
	}

	// ========================================
	// Step 4: Close rate limit store (closes Redis when used)
	// ========================================
	log.Info("[4/7] Closing rate limit store...")
	if deps.RateLimitStore != nil {
		if err := deps.RateLimitStore.Close(); err != nil {
			log.Errorw("Rate limit store close failed", "error", err)
		} else {
			log.Info("✓ Rate limit store closed")
		}
	}

	// ========================================
	// Step 5: Release model
	// ========================================
	log.Info("[5/7] Releasing model...")
	if deps.Model != nil {
		deps.Model.Close()
	}
	if err := ml.ShutdownEnvironment(); err != nil {
		log.Warnw("ONNX runtime shutdown failed", "error", err)
	} else {
		log.Info("✓ Model released")
	}

	// ========================================
	// Step 6: Flush error tracker
	// ========================================
	log.Info("[6/7] Flushing error tracker...")
	l.flushErrorTracker(shutdownCtx, deps.ErrorTracker, log)

	// ========================================
	// Step 7: Close databases
	// ========================================
	log.Info("[7/7] Closing database connections...")
	l.closeDatabases(deps.PG, deps.CH, log)

	if err := logger.Sync(); err != nil {
		// stdout/stderr sync errors are expected on some platforms
		log.Debugw("Logger sync returned error", "error", err)
	}

	log.Info("✅ Graceful shutdown complete")
}

// waitForGoroutines waits for the WaitGroup with a timeout
func (l *Lifecycle) waitForGoroutines(wg *sync.WaitGroup, timeout time.Duration, log *logger.Logger) {
	if wg == nil {
		return
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Info("✓ All goroutines finished")
	case <-time.After(timeout):
		log.Warnw("Timeout waiting for goroutines", "timeout", timeout)
	}
}

func (l *Lifecycle) flushErrorTracker(ctx context.Context, tracker errors.Tracker, log *logger.Logger) {
	if tracker == nil {
		return
	}

	flushCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := tracker.Flush(flushCtx); err != nil {
		log.Warnw("Failed to flush error tracker", "error", err)
	} else {
		log.Info("✓ Error tracker flushed")
	}
}

func (l *Lifecycle) closeDatabases(pgClient *pgclient.Client, chClient *chclient.Client, log *logger.Logger) {
	var dbErrors []error

	if pgClient != nil {
		if err := pgClient.Close(); err != nil {
			dbErrors = append(dbErrors, errors.Wrap(err, "postgres"))
		}
	}

	if chClient != nil {
		if err := chClient.Close(); err != nil {
			dbErrors = append(dbErrors, errors.Wrap(err, "clickhouse"))
		}
	}

	if len(dbErrors) > 0 {
		log.Errorw("Database close errors", "errors", dbErrors)
	} else {
		log.Info("✓ Database connections closed")
	}
}
