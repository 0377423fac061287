package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"gradpredict/internal/adapters/ratelimit"
	"gradpredict/internal/api/health"
	"gradpredict/internal/api/middleware"
	"gradpredict/internal/api/predict"
	"gradpredict/internal/api/respond"
	"gradpredict/internal/metrics"
	"gradpredict/pkg/errors"
	"gradpredict/pkg/logger"
)

// Route names used for rate limit keys and metric labels
const (
	RouteHealth     = "health"
	RouteDocs       = "docs"
	RouteMetrics    = "metrics"
	RoutePredict    = "predict"
	RouteReady      = "ready"
	RoutePrometheus = "prometheus"
	RouteNotFound   = "not_found"
)

// ServerConfig contains configuration for HTTP server
type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	CORSOrigins  []string
	Quotas       health.RouteQuotas
	Window       time.Duration
}

// Server wraps HTTP server with lifecycle management
type Server struct {
	httpServer *http.Server
	log        *logger.Logger
}

// NewServer creates and configures HTTP server with all routes
func NewServer(
	cfg ServerConfig,
	healthHandler *health.Handler,
	predictHandler *predict.Handler,
	limiter *middleware.RateLimiter,
	tracker errors.Tracker,
	log *logger.Logger,
) *Server {
	log = log.Component("http_server")

	window := cfg.Window
	if window <= 0 {
		window = time.Minute
	}
	quota := func(n int) ratelimit.Quota {
		return ratelimit.Quota{Limit: n, Window: window}
	}

	mux := http.NewServeMux()

	route := func(path, name, method string, q *ratelimit.Quota, h http.HandlerFunc) {
		var handler http.Handler = respond.MethodNotAllowed(method, h)
		if q != nil {
			handler = limiter.Limit(name, *q)(handler)
		}
		mux.Handle(path, middleware.Instrument(name, log)(handler))
	}

	healthQuota := quota(cfg.Quotas.Health)
	docsQuota := quota(cfg.Quotas.Docs)
	metricsQuota := quota(cfg.Quotas.Metrics)
	predictQuota := quota(cfg.Quotas.Predict)

	route("/{$}", RouteHealth, http.MethodGet, &healthQuota, healthHandler.HandleHealth)
	route("/docs", RouteDocs, http.MethodGet, &docsQuota, healthHandler.HandleDocs)
	route("/metrics", RouteMetrics, http.MethodGet, &metricsQuota, healthHandler.HandleMetrics)
	route("/predict", RoutePredict, http.MethodPost, &predictQuota, predictHandler.ServeHTTP)

	// Probe and scrape endpoints are not rate limited
	route("/ready", RouteReady, http.MethodGet, nil, healthHandler.HandleReadiness)
	route("/metrics/prometheus", RoutePrometheus, http.MethodGet, nil, metrics.Handler().ServeHTTP)

	// Unknown paths get a JSON 404 outside every route quota
	mux.Handle("/", middleware.Instrument(RouteNotFound, log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respond.Error(w, http.StatusNotFound, "Not found")
	})))

	var handler http.Handler = mux
	handler = middleware.Recover(log, tracker)(handler)
	handler = middleware.RequestID(handler)
	handler = middleware.CORS(cfg.CORSOrigins)(handler)

	port := 5000
	if cfg.Port > 0 {
		port = cfg.Port
	}

	log.Infof("HTTP server configured on port %d", port)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      handler,
		ReadTimeout:  orDefault(cfg.ReadTimeout, 10*time.Second),
		WriteTimeout: orDefault(cfg.WriteTimeout, 10*time.Second),
		IdleTimeout:  orDefault(cfg.IdleTimeout, 60*time.Second),
	}

	return &Server{
		httpServer: httpServer,
		log:        log,
	}
}

func orDefault(d, def time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return def
}

// Handler returns the fully wrapped router
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins listening for HTTP requests
// Blocks until server is stopped or encounters an error
func (s *Server) Start() error {
	s.log.Infof("Starting HTTP server on %s", s.httpServer.Addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return errors.Wrap(err, "http server failed")
	}

	return nil
}

// Shutdown gracefully stops the HTTP server
// Waits for active connections to complete within timeout
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Stopping HTTP server...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "http server shutdown failed")
	}

	s.log.Info("✓ HTTP server stopped")
	return nil
}
