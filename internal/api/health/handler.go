package health

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"gradpredict/internal/api/respond"
	"gradpredict/internal/metrics"
	"gradpredict/pkg/logger"
)

// ModelState reports whether the classifier is usable
type ModelState interface {
	Loaded() bool
}

// Pinger is an optional dependency checked by the readiness probe
type Pinger interface {
	Health(ctx context.Context) error
}

// Handler provides health check, metrics and docs endpoints
type Handler struct {
	log         *logger.Logger
	counters    *metrics.ServiceCounters
	model       ModelState
	sampler     metrics.Sampler
	deps        map[string]Pinger
	docs        Docs
	serviceName string
	now         func() time.Time
}

// New creates a new health check handler
func New(
	log *logger.Logger,
	counters *metrics.ServiceCounters,
	model ModelState,
	sampler metrics.Sampler,
	docs Docs,
	serviceName string,
) *Handler {
	return &Handler{
		log:         log.Component("health"),
		counters:    counters,
		model:       model,
		sampler:     sampler,
		deps:        make(map[string]Pinger),
		docs:        docs,
		serviceName: serviceName,
		now:         time.Now,
	}
}

// AddDependency registers a dependency for the readiness probe
func (h *Handler) AddDependency(name string, p Pinger) {
	h.deps[name] = p
}

// HealthStatus is the body of GET /
type HealthStatus struct {
	Status      string `json:"status"`
	Message     string `json:"message"`
	ModelLoaded bool   `json:"model_loaded"`
	Timestamp   string `json:"timestamp"`
}

// MetricsReport is the body of GET /metrics
type MetricsReport struct {
	UptimeSeconds int64                `json:"uptime_seconds"`
	StartedAt     string               `json:"started_at"`
	TotalRequests uint64               `json:"total_requests"`
	ErrorCount    uint64               `json:"error_count"`
	SuccessRate   float64              `json:"success_rate"`
	System        *metrics.SystemUsage `json:"system,omitempty"`
	ModelLoaded   bool                 `json:"model_loaded"`
	Timestamp     string               `json:"timestamp"`
}

// ComponentHealth represents health of a single component
type ComponentHealth struct {
	Status       string `json:"status"`
	ResponseTime string `json:"response_time,omitempty"`
	Error        string `json:"error,omitempty"`
}

// ReadinessStatus is the body of GET /ready
type ReadinessStatus struct {
	Status    string                     `json:"status"`
	Timestamp string                     `json:"timestamp"`
	Checks    map[string]ComponentHealth `json:"checks"`
}

// HandleHealth reports liveness and model state. Counts as a request.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.counters.IncRequests()
	h.log.Debug("Health check requested")

	respond.JSON(w, http.StatusOK, HealthStatus{
		Status:      "healthy",
		Message:     fmt.Sprintf("%s API is running", h.serviceName),
		ModelLoaded: h.modelLoaded(),
		Timestamp:   h.timestamp(),
	})
}

// HandleMetrics reports uptime, counters and host resource usage.
// A failed host sample is logged and the system section omitted.
func (h *Handler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	snap := h.counters.Snapshot()

	report := MetricsReport{
		UptimeSeconds: int64(snap.Uptime / time.Second),
		StartedAt:     formatTime(snap.StartedAt),
		TotalRequests: snap.Requests,
		ErrorCount:    snap.Errors,
		SuccessRate:   snap.SuccessRate,
		ModelLoaded:   h.modelLoaded(),
	}

	if h.sampler != nil {
		usage, err := h.sampler.Sample(r.Context())
		if err != nil {
			h.log.Warnw("Failed to sample system usage", "error", err)
		} else {
			report.System = usage
		}
	}

	report.Timestamp = h.timestamp()
	respond.JSON(w, http.StatusOK, report)
}

// HandleDocs returns the static API description
func (h *Handler) HandleDocs(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, h.docs)
}

// HandleReadiness checks the model and every registered dependency.
// Used by orchestrator readiness probes.
func (h *Handler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]ComponentHealth, len(h.deps)+1)
	allHealthy := true

	if h.modelLoaded() {
		checks["model"] = ComponentHealth{Status: "healthy"}
	} else {
		checks["model"] = ComponentHealth{Status: "unhealthy", Error: "model is not loaded"}
		allHealthy = false
	}

	for name, dep := range h.deps {
		c := h.check(ctx, name, dep)
		checks[name] = c
		if c.Status != "healthy" {
			allHealthy = false
		}
	}

	status := ReadinessStatus{
		Status:    "healthy",
		Timestamp: h.timestamp(),
		Checks:    checks,
	}

	statusCode := http.StatusOK
	if !allHealthy {
		status.Status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
		h.log.Warnw("Readiness check failed", "checks", checks)
	}

	respond.JSON(w, statusCode, status)
}

// check verifies connectivity of one dependency
func (h *Handler) check(ctx context.Context, name string, dep Pinger) ComponentHealth {
	start := time.Now()
	err := dep.Health(ctx)
	elapsed := time.Since(start)

	if err != nil {
		h.log.Warnw("Dependency health check failed", "dependency", name, "error", err, "elapsed", elapsed)
		return ComponentHealth{
			Status:       "unhealthy",
			ResponseTime: elapsed.String(),
			Error:        err.Error(),
		}
	}

	return ComponentHealth{
		Status:       "healthy",
		ResponseTime: elapsed.String(),
	}
}

func (h *Handler) modelLoaded() bool {
	return h.model != nil && h.model.Loaded()
}

func (h *Handler) timestamp() string {
	return formatTime(h.now())
}

// formatTime renders t in UTC so every timestamp ends in Z
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
