package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ServiceCollector exposes the service counters and model state to Prometheus
type ServiceCollector struct {
	counters    *ServiceCounters
	modelLoaded func() bool

	requests    *prometheus.Desc
	errors      *prometheus.Desc
	successRate *prometheus.Desc
	uptime      *prometheus.Desc
	loaded      *prometheus.Desc
}

// NewServiceCollector creates a collector reading from counters on every scrape
func NewServiceCollector(counters *ServiceCounters, modelLoaded func() bool) *ServiceCollector {
	return &ServiceCollector{
		counters:    counters,
		modelLoaded: modelLoaded,

		requests: prometheus.NewDesc(
			"gradpredict_service_requests_total",
			"Requests counted by the service since start",
			nil, nil,
		),
		errors: prometheus.NewDesc(
			"gradpredict_service_errors_total",
			"Requests that ended in an error response since start",
			nil, nil,
		),
		successRate: prometheus.NewDesc(
			"gradpredict_service_success_rate_percent",
			"Share of requests without an error response",
			nil, nil,
		),
		uptime: prometheus.NewDesc(
			"gradpredict_service_uptime_seconds",
			"Seconds since the service started",
			nil, nil,
		),
		loaded: prometheus.NewDesc(
			"gradpredict_model_loaded",
			"1 if the classifier artifact is loaded",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector
func (c *ServiceCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.requests
	ch <- c.errors
	ch <- c.successRate
	ch <- c.uptime
	ch <- c.loaded
}

// Collect implements prometheus.Collector
func (c *ServiceCollector) Collect(ch chan<- prometheus.Metric) {
	snap := c.counters.Snapshot()

	ch <- prometheus.MustNewConstMetric(c.requests, prometheus.CounterValue, float64(snap.Requests))
	ch <- prometheus.MustNewConstMetric(c.errors, prometheus.CounterValue, float64(snap.Errors))
	ch <- prometheus.MustNewConstMetric(c.successRate, prometheus.GaugeValue, snap.SuccessRate)
	ch <- prometheus.MustNewConstMetric(c.uptime, prometheus.GaugeValue, snap.Uptime.Seconds())

	loaded := 0.0
	if c.modelLoaded != nil && c.modelLoaded() {
		loaded = 1
	}
	ch <- prometheus.MustNewConstMetric(c.loaded, prometheus.GaugeValue, loaded)
}
