package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Prediction pipeline metrics
	Predictions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gradpredict_predictions_total",
			Help: "Total number of prediction requests by outcome",
		},
		[]string{"outcome"}, // outcome: success|validation|model_unavailable|processing
	)

	PredictionLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gradpredict_prediction_duration_seconds",
			Help:    "Time from request entry to response construction",
			Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
	)

	PredictionLabels = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gradpredict_prediction_labels_total",
			Help: "Successful predictions by returned label",
		},
		[]string{"label"},
	)

	PredictionConfidence = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gradpredict_prediction_confidence",
			Help:    "Distribution of returned confidence scores",
			Buckets: []float64{0.5, 0.6, 0.7, 0.8, 0.9, 0.95, 0.99, 1},
		},
	)

	// HTTP metrics
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gradpredict_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gradpredict_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	RateLimitRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gradpredict_rate_limit_rejections_total",
			Help: "Requests rejected with 429 by route",
		},
		[]string{"route"},
	)

	// Prediction log metrics
	PredictionLogWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gradpredict_prediction_log_writes_total",
			Help: "Prediction log batches written by sink",
		},
		[]string{"sink", "status"}, // status: success|error
	)

	PredictionLogDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "gradpredict_prediction_log_dropped_total",
			Help: "Prediction records dropped because the queue was full or closed",
		},
	)
)

var registerOnce sync.Once

// Init registers all metrics with Prometheus
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(Predictions)
		prometheus.MustRegister(PredictionLatency)
		prometheus.MustRegister(PredictionLabels)
		prometheus.MustRegister(PredictionConfidence)

		prometheus.MustRegister(HTTPRequests)
		prometheus.MustRegister(HTTPDuration)
		prometheus.MustRegister(RateLimitRejections)

		prometheus.MustRegister(PredictionLogWrites)
		prometheus.MustRegister(PredictionLogDropped)
	})
}

// Handler returns Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordPrediction records the outcome of one prediction request
func RecordPrediction(outcome string, label string, confidence float64, latency time.Duration) {
	Predictions.WithLabelValues(outcome).Inc()
	PredictionLatency.Observe(latency.Seconds())

	if outcome == OutcomeSuccess {
		PredictionLabels.WithLabelValues(label).Inc()
		PredictionConfidence.Observe(confidence)
	}
}

// RecordHTTPRequest records a served HTTP request
func RecordHTTPRequest(route, method string, status int, latency time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPDuration.WithLabelValues(route).Observe(latency.Seconds())
}

// RecordPredictionLogWrite records a sink write attempt
func RecordPredictionLogWrite(sink string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	PredictionLogWrites.WithLabelValues(sink, status).Inc()
}

// Prediction outcomes
const (
	OutcomeSuccess          = "success"
	OutcomeValidation       = "validation"
	OutcomeModelUnavailable = "model_unavailable"
	OutcomeProcessing       = "processing"
)
