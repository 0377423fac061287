package health

import (
	"fmt"

	"gradpredict/internal/domain/graduation"
)

// Docs is the static API description served by GET /docs
type Docs struct {
	APIName     string                 `json:"api_name"`
	Version     string                 `json:"version"`
	Description string                 `json:"description"`
	Endpoints   map[string]EndpointDoc `json:"endpoints"`
	RateLimits  map[string]string      `json:"rate_limits"`
	ModelInfo   ModelDoc               `json:"model_info"`
}

// EndpointDoc describes one route
type EndpointDoc struct {
	Description string            `json:"description"`
	RequestBody map[string]string `json:"request_body,omitempty"`
	Response    map[string]string `json:"response"`
}

// ModelDoc describes the classifier
type ModelDoc struct {
	Algorithm string            `json:"algorithm"`
	Target    string            `json:"target"`
	Labels    map[string]string `json:"labels"`
}

// RouteQuotas are requests per minute per client for each rate-limited route
type RouteQuotas struct {
	Health  int
	Docs    int
	Metrics int
	Predict int
}

// NewDocs builds the API description for the given service and quotas
func NewDocs(serviceName, version string, quotas RouteQuotas) Docs {
	score := fmt.Sprintf("float (%.1f-%.1f)", graduation.MinScore, graduation.MaxScore)
	status := fmt.Sprintf("string (%s, case-insensitive)", graduation.EnrollmentStatusList())

	request := map[string]string{
		graduation.FieldCreditsAttempted: "float (>0)",
		graduation.FieldCreditsFailed:    "float (>=0)",
	}
	for _, f := range graduation.ScoreFields {
		request[f] = score
	}
	for _, f := range graduation.StatusFields {
		request[f] = status
	}

	return Docs{
		APIName:     serviceName,
		Version:     version,
		Description: "Predicts whether a student graduates on time from four semesters of academic records",
		Endpoints: map[string]EndpointDoc{
			"GET /": {
				Description: "Health check endpoint",
				Response: map[string]string{
					"status":       "healthy",
					"message":      "string",
					"model_loaded": "boolean",
					"timestamp":    "string",
				},
			},
			"GET /docs": {
				Description: "This API description",
				Response:    map[string]string{"api_name": "string", "endpoints": "object"},
			},
			"GET /metrics": {
				Description: "Service counters and host resource usage",
				Response: map[string]string{
					"uptime_seconds": "integer",
					"total_requests": "integer",
					"error_count":    "integer",
					"success_rate":   "float",
					"system":         "object",
					"model_loaded":   "boolean",
					"timestamp":      "string",
				},
			},
			"POST /predict": {
				Description: "Predict graduation timeliness",
				RequestBody: request,
				Response: map[string]string{
					"prediction":       "integer (0/1)",
					"label":            "string",
					"confidence_score": "float (0.0-1.0)",
					"response_time":    "float",
				},
			},
		},
		RateLimits: map[string]string{
			"health_check": perMinute(quotas.Health),
			"docs":         perMinute(quotas.Docs),
			"metrics":      perMinute(quotas.Metrics),
			"predict":      perMinute(quotas.Predict),
		},
		ModelInfo: ModelDoc{
			Algorithm: "Random Forest Classifier",
			Target:    "Graduation timeliness",
			Labels: map[string]string{
				"0": graduation.LabelOnTime,
				"1": graduation.LabelLate,
			},
		},
	}
}

func perMinute(n int) string {
	return fmt.Sprintf("%d per minute", n)
}
