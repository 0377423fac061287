package graduation

import "time"

// Class labels
const (
	LabelOnTime  = "graduated on time"
	LabelLate    = "graduated late"
	LabelUnknown = "unknown"
)

// Classes known to the service
const (
	ClassOnTime = 0
	ClassLate   = 1
)

// LabelFor maps a class index to its label; indices outside the mapping are "unknown"
func LabelFor(class int) string {
	switch class {
	case ClassOnTime:
		return LabelOnTime
	case ClassLate:
		return LabelLate
	}
	return LabelUnknown
}

// Prediction is the outcome returned to clients
type Prediction struct {
	Class        int     `json:"prediction"`
	Label        string  `json:"label"`
	Confidence   float64 `json:"confidence_score"`
	ResponseTime float64 `json:"response_time"`
}

// PredictionRecord is what the optional prediction log sinks receive
type PredictionRecord struct {
	ID           string             `json:"id" db:"id"`
	RequestID    string             `json:"request_id" db:"request_id"`
	Timestamp    time.Time          `json:"timestamp" db:"created_at"`
	Features     map[string]float64 `json:"features" db:"-"`
	Class        int                `json:"prediction" db:"prediction"`
	Label        string             `json:"label" db:"label"`
	Confidence   float64            `json:"confidence_score" db:"confidence"`
	ResponseTime float64            `json:"response_time" db:"response_time"`
}
