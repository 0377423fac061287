package prediction

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"gradpredict/internal/domain/graduation"
	"gradpredict/pkg/errors"
)

// Validate checks a payload and returns every violation found, in a fixed order.
// Returns nil if the payload is valid, *errors.ValidationErrors otherwise.
func Validate(p graduation.Payload) error {
	v := &errors.ValidationErrors{}

	// 1. Presence. Missing fields stop validation
	for _, field := range graduation.RequiredFields {
		if _, ok := p[field]; !ok {
			v.Addf(field, "Missing field: %s", field)
		}
	}
	if v.HasErrors() {
		return v.ToError()
	}

	// 2. Semester scores
	for _, field := range graduation.ScoreFields {
		score, ok := toFloat(p[field])
		if !ok {
			v.Addf(field, "%s must be a valid number", field)
			continue
		}
		if score < graduation.MinScore || score > graduation.MaxScore {
			v.Addf(field, "%s must be between 0.0 and 4.0", field)
		}
	}

	// 3. Enrollment statuses
	for _, field := range graduation.StatusFields {
		if _, ok := toStatus(p[field]); !ok {
			v.Addf(field, "%s must be one of: %s", field, graduation.EnrollmentStatusList())
		}
	}

	// 4. Credits attempted
	field := graduation.FieldCreditsAttempted
	if credits, ok := toFloat(p[field]); !ok {
		v.Addf(field, "%s must be a valid number", field)
	} else if credits <= 0 {
		v.Addf(field, "%s must be greater than 0", field)
	}

	// 5. Credits failed
	field = graduation.FieldCreditsFailed
	if credits, ok := toFloat(p[field]); !ok {
		v.Addf(field, "%s must be a valid number", field)
	} else if credits < 0 {
		v.Addf(field, "%s must be greater than or equal to 0", field)
	}

	return v.ToError()
}

// toFloat coerces a decoded JSON value to a finite float64.
// Numbers and numeric strings are accepted; booleans, null and containers are not.
func toFloat(value interface{}) (float64, bool) {
	var f float64

	switch n := value.(type) {
	case json.Number:
		parsed, err := strconv.ParseFloat(n.String(), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// toStatus matches a decoded JSON value against the enrollment statuses.
// Only strings can match.
func toStatus(value interface{}) (graduation.EnrollmentStatus, bool) {
	s, ok := value.(string)
	if !ok {
		return "", false
	}
	return graduation.ParseEnrollmentStatus(s)
}
