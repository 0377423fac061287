package prediction

import (
	"fmt"

	"gradpredict/internal/domain/graduation"
	"gradpredict/pkg/errors"
)

// Assemble converts a validated payload into the model's feature vector.
// A payload that slipped past validation yields a processing error.
func Assemble(p graduation.Payload) (graduation.FeatureVector, error) {
	var vec graduation.FeatureVector

	for i, field := range graduation.RequiredFields {
		raw, ok := p[field]
		if !ok {
			return vec, assemblyError(field, "is missing")
		}

		if isStatusField(field) {
			status, ok := toStatus(raw)
			if !ok {
				return vec, assemblyError(field, "is not a known enrollment status")
			}
			vec[i] = float64(status.Code())
			continue
		}

		f, ok := toFloat(raw)
		if !ok {
			return vec, assemblyError(field, "is not numeric")
		}
		vec[i] = f
	}

	return vec, nil
}

func isStatusField(field string) bool {
	for _, f := range graduation.StatusFields {
		if f == field {
			return true
		}
	}
	return false
}

func assemblyError(field, problem string) error {
	return errors.NewKind(
		errors.KindProcessing,
		fmt.Sprintf("cannot assemble features: %s %s", field, problem),
		errors.ErrInvalidInput,
	)
}
