package prediction

import (
	"time"

	"github.com/shopspring/decimal"

	"gradpredict/internal/domain/graduation"
	"gradpredict/pkg/errors"
)

const resultPrecision = 3

// BuildPrediction packages a classification into the client-facing result.
// Confidence is the highest class probability; confidence and elapsed seconds
// are rounded half away from zero to 3 decimals.
func BuildPrediction(class int, probs []float64, elapsed time.Duration) (*graduation.Prediction, error) {
	if len(probs) == 0 {
		return nil, errors.NewKind(errors.KindProcessing, "model returned no class probabilities", errors.ErrInternal)
	}

	confidence := probs[0]
	for _, p := range probs[1:] {
		if p > confidence {
			confidence = p
		}
	}

	return &graduation.Prediction{
		Class:        class,
		Label:        graduation.LabelFor(class),
		Confidence:   round(confidence),
		ResponseTime: round(elapsed.Seconds()),
	}, nil
}

func round(x float64) float64 {
	f, _ := decimal.NewFromFloat(x).Round(resultPrecision).Float64()
	return f
}
