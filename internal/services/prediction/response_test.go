package prediction

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gradpredict/pkg/errors"
)

func TestBuildPrediction(t *testing.T) {
	tests := []struct {
		name       string
		class      int
		probs      []float64
		elapsed    time.Duration
		label      string
		confidence float64
		respTime   float64
	}{
		{
			name:       "on time",
			class:      0,
			probs:      []float64{0.8765, 0.1235},
			elapsed:    12345 * time.Microsecond,
			label:      "graduated on time",
			confidence: 0.877,
			respTime:   0.012,
		},
		{
			name:       "late",
			class:      1,
			probs:      []float64{0.25, 0.75},
			elapsed:    1500 * time.Microsecond,
			label:      "graduated late",
			confidence: 0.75,
			respTime:   0.002,
		},
		{
			name:       "unmapped class",
			class:      7,
			probs:      []float64{0.1, 0.2, 0.7},
			elapsed:    0,
			label:      "unknown",
			confidence: 0.7,
			respTime:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pred, err := BuildPrediction(tt.class, tt.probs, tt.elapsed)
			require.NoError(t, err)

			assert.Equal(t, tt.class, pred.Class)
			assert.Equal(t, tt.label, pred.Label)
			assert.Equal(t, tt.confidence, pred.Confidence)
			assert.Equal(t, tt.respTime, pred.ResponseTime)
			assert.GreaterOrEqual(t, pred.Confidence, 0.0)
			assert.LessOrEqual(t, pred.Confidence, 1.0)
		})
	}
}

func TestBuildPrediction_NoProbabilities(t *testing.T) {
	_, err := BuildPrediction(0, nil, time.Millisecond)
	require.Error(t, err)
	assert.Equal(t, errors.KindProcessing, errors.KindOf(err))
}
