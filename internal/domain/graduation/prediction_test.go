package graduation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLabelFor(t *testing.T) {
	assert.Equal(t, "graduated on time", LabelFor(0))
	assert.Equal(t, "graduated late", LabelFor(1))
	assert.Equal(t, "unknown", LabelFor(2))
	assert.Equal(t, "unknown", LabelFor(-1))
}

func TestFeatureVector_Conversions(t *testing.T) {
	v := FeatureVector{3.8, 3.9, 3.7, 3.8, 0, 1, 2, 0, 144, 0}

	f32 := v.Float32()
	assert.Len(t, f32, NumFeatures)
	assert.InDelta(t, 3.9, f32[1], 1e-6)
	assert.Equal(t, float32(144), f32[8])

	m := v.Map()
	assert.Len(t, m, NumFeatures)
	assert.Equal(t, 144.0, m[FieldCreditsAttempted])
	assert.Equal(t, 2.0, m[FieldCuti3])
}
