package prediction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gradpredict/internal/domain/graduation"
	"gradpredict/pkg/errors"
)

func TestAssemble_FieldOrderAndCodes(t *testing.T) {
	p := validPayload()
	p["cuti_1"] = "ACTIVE"
	p["total_sks_tidak_lulus"] = "6"

	vec, err := Assemble(p)
	require.NoError(t, err)

	assert.Equal(t, graduation.FeatureVector{3.5, 3.2, 3.8, 3.6, 0, 0, 1, 2, 144, 6}, vec)
}

func TestAssemble_InvalidPayloadIsProcessingError(t *testing.T) {
	p := validPayload()
	p["cuti_2"] = "graduated"

	_, err := Assemble(p)
	require.Error(t, err)
	assert.Equal(t, errors.KindProcessing, errors.KindOf(err))
	assert.Contains(t, err.Error(), "cuti_2")

	delete(p, "ips_4")
	_, err = Assemble(p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ips_4")
}
