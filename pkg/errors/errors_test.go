package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationErrors_JoinsInOrder(t *testing.T) {
	var v ValidationErrors
	assert.False(t, v.HasErrors())
	assert.NoError(t, v.ToError())

	v.Add("ips_1", "ips_1 must be between 0.0 and 4.0")
	v.Addf("cuti_2", "%s must be one of: %s", "cuti_2", "active, inactive, on-leave")

	require.True(t, v.HasErrors())
	assert.Equal(t, []string{
		"ips_1 must be between 0.0 and 4.0",
		"cuti_2 must be one of: active, inactive, on-leave",
	}, v.Messages())
	assert.Equal(t, "ips_1 must be between 0.0 and 4.0; cuti_2 must be one of: active, inactive, on-leave", v.Error())
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{
			name: "kinded error",
			err:  NewKind(KindModelUnavailable, "model is not loaded properly", ErrModelUnavailable),
			want: KindModelUnavailable,
		},
		{
			name: "wrapped kinded error",
			err:  Wrap(NewKind(KindRateLimit, "slow down", nil), "predict"),
			want: KindRateLimit,
		},
		{
			name: "validation list",
			err:  (&ValidationErrors{Errors: []*ValidationError{NewValidationError("ips_1", "bad")}}).ToError(),
			want: KindValidation,
		},
		{
			name: "plain error defaults to processing",
			err:  fmt.Errorf("boom"),
			want: KindProcessing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestError_DetailAndUnwrap(t *testing.T) {
	err := NewKind(KindModelUnavailable, "", ErrModelUnavailable)
	assert.Equal(t, ErrModelUnavailable.Error(), err.Error())
	assert.True(t, Is(err, ErrModelUnavailable))

	err = NewKind(KindProcessing, "inference failed", ErrInternal)
	assert.Equal(t, "inference failed", err.Error())
	assert.True(t, Is(err, ErrInternal))
}
