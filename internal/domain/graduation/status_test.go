package graduation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseEnrollmentStatus(t *testing.T) {
	tests := []struct {
		in     string
		want   EnrollmentStatus
		code   int
		wantOK bool
	}{
		{in: "active", want: StatusActive, code: 0, wantOK: true},
		{in: "ACTIVE", want: StatusActive, code: 0, wantOK: true},
		{in: "Inactive", want: StatusInactive, code: 1, wantOK: true},
		{in: "On-Leave", want: StatusOnLeave, code: 2, wantOK: true},
		{in: "on leave", code: -1, wantOK: false},
		{in: " active", code: -1, wantOK: false},
		{in: "", code: -1, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseEnrollmentStatus(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
			assert.Equal(t, tt.code, got.Code())
		})
	}
}

func TestEnrollmentStatusList(t *testing.T) {
	assert.Equal(t, "active, inactive, on-leave", EnrollmentStatusList())
	for i, s := range []EnrollmentStatus{StatusActive, StatusInactive, StatusOnLeave} {
		assert.Equal(t, i, s.Code())
	}
}
