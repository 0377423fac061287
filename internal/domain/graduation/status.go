package graduation

import "strings"

// EnrollmentStatus is a student's standing in a given semester
type EnrollmentStatus string

const (
	StatusActive   EnrollmentStatus = "active"
	StatusInactive EnrollmentStatus = "inactive"
	StatusOnLeave  EnrollmentStatus = "on-leave"
)

// statusOrder fixes both the integer codes and the order used in messages
var statusOrder = []EnrollmentStatus{StatusActive, StatusInactive, StatusOnLeave}

// ParseEnrollmentStatus matches s case-insensitively against the known statuses
func ParseEnrollmentStatus(s string) (EnrollmentStatus, bool) {
	status := EnrollmentStatus(strings.ToLower(s))
	return status, status.Valid()
}

// Valid checks if status is one of the known statuses
func (s EnrollmentStatus) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusOnLeave:
		return true
	}
	return false
}

// Code returns the integer code the model was trained on, or -1 for unknown statuses
func (s EnrollmentStatus) Code() int {
	for i, known := range statusOrder {
		if s == known {
			return i
		}
	}
	return -1
}

// String returns string representation
func (s EnrollmentStatus) String() string {
	return string(s)
}

// EnrollmentStatusList renders the known statuses for error messages and docs
func EnrollmentStatusList() string {
	names := make([]string, len(statusOrder))
	for i, s := range statusOrder {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}
