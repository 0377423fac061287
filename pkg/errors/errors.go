package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Domain error types for business logic

var (
	// ErrInvalidInput indicates invalid input parameters
	ErrInvalidInput = errors.New("invalid input")

	// ErrInternal indicates an internal server error
	ErrInternal = errors.New("internal error")

	// ErrRateLimitExceeded indicates a client exceeded its request quota
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
)

// Model errors

var (
	// ErrModelUnavailable indicates the classifier artifact failed to load
	ErrModelUnavailable = errors.New("model is not loaded properly")

	// ErrModelCapability indicates the loaded artifact lacks label or probability outputs
	ErrModelCapability = errors.New("loaded model does not support required methods")
)

// Kind classifies an error for the HTTP boundary
type Kind string

const (
	KindValidation       Kind = "validation"
	KindModelUnavailable Kind = "model_unavailable"
	KindProcessing       Kind = "processing"
	KindRateLimit        Kind = "rate_limit"
)

// String returns string representation
func (k Kind) String() string {
	return string(k)
}

// Error carries a kind and a human-readable detail.
// The detail is what clients see; Err keeps the cause for logs and tracking.
type Error struct {
	Kind   Kind
	Detail string
	Err    error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil && e.Detail == "" {
		return e.Err.Error()
	}
	return e.Detail
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// NewKind creates a new kinded error
func NewKind(kind Kind, detail string, err error) *Error {
	return &Error{
		Kind:   kind,
		Detail: detail,
		Err:    err,
	}
}

// KindOf returns the kind of the first *Error in err's chain, or KindProcessing
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	var v *ValidationErrors
	if errors.As(err, &v) {
		return KindValidation
	}
	return KindProcessing
}

// ValidationError represents a validation error with field-specific details
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// ValidationErrors is an ordered list of every violation found in a payload
type ValidationErrors struct {
	Errors []*ValidationError
}

// Add appends a violation for field
func (v *ValidationErrors) Add(field, message string) {
	v.Errors = append(v.Errors, NewValidationError(field, message))
}

// Addf appends a formatted violation for field
func (v *ValidationErrors) Addf(field, format string, args ...interface{}) {
	v.Add(field, fmt.Sprintf(format, args...))
}

// HasErrors returns true if there are any violations
func (v *ValidationErrors) HasErrors() bool {
	return v != nil && len(v.Errors) > 0
}

// Messages returns the violation messages in the order they were found
func (v *ValidationErrors) Messages() []string {
	if v == nil {
		return nil
	}
	out := make([]string, len(v.Errors))
	for i, e := range v.Errors {
		out[i] = e.Message
	}
	return out
}

// Error joins all messages the way clients receive them
func (v *ValidationErrors) Error() string {
	return strings.Join(v.Messages(), "; ")
}

// ToError returns the list as an error, or nil if no violations
func (v *ValidationErrors) ToError() error {
	if !v.HasErrors() {
		return nil
	}
	return v
}

// Helper functions

// Is checks if err is or wraps target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target type
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap wraps an error with context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

func New(message string) error {
	return errors.New(message)
}

func Newf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}
