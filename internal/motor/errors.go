package motor

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidParameter is wrapped by every input validation failure.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrSingularSample is returned when a sample still evaluates to a
	// non-finite value after the endpoint clamping has been applied.
	ErrSingularSample = errors.New("singular sample")
)

// ParameterError names the offending input field.
type ParameterError struct {
	Field  string
	Reason string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrInvalidParameter, e.Field, e.Reason)
}

func (e *ParameterError) Unwrap() error {
	return ErrInvalidParameter
}

func invalid(field, format string, args ...any) error {
	return &ParameterError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
