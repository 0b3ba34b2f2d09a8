package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidParameter matches every *InvalidParameterError via errors.Is.
var ErrInvalidParameter = errors.New("invalid parameter")

// InvalidParameterError identifies an input field that failed validation.
// Callers must correct the input; retrying is pointless.
type InvalidParameterError struct {
	Field  string
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s: %s", e.Field, e.Reason)
}

func (e *InvalidParameterError) Is(target error) bool {
	return target == ErrInvalidParameter
}

// MissingParameter reports a required field that was absent from the input.
func MissingParameter(field string) *InvalidParameterError {
	return &InvalidParameterError{Field: field, Reason: "is required"}
}
