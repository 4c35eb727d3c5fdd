package tanks

import (
	"errors"
	"fmt"
)

// ErrValidation is the sentinel all construction-time validation failures unwrap to.
var ErrValidation = errors.New("validation failed")

// ValidationError reports which field was rejected and why.
type ValidationError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, fmt.Sprint(e.Value), e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalid(field string, value any, reason string) error {
	return &ValidationError{Field: field, Value: value, Reason: reason}
}
