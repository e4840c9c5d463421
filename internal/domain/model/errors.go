package model

import (
	"errors"
	"fmt"
)

// Validation sentinels. A *ValidationError wraps exactly one of them.
var (
	ErrMissingField    = errors.New("missing field")
	ErrInvalidType     = errors.New("invalid type")
	ErrOutOfRange      = errors.New("out of range")
	ErrUnexpectedField = errors.New("unexpected field")
)

// ValidationError describes why a raw record was rejected.
type ValidationError struct {
	Field  string
	Reason string
	kind   error
}

func newValidationError(kind error, field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason, kind: kind}
}

func (e *ValidationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s: %s", e.kind, e.Field)
	}
	return fmt.Sprintf("%s: %s: %s", e.kind, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.kind
}

// AsValidationError extracts a *ValidationError from err's chain.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
