package models

import (
	"errors"
	"strings"
)

var ErrFieldNotFound = errors.New("field not found")

// ValidationError blocks an operation at its boundary: missing merge values at
// finalize time, duplicate names, or fields without an owning document/page.
type ValidationError struct {
	Reason  string
	Missing []string
}

func (e *ValidationError) Error() string {
	if len(e.Missing) == 0 {
		return "validation failed: " + e.Reason
	}
	return "validation failed: " + e.Reason + ": " + strings.Join(e.Missing, ", ")
}

func NewValidationError(reason string, missing ...string) *ValidationError {
	return &ValidationError{Reason: reason, Missing: missing}
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
