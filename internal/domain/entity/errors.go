package entity

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means no entry exists under the requested language and slug.
	ErrNotFound = errors.New("entry not found")

	// ErrValidationFailed matches every *ValidationError via errors.Is.
	ErrValidationFailed = errors.New("validation failed")

	// ErrUnknownLanguage is a language code missing from the configured set.
	// It is rejected before any pipeline work starts.
	ErrUnknownLanguage = errors.New("invalid language: not configured")
)

// ValidationError rejects one field of a submission, query or feed setting.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}
