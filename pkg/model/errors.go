package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a requested id is absent in the store.
	ErrNotFound = errors.New("not found")
	// ErrValidation is the class matched by every ValidationError.
	ErrValidation = errors.New("validation failed")
	// ErrStoreUnavailable is returned when the authoritative store itself
	// fails. Accelerant (cache, search index) failures never surface as
	// errors; they are absorbed inside their own components.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// ValidationError reports a rejected input field. It matches ErrValidation
// under errors.Is.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Invalid builds a ValidationError for a single field.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
