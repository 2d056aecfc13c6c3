package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation signals a missing or empty required input field.
	ErrValidation = errors.New("validation failed")
	// ErrUnknownModel signals a model id that has no configured encoder.
	ErrUnknownModel = errors.New("unknown model")
	// ErrUnknownDomain signals a catalogue domain that is not served.
	ErrUnknownDomain = errors.New("unknown domain")
	// ErrDimensionMismatch signals a stored embedding width that disagrees with the model.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	// ErrStoreUnavailable signals a missing, empty or unreadable embedding file.
	ErrStoreUnavailable = errors.New("embedding store unavailable")
	// ErrCatalogueUnavailable signals a missing or malformed catalogue table.
	ErrCatalogueUnavailable = errors.New("catalogue unavailable")
	// ErrRateLimited signals a rate limit hit.
	ErrRateLimited = errors.New("rate limited")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
)

// DimensionMismatchError wraps ErrDimensionMismatch with the offending column.
type DimensionMismatchError struct {
	Column string
	Want   int
	Got    int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("%s in %s: expected %d, got %d",
		ErrDimensionMismatch.Error(), e.Column, e.Want, e.Got)
}

func (e *DimensionMismatchError) Unwrap() error { return ErrDimensionMismatch }

// NewDimensionMismatch creates a dimension mismatch error for a column.
func NewDimensionMismatch(column string, want, got int) error {
	return &DimensionMismatchError{Column: column, Want: want, Got: got}
}

// ValidationError carries a client-facing message and unwraps to ErrValidation.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a validation error with a client-facing message.
func NewValidationError(msg string) error {
	return &ValidationError{Message: msg}
}
