package services

import (
	"errors"
	"fmt"
)

// ErrLinkNotFound covers every magic-link miss: unknown token, expired token,
// or one that was already consumed. Callers must not distinguish the cases in
// anything shown to the requester.
var ErrLinkNotFound = errors.New("invalid or expired login link")

// ValidationError carries field-level messages for re-rendering a form.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %d field(s)", len(e.Fields))
}

func newValidationError() *ValidationError {
	return &ValidationError{Fields: map[string]string{}}
}
