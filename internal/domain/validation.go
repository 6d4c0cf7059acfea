package domain

import (
	"errors"
	"strings"
)

// ErrValidation matches any *ValidationError via errors.Is.
var ErrValidation = errors.New("validation failed")

// ValidationError carries the user-facing messages of every failed input rule.
type ValidationError struct {
	Messages []string
}

// NewValidationError builds a ValidationError from one or more messages.
func NewValidationError(messages ...string) *ValidationError {
	return &ValidationError{Messages: messages}
}

func (e *ValidationError) Error() string {
	return ErrValidation.Error() + ": " + strings.Join(e.Messages, "; ")
}

// Is makes errors.Is(err, ErrValidation) hold for every ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
