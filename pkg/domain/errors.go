package domain

import (
	"errors"
	"fmt"
)

// ErrDefinitionNotFound is returned when a definition ID cannot be found.
var ErrDefinitionNotFound = errors.New("definition not found")

// ErrDefinitionExists is returned when registering a definition under a taken ID.
var ErrDefinitionExists = errors.New("definition already exists")

// ErrInstanceNotFound is returned when an instance ID cannot be found in the store.
var ErrInstanceNotFound = errors.New("instance not found")

// ErrInvalidInput is returned for caller input the definition cannot accept.
var ErrInvalidInput = errors.New("invalid input")

// InputError reports a tape symbol outside the tape alphabet.
type InputError struct {
	Position int
	Symbol   string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid input: symbol %q at position %d is not in the tape alphabet", e.Symbol, e.Position)
}

func (e *InputError) Unwrap() error {
	return ErrInvalidInput
}

// InvalidInputf formats an error wrapping ErrInvalidInput.
func InvalidInputf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
