package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Input validation errors
	ErrInvalidInput = errors.New("invalid input")
	ErrEmptySample  = fmt.Errorf("%w: empty sample", ErrInvalidInput)
	ErrNonFinite    = fmt.Errorf("%w: non-finite value", ErrInvalidInput)
	ErrNegativeTime = fmt.Errorf("%w: negative event time", ErrInvalidInput)

	// Policy errors
	ErrInsufficientData = errors.New("insufficient data for analysis")

	// Group errors
	ErrEmptyGroup   = fmt.Errorf("%w: group has no subjects", ErrInvalidInput)
	ErrUnknownGroup = errors.New("group not found")
)

// Error constructors with context
func NewInvalidInputError(field string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidInput, field, reason)
}

func NewInsufficientDataError(test string, have, want int) error {
	return fmt.Errorf("%w: %s requires n >= %d per group, got %d", ErrInsufficientData, test, want, have)
}

func NewNonFiniteError(field string, index int) error {
	return fmt.Errorf("%w in %s at index %d", ErrNonFinite, field, index)
}

// Error checking helpers
func IsInvalidInputError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

func IsInsufficientDataError(err error) bool {
	return errors.Is(err, ErrInsufficientData)
}
