package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound           = errors.New("resource not found")
	ErrExperimentNotFound = fmt.Errorf("%w: experiment", ErrNotFound)
	ErrVariantNotFound    = fmt.Errorf("%w: variant", ErrNotFound)
	ErrResultNotFound     = fmt.Errorf("%w: variant result", ErrNotFound)

	// Validation errors
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrNoControl        = errors.New("experiment must have exactly one control variant")
	ErrTrafficSplit     = errors.New("variant traffic percentages must sum to 100")
	ErrInsufficientData = errors.New("insufficient data for analysis")

	// Lifecycle errors
	ErrInvalidTransition = errors.New("invalid lifecycle transition")
)

// Error constructors with context
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

func NewValidationError(field string, reason string) error {
	return fmt.Errorf("%w: validation failed for %s: %s", ErrInvalidArgument, field, reason)
}

func NewInvalidArgumentError(arg string, value interface{}, reason string) error {
	return fmt.Errorf("%w: %s=%v: %s", ErrInvalidArgument, arg, value, reason)
}

func NewTransitionError(from, to string) error {
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidArgument) ||
		errors.Is(err, ErrNoControl) ||
		errors.Is(err, ErrTrafficSplit)
}

func IsTransitionError(err error) bool {
	return errors.Is(err, ErrInvalidTransition)
}
