package config

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig indicates a setting with an unusable value.
var ErrInvalidConfig = errors.New("invalid configuration")

// ValidationError describes an invalid setting.
type ValidationError struct {
	// Setting is the environment variable name without prefix.
	Setting string
	// Value is the rejected value.
	Value string
	// Message describes the problem.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s=%q: %s", e.Setting, e.Value, e.Message)
}

// Is allows errors.Is to match ValidationError with ErrInvalidConfig.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidConfig
}
