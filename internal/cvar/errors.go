package cvar

import (
	"errors"
	"fmt"
)

// Errors returned by Cvar operations.
var (
	// ErrConversion indicates a value is not representable in the Cvar's kind.
	ErrConversion = errors.New("value not convertible")

	// ErrUnknownKind indicates an unrecognized kind name.
	ErrUnknownKind = errors.New("unknown cvar kind")
)

// ConversionError describes a rejected value.
type ConversionError struct {
	// Name is the Cvar name, empty for anonymous conversions.
	Name string
	// Kind is the target kind.
	Kind Kind
	// Value is the rejected input.
	Value any
	// Err is the underlying parse error, if any.
	Err error
}

// Error implements the error interface.
func (e *ConversionError) Error() string {
	msg := fmt.Sprintf("cannot convert %T(%v) to %s", e.Value, e.Value, e.Kind)
	if e.Name != "" {
		msg = "cvar " + e.Name + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *ConversionError) Unwrap() error {
	return e.Err
}

// Is allows errors.Is to match ConversionError with ErrConversion.
func (e *ConversionError) Is(target error) bool {
	return target == ErrConversion
}
