package event

import "errors"

// Sentinel errors for the dispatcher.
var (
	// ErrOverflow is returned when no callback key or owner can be allocated.
	ErrOverflow = errors.New("id space exhausted")

	// ErrCreation is returned when a callback could not be stored.
	// It indicates a broken key allocator and should be treated as fatal.
	ErrCreation = errors.New("callback insertion failed")

	// ErrNilCallback is returned when a nil callback is registered.
	ErrNilCallback = errors.New("callback cannot be nil")
)

// CreationError describes a failed callback insertion.
type CreationError struct {
	// Key is the key that collided with an existing entry.
	Key Key

	// Type is the event type the callback was registered for.
	Type string
}

// Error implements the error interface.
func (e *CreationError) Error() string {
	return "callback insertion failed for " + e.Type + ": key already in use"
}

// Is allows errors.Is to match CreationError with ErrCreation.
func (e *CreationError) Is(target error) bool {
	return target == ErrCreation
}
