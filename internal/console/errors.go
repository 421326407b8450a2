package console

import (
	"errors"
	"strconv"
)

// Errors returned by console operations.
var (
	// ErrNotFound indicates a cvar, command or object does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidName indicates an empty or whitespace-containing name.
	ErrInvalidName = errors.New("invalid name")

	// ErrInvalidObject indicates a constructor returned an unusable object.
	ErrInvalidObject = errors.New("invalid console object")
)

// NotFoundError names the missing entity.
type NotFoundError struct {
	// What is the entity kind: "cvar", "command" or "object".
	What string
	// Name is the requested name or id.
	Name string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return e.What + " " + e.Name + ": not found"
}

// Is allows errors.Is to match NotFoundError with ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NameError reports a name that cannot be registered.
type NameError struct {
	What string
	Name string
}

// Error implements the error interface.
func (e *NameError) Error() string {
	return e.What + " " + strconv.Quote(e.Name) + ": invalid name"
}

// Is allows errors.Is to match NameError with ErrInvalidName.
func (e *NameError) Is(target error) bool {
	return target == ErrInvalidName
}
