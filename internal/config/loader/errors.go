package loader

import (
	"errors"
	"fmt"
)

// Errors returned by manifest loading.
var (
	// ErrFileNotFound indicates the manifest file doesn't exist.
	ErrFileNotFound = errors.New("manifest file not found")

	// ErrUnsupportedFormat indicates an unknown manifest file extension.
	ErrUnsupportedFormat = errors.New("unsupported manifest format")

	// ErrIncludeDepthExceeded indicates too many nested includes.
	ErrIncludeDepthExceeded = errors.New("include depth exceeded")

	// ErrInvalidEntry indicates a manifest entry with an invalid field.
	ErrInvalidEntry = errors.New("invalid manifest entry")
)

// ParseError represents an error while parsing a manifest.
type ParseError struct {
	// Path is the file path that failed to parse.
	Path string
	// Line is the line number where the error occurred (if available).
	Line int
	// Column is the column number where the error occurred (if available).
	Column int
	// Message describes the parse error.
	Message string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Line > 0 && e.Column > 0 {
		return fmt.Sprintf("parse error in %s at line %d, column %d: %s", e.Path, e.Line, e.Column, e.Message)
	}
	if e.Line > 0 {
		return fmt.Sprintf("parse error in %s at line %d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}
