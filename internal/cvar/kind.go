package cvar

import (
	"fmt"
	"strings"
)

// Kind is the value type of a Cvar. It never changes after creation.
type Kind uint8

const (
	// Integer holds a signed 64-bit integer.
	Integer Kind = iota
	// Float holds a 64-bit floating-point number.
	Float
	// String holds arbitrary text, stored verbatim.
	String
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Integer:
		return "integer"
	case Float:
		return "float"
	case String:
		return "string"
	default:
		return "unknown"
	}
}

// Valid reports whether k is one of the defined kinds.
func (k Kind) Valid() bool {
	return k <= String
}

// ParseKind parses a kind name as used in manifests.
// Matching is case-insensitive and accepts a few common aliases.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "integer", "int":
		return Integer, nil
	case "float", "number", "double":
		return Float, nil
	case "string", "str", "text":
		return String, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}
