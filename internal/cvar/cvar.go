// Package cvar provides console variables: named values of a fixed kind
// with strict conversion and canonical string formatting.
//
// Every setter is all-or-nothing. A value that cannot be represented in the
// variable's kind is rejected with a ConversionError and the stored value is
// left untouched:
//
//	v := cvar.MustNew("sv_cheats", cvar.Integer, 0)
//	v.Set("1.9")     // stores 1, fractional parts truncate toward zero
//	v.Set("invalid") // returns ErrConversion, still 1
package cvar

import (
	"strconv"
)

// Cvar is a named console variable.
// The name and kind are fixed at creation; only the value changes.
type Cvar struct {
	name string
	kind Kind

	i int64
	f float64
	s string
}

// New creates a Cvar holding initial converted to kind.
// A nil initial value gives the kind's zero value.
func New(name string, kind Kind, initial any) (Cvar, error) {
	if !kind.Valid() {
		return Cvar{}, &ConversionError{Name: name, Kind: kind, Value: initial, Err: ErrUnknownKind}
	}

	c := Cvar{name: name, kind: kind}
	if initial == nil {
		return c, nil
	}
	if err := c.Set(initial); err != nil {
		return Cvar{}, err
	}
	return c, nil
}

// MustNew is like New but panics on error.
// Useful for static variable tables.
func MustNew(name string, kind Kind, initial any) Cvar {
	c, err := New(name, kind, initial)
	if err != nil {
		panic(err)
	}
	return c
}

// Name returns the variable name.
func (c Cvar) Name() string {
	return c.name
}

// Kind returns the variable kind.
func (c Cvar) Kind() Kind {
	return c.kind
}

// Set converts v to the variable's kind and stores it.
// On failure the stored value is unchanged and the error matches ErrConversion.
func (c *Cvar) Set(v any) error {
	switch c.kind {
	case Integer:
		i, err := toInt(v)
		if err != nil {
			return c.conversionError(v, err)
		}
		c.i = i
	case Float:
		f, err := toFloat(v)
		if err != nil {
			return c.conversionError(v, err)
		}
		c.f = f
	case String:
		s, err := toText(v)
		if err != nil {
			return c.conversionError(v, err)
		}
		c.s = s
	default:
		return c.conversionError(v, ErrUnknownKind)
	}
	return nil
}

func (c *Cvar) conversionError(v any, err error) error {
	return &ConversionError{Name: c.name, Kind: c.kind, Value: v, Err: err}
}

// Int returns the value as an integer.
// Floats truncate toward zero; strings that do not parse yield 0.
func (c Cvar) Int() int64 {
	switch c.kind {
	case Integer:
		return c.i
	case Float:
		i, _ := truncate(c.f)
		return i
	default:
		i, _ := parseInt(c.s)
		return i
	}
}

// Float returns the value as a float.
// Strings that do not parse yield 0.
func (c Cvar) Float() float64 {
	switch c.kind {
	case Integer:
		return float64(c.i)
	case Float:
		return c.f
	default:
		f, _ := parseFloat(c.s)
		return f
	}
}

// String returns the canonical string form of the value.
func (c Cvar) String() string {
	switch c.kind {
	case Integer:
		return strconv.FormatInt(c.i, 10)
	case Float:
		return FormatFloat(c.f)
	default:
		return c.s
	}
}

// Value returns the stored value as int64, float64 or string.
func (c Cvar) Value() any {
	switch c.kind {
	case Integer:
		return c.i
	case Float:
		return c.f
	default:
		return c.s
	}
}

// Primitive is the set of types a Cvar can be read as.
type Primitive interface {
	int | int8 | int16 | int32 | int64 |
		uint | uint8 | uint16 | uint32 | uint64 |
		float32 | float64 | string
}

// As returns the value of c coerced to T.
func As[T Primitive](c Cvar) T {
	var zero T
	var out any
	switch any(zero).(type) {
	case int:
		out = int(c.Int())
	case int8:
		out = int8(c.Int())
	case int16:
		out = int16(c.Int())
	case int32:
		out = int32(c.Int())
	case int64:
		out = c.Int()
	case uint:
		out = uint(c.Int())
	case uint8:
		out = uint8(c.Int())
	case uint16:
		out = uint16(c.Int())
	case uint32:
		out = uint32(c.Int())
	case uint64:
		out = uint64(c.Int())
	case float32:
		out = float32(c.Float())
	case float64:
		out = c.Float()
	case string:
		out = c.String()
	}
	return out.(T)
}

// Definition is a construction record for bulk registration.
type Definition struct {
	Name    string
	Kind    Kind
	Default any
}

// Build creates the Cvar described by d.
func (d Definition) Build() (Cvar, error) {
	return New(d.Name, d.Kind, d.Default)
}
