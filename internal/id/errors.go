package id

import "errors"

// ErrOverflow is returned when an allocator has no ids left to hand out.
var ErrOverflow = errors.New("id space exhausted")
