// Package id provides recyclable sequential identifier allocation.
//
// An Allocator hands out ids from a start value, advancing by a fixed step.
// Released ids are kept in a free set and handed out again before the
// counter advances. The smallest free id is always reused first.
package id

import (
	"slices"
)

// Integer is the set of types an Allocator can produce.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Allocator produces unique ids of type T.
// It is not safe for concurrent use.
type Allocator[T Integer] struct {
	start T
	step  T
	next  T

	// exhausted is set once next has handed out the last representable value.
	exhausted bool

	// free holds released ids in ascending order.
	free []T

	inUse int
}

// New creates an allocator producing start, start+step, start+2*step, ...
// A step that is not positive is treated as 1.
func New[T Integer](start, step T) *Allocator[T] {
	var zero T
	if step <= zero {
		step = 1
	}
	return &Allocator[T]{
		start: start,
		step:  step,
		next:  start,
	}
}

// Acquire returns an unused id.
// Returns ErrOverflow if the id space is exhausted and nothing was released.
func (a *Allocator[T]) Acquire() (T, error) {
	if len(a.free) > 0 {
		v := a.free[0]
		a.free = a.free[1:]
		a.inUse++
		return v, nil
	}

	if a.exhausted {
		var zero T
		return zero, ErrOverflow
	}

	v := a.next
	advanced := a.next + a.step
	if advanced < a.next {
		// Wrapped around; v is the last id this allocator can produce.
		a.exhausted = true
	} else {
		a.next = advanced
	}

	a.inUse++
	return v, nil
}

// MustAcquire is like Acquire but panics on overflow.
func (a *Allocator[T]) MustAcquire() T {
	v, err := a.Acquire()
	if err != nil {
		panic(err)
	}
	return v
}

// Release returns id to the allocator for reuse.
// Releasing an id that is not currently checked out is a no-op.
func (a *Allocator[T]) Release(v T) {
	if !a.InUse(v) {
		return
	}

	pos, _ := slices.BinarySearch(a.free, v)
	a.free = slices.Insert(a.free, pos, v)
	a.inUse--
}

// InUse reports whether v is currently checked out.
func (a *Allocator[T]) InUse(v T) bool {
	if !a.issued(v) {
		return false
	}
	_, found := slices.BinarySearch(a.free, v)
	return !found
}

// issued reports whether v has ever been handed out by the counter.
func (a *Allocator[T]) issued(v T) bool {
	if v < a.start {
		return false
	}
	// The distance can exceed the signed range of T, so take it in uint64.
	// Converting sign-extends, and v >= start keeps the difference exact.
	if (uint64(v)-uint64(a.start))%uint64(a.step) != 0 {
		return false
	}
	if a.exhausted {
		return v <= a.next
	}
	return v < a.next
}

// Len returns the number of ids currently checked out.
func (a *Allocator[T]) Len() int {
	return a.inUse
}

// Reset forgets every issued id and restarts the counter.
func (a *Allocator[T]) Reset() {
	a.next = a.start
	a.exhausted = false
	a.free = nil
	a.inUse = 0
}
