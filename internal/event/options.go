package event

// Predicate gates delivery of an event to a callback.
// Return true to deliver the event, false to skip the callback.
type Predicate[E any] func(event E) bool

// callbackConfig collects the options of a single registration.
type callbackConfig[E any] struct {
	predicate Predicate[E]
	once      bool
}

// Option configures a callback registration.
type Option[E any] func(*callbackConfig[E])

// WithPredicate only delivers events for which pred returns true.
func WithPredicate[E any](pred func(event E) bool) Option[E] {
	return func(c *callbackConfig[E]) {
		c.predicate = pred
	}
}

// WithOnce unregisters the callback after its first invocation.
func WithOnce[E any]() Option[E] {
	return func(c *callbackConfig[E]) {
		c.once = true
	}
}
