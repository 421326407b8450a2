package console

import (
	"io"

	"github.com/rs/zerolog"

	"github.com/dshills/gamelib/internal/event"
)

// Option configures a Console.
type Option func(*Console)

// WithOutput sets where PrintCvar writes. The default discards output.
func WithOutput(w io.Writer) Option {
	return func(c *Console) {
		if w != nil {
			c.out = w
		}
	}
}

// WithLogger sets the logger for diagnostics such as rejected values and
// dropped commands. The default logger discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Console) {
		c.logger = logger
	}
}

// WithDispatcher makes the console emit its events through d, so other
// subsystems can share it for their own event types.
func WithDispatcher(d *event.Dispatcher) Option {
	return func(c *Console) {
		if d != nil {
			c.dispatcher = d
		}
	}
}
