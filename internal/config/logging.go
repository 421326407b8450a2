package config

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger builds the process logger described by cfg.
func NewLogger(cfg Config, w io.Writer) (zerolog.Logger, error) {
	level, err := parseLevel(cfg.LogLevel)
	if err != nil {
		return zerolog.Nop(), err
	}

	out := w
	switch cfg.LogFormat {
	case FormatJSON:
	case FormatConsole, "":
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
	default:
		return zerolog.Nop(), &ValidationError{Setting: "LOG_FORMAT", Value: cfg.LogFormat, Message: "must be console or json"}
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger(), nil
}

// parseLevel accepts debug, info, warn and error. Empty means info.
func parseLevel(s string) (zerolog.Level, error) {
	switch s {
	case "":
		return zerolog.InfoLevel, nil
	case "debug", "info", "warn", "error":
		return zerolog.ParseLevel(s)
	default:
		return zerolog.NoLevel, fmt.Errorf("%w: log level %q", ErrInvalidConfig, s)
	}
}
