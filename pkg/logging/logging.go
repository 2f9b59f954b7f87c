// Package logging builds the service's slog loggers. The root logger is
// constructed once at startup from resolved options; subsystems log through
// WithSystem so every record carries its origin.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// Options are the resolved settings for the root logger. Configuration
// parsing and validation happen upstream; by the time options arrive here
// they are ready to use.
type Options struct {
	Level  slog.Level
	JSON   bool
	Output io.Writer
}

// New builds the root logger. A nil Output writes to stdout.
func New(opts Options) *slog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	handlerOpts := &slog.HandlerOptions{Level: opts.Level}

	var handler slog.Handler
	if opts.JSON {
		handler = slog.NewJSONHandler(out, handlerOpts)
	} else {
		handler = slog.NewTextHandler(out, handlerOpts)
	}

	return slog.New(handler)
}

// WithSystem scopes a logger to a named subsystem.
func WithSystem(logger *slog.Logger, system string) *slog.Logger {
	return logger.With("system", system)
}
