// Package logging builds the slog loggers used by every adminportal
// component. Program output (tables, prompts) goes to stdout; logs go to
// stderr so they can be redirected separately.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Options selects the handler for a logger.
type Options struct {
	Level  string    // debug, info, warn, error
	Format string    // text or json
	Writer io.Writer // stderr when nil
}

// New creates a logger from string options, the form in which they arrive
// from configuration and flags.
func New(opts Options) *slog.Logger {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	return NewLoggerWithWriter(ParseLevel(opts.Level), opts.Format, w)
}

// NewLoggerWithWriter creates a logger writing to the given writer.
// Any format other than "json" yields the text handler.
func NewLoggerWithWriter(level slog.Level, format string, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch strings.ToLower(format) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// Discard returns a logger that drops everything. Constructors accept a nil
// logger and substitute this one.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Component returns logger (or Discard when nil) tagged with a component name.
func Component(logger *slog.Logger, name string) *slog.Logger {
	if logger == nil {
		logger = Discard()
	}
	return logger.With("component", name)
}

// ParseLevel converts a string log level to slog.Level.
// Returns slog.LevelInfo for unrecognized values.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
