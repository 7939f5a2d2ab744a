// Package logging provides the daemon's structured logger, a thin
// wrapper over log/slog configured from the logging section of the
// configuration file.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/sweeney/relay-control/internal/config"
)

// Logger wraps slog.Logger with daemon defaults. All methods are safe
// for concurrent use.
type Logger struct {
	*slog.Logger
}

// New creates a Logger from the logging configuration: output
// destination, text or JSON format, and level filtering.
func New(cfg config.LoggingConfig) *Logger {
	var output io.Writer
	switch strings.ToLower(cfg.Output) {
	case "stderr":
		output = os.Stderr
	default:
		output = os.Stdout
	}

	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "json":
		handler = slog.NewJSONHandler(output, opts)
	default:
		handler = slog.NewTextHandler(output, opts)
	}

	handler = handler.WithAttrs([]slog.Attr{
		slog.String("service", "relay-control"),
	})

	return &Logger{Logger: slog.New(handler)}
}

// With returns a new Logger with additional default attributes, e.g.
// logger.With("component", "mqtt").
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

// parseLevel converts a string log level to slog.Level, defaulting to
// info for anything unrecognised.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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
