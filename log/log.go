// Package log provides structured logging for the state-diff tool. It
// wraps Go's log/slog with per-module child loggers, trimmed to exactly
// the surface FromTries exercises: acquire a module-tagged logger once at
// package init, then log at Debug/Warn around a single diff run.
package log

import (
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with this project's conventions.
type Logger struct {
	inner *slog.Logger
}

// defaultLogger is the process-wide logger statediff.logger is built from.
var defaultLogger *Logger

func init() {
	defaultLogger = New(slog.LevelInfo)
}

// New creates a Logger that writes JSON to stderr at the given level.
func New(level slog.Level) *Logger {
	h := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{inner: slog.New(h)}
}

// Default returns the current package-level default logger.
func Default() *Logger {
	return defaultLogger
}

// Module returns a child logger tagged with a "module" attribute -- the
// way a subsystem obtains its own contextual logger. statediff uses this
// once, at package init, to tag every line it logs with module=statediff.
func (l *Logger) Module(name string) *Logger {
	return &Logger{inner: l.inner.With("module", name)}
}

// Debug logs a diff run's start and successful completion.
func (l *Logger) Debug(msg string, args ...any) { l.inner.Debug(msg, args...) }

// Warn logs a diff run's failure.
func (l *Logger) Warn(msg string, args ...any) { l.inner.Warn(msg, args...) }
