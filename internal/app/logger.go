package app

import (
	"io"
	"log/slog"
)

// newLogger builds the app's logger from the already-validated config
// strings. The instance is self-contained: the global default logger is
// never touched, so assembly runs in tests stay silent unless they opt
// in.
func newLogger(levelStr, formatStr string, outW io.Writer) *slog.Logger {
	level := slog.LevelInfo
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch formatStr {
	case "text":
		handler = slog.NewTextHandler(outW, opts)
	default:
		handler = slog.NewJSONHandler(outW, opts)
	}

	return slog.New(handler)
}
