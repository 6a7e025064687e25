// Package logging configures the process-wide structured logger. All output
// goes to stderr; stdout is reserved for the agent transport.
package logging

import (
	"log/slog"
	"os"

	"github.com/golang-cz/devslog"
)

// Setup creates a logger for the given level and format. Unknown values
// fall back to info-level text output.
func Setup(level, format string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}

	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, opts)
	case "dev":
		handler = devslog.NewHandler(os.Stderr, &devslog.Options{HandlerOptions: opts})
	default:
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}
