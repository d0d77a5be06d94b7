package cli

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// parseLevel maps a --log-level value onto a slog level.
func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	switch strings.ToLower(s) {
	case "debug":
		level = slog.LevelDebug
	case "info", "":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error", "critical":
		level = slog.LevelError
	default:
		return level, fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", s)
	}
	return level, nil
}

// newLogger builds the logger handed to every component of a command.
// --verbose forces debug regardless of --log-level.
func newLogger(opts *RootOptions, w io.Writer) *slog.Logger {
	level, err := parseLevel(opts.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	if opts.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}))
}
