package logging

import (
	"io"
	"log/slog"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// ParseLevel maps debug, info, warn and error (case insensitive) to a slog level.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, goerrors.New("unknown log level "+level, goerrors.CategoryBadInput)
	}
}

// New returns the process logger: JSON records in production, text records
// otherwise.
func New(w io.Writer, level string, production bool) (*slog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: lvl, AddSource: lvl == slog.LevelDebug}
	var handler slog.Handler
	if production {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler).With(slog.String("service", "blogapi")), nil
}
