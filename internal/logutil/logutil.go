package logutil

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Options selects the logger's level and output format.
type Options struct {
	Level     string
	Format    string
	Debug     bool
	AddSource bool
}

// New builds a logger writing to stderr.
func New(opts Options) (*slog.Logger, error) {
	return NewWithWriter(os.Stderr, opts)
}

// NewWithWriter builds a logger writing to w. Debug forces the debug level.
func NewWithWriter(w io.Writer, opts Options) (*slog.Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	if opts.Debug {
		level = slog.LevelDebug
	}

	hopts := &slog.HandlerOptions{
		Level:     level,
		AddSource: opts.AddSource,
	}

	var h slog.Handler
	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "", "text":
		h = slog.NewTextHandler(w, hopts)
	case "json":
		h = slog.NewJSONHandler(w, hopts)
	default:
		return nil, fmt.Errorf("unknown log format: %s", opts.Format)
	}
	return slog.New(h), nil
}

// ParseLevel accepts slog level names as well as the upper-case names used
// by LOGLEVEL (DEBUG, INFO, WARNING, ERROR, CRITICAL).
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error", "critical", "fatal":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %s", s)
	}
}
