// Package logging builds the process-wide slog logger for the client and
// the server binaries.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options describes where and how verbosely to log
type Options struct {
	Level      string // debug, info, warn, error
	File       string // пустая строка - вывод в stderr
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// ParseLevel converts a textual level into slog.Level. An empty string
// means info.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", level)
	}
}

// New creates a logger according to opts. When opts.File is set the output
// goes to a size-rotated file, otherwise to stderr. The returned close
// function releases the file and is safe to call when logging to stderr.
func New(opts Options) (*slog.Logger, func() error, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}

	if opts.File == "" {
		tty := term.IsTerminal(int(os.Stderr.Fd()))
		return slog.New(NewHandler(os.Stderr, level, tty)), func() error { return nil }, nil
	}

	rotator := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
		Compress:   true,
	}
	return slog.New(NewHandler(rotator, level, false)), rotator.Close, nil
}

// NewHandler returns a text handler for interactive output and a JSON
// handler for files and pipes.
func NewHandler(w io.Writer, level slog.Level, text bool) slog.Handler {
	handlerOpts := &slog.HandlerOptions{Level: level}
	if text {
		return slog.NewTextHandler(w, handlerOpts)
	}
	return slog.NewJSONHandler(w, handlerOpts)
}

// Discard returns a logger that drops every record
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}
