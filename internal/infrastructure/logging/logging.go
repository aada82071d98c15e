// Package logging builds the process logger from LoggingConfig.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/factorycraft/factory-economy/internal/infrastructure/config"
)

// New returns a logger writing to the configured destination. The returned
// closer releases the log file and is a no-op for stdout and stderr.
func New(cfg config.LoggingConfig) (*slog.Logger, io.Closer, error) {
	var (
		out    io.Writer
		closer io.Closer = nopCloser{}
	)

	switch cfg.Output {
	case "", "stdout":
		out = os.Stdout
	case "stderr":
		out = os.Stderr
	case "file":
		if cfg.FilePath == "" {
			return nil, nil, fmt.Errorf("logging output is file but no file_path is set")
		}
		f, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out, closer = f, f
	default:
		return nil, nil, fmt.Errorf("unsupported log output: %s", cfg.Output)
	}

	return slog.New(NewHandler(out, cfg)), closer, nil
}

// NewHandler builds the slog handler for a writer
func NewHandler(w io.Writer, cfg config.LoggingConfig) slog.Handler {
	opts := &slog.HandlerOptions{
		Level:     ParseLevel(cfg.Level),
		AddSource: cfg.IncludeCaller,
	}
	if strings.EqualFold(cfg.Format, "text") {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}

// ParseLevel maps a config level name to a slog level, defaulting to info
func ParseLevel(level string) slog.Level {
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

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
