// Package slogging sets up the JSON structured logger the supervisor and
// its subsystems share, backed by a truncate-on-start log file at a
// conventional path.
package slogging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/aman-cerp/syncd/internal/syncerrs"
)

// Config configures Setup.
type Config struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string
	// FilePath is the log file to truncate and write to. Required.
	FilePath string
	// WriteToStderr additionally mirrors output to stderr.
	WriteToStderr bool
}

// DefaultConfig returns sane defaults for path.
func DefaultConfig(path string) Config {
	return Config{Level: "info", FilePath: path, WriteToStderr: false}
}

// Setup opens (truncating) cfg.FilePath and returns a JSON-handler
// logger plus a cleanup func that closes the file. Callers should defer
// the cleanup and, on success, slog.SetDefault the returned logger.
func Setup(cfg Config) (*slog.Logger, func(), error) {
	f, err := os.Create(cfg.FilePath)
	if err != nil {
		return nil, nil, syncerrs.SupervisorError("open log file", err).WithDetail(cfg.FilePath)
	}

	var out io.Writer = f
	if cfg.WriteToStderr {
		out = io.MultiWriter(f, os.Stderr)
	}

	handler := slog.NewJSONHandler(out, &slog.HandlerOptions{Level: parseLevel(cfg.Level)})
	logger := slog.New(handler)

	cleanup := func() { _ = f.Close() }
	return logger, cleanup, nil
}

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
