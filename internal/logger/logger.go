package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"

	"gitscribe/internal/config"
)

// Setup initializes and configures the application logger. Logs go to
// stderr so generated output on stdout stays clean for piping.
func Setup(cfg *config.Config) *slog.Logger {
	return SetupWriter(cfg, os.Stderr)
}

// SetupWriter is Setup with an explicit destination.
func SetupWriter(cfg *config.Config, w io.Writer) *slog.Logger {
	level := parseLogLevel(cfg.LogLevel)
	handlerOpts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	switch strings.ToLower(cfg.LogFormat) {
	case "json":
		handler = slog.NewJSONHandler(w, handlerOpts)
	default: // "text" or empty (already validated in config.go)
		handler = slog.NewTextHandler(w, handlerOpts)
	}

	// run_id correlates all records of one invocation.
	logger := slog.New(handler).With(slog.String("run_id", uuid.NewString()))

	// Set as default logger for the entire application
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level
// Note: Input is validated in config.go, so only valid values reach this function
func parseLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info", "": // empty defaults to info
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		// Should never reach here due to validation in config.go
		return slog.LevelInfo
	}
}
