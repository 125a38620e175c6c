// Package logger provides structured logging setup for the application.
package logger

import (
	"log/slog"
	"os"
	"strings"

	"github.com/restforge/restforge/internal/config"
)

// Setup configures the application's logging based on the server
// configuration. It creates a JSON logger at the configured level, sets
// it as the process default, and returns it.
func Setup(cfg config.Server) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
		tmp := slog.New(slog.NewTextHandler(os.Stderr, nil))
		tmp.Warn("invalid log level configured, using default",
			"configured_level", cfg.LogLevel,
			"default_level", "info")
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	log := slog.New(handler)
	slog.SetDefault(log)
	return log
}
