// Package logging configures the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config holds logger settings.
type Config struct {
	AppEnv string
	Level  string
}

// LoadConfig reads APP_ENV and LOG_LEVEL.
func LoadConfig() Config {
	return Config{
		AppEnv: os.Getenv("APP_ENV"),
		Level:  os.Getenv("LOG_LEVEL"),
	}
}

// Setup installs a text handler for development and a JSON handler for production
// as the slog default, and returns the logger.
func Setup(cfg Config, out io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var handler slog.Handler = slog.NewTextHandler(out, opts)
	if cfg.AppEnv == "production" {
		handler = slog.NewJSONHandler(out, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func parseLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
