// Package config reads the service configuration from the environment.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the server-level settings.
type Config struct {
	ServerPort   string
	OutputDir    string
	MaxFileSize  int64
	LogLevel     string
	CORSOrigins  []string
	CleanupAge   time.Duration
	TargetWidth  int
	TargetHeight int
}

// New creates a configuration instance from environment variables, falling
// back to defaults.
func New() *Config {
	return &Config{
		// PaaS runtimes provide the listening port via PORT.
		ServerPort:   getEnvOrDefault("PORT", getEnvOrDefault("SERVER_PORT", "8000")),
		OutputDir:    getEnvOrDefault("OUTPUT_DIR", "./converted_pdfs"),
		MaxFileSize:  getEnvInt64OrDefault("MAX_FILE_SIZE", 50*1024*1024),
		LogLevel:     getEnvOrDefault("LOG_LEVEL", "info"),
		CORSOrigins:  splitAndTrim(getEnvOrDefault("CORS_ORIGINS", "http://localhost:8000,http://localhost:5000,http://127.0.0.1:8000")),
		CleanupAge:   time.Duration(getEnvIntOrDefault("CLEANUP_AGE_DAYS", 7)) * 24 * time.Hour,
		TargetWidth:  getEnvIntOrDefault("TARGET_PDF_WIDTH", 2100),
		TargetHeight: getEnvIntOrDefault("TARGET_PDF_HEIGHT", 2970),
	}
}

// SlogLevel maps the configured log level string onto a slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
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

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
