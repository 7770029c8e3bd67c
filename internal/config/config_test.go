package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestNew_Defaults(t *testing.T) {
	cfg := New()

	if cfg.ServerPort != "8000" {
		t.Errorf("Expected default port 8000, got %s", cfg.ServerPort)
	}
	if cfg.MaxFileSize != 50*1024*1024 {
		t.Errorf("Expected default max file size of 50 MiB, got %d", cfg.MaxFileSize)
	}
	if cfg.TargetWidth != 2100 || cfg.TargetHeight != 2970 {
		t.Errorf("Expected default 2100x2970 envelope, got %dx%d", cfg.TargetWidth, cfg.TargetHeight)
	}
	if cfg.CleanupAge != 7*24*time.Hour {
		t.Errorf("Expected default cleanup age of 7 days, got %v", cfg.CleanupAge)
	}
	if len(cfg.CORSOrigins) == 0 {
		t.Error("Expected default CORS origins")
	}
}

func TestNew_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("MAX_FILE_SIZE", "1024")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg := New()

	if cfg.ServerPort != "9000" {
		t.Errorf("Expected port 9000, got %s", cfg.ServerPort)
	}
	if cfg.MaxFileSize != 1024 {
		t.Errorf("Expected max file size 1024, got %d", cfg.MaxFileSize)
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Errorf("Expected debug level, got %v", cfg.SlogLevel())
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Errorf("Expected trimmed origin list, got %v", cfg.CORSOrigins)
	}
}

func TestSlogLevel_Fallback(t *testing.T) {
	cfg := &Config{LogLevel: "nonsense"}
	if cfg.SlogLevel() != slog.LevelInfo {
		t.Errorf("Expected info fallback, got %v", cfg.SlogLevel())
	}
}
