package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"img_to_pdf/api"
	"img_to_pdf/internal/config"
	"img_to_pdf/internal/converter"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file loaded", "error", err)
	}
	cfg := config.New()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})))

	convCfg := converter.NewDefaultConfig()
	convCfg.MaxFileSize = cfg.MaxFileSize
	convCfg.TargetWidth = cfg.TargetWidth
	convCfg.TargetHeight = cfg.TargetHeight
	conv := converter.New(convCfg)

	store, err := converter.NewStorage(cfg.OutputDir)
	if err != nil {
		slog.Error("Could not set up output directory", "error", err)
		os.Exit(1)
	}
	if cfg.CleanupAge > 0 {
		store.PurgeOlderThan(cfg.CleanupAge)
	}

	handlers := api.NewHandlers(conv, store)
	router := api.NewRouter(handlers, cfg.CORSOrigins)

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Server listening", "address", server.Addr, "outputDir", cfg.OutputDir)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Warn("Forced shutdown", "error", err)
	}
	slog.Info("Server exited")
}
