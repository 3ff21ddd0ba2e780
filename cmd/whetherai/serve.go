package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rewired-gh/whetherai/internal/config"
	"github.com/rewired-gh/whetherai/internal/logger"
	"github.com/rewired-gh/whetherai/internal/server"
	"github.com/rewired-gh/whetherai/internal/service"
	"github.com/rewired-gh/whetherai/internal/storage"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(false)
			if err != nil {
				return err
			}
			return serve(cfg)
		},
	}
}

func serve(cfg *config.Config) error {
	engine, err := newEngine()
	if err != nil {
		return err
	}

	store, err := storage.New(cfg.Storage.MaxReports, cfg.Storage.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("Failed to close storage: %v", err)
		}
	}()

	client := newWeatherClient(cfg)
	forecaster := service.NewForecaster(client, engine, thresholds(cfg), store)
	handler := server.New(forecaster, store, client, server.Options{
		AllowedOrigins: cfg.Server.CORSAllowedOrigins,
		RequestTimeout: cfg.Server.RequestTimeout,
	})

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go rotateLoop(ctx, store, cfg.Storage.RotateInterval)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Listening on %s", cfg.Server.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
		logger.Info("Shutdown signal received, cleaning up...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed: %v", err)
		return err
	}
	logger.Info("Service stopped")
	return nil
}

// rotateLoop trims the report history on every tick until ctx is done.
func rotateLoop(ctx context.Context, store *storage.Storage, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := store.Rotate()
			if err != nil {
				logger.Warn("Failed to rotate reports: %v", err)
				continue
			}
			if removed > 0 {
				logger.Debug("Rotated %d old reports", removed)
			}
		}
	}
}
