// Package main is the entry point for the numbering API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"numbering/internal/app"
	"numbering/internal/infrastructure/config"
	v1 "numbering/internal/infrastructure/http/v1"
	"numbering/internal/infrastructure/storage/postgres/migrations"
	"numbering/pkg/logger"
)

func main() {
	cfg, err := config.Load(os.Getenv("NUMBERING_CONFIG"))
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development || cfg.App.IsDevelopment(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx := logger.WithLogger(context.Background(), log)
	log.Infow("starting numbering server", "env", cfg.App.Env, "timezone", cfg.Numbering.Location.String())

	if os.Getenv("NUMBERING_MIGRATE_ON_START") == "true" {
		if err := migrateUp(cfg.Database.DSN, log); err != nil {
			log.Fatalw("failed to apply migrations", "error", err)
		}
	}

	a, err := app.NewPostgres(ctx, cfg, log)
	if err != nil {
		log.Fatalw("failed to initialize service", "error", err)
	}
	defer a.Close()

	router := v1.NewRouter(v1.RouterConfig{
		Service: a.Service,
		Logger:  log,
		Health:  a.Health,
	})

	server := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Infow("server starting", "port", cfg.App.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

func migrateUp(dsn string, log *logger.Logger) error {
	m, err := migrations.Open(dsn, log)
	if err != nil {
		return err
	}
	defer func() { _ = m.Close() }()
	return m.Up()
}
