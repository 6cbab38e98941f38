// Package cli holds the start-up steps shared by cmd/finboard and
// cmd/alert-worker.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"finboard/internal/cache"
	"finboard/internal/config"
	"finboard/internal/core"
	"finboard/internal/log"
	"finboard/internal/storage"
)

// Bootstrap loads the .env file and the environment, builds the logger from
// LOG_LEVEL and LOG_FORMAT and runs validate. It exits the process when the
// configuration is unusable.
func Bootstrap(component string, validate func(*config.Config) error) (*config.Config, *log.Logger) {
	envErr := config.LoadEnvFile()
	cfg := config.Load()
	logger := SetupLogger(cfg, component)

	if envErr != nil {
		logger.Warn("Could not read .env file", log.FieldError, envErr)
	}
	if err := validate(cfg); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	return cfg, logger
}

// SetupLogger initializes structured logging and installs it as the slog default.
func SetupLogger(cfg *config.Config, component string) *log.Logger {
	lc := log.DefaultConfig()
	lc.Component = component
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		lc.Level = level
	}
	if cfg.LogFormat == string(log.FormatJSON) {
		lc.Format = log.FormatJSON
	}
	logger := log.New(lc)
	log.SetDefault(logger)
	return logger
}

// OpenStore connects the configured backend and attaches the system-category
// cache. The returned cleanup closes both.
func OpenStore(ctx context.Context, cfg *config.Config, logger *log.Logger) (*storage.Repository, func(), error) {
	dialect, dsn := storage.SQLite, cfg.SQLiteDBPath
	if cfg.DataBackend == string(storage.Postgres) {
		dialect, dsn = storage.Postgres, cfg.DatabaseURL
	}

	repo, err := storage.Open(ctx, dialect, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s store: %w", dialect, err)
	}

	cc := cache.DefaultConfig()
	cc.TTL = cfg.CategoryCacheTTL
	categories, err := cache.New[[]core.Category](cc)
	if err != nil {
		repo.Close()
		return nil, nil, err
	}
	repo.WithSystemCategoryCache(categories)

	logger.WithComponent(log.ComponentBackend).Info("Ledger store ready",
		"backend", string(dialect),
		"category_cache_ttl", cfg.CategoryCacheTTL.String())

	cleanup := func() {
		categories.Close()
		if err := repo.Close(); err != nil {
			logger.Error("Failed to close ledger store", log.FieldError, err)
		}
	}
	return repo, cleanup, nil
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
