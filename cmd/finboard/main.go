package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"time"

	"finboard/internal/assistant"
	"finboard/internal/cli"
	"finboard/internal/config"
	apphttp "finboard/internal/http"
	"finboard/internal/log"
	"finboard/internal/services"
)

func main() {
	cfg, logger := cli.Bootstrap(log.ComponentApp, (*config.Config).Validate)
	logger.Info("Starting finboard")

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	store, closeStore, err := cli.OpenStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to open ledger store", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer closeStore()

	sender, closeSender, err := cli.NewAlertSender(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize budget alert sender", log.FieldError, err, "sender", cfg.AlertSender)
		os.Exit(1)
	}
	defer closeSender()

	transactions := services.NewTransactionService(store, services.NewNotifier(sender), logger)
	deps := apphttp.Deps{
		Store:        store,
		Transactions: transactions,
		Ledger:       services.NewLedgerService(store),
	}

	if cfg.VoiceEnabled {
		gemini, err := assistant.New(ctx, cfg.GeminiAPIKey, cfg.GenAIModel)
		if err != nil {
			logger.Error("Failed to initialize voice assistant", log.FieldError, err)
			os.Exit(1)
		}
		deps.Voice = services.NewVoiceService(gemini, gemini, store, transactions)
		logger.WithComponent(log.ComponentVoice).Info("Voice assistant enabled", "model", cfg.GenAIModel)
	}

	srv := apphttp.NewServer(apphttp.Config{
		Addr:               net.JoinHostPort("", cfg.Port),
		JWTSecret:          cfg.JWTSecret,
		JWTIssuer:          cfg.JWTIssuer,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		ReadTimeout:        10 * time.Second,
		WriteTimeout:       60 * time.Second,
	}, deps, logger)
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "port", cfg.Port, "backend", cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
			closeSender()
			closeStore()
			os.Exit(1)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", log.FieldError, err)
	}
	logger.Info("Server stopped gracefully")
}
