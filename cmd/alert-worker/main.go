package main

import (
	"context"
	"errors"
	"os"

	"finboard/internal/amqp"
	"finboard/internal/cli"
	"finboard/internal/config"
	"finboard/internal/log"
	"finboard/internal/mail"
	"finboard/internal/worker"
)

func main() {
	cfg, logger := cli.Bootstrap(log.ComponentWorker, (*config.Config).ValidateAlertWorker)
	logger.Info("Starting alert-worker")

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()
	ctx = log.NewContext(ctx, logger)

	mailer, err := cli.NewMailer(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize mailer", log.FieldError, err)
		os.Exit(1)
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to connect to AMQP", log.FieldError, err)
		os.Exit(1)
	}
	defer client.Close()

	w := worker.NewAlertWorker(mail.NewAlertSender(mailer))
	logger.Info("Consuming budget alerts", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)

	err = client.ConsumeBudgetAlerts(ctx, w.HandleBudgetAlert)
	stats := w.Stats()
	logger.Info("Alert worker stopped",
		"delivered", stats.Delivered,
		"failed", stats.Failed,
		"expired", stats.Expired)

	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Consumer stopped with error", log.FieldError, err)
		client.Close()
		os.Exit(1)
	}
}
