package cli

import (
	"context"
	"fmt"

	"finboard/internal/amqp"
	"finboard/internal/config"
	"finboard/internal/log"
	"finboard/internal/mail"
	"finboard/internal/services"
)

// NewMailer picks the mail transport: SMTP when a host is configured,
// Gmail when service-account credentials are, and the log mailer otherwise.
func NewMailer(ctx context.Context, cfg *config.Config, logger *log.Logger) (mail.Mailer, error) {
	switch {
	case cfg.SMTPHost != "":
		return mail.NewSMTPMailer(mail.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		}), nil
	case cfg.GmailCredentialsFile != "" || cfg.GmailCredentialsJSON != "":
		m, err := mail.NewGmailMailer(ctx, mail.GmailConfig{
			CredentialsJSON: cfg.GmailCredentialsJSON,
			CredentialsFile: cfg.GmailCredentialsFile,
			Sender:          cfg.GmailSender,
		})
		if err != nil {
			return nil, fmt.Errorf("create gmail mailer: %w", err)
		}
		return m, nil
	default:
		return mail.NewLogMailer(logger), nil
	}
}

// NewAlertSender builds the budget alert sender selected by ALERT_SENDER.
// The returned cleanup releases any connection it opened.
func NewAlertSender(ctx context.Context, cfg *config.Config, logger *log.Logger) (services.AlertSender, func(), error) {
	noop := func() {}
	alertLogger := logger.WithComponent(log.ComponentNotify)

	switch cfg.AlertSender {
	case config.SenderAMQP:
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			return nil, nil, fmt.Errorf("connect AMQP: %w", err)
		}
		alertLogger.Info("Budget alerts published to AMQP",
			"exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		cleanup := func() {
			if err := client.Close(); err != nil {
				logger.WithComponent(log.ComponentAMQP).Error("Failed to close AMQP client", log.FieldError, err)
			}
		}
		return amqp.NewAlertPublisher(client), cleanup, nil

	case config.SenderSMTP, config.SenderGmail:
		mailer, err := NewMailer(ctx, cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		alertLogger.Info("Budget alerts sent by email", "sender", cfg.AlertSender)
		return mail.NewAlertSender(mailer), noop, nil

	case config.SenderLog, "":
		alertLogger.Info("Budget alerts written to the log")
		return mail.NewAlertSender(mail.NewLogMailer(logger)), noop, nil
	}
	return nil, nil, fmt.Errorf("unknown alert sender %q", cfg.AlertSender)
}
