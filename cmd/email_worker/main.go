package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/medskill-verify/internal/config"
	"github.com/medskill-verify/internal/infrastructure/amqp"
	"github.com/medskill-verify/internal/infrastructure/mail"
	"github.com/medskill-verify/internal/infrastructure/mailgun"
	"github.com/medskill-verify/internal/infrastructure/smtp"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, reading from environment")
	}
	cfg := config.Load()
	if cfg.RabbitMQURL == "" || cfg.RabbitEmailQueue == "" {
		slog.Error("RabbitMQ not configured")
		os.Exit(1)
	}

	// Mailgun when configured, SMTP relay otherwise.
	var sender mail.Sender = smtp.NewMailer(cfg)
	if cfg.MailgunDomain != "" {
		m, err := mailgun.NewMailer(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)
		if err != nil {
			slog.Error("mailgun not configured", "err", err)
			os.Exit(1)
		}
		sender = m
	}

	consumer, err := amqp.NewConsumer(cfg.RabbitMQURL, cfg.RabbitEmailQueue, sender)
	if err != nil {
		slog.Error("failed to start consumer", "err", err)
		os.Exit(1)
	}
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := consumer.Run(ctx); err != nil {
		slog.Error("email worker stopped", "err", err)
		return
	}
	slog.Info("email worker stopped")
}
