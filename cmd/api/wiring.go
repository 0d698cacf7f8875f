package main

import (
	"context"
	"fmt"

	"github.com/medskill-verify/internal/config"
	"github.com/medskill-verify/internal/infrastructure/amqp"
	"github.com/medskill-verify/internal/infrastructure/dynamo"
	"github.com/medskill-verify/internal/infrastructure/mail"
	"github.com/medskill-verify/internal/infrastructure/mailgun"
	"github.com/medskill-verify/internal/infrastructure/postgres"
	"github.com/medskill-verify/internal/infrastructure/smtp"
	transporthttp "github.com/medskill-verify/internal/transport/http"
)

type stores struct {
	pending  transporthttp.PendingRepository
	profiles transporthttp.ProfileRepository
	close    func()
}

// openStores connects the configured row store, creating tables or applying
// migrations as needed.
func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	switch cfg.RowStore {
	case config.RowStoreDynamo:
		client, err := dynamo.NewClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		dynamo.Bootstrap(ctx, client, cfg.DynamoTables)
		return &stores{
			pending:  dynamo.NewPendingRepo(client, cfg.DynamoTables.PendingRegistrations),
			profiles: dynamo.NewProfileRepo(client, cfg.DynamoTables.Users),
			close:    func() {},
		}, nil
	case config.RowStorePostgres:
		conn, err := postgres.NewConnection(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return &stores{
			pending:  postgres.NewPendingRepo(conn),
			profiles: postgres.NewProfileRepo(conn),
			close:    func() { _ = conn.Close() },
		}, nil
	}
	return nil, fmt.Errorf("unknown row store %q", cfg.RowStore)
}

// newSender builds the configured mail transport. The queue driver hands
// messages to cmd/email_worker.
func newSender(cfg *config.Config) (mail.Sender, func(), error) {
	switch cfg.MailDriver {
	case config.MailDriverSMTP:
		return smtp.NewMailer(cfg), func() {}, nil
	case config.MailDriverMailgun:
		m, err := mailgun.NewMailer(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)
		if err != nil {
			return nil, nil, err
		}
		return m, func() {}, nil
	case config.MailDriverQueue:
		p, err := amqp.NewPublisher(cfg.RabbitMQURL, cfg.RabbitEmailQueue)
		if err != nil {
			return nil, nil, err
		}
		return p, p.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown mail driver %q", cfg.MailDriver)
}
