package amqp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/medskill-verify/internal/infrastructure/mail"
)

// Outcome of handling one delivery.
type Outcome int

const (
	Ack     Outcome = iota
	Requeue         // transient failure, try again
	Drop            // malformed, never deliverable
)

// Consumer drains the job queue and hands each message to a Sender.
type Consumer struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	queue    string
	sender   mail.Sender
	timeout  time.Duration
	prefetch int
}

func NewConsumer(url, queue string, sender mail.Sender) (*Consumer, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}
	c := &Consumer{conn: conn, ch: ch, queue: queue, sender: sender, timeout: 15 * time.Second, prefetch: 16}
	if err := ch.Qos(c.prefetch, 0, false); err != nil {
		c.Close()
		return nil, fmt.Errorf("qos: %w", err)
	}
	if err := declare(ch, queue); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Consumer) Close() {
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

// Run consumes until ctx is done or the channel closes.
func (c *Consumer) Run(ctx context.Context) error {
	msgs, err := c.ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}
	slog.Info("email worker listening", "queue", c.queue)
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return fmt.Errorf("amqp delivery channel closed")
			}
			switch Handle(ctx, c.sender, d.Body, c.timeout) {
			case Ack:
				_ = d.Ack(false)
			case Requeue:
				_ = d.Nack(false, true)
			case Drop:
				_ = d.Nack(false, false)
			}
		}
	}
}

// Handle decodes one job and delivers it.
func Handle(ctx context.Context, sender mail.Sender, body []byte, timeout time.Duration) Outcome {
	var m mail.Message
	if err := json.Unmarshal(body, &m); err != nil {
		slog.Error("bad email job", "err", err)
		return Drop
	}
	if m.To == "" {
		slog.Error("email job without recipient")
		return Drop
	}
	sctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := sender.Send(sctx, m); err != nil {
		slog.Warn("email send failed", "to", m.To, "err", err)
		return Requeue
	}
	slog.Info("email sent", "to", m.To, "subject", m.Subject)
	return Ack
}
