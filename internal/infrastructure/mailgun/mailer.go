package mailgun

import (
	"context"
	"fmt"
	"time"

	mg "github.com/mailgun/mailgun-go/v4"

	"github.com/medskill-verify/internal/infrastructure/mail"
)

// Mailer delivers messages through the Mailgun HTTP API.
type Mailer struct {
	client *mg.MailgunImpl
	sender string
}

func NewMailer(domain, apiKey, sender string) (*Mailer, error) {
	if domain == "" || apiKey == "" || sender == "" {
		return nil, fmt.Errorf("mailgun: domain, api key and sender are required")
	}
	return &Mailer{client: mg.NewMailgun(domain, apiKey), sender: sender}, nil
}

func (m *Mailer) Send(ctx context.Context, msg mail.Message) error {
	message := m.client.NewMessage(m.sender, msg.Subject, msg.Text, msg.To)
	if msg.HTML != "" {
		message.SetHtml(msg.HTML)
	}
	c, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if _, _, err := m.client.Send(c, message); err != nil {
		return fmt.Errorf("mailgun send: %w", err)
	}
	return nil
}
