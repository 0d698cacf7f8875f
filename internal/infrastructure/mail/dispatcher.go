package mail

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/medskill-verify/internal/pkg/mailtmpl"
)

// Message is a rendered email ready for delivery.
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text,omitempty"`
	HTML    string `json:"html,omitempty"`
}

// Sender delivers a rendered message: directly over SMTP or an HTTP API, or by
// queueing it for the email worker.
type Sender interface {
	Send(ctx context.Context, m Message) error
}

// Dispatcher sends verification emails linking to the frontend verify page.
type Dispatcher struct {
	sender      Sender
	frontendURL string
}

func NewDispatcher(sender Sender, frontendURL string) *Dispatcher {
	return &Dispatcher{sender: sender, frontendURL: strings.TrimRight(frontendURL, "/")}
}

// VerificationLink builds <frontend>/verify/<token>.
func (d *Dispatcher) VerificationLink(token string) string {
	return d.frontendURL + "/verify/" + url.PathEscape(token)
}

func (d *Dispatcher) SendVerification(ctx context.Context, email, token string) error {
	text, html, err := mailtmpl.Verification(mailtmpl.VerificationData{Link: d.VerificationLink(token)})
	if err != nil {
		return err
	}
	if err := d.sender.Send(ctx, Message{
		To:      email,
		Subject: mailtmpl.VerificationSubject,
		Text:    text,
		HTML:    html,
	}); err != nil {
		return fmt.Errorf("deliver verification email: %w", err)
	}
	return nil
}
