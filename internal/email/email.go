package email

import (
	"context"
	"fmt"
	"html"
	"log/slog"

	"github.com/resend/resend-go/v2"
)

// Message is a single transactional email. Text is the plain-text
// alternative for clients that do not render HTML.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender writes messages to the log instead of delivering them.
type LogSender struct {
	logger *slog.Logger
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	s.logger.InfoContext(ctx, "email not delivered (local)", "to", msg.To, "subject", msg.Subject, "text", msg.Text)
	return nil
}

// ResendSender delivers messages through the Resend API.
type ResendSender struct {
	client *resend.Client
	from   string
}

func (s *ResendSender) Send(ctx context.Context, msg Message) error {
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	}
	if _, err := s.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("resend: %w", err)
	}
	return nil
}

// NewSender picks the log sender for ENV=local and Resend everywhere else.
func NewSender(env, apiKey, from string, logger *slog.Logger) Sender {
	if env == "local" {
		return &LogSender{logger: logger.With("component", "email")}
	}
	return &ResendSender{client: resend.NewClient(apiKey), from: from}
}

// Welcome greets a newly created account.
func Welcome(to, name string) Message {
	greeting := "Hi,"
	if name != "" {
		greeting = "Hi " + name + ","
	}
	return Message{
		To:      to,
		Subject: "Welcome to Writing Assistant",
		HTML: fmt.Sprintf(`<p>%s</p><p>Your account is ready. Sign in to start drafting.</p>`,
			html.EscapeString(greeting)),
		Text: greeting + "\n\nYour account is ready. Sign in to start drafting.\n",
	}
}
