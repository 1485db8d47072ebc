// Package notify delivers outbound portal email over SMTP. Delivery is
// best-effort: sends run on their own goroutine and failures are logged,
// never returned to the caller.
package notify

import (
	"context"
	"log/slog"

	gomail "gopkg.in/gomail.v2"
)

// SMTPConfig holds the mail relay settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Configured reports whether the relay settings are usable.
func (c SMTPConfig) Configured() bool {
	return c.Host != "" && c.From != ""
}

// Mailer sends HTML mail through an SMTP relay.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
	logger *slog.Logger
	// send is swappable in tests
	send func(*gomail.Message) error
}

// NewMailer builds a Mailer from the relay settings.
func NewMailer(cfg SMTPConfig, logger *slog.Logger) *Mailer {
	if logger == nil {
		logger = slog.Default()
	}
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return &Mailer{
		dialer: dialer,
		from:   cfg.From,
		logger: logger,
		send: func(msg *gomail.Message) error {
			return dialer.DialAndSend(msg)
		},
	}
}

// Send queues one message for delivery and returns immediately.
func (m *Mailer) Send(ctx context.Context, to, subject, html string) {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", html)

	go func() {
		if err := m.send(msg); err != nil {
			m.logger.Error("mail delivery failed", "to", to, "subject", subject, "error", err)
			return
		}
		m.logger.Debug("mail delivered", "to", to, "subject", subject)
	}()
}

// LogNotifier stands in for the Mailer when SMTP is not configured. It
// records each would-be delivery at info level.
type LogNotifier struct {
	Logger *slog.Logger
}

// Send implements the notifier contract without delivering anything.
func (l LogNotifier) Send(ctx context.Context, to, subject, html string) {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "mail suppressed, smtp not configured", "to", to, "subject", subject)
}
