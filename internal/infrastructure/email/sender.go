package email

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/rs/zerolog"

	"github.com/rinkside/pickup-api/internal/core/ports"
)

// SMTPSender delivers emails over plain SMTP with optional auth.
type SMTPSender struct {
	addr string
	from string
	auth smtp.Auth
}

// NewSMTPSender builds a sender for host:port. Username may be empty
// for unauthenticated relays (e.g. a local mailhog).
func NewSMTPSender(host string, port int, from, username, password string) *SMTPSender {
	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}
	return &SMTPSender{
		addr: fmt.Sprintf("%s:%d", host, port),
		from: from,
		auth: auth,
	}
}

func (s *SMTPSender) Send(_ context.Context, msg ports.EmailMessage) error {
	payload := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s",
		s.from, msg.To, msg.Subject, msg.Body,
	)
	if err := smtp.SendMail(s.addr, s.auth, s.from, []string{msg.To}, []byte(payload)); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// LogSender writes emails to the log instead of delivering them.
// Development fallback when no SMTP host is configured.
type LogSender struct {
	logger zerolog.Logger
}

func NewLogSender(logger zerolog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(_ context.Context, msg ports.EmailMessage) error {
	s.logger.Info().
		Str("to", msg.To).
		Str("kind", msg.Kind).
		Str("subject", msg.Subject).
		Str("body", msg.Body).
		Msg("email (log sender)")
	return nil
}
