// Package smtp sends transactional email over implicit TLS.
package smtp

import (
	"crypto/tls"
	"fmt"
	"net/smtp"

	"github.com/rs/zerolog"
)

// Config holds SMTP connection settings.
type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	Enabled  bool
}

// Mailer implements ports.Mailer against an SMTP server on an
// implicit-TLS port (typically 465).
type Mailer struct {
	cfg Config
	log zerolog.Logger
}

// NewMailer creates a new Mailer.
func NewMailer(cfg Config, log zerolog.Logger) *Mailer {
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	return &Mailer{cfg: cfg, log: log.With().Str("component", "mailer").Logger()}
}

// Send delivers a single HTML email. When the mailer is disabled the
// message is logged and dropped, which keeps local development working
// without SMTP credentials.
func (m *Mailer) Send(to, subject, htmlBody string) error {
	if !m.cfg.Enabled {
		m.log.Debug().Str("to", to).Str("subject", subject).Msg("mailer disabled, dropping message")
		return nil
	}

	msg := []byte(
		fmt.Sprintf("From: %s\r\n", m.cfg.From) +
			fmt.Sprintf("To: %s\r\n", to) +
			fmt.Sprintf("Subject: %s\r\n", subject) +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/html; charset=\"utf-8\"\r\n" +
			"\r\n" +
			htmlBody,
	)

	addr := m.cfg.Host + ":" + m.cfg.Port
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: m.cfg.Host})
	if err != nil {
		return fmt.Errorf("dial smtp: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	defer client.Quit() //nolint:errcheck

	auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}

	if err := client.Mail(m.cfg.From); err != nil {
		return fmt.Errorf("smtp mail: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("smtp rcpt: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp close: %w", err)
	}

	return nil
}
