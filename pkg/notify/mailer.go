package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/workbridge/ims-api/pkg/config"
)

// Mailer delivers a single plain e-mail. Implementations must be safe for
// concurrent use.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
	Enabled() bool
}

type noopMailer struct{}

func (noopMailer) Send(context.Context, string, string, string) error { return nil }
func (noopMailer) Enabled() bool                                      { return false }

type smtpMailer struct {
	cfg config.SMTPConfig
}

// NewMailer returns an SMTP mailer, or a disabled no-op when credentials are
// not configured. A disabled mailer is a valid state: callers report the
// notification as skipped instead of failing the request.
func NewMailer(cfg config.SMTPConfig) Mailer {
	if cfg.Host == "" || cfg.User == "" || cfg.Password == "" {
		return noopMailer{}
	}
	return &smtpMailer{cfg: cfg}
}

func (m *smtpMailer) Enabled() bool { return true }

func (m *smtpMailer) Send(ctx context.Context, to, subject, body string) error {
	if strings.TrimSpace(to) == "" {
		return fmt.Errorf("empty recipient")
	}
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	msg := buildMessage(m.cfg.From, to, subject, body)

	dialer := net.Dialer{Timeout: 10 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		return err
	}
	defer client.Close()

	if m.cfg.UseTLS {
		tlsConfig := &tls.Config{ServerName: m.cfg.Host}
		if err := client.StartTLS(tlsConfig); err != nil {
			return err
		}
	}

	auth := smtp.PlainAuth("", m.cfg.User, m.cfg.Password, m.cfg.Host)
	if err := client.Auth(auth); err != nil {
		return err
	}

	if err := client.Mail(m.cfg.User); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		_ = w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}

func buildMessage(from, to, subject, body string) []byte {
	headers := []string{
		fmt.Sprintf("From: %s", from),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		`Content-Type: text/html; charset="UTF-8"`,
		"",
	}
	return []byte(strings.Join(headers, "\r\n") + "\r\n" + body)
}
