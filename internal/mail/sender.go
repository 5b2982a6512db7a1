package mail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/smtp"
	"time"

	"backoffice-service/internal/config"
)

// ErrDisabled is returned when no SMTP transport is configured. Callers
// treat it as non-fatal and fall back per their own policy.
var ErrDisabled = errors.New("mail: sender disabled")

// Sender delivers transactional email. Failures are never fatal to the
// triggering operation.
type Sender interface {
	SendOTP(ctx context.Context, to, code string, expiresIn time.Duration) error
}

type otpEmailData struct {
	AppName string
	Code    string
	Minutes int
	Year    int
}

const otpTemplate = `<!doctype html>
<html>
<head><meta charset="UTF-8"><title>Password reset code</title></head>
<body style="font-family:-apple-system,Segoe UI,Roboto,Helvetica,Arial,sans-serif;background:#f8fafc;margin:0;padding:32px;">
  <div style="max-width:480px;margin:0 auto;background:#ffffff;border-radius:12px;padding:32px;">
    <h2 style="margin:0 0 8px;color:#0f172a;">{{.AppName}}</h2>
    <p style="color:#475569;">Use this code to reset your password. It expires in {{.Minutes}} minutes.</p>
    <p style="font-size:32px;letter-spacing:8px;font-weight:700;color:#1d4ed8;margin:24px 0;">{{.Code}}</p>
    <p style="color:#94a3b8;font-size:13px;">If you did not request a reset, you can ignore this email.</p>
    <p style="color:#94a3b8;font-size:12px;">&copy; {{.Year}} {{.AppName}}</p>
  </div>
</body>
</html>`

// SMTPSender sends email over a plain-auth SMTP relay.
type SMTPSender struct {
	cfg config.SMTPConfig
	tpl *template.Template
}

func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	return &SMTPSender{
		cfg: cfg,
		tpl: template.Must(template.New("otp").Parse(otpTemplate)),
	}
}

func (s *SMTPSender) SendOTP(_ context.Context, to, code string, expiresIn time.Duration) error {
	var body bytes.Buffer
	err := s.tpl.Execute(&body, otpEmailData{
		AppName: s.cfg.AppName,
		Code:    code,
		Minutes: int(expiresIn.Minutes()),
		Year:    time.Now().Year(),
	})
	if err != nil {
		return fmt.Errorf("failed to render email: %w", err)
	}

	subject := fmt.Sprintf("%s password reset code", s.cfg.AppName)

	var msg bytes.Buffer
	write := func(format string, a ...any) { _, _ = msg.WriteString(fmt.Sprintf(format, a...)) }
	write("From: %s <%s>\r\n", s.cfg.FromName, s.cfg.From)
	write("To: %s\r\n", to)
	write("Subject: %s\r\n", subject)
	write("Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	write("MIME-Version: 1.0\r\n")
	write("Content-Type: text/html; charset=UTF-8\r\n")
	write("\r\n%s\r\n", body.String())

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	return smtp.SendMail(addr, auth, s.cfg.From, []string{to}, msg.Bytes())
}

// NoopSender is the stand-in when SMTP is not configured.
type NoopSender struct{}

func (NoopSender) SendOTP(context.Context, string, string, time.Duration) error {
	return ErrDisabled
}

// FromConfig picks the SMTP sender when configured, Noop otherwise.
func FromConfig(cfg *config.Config) Sender {
	if cfg.SMTP.Enabled && cfg.SMTP.Host != "" {
		return NewSMTPSender(cfg.SMTP)
	}
	return NoopSender{}
}
