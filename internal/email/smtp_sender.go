package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"math"
	"strings"
	"time"

	"gopkg.in/gomail.v2"
)

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPSender envia correos HTML via SMTP.
type SMTPSender struct {
	dialer   dialer
	from     string
	fromName string
	now      func() time.Time
}

func NewSMTPSender(host string, port int, username, password, from, fromName string) (*SMTPSender, error) {
	if strings.TrimSpace(host) == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if strings.TrimSpace(from) == "" {
		return nil, fmt.Errorf("smtp from is required")
	}
	if port == 0 {
		port = 587
	}
	d := gomail.NewDialer(host, port, username, password)
	// 465 es TLS implícito; el resto negocia STARTTLS.
	d.SSL = port == 465
	d.TLSConfig = &tls.Config{ServerName: host}

	return newSMTPSender(d, from, fromName), nil
}

func newSMTPSender(d dialer, from, fromName string) *SMTPSender {
	return &SMTPSender{
		dialer:   d,
		from:     from,
		fromName: fromName,
		now:      time.Now,
	}
}

func (s *SMTPSender) SendLoginOTP(ctx context.Context, toEmail, name, code string, expiresAt time.Time) error {
	body, err := render(otpTemplate, map[string]any{
		"Name":      name,
		"Code":      code,
		"Minutes":   s.minutesUntil(expiresAt),
		"Signature": s.fromName,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, "OTP Verification", body)
}

func (s *SMTPSender) SendPasswordReset(ctx context.Context, toEmail, name, resetURL string, expiresAt time.Time) error {
	body, err := render(resetTemplate, map[string]any{
		"Name":      name,
		"URL":       resetURL,
		"Minutes":   s.minutesUntil(expiresAt),
		"Signature": s.fromName,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, "Password Reset Request", body)
}

func (s *SMTPSender) SendServiceRequestNotice(ctx context.Context, toEmail string, notice ServiceRequestNotice) error {
	body, err := render(noticeTemplate, notice)
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, notice.Subject, body)
}

func (s *SMTPSender) send(ctx context.Context, toEmail, subject, body string) error {
	if strings.TrimSpace(toEmail) == "" {
		return fmt.Errorf("to email is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.from, s.fromName)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	return s.dialer.DialAndSend(m)
}

func (s *SMTPSender) minutesUntil(expiresAt time.Time) int {
	mins := int(math.Round(expiresAt.Sub(s.now()).Minutes()))
	if mins < 1 {
		return 1
	}
	return mins
}
