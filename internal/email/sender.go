package email

import (
	"context"
	"errors"
	"time"
)

// Sender define la interfaz del notificador de correo.
type Sender interface {
	SendLoginOTP(ctx context.Context, toEmail, name, code string, expiresAt time.Time) error
	SendPasswordReset(ctx context.Context, toEmail, name, resetURL string, expiresAt time.Time) error
	SendServiceRequestNotice(ctx context.Context, toEmail string, notice ServiceRequestNotice) error
}

// ServiceRequestNotice resume un ticket nuevo para la mesa de soporte.
type ServiceRequestNotice struct {
	Name        string
	Email       string
	Subject     string
	RequestType string
	Message     string
}

type disabledSender struct {
	reason string
}

func NewDisabledSender(reason string) Sender {
	return &disabledSender{reason: reason}
}

func (s *disabledSender) err() error {
	if s.reason == "" {
		return errors.New("email sender disabled")
	}
	return errors.New(s.reason)
}

func (s *disabledSender) SendLoginOTP(_ context.Context, _, _, _ string, _ time.Time) error {
	return s.err()
}

func (s *disabledSender) SendPasswordReset(_ context.Context, _, _, _ string, _ time.Time) error {
	return s.err()
}

func (s *disabledSender) SendServiceRequestNotice(_ context.Context, _ string, _ ServiceRequestNotice) error {
	return s.err()
}
