package email

import (
	"context"

	"go.uber.org/zap"
)

// Sender define la interfaz para correos transaccionales de cuenta.
// El secreto crudo del token viaja solo por este canal.
type Sender interface {
	SendVerificationEmail(ctx context.Context, toEmail, rawToken string) error
	SendPasswordResetEmail(ctx context.Context, toEmail, rawToken string) error
	SendPasswordResetSuccessEmail(ctx context.Context, toEmail string) error
}

// disabledSender registra y deja pasar cuando SMTP no esta configurado,
// para que los flujos de cuenta funcionen en desarrollo sin proveedor.
type disabledSender struct {
	logger *zap.Logger
}

func NewDisabledSender(logger *zap.Logger) Sender {
	return &disabledSender{logger: logger}
}

func (s *disabledSender) SendVerificationEmail(_ context.Context, toEmail, _ string) error {
	s.warn("verification", toEmail)
	return nil
}

func (s *disabledSender) SendPasswordResetEmail(_ context.Context, toEmail, _ string) error {
	s.warn("password reset", toEmail)
	return nil
}

func (s *disabledSender) SendPasswordResetSuccessEmail(_ context.Context, toEmail string) error {
	s.warn("password reset success", toEmail)
	return nil
}

func (s *disabledSender) warn(kind, toEmail string) {
	if s.logger != nil {
		s.logger.Warn("email sender not configured; skipping email",
			zap.String("kind", kind),
			zap.String("to", toEmail),
		)
	}
}
