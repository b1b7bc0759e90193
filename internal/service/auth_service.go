package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"launchpad/internal/domain"
	"launchpad/internal/email"
	"launchpad/internal/repository"
)

const bcryptCost = 12

const (
	passwordMinLength = 12
	passwordMaxLength = 72
)

var (
	ErrInvalidEmail       = errors.New("invalid email")
	ErrEmailExists        = errors.New("email already registered")
	ErrEmailSendFailure   = errors.New("email send failed")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
)

// InputError es un fallo de validacion con mensaje dirigido al cliente.
type InputError struct {
	Message string
}

func (e *InputError) Error() string {
	return e.Message
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// SessionRevoker invalida todas las sesiones vivas de un usuario.
type SessionRevoker interface {
	RevokeAllForUser(userID string) error
}

// AuthService coordina signup, login, verificacion de correo y reset de contrasena.
type AuthService struct {
	logger      *zap.Logger
	users       repository.UserRepository
	tokens      *TokenService
	emailSender email.Sender
	sessions    SessionRevoker
}

func NewAuthService(logger *zap.Logger, users repository.UserRepository, tokens *TokenService, emailSender email.Sender, sessions SessionRevoker) *AuthService {
	return &AuthService{
		logger:      logger,
		users:       users,
		tokens:      tokens,
		emailSender: emailSender,
		sessions:    sessions,
	}
}

// Signup crea un usuario sin verificar y envia el correo de verificacion.
func (s *AuthService) Signup(ctx context.Context, emailAddr, password, name string) (domain.User, error) {
	emailAddr = normalizeEmail(emailAddr)
	if !emailPattern.MatchString(emailAddr) {
		return domain.User{}, ErrInvalidEmail
	}
	if err := validatePasswordStrength(password); err != nil {
		return domain.User{}, err
	}

	_, err := s.users.GetByEmail(ctx, emailAddr)
	if err == nil {
		return domain.User{}, ErrEmailExists
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, err
	}

	hashBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return domain.User{}, err
	}

	user := domain.User{
		ID:           uuid.NewString(),
		Email:        emailAddr,
		Name:         strings.TrimSpace(name),
		PasswordHash: string(hashBytes),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return domain.User{}, err
	}

	if err := s.sendVerification(ctx, user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// Authenticate valida credenciales y devuelve el usuario.
// No rechaza usuarios sin verificar; ese gate es de los consumidores.
func (s *AuthService) Authenticate(ctx context.Context, emailAddr, password string) (domain.User, error) {
	emailAddr = normalizeEmail(emailAddr)
	password = strings.TrimSpace(password)
	if emailAddr == "" || password == "" {
		return domain.User{}, ErrInvalidCredentials
	}
	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, err
	}
	if user.PasswordHash == "" {
		return domain.User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return domain.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// VerifyEmail consume un token de verificacion y marca el correo como confirmado.
func (s *AuthService) VerifyEmail(ctx context.Context, emailAddr, rawToken string) (domain.User, error) {
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" || strings.TrimSpace(rawToken) == "" {
		return domain.User{}, ErrTokenInvalid
	}

	user, err := s.tokens.Consume(ctx, domain.TokenPurposeEmailVerification, emailAddr, rawToken)
	if err != nil {
		return domain.User{}, err
	}

	verifiedAt := time.Now().UTC()
	if err := s.users.VerifyEmail(ctx, user.ID, verifiedAt); err != nil {
		return domain.User{}, err
	}
	user.EmailVerifiedAt = &verifiedAt
	return user, nil
}

// ResendVerification reemite el token de verificacion si la cuenta existe y
// sigue sin confirmar. Nunca revela si la cuenta existe.
func (s *AuthService) ResendVerification(ctx context.Context, emailAddr string) error {
	emailAddr = normalizeEmail(emailAddr)
	if !emailPattern.MatchString(emailAddr) {
		return ErrInvalidEmail
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return err
	}
	if user.EmailVerified() {
		return nil
	}
	return s.sendVerification(ctx, user)
}

// RequestPasswordReset emite un token de reset si la cuenta existe.
// Nunca revela si la cuenta existe.
func (s *AuthService) RequestPasswordReset(ctx context.Context, emailAddr string) error {
	emailAddr = normalizeEmail(emailAddr)
	if !emailPattern.MatchString(emailAddr) {
		return ErrInvalidEmail
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return err
	}

	raw, err := s.tokens.Issue(ctx, domain.TokenPurposePasswordReset, user.Email, user.ID, ResetTokenTTL)
	if err != nil {
		return err
	}
	if err := s.emailSender.SendPasswordResetEmail(ctx, user.Email, raw); err != nil {
		if s.logger != nil {
			s.logger.Warn("send password reset email failed", zap.Error(err), zap.String("email", user.Email))
		}
		return ErrEmailSendFailure
	}
	return nil
}

// ConfirmPasswordReset quema el token, reescribe la contrasena y revoca sesiones.
// El consumo del token va primero: si falla, nada se muta.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, emailAddr, rawToken, newPassword string) error {
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" || strings.TrimSpace(rawToken) == "" {
		return ErrTokenInvalid
	}
	if err := validatePasswordStrength(newPassword); err != nil {
		return err
	}

	user, err := s.tokens.Consume(ctx, domain.TokenPurposePasswordReset, emailAddr, rawToken)
	if err != nil {
		return err
	}

	hashBytes, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, string(hashBytes)); err != nil {
		return err
	}

	if s.sessions != nil {
		if err := s.sessions.RevokeAllForUser(user.ID); err != nil && s.logger != nil {
			s.logger.Warn("revoke sessions failed", zap.Error(err), zap.String("user_id", user.ID))
		}
	}

	if err := s.emailSender.SendPasswordResetSuccessEmail(ctx, user.Email); err != nil && s.logger != nil {
		s.logger.Warn("send reset success email failed", zap.Error(err), zap.String("email", user.Email))
	}
	return nil
}

func (s *AuthService) sendVerification(ctx context.Context, user domain.User) error {
	raw, err := s.tokens.Issue(ctx, domain.TokenPurposeEmailVerification, user.Email, user.ID, VerificationTokenTTL)
	if err != nil {
		return err
	}
	if err := s.emailSender.SendVerificationEmail(ctx, user.Email, raw); err != nil {
		if s.logger != nil {
			s.logger.Warn("send verification email failed", zap.Error(err), zap.String("email", user.Email))
		}
		return ErrEmailSendFailure
	}
	return nil
}

// validatePasswordStrength aplica la politica de contrasenas en signup y reset.
// Cada regla se chequea por separado para nombrar la que fallo.
func validatePasswordStrength(password string) error {
	if len(password) < passwordMinLength {
		return &InputError{Message: fmt.Sprintf("Password must be at least %d characters", passwordMinLength)}
	}
	if len(password) > passwordMaxLength {
		return &InputError{Message: fmt.Sprintf("Password must be at most %d characters", passwordMaxLength)}
	}
	var hasUpper, hasLower, hasDigitOrSymbol bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		default:
			hasDigitOrSymbol = true
		}
	}
	if !hasUpper {
		return &InputError{Message: "Password must include an uppercase letter"}
	}
	if !hasLower {
		return &InputError{Message: "Password must include a lowercase letter"}
	}
	if !hasDigitOrSymbol {
		return &InputError{Message: "Password must include a number or symbol"}
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
