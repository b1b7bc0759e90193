package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"launchpad/internal/domain"
	"launchpad/internal/repository"
)

// TTLs de politica para tokens; constantes, no negociables por request.
const (
	VerificationTokenTTL = 24 * time.Hour
	ResetTokenTTL        = time.Hour

	tokenSecretBytes = 32
)

// ErrTokenInvalid colapsa todo fallo de consumo (inexistente, expirado o ya usado)
// en una sola respuesta para no filtrar estado a un atacante.
var ErrTokenInvalid = errors.New("token invalid or expired")

// TokenService emite y consume tokens de un solo uso con hash en reposo.
type TokenService struct {
	logger *zap.Logger
	tokens repository.AuthTokenRepository
	users  repository.UserRepository
}

func NewTokenService(logger *zap.Logger, tokens repository.AuthTokenRepository, users repository.UserRepository) *TokenService {
	return &TokenService{
		logger: logger,
		tokens: tokens,
		users:  users,
	}
}

// Issue genera un secreto de alta entropia, guarda solo su hash y devuelve el crudo.
func (s *TokenService) Issue(ctx context.Context, purpose, identifier, userID string, ttl time.Duration) (string, error) {
	raw, err := generateTokenSecret()
	if err != nil {
		return "", err
	}
	now := time.Now().UTC()
	token := domain.AuthToken{
		ID:         uuid.NewString(),
		Purpose:    purpose,
		Identifier: identifier,
		TokenHash:  hashTokenSecret(raw),
		ExpiresAt:  now.Add(ttl),
		UserID:     userID,
		CreatedAt:  now,
	}
	if err := s.tokens.Create(ctx, token); err != nil {
		return "", err
	}
	return raw, nil
}

// Consume valida y quema el token; devuelve el usuario asociado.
// Marcar el uso es el primer paso fatal: si falla, la contrasena no se toca.
func (s *TokenService) Consume(ctx context.Context, purpose, identifier, rawSecret string) (domain.User, error) {
	token, err := s.tokens.GetByHash(ctx, purpose, identifier, hashTokenSecret(rawSecret))
	if err != nil {
		return domain.User{}, ErrTokenInvalid
	}

	now := time.Now().UTC()
	if token.Status(now) != domain.TokenStatusValid {
		return domain.User{}, ErrTokenInvalid
	}

	if err := s.tokens.MarkUsed(ctx, token.ID, now); err != nil {
		if !errors.Is(err, repository.ErrTokenAlreadyUsed) && s.logger != nil {
			s.logger.Error("mark token used failed", zap.Error(err))
		}
		return domain.User{}, ErrTokenInvalid
	}

	user, err := s.users.GetByID(ctx, token.UserID)
	if err != nil {
		return domain.User{}, ErrTokenInvalid
	}
	return user, nil
}

func generateTokenSecret() (string, error) {
	buf := make([]byte, tokenSecretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func hashTokenSecret(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
