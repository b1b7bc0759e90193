package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"launchpad/internal/domain"
)

// AuthTokenRepository define el contrato de persistencia para tokens de un solo uso.
// Los tokens nunca se borran; quedan como rastro de auditoria.
type AuthTokenRepository interface {
	Create(ctx context.Context, token domain.AuthToken) error
	GetByHash(ctx context.Context, purpose, identifier, tokenHash string) (domain.AuthToken, error)
	MarkUsed(ctx context.Context, id string, usedAt time.Time) error
}

// PgAuthTokenRepository implementa AuthTokenRepository usando pgxpool.
type PgAuthTokenRepository struct {
	pool *pgxpool.Pool
}

func NewPgAuthTokenRepository(pool *pgxpool.Pool) *PgAuthTokenRepository {
	return &PgAuthTokenRepository{pool: pool}
}

func (r *PgAuthTokenRepository) Create(ctx context.Context, token domain.AuthToken) error {
	const query = `
		INSERT INTO auth_tokens (id, purpose, identifier, token_hash, expires_at, used_at, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.pool.Exec(ctx, query,
		token.ID,
		token.Purpose,
		token.Identifier,
		token.TokenHash,
		token.ExpiresAt,
		token.UsedAt,
		token.UserID,
		token.CreatedAt,
	)
	return err
}

func (r *PgAuthTokenRepository) GetByHash(ctx context.Context, purpose, identifier, tokenHash string) (domain.AuthToken, error) {
	const query = `
		SELECT id, purpose, identifier, token_hash, expires_at, used_at, user_id, created_at
		FROM auth_tokens
		WHERE purpose = $1 AND identifier = $2 AND token_hash = $3
		ORDER BY created_at DESC
		LIMIT 1
	`
	var t domain.AuthToken
	err := r.pool.QueryRow(ctx, query, purpose, identifier, tokenHash).Scan(
		&t.ID,
		&t.Purpose,
		&t.Identifier,
		&t.TokenHash,
		&t.ExpiresAt,
		&t.UsedAt,
		&t.UserID,
		&t.CreatedAt,
	)
	if err != nil {
		return domain.AuthToken{}, err
	}
	return t, nil
}

func (r *PgAuthTokenRepository) MarkUsed(ctx context.Context, id string, usedAt time.Time) error {
	const query = `
		UPDATE auth_tokens
		SET used_at = $2
		WHERE id = $1 AND used_at IS NULL
	`
	tag, err := r.pool.Exec(ctx, query, id, usedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTokenAlreadyUsed
	}
	return nil
}
