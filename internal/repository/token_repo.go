package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"support-desk/internal/domain"
)

// TokenRepository persiste el único desafío pendiente de cada usuario.
type TokenRepository interface {
	// Upsert reemplaza cualquier token previo del mismo usuario.
	Upsert(ctx context.Context, token domain.OneTimeToken) error
	GetByUserID(ctx context.Context, userID string) (domain.OneTimeToken, error)
	GetByToken(ctx context.Context, purpose domain.TokenPurpose, token string) (domain.OneTimeToken, error)
	DeleteByID(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context) (int64, error)
}

type PgTokenRepository struct {
	pool *pgxpool.Pool
}

func NewPgTokenRepository(pool *pgxpool.Pool) *PgTokenRepository {
	return &PgTokenRepository{pool: pool}
}

func (r *PgTokenRepository) Upsert(ctx context.Context, token domain.OneTimeToken) error {
	const query = `
		INSERT INTO one_time_tokens (id, user_id, purpose, token, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE
		SET id = EXCLUDED.id,
			purpose = EXCLUDED.purpose,
			token = EXCLUDED.token,
			expires_at = EXCLUDED.expires_at,
			created_at = EXCLUDED.created_at
	`
	_, err := r.pool.Exec(ctx, query,
		token.ID,
		token.UserID,
		string(token.Purpose),
		token.Token,
		token.ExpiresAt,
		token.CreatedAt,
	)
	return err
}

func (r *PgTokenRepository) GetByUserID(ctx context.Context, userID string) (domain.OneTimeToken, error) {
	const query = `
		SELECT id, user_id, purpose, token, expires_at, created_at
		FROM one_time_tokens
		WHERE user_id = $1
	`
	return scanToken(r.pool.QueryRow(ctx, query, userID))
}

func (r *PgTokenRepository) GetByToken(ctx context.Context, purpose domain.TokenPurpose, token string) (domain.OneTimeToken, error) {
	const query = `
		SELECT id, user_id, purpose, token, expires_at, created_at
		FROM one_time_tokens
		WHERE purpose = $1 AND token = $2
	`
	return scanToken(r.pool.QueryRow(ctx, query, string(purpose), token))
}

func (r *PgTokenRepository) DeleteByID(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM one_time_tokens WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// DeleteExpired borra los tokens vencidos y devuelve cuántos eliminó.
func (r *PgTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM one_time_tokens WHERE expires_at < now()`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanToken(row pgx.Row) (domain.OneTimeToken, error) {
	var (
		t       domain.OneTimeToken
		purpose string
	)
	err := row.Scan(&t.ID, &t.UserID, &purpose, &t.Token, &t.ExpiresAt, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.OneTimeToken{}, err
	}
	t.Purpose = domain.TokenPurpose(purpose)
	return t, err
}
