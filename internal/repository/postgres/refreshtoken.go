package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Lina0Elman/ApplicationsAssignment1/internal/apperrors"
	"github.com/Lina0Elman/ApplicationsAssignment1/internal/models"
)

type RefreshTokenRepo struct {
	DB DBTX
}

const saveToken = `-- name: SaveRefreshToken
INSERT INTO refresh_tokens (id, user_id, token, access_token, created_at, expires_at)
VALUES ($1, $2, $3, $4, $5, $6)
`

func (r *RefreshTokenRepo) Save(ctx context.Context, token models.RefreshToken) error {
	_, err := r.DB.Exec(ctx, saveToken, token.ID, token.UserID, token.Token, token.AccessToken, token.CreatedAt, token.ExpiresAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

const getToken = `-- name: GetRefreshToken
SELECT id, user_id, token, access_token, created_at, expires_at
FROM refresh_tokens
WHERE token = $1 AND expires_at > NOW()
`

func (r *RefreshTokenRepo) Get(ctx context.Context, token string) (models.RefreshToken, error) {
	rows, _ := r.DB.Query(ctx, getToken, token)
	t, err := pgx.CollectOneRow(rows, rowToRefreshToken)
	return t, refreshTokenErr(err)
}

// Lock the row so concurrent refreshes are serialized and each one sees the access token it replaces
const replaceAccess = `-- name: ReplaceAccessToken
WITH previous AS (
    SELECT id, access_token
    FROM refresh_tokens
    WHERE token = $1 AND expires_at > NOW()
    FOR UPDATE
)
UPDATE refresh_tokens t
SET access_token = $2
FROM previous
WHERE t.id = previous.id
RETURNING previous.access_token
`

func (r *RefreshTokenRepo) ReplaceAccess(ctx context.Context, token string, access string) (string, error) {
	rows, _ := r.DB.Query(ctx, replaceAccess, token, access)
	previous, err := pgx.CollectOneRow(rows, pgx.RowTo[string])
	return previous, refreshTokenErr(err)
}

const deleteToken = `-- name: DeleteRefreshToken
DELETE FROM refresh_tokens
WHERE token = $1
RETURNING id, user_id, token, access_token, created_at, expires_at
`

func (r *RefreshTokenRepo) Delete(ctx context.Context, token string) (models.RefreshToken, error) {
	rows, _ := r.DB.Query(ctx, deleteToken, token)
	t, err := pgx.CollectOneRow(rows, rowToRefreshToken)
	return t, refreshTokenErr(err)
}

const listByUser = `-- name: ListUserRefreshTokens
SELECT id, user_id, token, access_token, created_at, expires_at
FROM refresh_tokens
WHERE user_id = $1 AND expires_at > NOW()
ORDER BY created_at
`

func (r *RefreshTokenRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.RefreshToken, error) {
	rows, _ := r.DB.Query(ctx, listByUser, userID)
	tokens, err := pgx.CollectRows(rows, rowToRefreshToken)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return tokens, nil
}

const deleteExpiredTokens = `-- name: DeleteExpiredRefreshTokens
DELETE FROM refresh_tokens
WHERE expires_at <= $1
`

func (r *RefreshTokenRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.DB.Exec(ctx, deleteExpiredTokens, now)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return tag.RowsAffected(), nil
}

func rowToRefreshToken(row pgx.CollectableRow) (models.RefreshToken, error) {
	var t models.RefreshToken
	err := row.Scan(&t.ID, &t.UserID, &t.Token, &t.AccessToken, &t.CreatedAt, &t.ExpiresAt)
	return t, err
}

func refreshTokenErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		return fmt.Errorf("repo error: %w", apperrors.ErrRefreshTokenNotFound)
	default:
		return fmt.Errorf("db error: %w", err)
	}
}
