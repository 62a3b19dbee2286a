package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Lina0Elman/ApplicationsAssignment1/internal/models"
)

type BlacklistRepo struct {
	DB DBTX
}

const addToBlacklist = `-- name: AddToBlacklist
INSERT INTO blacklisted_tokens (token, blacklisted_at, expires_at)
VALUES ($1, $2, $3)
ON CONFLICT (token) DO NOTHING
`

func (r *BlacklistRepo) Add(ctx context.Context, token models.BlacklistedToken) error {
	blacklistedAt := token.BlacklistedAt
	if blacklistedAt.IsZero() {
		blacklistedAt = time.Now()
	}

	_, err := r.DB.Exec(ctx, addToBlacklist, token.Token, blacklistedAt, token.ExpiresAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Expired entries still count: the pruner removes them, a token with such entry is expired itself
const isBlacklisted = `-- name: IsBlacklisted
SELECT EXISTS (SELECT 1 FROM blacklisted_tokens WHERE token = $1)
`

func (r *BlacklistRepo) Contains(ctx context.Context, token string) (bool, error) {
	rows, _ := r.DB.Query(ctx, isBlacklisted, token)
	found, err := pgx.CollectOneRow(rows, pgx.RowTo[bool])
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return found, nil
}

const deleteExpiredBlacklisted = `-- name: DeleteExpiredBlacklisted
DELETE FROM blacklisted_tokens
WHERE expires_at <= $1
`

func (r *BlacklistRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.DB.Exec(ctx, deleteExpiredBlacklisted, now)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return tag.RowsAffected(), nil
}
