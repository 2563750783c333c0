package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RefreshRepo interface {
	Store(ctx context.Context, q Querier, userID int64, tokenHash string, expiresAt time.Time) error
	// ConsumeForRotation atomically revokes a live token and returns its
	// user id. Concurrent calls on the same token race on the revoked_at
	// guard; at most one wins. Returns 0 when the token is unknown,
	// expired, or already revoked.
	ConsumeForRotation(ctx context.Context, q Querier, tokenHash string, now time.Time) (int64, error)
	Revoke(ctx context.Context, tokenHash string, now time.Time) error
	RevokeAllForUser(ctx context.Context, userID int64, now time.Time) error
}

type RefreshRepoImpl struct{ pool *pgxpool.Pool }

func NewRefreshRepo(pool *pgxpool.Pool) *RefreshRepoImpl { return &RefreshRepoImpl{pool: pool} }

func (r *RefreshRepoImpl) Store(ctx context.Context, q Querier, userID int64, tokenHash string, expiresAt time.Time) error {
	q = orPool(q, r.pool)
	const query = `INSERT INTO refresh_tokens (user_id, token_hash, expires_at) VALUES ($1, $2, $3)`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := q.Exec(ctx, query, userID, tokenHash, expiresAt)
	return err
}

func (r *RefreshRepoImpl) ConsumeForRotation(ctx context.Context, q Querier, tokenHash string, now time.Time) (int64, error) {
	q = orPool(q, r.pool)
	const query = `UPDATE refresh_tokens
SET revoked_at = $2
WHERE token_hash = $1
  AND revoked_at IS NULL
  AND expires_at > $2
RETURNING user_id`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var userID int64
	err := q.QueryRow(ctx, query, tokenHash, now).Scan(&userID)
	if err == pgx.ErrNoRows {
		return 0, nil
	}
	return userID, err
}

func (r *RefreshRepoImpl) Revoke(ctx context.Context, tokenHash string, now time.Time) error {
	const q = `UPDATE refresh_tokens SET revoked_at = $2 WHERE token_hash = $1 AND revoked_at IS NULL`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := r.pool.Exec(ctx, q, tokenHash, now)
	return err
}

func (r *RefreshRepoImpl) RevokeAllForUser(ctx context.Context, userID int64, now time.Time) error {
	const q = `UPDATE refresh_tokens SET revoked_at = $2 WHERE user_id = $1 AND revoked_at IS NULL`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := r.pool.Exec(ctx, q, userID, now)
	return err
}

var _ RefreshRepo = (*RefreshRepoImpl)(nil)
