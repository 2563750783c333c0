package postgres

import (
	"context"
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type IdempotencyRepo interface {
	// Reserve claims the key for a new booking. If the key was already
	// claimed it returns the booking id of the original request, else 0.
	Reserve(ctx context.Context, q Querier, key string, bookingID int64) (existingBookingID int64, err error)
	// CleanupExpired removes keys older than the retention window.
	CleanupExpired(ctx context.Context) (int64, error)
}

type IdempotencyRepoImpl struct{ pool *pgxpool.Pool }

func NewIdempotencyRepo(pool *pgxpool.Pool) *IdempotencyRepoImpl {
	return &IdempotencyRepoImpl{pool: pool}
}

func hashIdempotencyKey(key string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(key)))
}

func (r *IdempotencyRepoImpl) Reserve(ctx context.Context, q Querier, key string, bookingID int64) (int64, error) {
	q = orPool(q, r.pool)
	const insert = `INSERT INTO idempotency_keys (key_hash, booking_id, expires_at)
VALUES ($1, $2, now() + interval '24 hours')
ON CONFLICT (key_hash) DO NOTHING
RETURNING booking_id`
	const lookup = `SELECT booking_id FROM idempotency_keys WHERE key_hash = $1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	keyHash := hashIdempotencyKey(key)

	var id int64
	err := q.QueryRow(ctx, insert, keyHash, bookingID).Scan(&id)
	if err == nil {
		// We won the insert; no prior booking for this key.
		return 0, nil
	}
	if err != pgx.ErrNoRows {
		return 0, err
	}

	if err := q.QueryRow(ctx, lookup, keyHash).Scan(&id); err != nil {
		if err == pgx.ErrNoRows {
			return 0, nil
		}
		return 0, err
	}
	return id, nil
}

func (r *IdempotencyRepoImpl) CleanupExpired(ctx context.Context) (int64, error) {
	const q = `DELETE FROM idempotency_keys WHERE expires_at < now()`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	tag, err := r.pool.Exec(ctx, q)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

var _ IdempotencyRepo = (*IdempotencyRepoImpl)(nil)
