package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/harborcrest/pms/internal/domain"
)

type UsersRepo interface {
	Create(ctx context.Context, q Querier, username, email, passwordHash, fullName string, phone *string, userType domain.UserType) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	// FindByLogin matches username OR email over non-deleted rows (case-sensitive).
	FindByLogin(ctx context.Context, login string) (*domain.User, error)
	Exists(ctx context.Context, q Querier, username, email string) (bool, error)
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error
	RecordLogin(ctx context.Context, userID int64, at time.Time) error
	SetEmailVerification(ctx context.Context, q Querier, userID int64, token string, expiresAt time.Time) error
	// ConsumeEmailVerification flips is_verified and clears the token; returns
	// the user id, or 0 when the token is unknown, expired, or already used.
	ConsumeEmailVerification(ctx context.Context, token string, now time.Time) (int64, error)
	Enable2FA(ctx context.Context, userID int64, secret string, recoveryDigests []string) error
	Disable2FA(ctx context.Context, userID int64) error
	UpdateRecoveryCodes(ctx context.Context, userID int64, recoveryDigests []string) error
	SoftDelete(ctx context.Context, userID int64, now time.Time) error
	LinkGuest(ctx context.Context, q Querier, userID, guestID int64) error
	GuestIDFor(ctx context.Context, userID int64) (int64, error)
	List(ctx context.Context, limit, offset int) ([]domain.User, error)
}

type UsersRepoImpl struct{ pool *pgxpool.Pool }

func NewUsersRepo(pool *pgxpool.Pool) *UsersRepoImpl { return &UsersRepoImpl{pool: pool} }

const userCols = `id, username, email, password_hash, full_name, phone,
is_active, is_verified, user_type, is_super_admin,
two_factor_enabled, two_factor_secret, two_factor_recovery_codes,
last_login_at, created_at, updated_at, deleted_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FullName, &u.Phone,
		&u.IsActive, &u.IsVerified, &u.UserType, &u.IsSuperAdmin,
		&u.TwoFactorEnabled, &u.TwoFactorSecret, &u.TwoFactorRecoveryCodes,
		&u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt, &u.DeletedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UsersRepoImpl) Create(ctx context.Context, q Querier, username, email, passwordHash, fullName string, phone *string, userType domain.UserType) (*domain.User, error) {
	q = orPool(q, r.pool)
	const query = `INSERT INTO users (username, email, password_hash, full_name, phone, user_type)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + userCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanUser(q.QueryRow(ctx, query, username, email, passwordHash, fullName, phone, userType))
}

func (r *UsersRepoImpl) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	const q = `SELECT ` + userCols + ` FROM users WHERE id = $1 AND deleted_at IS NULL`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return scanUser(r.pool.QueryRow(ctx, q, id))
}

func (r *UsersRepoImpl) FindByLogin(ctx context.Context, login string) (*domain.User, error) {
	const q = `SELECT ` + userCols + ` FROM users
WHERE (username = $1 OR email = $1) AND deleted_at IS NULL`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return scanUser(r.pool.QueryRow(ctx, q, login))
}

func (r *UsersRepoImpl) Exists(ctx context.Context, q Querier, username, email string) (bool, error) {
	q = orPool(q, r.pool)
	const query = `SELECT EXISTS(
SELECT 1 FROM users WHERE (username = $1 OR email = $2) AND deleted_at IS NULL)`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var exists bool
	err := q.QueryRow(ctx, query, username, email).Scan(&exists)
	return exists, err
}

func (r *UsersRepoImpl) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	const q = `UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := r.pool.Exec(ctx, q, userID, passwordHash)
	return err
}

func (r *UsersRepoImpl) RecordLogin(ctx context.Context, userID int64, at time.Time) error {
	const q = `UPDATE users SET last_login_at = $2, updated_at = now() WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := r.pool.Exec(ctx, q, userID, at)
	return err
}

func (r *UsersRepoImpl) SetEmailVerification(ctx context.Context, q Querier, userID int64, token string, expiresAt time.Time) error {
	q = orPool(q, r.pool)
	const query = `UPDATE users
SET email_verification_token = $2, email_token_expires_at = $3, updated_at = now()
WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := q.Exec(ctx, query, userID, token, expiresAt)
	return err
}

func (r *UsersRepoImpl) ConsumeEmailVerification(ctx context.Context, token string, now time.Time) (int64, error) {
	const q = `UPDATE users
SET is_verified = true,
    email_verification_token = NULL,
    email_token_expires_at = NULL,
    updated_at = now()
WHERE email_verification_token = $1
  AND email_token_expires_at > $2
  AND is_verified = false
RETURNING id`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var userID int64
	err := r.pool.QueryRow(ctx, q, token, now).Scan(&userID)
	if err == pgx.ErrNoRows {
		return 0, nil
	}
	return userID, err
}

func (r *UsersRepoImpl) Enable2FA(ctx context.Context, userID int64, secret string, recoveryDigests []string) error {
	const q = `UPDATE users
SET two_factor_enabled = true, two_factor_secret = $2,
    two_factor_recovery_codes = $3, updated_at = now()
WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := r.pool.Exec(ctx, q, userID, secret, recoveryDigests)
	return err
}

func (r *UsersRepoImpl) Disable2FA(ctx context.Context, userID int64) error {
	const q = `UPDATE users
SET two_factor_enabled = false, two_factor_secret = NULL,
    two_factor_recovery_codes = NULL, updated_at = now()
WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := r.pool.Exec(ctx, q, userID)
	return err
}

func (r *UsersRepoImpl) UpdateRecoveryCodes(ctx context.Context, userID int64, recoveryDigests []string) error {
	const q = `UPDATE users SET two_factor_recovery_codes = $2, updated_at = now() WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := r.pool.Exec(ctx, q, userID, recoveryDigests)
	return err
}

func (r *UsersRepoImpl) SoftDelete(ctx context.Context, userID int64, now time.Time) error {
	const q = `UPDATE users SET deleted_at = $2, is_active = false, updated_at = now() WHERE id = $1 AND deleted_at IS NULL`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := r.pool.Exec(ctx, q, userID, now)
	return err
}

func (r *UsersRepoImpl) LinkGuest(ctx context.Context, q Querier, userID, guestID int64) error {
	q = orPool(q, r.pool)
	const query = `INSERT INTO user_guests (user_id, guest_id, can_book_for, can_view_bookings, can_modify)
VALUES ($1, $2, true, true, true)`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := q.Exec(ctx, query, userID, guestID)
	return err
}

func (r *UsersRepoImpl) GuestIDFor(ctx context.Context, userID int64) (int64, error) {
	const q = `SELECT guest_id FROM user_guests WHERE user_id = $1 ORDER BY guest_id LIMIT 1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var guestID int64
	err := r.pool.QueryRow(ctx, q, userID).Scan(&guestID)
	if err == pgx.ErrNoRows {
		return 0, nil
	}
	return guestID, err
}

func (r *UsersRepoImpl) List(ctx context.Context, limit, offset int) ([]domain.User, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	const q = `SELECT ` + userCols + ` FROM users
WHERE deleted_at IS NULL ORDER BY id LIMIT $1 OFFSET $2`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	us := make([]domain.User, 0, limit)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		us = append(us, *u)
	}
	return us, rows.Err()
}

var _ UsersRepo = (*UsersRepoImpl)(nil)
