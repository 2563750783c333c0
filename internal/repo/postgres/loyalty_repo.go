package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/harborcrest/pms/internal/domain"
)

type LoyaltyRepo interface {
	DefaultProgram(ctx context.Context, q Querier) (*domain.LoyaltyProgram, error)
	Enroll(ctx context.Context, q Querier, m *domain.LoyaltyMembership) (*domain.LoyaltyMembership, error)
	MembershipForGuest(ctx context.Context, guestID int64) (*domain.LoyaltyMembership, error)
}

type LoyaltyRepoImpl struct{ pool *pgxpool.Pool }

func NewLoyaltyRepo(pool *pgxpool.Pool) *LoyaltyRepoImpl { return &LoyaltyRepoImpl{pool: pool} }

func (r *LoyaltyRepoImpl) DefaultProgram(ctx context.Context, q Querier) (*domain.LoyaltyProgram, error) {
	q = orPool(q, r.pool)
	const query = `SELECT id, name, tier, is_active FROM loyalty_programs
WHERE is_active = true ORDER BY tier ASC, id ASC LIMIT 1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var p domain.LoyaltyProgram
	err := q.QueryRow(ctx, query).Scan(&p.ID, &p.Name, &p.Tier, &p.IsActive)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *LoyaltyRepoImpl) Enroll(ctx context.Context, q Querier, m *domain.LoyaltyMembership) (*domain.LoyaltyMembership, error) {
	q = orPool(q, r.pool)
	const query = `INSERT INTO loyalty_memberships (guest_id, program_id, membership_number, points)
VALUES ($1, $2, $3, 0)
RETURNING id, guest_id, program_id, membership_number, points, enrolled_at`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var out domain.LoyaltyMembership
	err := q.QueryRow(ctx, query, m.GuestID, m.ProgramID, m.MembershipNumber).Scan(
		&out.ID, &out.GuestID, &out.ProgramID, &out.MembershipNumber, &out.Points, &out.EnrolledAt,
	)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *LoyaltyRepoImpl) MembershipForGuest(ctx context.Context, guestID int64) (*domain.LoyaltyMembership, error) {
	const q = `SELECT id, guest_id, program_id, membership_number, points, enrolled_at
FROM loyalty_memberships WHERE guest_id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var m domain.LoyaltyMembership
	err := r.pool.QueryRow(ctx, q, guestID).Scan(&m.ID, &m.GuestID, &m.ProgramID, &m.MembershipNumber, &m.Points, &m.EnrolledAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

var _ LoyaltyRepo = (*LoyaltyRepoImpl)(nil)
