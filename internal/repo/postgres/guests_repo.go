package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/harborcrest/pms/internal/domain"
)

type GuestsRepo interface {
	Create(ctx context.Context, q Querier, in *domain.GuestInput) (*domain.Guest, error)
	GetByID(ctx context.Context, q Querier, id int64) (*domain.Guest, error)
	Update(ctx context.Context, q Querier, id int64, in *domain.GuestInput) (*domain.Guest, error)
	List(ctx context.Context, limit, offset int) ([]domain.Guest, error)
	SoftDelete(ctx context.Context, id int64, now time.Time) (bool, error)
	HasActiveBookings(ctx context.Context, guestID int64) (bool, error)
	// AdjustCredits adds delta (may be negative) to the guest's
	// complimentary-night credit, failing the statement if the balance
	// would go negative.
	AdjustCredits(ctx context.Context, q Querier, guestID int64, delta int) (bool, error)
}

type GuestsRepoImpl struct{ pool *pgxpool.Pool }

func NewGuestsRepo(pool *pgxpool.Pool) *GuestsRepoImpl { return &GuestsRepoImpl{pool: pool} }

const guestCols = `id, first_name, last_name, email, phone, ic_number, nationality,
address_line1, city, state_province, postal_code, country,
complimentary_nights_credit, is_active, created_at, updated_at, deleted_at`

func scanGuest(row pgx.Row) (*domain.Guest, error) {
	var g domain.Guest
	err := row.Scan(
		&g.ID, &g.FirstName, &g.LastName, &g.Email, &g.Phone, &g.ICNumber, &g.Nationality,
		&g.AddressLine1, &g.City, &g.StateProvince, &g.PostalCode, &g.Country,
		&g.ComplimentaryNightsCredit, &g.IsActive, &g.CreatedAt, &g.UpdatedAt, &g.DeletedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *GuestsRepoImpl) Create(ctx context.Context, q Querier, in *domain.GuestInput) (*domain.Guest, error) {
	q = orPool(q, r.pool)
	const query = `INSERT INTO guests (
	first_name, last_name, email, phone, ic_number, nationality,
	address_line1, city, state_province, postal_code, country
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
RETURNING ` + guestCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanGuest(q.QueryRow(ctx, query,
		in.FirstName, in.LastName, in.Email, in.Phone, in.ICNumber, in.Nationality,
		in.AddressLine1, in.City, in.StateProvince, in.PostalCode, in.Country,
	))
}

func (r *GuestsRepoImpl) GetByID(ctx context.Context, q Querier, id int64) (*domain.Guest, error) {
	q = orPool(q, r.pool)
	const query = `SELECT ` + guestCols + ` FROM guests WHERE id = $1 AND deleted_at IS NULL`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return scanGuest(q.QueryRow(ctx, query, id))
}

func (r *GuestsRepoImpl) Update(ctx context.Context, q Querier, id int64, in *domain.GuestInput) (*domain.Guest, error) {
	q = orPool(q, r.pool)
	const query = `UPDATE guests SET
	first_name = $2, last_name = $3,
	email = COALESCE($4, email), phone = COALESCE($5, phone),
	ic_number = COALESCE($6, ic_number), nationality = COALESCE($7, nationality),
	address_line1 = COALESCE($8, address_line1), city = COALESCE($9, city),
	state_province = COALESCE($10, state_province), postal_code = COALESCE($11, postal_code),
	country = COALESCE($12, country), updated_at = now()
WHERE id = $1 AND deleted_at IS NULL
RETURNING ` + guestCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanGuest(q.QueryRow(ctx, query, id,
		in.FirstName, in.LastName, in.Email, in.Phone, in.ICNumber, in.Nationality,
		in.AddressLine1, in.City, in.StateProvince, in.PostalCode, in.Country,
	))
}

func (r *GuestsRepoImpl) List(ctx context.Context, limit, offset int) ([]domain.Guest, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	const q = `SELECT ` + guestCols + ` FROM guests
WHERE deleted_at IS NULL ORDER BY id LIMIT $1 OFFSET $2`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	gs := make([]domain.Guest, 0, limit)
	for rows.Next() {
		g, err := scanGuest(rows)
		if err != nil {
			return nil, err
		}
		gs = append(gs, *g)
	}
	return gs, rows.Err()
}

func (r *GuestsRepoImpl) SoftDelete(ctx context.Context, id int64, now time.Time) (bool, error) {
	const q = `UPDATE guests SET deleted_at = $2, is_active = false, updated_at = now()
WHERE id = $1 AND deleted_at IS NULL`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	ct, err := r.pool.Exec(ctx, q, id, now)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

func (r *GuestsRepoImpl) HasActiveBookings(ctx context.Context, guestID int64) (bool, error) {
	const q = `SELECT EXISTS(
	SELECT 1 FROM bookings
	WHERE guest_id = $1 AND status NOT IN ('checked_out', 'cancelled', 'no_show')
)`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var has bool
	err := r.pool.QueryRow(ctx, q, guestID).Scan(&has)
	return has, err
}

func (r *GuestsRepoImpl) AdjustCredits(ctx context.Context, q Querier, guestID int64, delta int) (bool, error) {
	q = orPool(q, r.pool)
	const query = `UPDATE guests
SET complimentary_nights_credit = complimentary_nights_credit + $2, updated_at = now()
WHERE id = $1 AND deleted_at IS NULL
  AND complimentary_nights_credit + $2 >= 0`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	ct, err := q.Exec(ctx, query, guestID, delta)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

var _ GuestsRepo = (*GuestsRepoImpl)(nil)
