package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/harborcrest/pms/internal/domain"
)

type RatesRepo interface {
	CreatePlan(ctx context.Context, p *domain.RatePlan) (*domain.RatePlan, error)
	GetPlan(ctx context.Context, id int64) (*domain.RatePlan, error)
	// ActivePlans returns active plans ordered priority DESC, id ASC —
	// the rate-plan engine's documented tie-break order.
	ActivePlans(ctx context.Context) ([]domain.RatePlan, error)
	ListPlans(ctx context.Context) ([]domain.RatePlan, error)
	DeactivatePlan(ctx context.Context, id int64) (bool, error)
	CreateRoomRate(ctx context.Context, rr *domain.RoomRate) (*domain.RoomRate, error)
	// RoomRateFor returns the plan's rate for a room type effective on the
	// given date, or nil.
	RoomRateFor(ctx context.Context, planID, roomTypeID int64, on time.Time) (*domain.RoomRate, error)
	RatesForPlan(ctx context.Context, planID int64) ([]domain.RoomRate, error)
}

type RatesRepoImpl struct{ pool *pgxpool.Pool }

func NewRatesRepo(pool *pgxpool.Pool) *RatesRepoImpl { return &RatesRepoImpl{pool: pool} }

const planCols = `id, name, code, plan_type, adjustment_type, adjustment_value,
valid_from, valid_to, day_mask, min_nights, max_nights,
min_advance_booking, max_advance_booking, priority, is_active`

func scanPlan(row pgx.Row) (*domain.RatePlan, error) {
	var p domain.RatePlan
	var mask int16
	err := row.Scan(
		&p.ID, &p.Name, &p.Code, &p.PlanType, &p.AdjustmentType, &p.AdjustmentValue,
		&p.ValidFrom, &p.ValidTo, &mask, &p.MinNights, &p.MaxNights,
		&p.MinAdvanceBooking, &p.MaxAdvanceBooking, &p.Priority, &p.IsActive,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	p.DayMask = domain.DayMask(mask)
	return &p, nil
}

func (r *RatesRepoImpl) CreatePlan(ctx context.Context, p *domain.RatePlan) (*domain.RatePlan, error) {
	const q = `INSERT INTO rate_plans (
	name, code, plan_type, adjustment_type, adjustment_value,
	valid_from, valid_to, day_mask, min_nights, max_nights,
	min_advance_booking, max_advance_booking, priority, is_active
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
RETURNING ` + planCols
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanPlan(r.pool.QueryRow(ctx, q,
		p.Name, p.Code, p.PlanType, p.AdjustmentType, p.AdjustmentValue,
		p.ValidFrom, p.ValidTo, int16(p.DayMask), p.MinNights, p.MaxNights,
		p.MinAdvanceBooking, p.MaxAdvanceBooking, p.Priority, p.IsActive,
	))
}

func (r *RatesRepoImpl) GetPlan(ctx context.Context, id int64) (*domain.RatePlan, error) {
	const q = `SELECT ` + planCols + ` FROM rate_plans WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return scanPlan(r.pool.QueryRow(ctx, q, id))
}

func (r *RatesRepoImpl) ActivePlans(ctx context.Context) ([]domain.RatePlan, error) {
	const q = `SELECT ` + planCols + ` FROM rate_plans
WHERE is_active = true
ORDER BY priority DESC, id ASC`
	return r.queryPlans(ctx, q)
}

func (r *RatesRepoImpl) ListPlans(ctx context.Context) ([]domain.RatePlan, error) {
	const q = `SELECT ` + planCols + ` FROM rate_plans ORDER BY priority DESC, name ASC`
	return r.queryPlans(ctx, q)
}

func (r *RatesRepoImpl) queryPlans(ctx context.Context, q string) ([]domain.RatePlan, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plans []domain.RatePlan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, *p)
	}
	return plans, rows.Err()
}

func (r *RatesRepoImpl) DeactivatePlan(ctx context.Context, id int64) (bool, error) {
	const q = `UPDATE rate_plans SET is_active = false WHERE id = $1 AND is_active = true`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	ct, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

func (r *RatesRepoImpl) CreateRoomRate(ctx context.Context, rr *domain.RoomRate) (*domain.RoomRate, error) {
	const q = `INSERT INTO room_rates (rate_plan_id, room_type_id, price, effective_from, effective_to)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, rate_plan_id, room_type_id, price, effective_from, effective_to`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var out domain.RoomRate
	err := r.pool.QueryRow(ctx, q, rr.RatePlanID, rr.RoomTypeID, rr.Price, rr.EffectiveFrom, rr.EffectiveTo).
		Scan(&out.ID, &out.RatePlanID, &out.RoomTypeID, &out.Price, &out.EffectiveFrom, &out.EffectiveTo)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *RatesRepoImpl) RoomRateFor(ctx context.Context, planID, roomTypeID int64, on time.Time) (*domain.RoomRate, error) {
	const q = `SELECT id, rate_plan_id, room_type_id, price, effective_from, effective_to
FROM room_rates
WHERE rate_plan_id = $1 AND room_type_id = $2
  AND (effective_from IS NULL OR effective_from <= $3)
  AND (effective_to IS NULL OR effective_to >= $3)
ORDER BY id
LIMIT 1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var rr domain.RoomRate
	err := r.pool.QueryRow(ctx, q, planID, roomTypeID, on).
		Scan(&rr.ID, &rr.RatePlanID, &rr.RoomTypeID, &rr.Price, &rr.EffectiveFrom, &rr.EffectiveTo)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rr, nil
}

func (r *RatesRepoImpl) RatesForPlan(ctx context.Context, planID int64) ([]domain.RoomRate, error) {
	const q = `SELECT id, rate_plan_id, room_type_id, price, effective_from, effective_to
FROM room_rates WHERE rate_plan_id = $1 ORDER BY room_type_id`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, planID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rrs []domain.RoomRate
	for rows.Next() {
		var rr domain.RoomRate
		if err := rows.Scan(&rr.ID, &rr.RatePlanID, &rr.RoomTypeID, &rr.Price, &rr.EffectiveFrom, &rr.EffectiveTo); err != nil {
			return nil, err
		}
		rrs = append(rrs, rr)
	}
	return rrs, rows.Err()
}

var _ RatesRepo = (*RatesRepoImpl)(nil)
