package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/harborcrest/pms/internal/domain"
)

type BookingsRepo interface {
	Create(ctx context.Context, q Querier, b *domain.Booking) (*domain.Booking, error)
	GetByID(ctx context.Context, q Querier, id int64) (*domain.Booking, error)
	GetByNumber(ctx context.Context, bookingNumber string) (*domain.Booking, error)
	List(ctx context.Context, f domain.BookingFilter) ([]domain.Booking, error)
	// HasOverlap reports whether any non-terminal booking for the room
	// intersects the half-open [checkIn, checkOut) range. excludeID skips a
	// booking (0 for none).
	HasOverlap(ctx context.Context, q Querier, roomID int64, checkIn, checkOut time.Time, excludeID int64) (bool, error)
	// NextSequenceForDay returns the next value of the per-day booking
	// number counter.
	NextSequenceForDay(ctx context.Context, q Querier, day time.Time) (int64, error)
	UpdateStatus(ctx context.Context, q Querier, id int64, status domain.BookingStatus, now time.Time) error
	SetActualCheckOut(ctx context.Context, q Querier, id int64, at time.Time) error
	UpdatePaymentStatus(ctx context.Context, q Querier, id int64, status domain.PaymentStatus) error
	SetPreCheckinToken(ctx context.Context, id int64, token string, expiresAt time.Time) error
	GetByPreCheckinToken(ctx context.Context, token string) (*domain.Booking, error)
	CompletePreCheckin(ctx context.Context, q Querier, id int64, marketCode, specialRequests *string, now time.Time) error
	MarkComplimentary(ctx context.Context, q Querier, id int64, reason string, start, end time.Time, nights int, originalTotal decimal.Decimal) error
	SetCreditsConverted(ctx context.Context, q Querier, id int64) error
	// InHouseOn lists bookings occupying a room on the audit date: in-house
	// status and check_in <= date < check_out.
	InHouseOn(ctx context.Context, q Querier, date time.Time) ([]domain.Booking, error)
	// ConfirmedArrivals lists confirmed bookings arriving on the given day.
	ConfirmedArrivals(ctx context.Context, day time.Time) ([]domain.Booking, error)
	// InHouseDepartures lists in-house bookings due out on the given day.
	InHouseDepartures(ctx context.Context, day time.Time) ([]domain.Booking, error)
}

type BookingsRepoImpl struct{ pool *pgxpool.Pool }

func NewBookingsRepo(pool *pgxpool.Pool) *BookingsRepoImpl { return &BookingsRepoImpl{pool: pool} }

const bookingCols = `id, booking_number, guest_id, room_id, check_in_date, check_out_date,
room_rate, subtotal, tax_amount, discount_amount, total_amount,
status, payment_status, adults, children, market_code, special_requests,
pre_checkin_completed, pre_checkin_completed_at, pre_checkin_token, pre_checkin_token_expires_at,
is_complimentary, complimentary_reason, complimentary_start_date, complimentary_end_date,
complimentary_nights, original_total_amount, credits_converted,
deposit_paid, deposit_amount, company_id, actual_check_out,
created_by, created_at, updated_at`

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	err := row.Scan(
		&b.ID, &b.BookingNumber, &b.GuestID, &b.RoomID, &b.CheckInDate, &b.CheckOutDate,
		&b.RoomRate, &b.Subtotal, &b.TaxAmount, &b.DiscountAmount, &b.TotalAmount,
		&b.Status, &b.PaymentStatus, &b.Adults, &b.Children, &b.MarketCode, &b.SpecialRequests,
		&b.PreCheckinCompleted, &b.PreCheckinCompletedAt, &b.PreCheckinToken, &b.PreCheckinTokenExpiresAt,
		&b.IsComplimentary, &b.ComplimentaryReason, &b.ComplimentaryStartDate, &b.ComplimentaryEndDate,
		&b.ComplimentaryNights, &b.OriginalTotalAmount, &b.CreditsConverted,
		&b.DepositPaid, &b.DepositAmount, &b.CompanyID, &b.ActualCheckOut,
		&b.CreatedBy, &b.CreatedAt, &b.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingsRepoImpl) Create(ctx context.Context, q Querier, b *domain.Booking) (*domain.Booking, error) {
	q = orPool(q, r.pool)
	const query = `INSERT INTO bookings (
	booking_number, guest_id, room_id, check_in_date, check_out_date,
	room_rate, subtotal, tax_amount, discount_amount, total_amount,
	status, payment_status, adults, children, market_code, special_requests,
	is_complimentary, company_id, created_by
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
RETURNING ` + bookingCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanBooking(q.QueryRow(ctx, query,
		b.BookingNumber, b.GuestID, b.RoomID, b.CheckInDate, b.CheckOutDate,
		b.RoomRate, b.Subtotal, b.TaxAmount, b.DiscountAmount, b.TotalAmount,
		b.Status, b.PaymentStatus, b.Adults, b.Children, b.MarketCode, b.SpecialRequests,
		b.IsComplimentary, b.CompanyID, b.CreatedBy,
	))
}

func (r *BookingsRepoImpl) GetByID(ctx context.Context, q Querier, id int64) (*domain.Booking, error) {
	q = orPool(q, r.pool)
	const query = `SELECT ` + bookingCols + ` FROM bookings WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return scanBooking(q.QueryRow(ctx, query, id))
}

func (r *BookingsRepoImpl) GetByNumber(ctx context.Context, bookingNumber string) (*domain.Booking, error) {
	const q = `SELECT ` + bookingCols + ` FROM bookings WHERE booking_number = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return scanBooking(r.pool.QueryRow(ctx, q, bookingNumber))
}

func (r *BookingsRepoImpl) List(ctx context.Context, f domain.BookingFilter) ([]domain.Booking, error) {
	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	var conds []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.Status != nil {
		add("status = $%d", *f.Status)
	}
	if f.GuestID != nil {
		add("guest_id = $%d", *f.GuestID)
	}
	if f.RoomID != nil {
		add("room_id = $%d", *f.RoomID)
	}
	if f.DateFrom != nil {
		add("check_out_date > $%d", *f.DateFrom)
	}
	if f.DateTo != nil {
		add("check_in_date < $%d", *f.DateTo)
	}

	query := `SELECT ` + bookingCols + ` FROM bookings`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	args = append(args, limit, offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bs := make([]domain.Booking, 0, limit)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bs = append(bs, *b)
	}
	return bs, rows.Err()
}

func (r *BookingsRepoImpl) HasOverlap(ctx context.Context, q Querier, roomID int64, checkIn, checkOut time.Time, excludeID int64) (bool, error) {
	q = orPool(q, r.pool)
	const query = `SELECT EXISTS(
	SELECT 1 FROM bookings
	WHERE room_id = $1
	  AND id <> $4
	  AND status NOT IN ('cancelled', 'no_show')
	  AND check_in_date < $3
	  AND check_out_date > $2
)`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var overlaps bool
	err := q.QueryRow(ctx, query, roomID, checkIn, checkOut, excludeID).Scan(&overlaps)
	return overlaps, err
}

func (r *BookingsRepoImpl) NextSequenceForDay(ctx context.Context, q Querier, day time.Time) (int64, error) {
	q = orPool(q, r.pool)
	const query = `INSERT INTO booking_number_counters (day, counter)
VALUES ($1, 1)
ON CONFLICT (day) DO UPDATE SET counter = booking_number_counters.counter + 1
RETURNING counter`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var seq int64
	err := q.QueryRow(ctx, query, day).Scan(&seq)
	return seq, err
}

func (r *BookingsRepoImpl) UpdateStatus(ctx context.Context, q Querier, id int64, status domain.BookingStatus, now time.Time) error {
	q = orPool(q, r.pool)
	const query = `UPDATE bookings SET status = $2, updated_at = $3 WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := q.Exec(ctx, query, id, status, now)
	return err
}

func (r *BookingsRepoImpl) SetActualCheckOut(ctx context.Context, q Querier, id int64, at time.Time) error {
	q = orPool(q, r.pool)
	const query = `UPDATE bookings SET actual_check_out = $2, updated_at = $2 WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := q.Exec(ctx, query, id, at)
	return err
}

func (r *BookingsRepoImpl) UpdatePaymentStatus(ctx context.Context, q Querier, id int64, status domain.PaymentStatus) error {
	q = orPool(q, r.pool)
	const query = `UPDATE bookings SET payment_status = $2, updated_at = now() WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := q.Exec(ctx, query, id, status)
	return err
}

func (r *BookingsRepoImpl) SetPreCheckinToken(ctx context.Context, id int64, token string, expiresAt time.Time) error {
	const q = `UPDATE bookings
SET pre_checkin_token = $2, pre_checkin_token_expires_at = $3, updated_at = now()
WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := r.pool.Exec(ctx, q, id, token, expiresAt)
	return err
}

func (r *BookingsRepoImpl) GetByPreCheckinToken(ctx context.Context, token string) (*domain.Booking, error) {
	const q = `SELECT ` + bookingCols + ` FROM bookings WHERE pre_checkin_token = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return scanBooking(r.pool.QueryRow(ctx, q, token))
}

func (r *BookingsRepoImpl) CompletePreCheckin(ctx context.Context, q Querier, id int64, marketCode, specialRequests *string, now time.Time) error {
	q = orPool(q, r.pool)
	const query = `UPDATE bookings
SET market_code = COALESCE($2, market_code),
    special_requests = COALESCE($3, special_requests),
    pre_checkin_completed = true,
    pre_checkin_completed_at = $4,
    updated_at = $4
WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := q.Exec(ctx, query, id, marketCode, specialRequests, now)
	return err
}

func (r *BookingsRepoImpl) MarkComplimentary(ctx context.Context, q Querier, id int64, reason string, start, end time.Time, nights int, originalTotal decimal.Decimal) error {
	q = orPool(q, r.pool)
	const query = `UPDATE bookings
SET is_complimentary = true,
    complimentary_reason = $2,
    complimentary_start_date = $3,
    complimentary_end_date = $4,
    complimentary_nights = $5,
    original_total_amount = $6,
    total_amount = 0,
    updated_at = now()
WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := q.Exec(ctx, query, id, reason, start, end, nights, originalTotal)
	return err
}

func (r *BookingsRepoImpl) SetCreditsConverted(ctx context.Context, q Querier, id int64) error {
	q = orPool(q, r.pool)
	const query = `UPDATE bookings SET credits_converted = true, updated_at = now() WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := q.Exec(ctx, query, id)
	return err
}

func (r *BookingsRepoImpl) InHouseOn(ctx context.Context, q Querier, date time.Time) ([]domain.Booking, error) {
	q = orPool(q, r.pool)
	const query = `SELECT ` + bookingCols + ` FROM bookings
WHERE status IN ('checked_in', 'auto_checked_in', 'late_checkout')
  AND check_in_date <= $1 AND check_out_date > $1
ORDER BY id`
	return queryBookings(ctx, q, query, date)
}

func (r *BookingsRepoImpl) ConfirmedArrivals(ctx context.Context, day time.Time) ([]domain.Booking, error) {
	const q = `SELECT ` + bookingCols + ` FROM bookings
WHERE status = 'confirmed' AND check_in_date = $1
ORDER BY id`
	return queryBookings(ctx, r.pool, q, day)
}

func (r *BookingsRepoImpl) InHouseDepartures(ctx context.Context, day time.Time) ([]domain.Booking, error) {
	const q = `SELECT ` + bookingCols + ` FROM bookings
WHERE status IN ('checked_in', 'auto_checked_in') AND check_out_date = $1
ORDER BY id`
	return queryBookings(ctx, r.pool, q, day)
}

func queryBookings(ctx context.Context, q Querier, query string, args ...any) ([]domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bs []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bs = append(bs, *b)
	}
	return bs, rows.Err()
}

var _ BookingsRepo = (*BookingsRepoImpl)(nil)
