package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/harborcrest/pms/internal/domain"
)

type OccupancyRepo interface {
	// RoomsOn returns every room joined with its occupying booking on the
	// given date, if any. Cancelled and no-show bookings never occupy.
	RoomsOn(ctx context.Context, date time.Time) ([]domain.RoomOccupancy, error)
}

type OccupancyRepoImpl struct{ pool *pgxpool.Pool }

func NewOccupancyRepo(pool *pgxpool.Pool) *OccupancyRepoImpl { return &OccupancyRepoImpl{pool: pool} }

func (r *OccupancyRepoImpl) RoomsOn(ctx context.Context, date time.Time) ([]domain.RoomOccupancy, error) {
	const q = `SELECT r.id, r.room_number, r.status, r.max_occupancy,
	b.id, b.booking_number, b.status, b.adults, b.children
FROM rooms r
LEFT JOIN bookings b
	ON b.room_id = r.id
	AND b.status NOT IN ('cancelled', 'no_show')
	AND b.check_in_date <= $1 AND b.check_out_date > $1
WHERE r.deleted_at IS NULL
ORDER BY r.room_number`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.RoomOccupancy
	for rows.Next() {
		var ro domain.RoomOccupancy
		var bookingID *int64
		var bookingNumber, bookingStatus *string
		var adults, children *int
		err := rows.Scan(&ro.RoomID, &ro.RoomNumber, &ro.RoomStatus, &ro.MaxOccupancy,
			&bookingID, &bookingNumber, &bookingStatus, &adults, &children)
		if err != nil {
			return nil, err
		}
		if bookingID != nil {
			ro.BookingID = bookingID
			ro.BookingNumber = bookingNumber
			ro.BookingStatus = (*domain.BookingStatus)(bookingStatus)
			if adults != nil {
				ro.Adults = *adults
			}
			if children != nil {
				ro.Children = *children
			}
		}
		out = append(out, ro)
	}
	return out, rows.Err()
}

var _ OccupancyRepo = (*OccupancyRepoImpl)(nil)
