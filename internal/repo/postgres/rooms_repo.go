package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/harborcrest/pms/internal/domain"
)

type RoomsRepo interface {
	Create(ctx context.Context, roomNumber string, roomTypeID int64, price decimal.Decimal, maxOccupancy int) (*domain.Room, error)
	GetByID(ctx context.Context, q Querier, id int64) (*domain.Room, error)
	List(ctx context.Context) ([]domain.Room, error)
	// UpdateStatus also refreshes the cached available flag so it always
	// agrees with the status.
	UpdateStatus(ctx context.Context, q Querier, id int64, status domain.RoomStatus) (bool, error)
	HasNonTerminalBookings(ctx context.Context, roomID int64) (bool, error)
	Delete(ctx context.Context, id int64, now time.Time) (bool, error)
	GetRoomType(ctx context.Context, q Querier, id int64) (*domain.RoomType, error)
	ListRoomTypes(ctx context.Context) ([]domain.RoomType, error)
	CreateRoomType(ctx context.Context, name, code string, basePrice decimal.Decimal, maxOccupancy int) (*domain.RoomType, error)
}

type RoomsRepoImpl struct{ pool *pgxpool.Pool }

func NewRoomsRepo(pool *pgxpool.Pool) *RoomsRepoImpl { return &RoomsRepoImpl{pool: pool} }

const roomCols = `id, room_number, room_type_id, price_per_night, status, available,
max_occupancy, created_at, updated_at, deleted_at`

func scanRoom(row pgx.Row) (*domain.Room, error) {
	var rm domain.Room
	err := row.Scan(
		&rm.ID, &rm.RoomNumber, &rm.RoomTypeID, &rm.PricePerNight, &rm.Status, &rm.Available,
		&rm.MaxOccupancy, &rm.CreatedAt, &rm.UpdatedAt, &rm.DeletedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rm, nil
}

func (r *RoomsRepoImpl) Create(ctx context.Context, roomNumber string, roomTypeID int64, price decimal.Decimal, maxOccupancy int) (*domain.Room, error) {
	const q = `INSERT INTO rooms (room_number, room_type_id, price_per_night, status, available, max_occupancy)
VALUES ($1, $2, $3, 'available', true, $4)
RETURNING ` + roomCols
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return scanRoom(r.pool.QueryRow(ctx, q, roomNumber, roomTypeID, price, maxOccupancy))
}

func (r *RoomsRepoImpl) GetByID(ctx context.Context, q Querier, id int64) (*domain.Room, error) {
	q = orPool(q, r.pool)
	const query = `SELECT ` + roomCols + ` FROM rooms WHERE id = $1 AND deleted_at IS NULL`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return scanRoom(q.QueryRow(ctx, query, id))
}

func (r *RoomsRepoImpl) List(ctx context.Context) ([]domain.Room, error) {
	const q = `SELECT ` + roomCols + ` FROM rooms WHERE deleted_at IS NULL ORDER BY room_number`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rms []domain.Room
	for rows.Next() {
		rm, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		rms = append(rms, *rm)
	}
	return rms, rows.Err()
}

func (r *RoomsRepoImpl) UpdateStatus(ctx context.Context, q Querier, id int64, status domain.RoomStatus) (bool, error) {
	q = orPool(q, r.pool)
	const query = `UPDATE rooms SET status = $2, available = $3, updated_at = now()
WHERE id = $1 AND deleted_at IS NULL`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	ct, err := q.Exec(ctx, query, id, status, status.Available())
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

func (r *RoomsRepoImpl) HasNonTerminalBookings(ctx context.Context, roomID int64) (bool, error) {
	const q = `SELECT EXISTS(
	SELECT 1 FROM bookings
	WHERE room_id = $1 AND status NOT IN ('checked_out', 'cancelled', 'no_show')
)`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var has bool
	err := r.pool.QueryRow(ctx, q, roomID).Scan(&has)
	return has, err
}

func (r *RoomsRepoImpl) Delete(ctx context.Context, id int64, now time.Time) (bool, error) {
	const q = `UPDATE rooms SET deleted_at = $2, updated_at = now()
WHERE id = $1 AND deleted_at IS NULL`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	ct, err := r.pool.Exec(ctx, q, id, now)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

func (r *RoomsRepoImpl) GetRoomType(ctx context.Context, q Querier, id int64) (*domain.RoomType, error) {
	q = orPool(q, r.pool)
	const query = `SELECT id, name, code, base_price, max_occupancy, is_active
FROM room_types WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var rt domain.RoomType
	err := q.QueryRow(ctx, query, id).Scan(&rt.ID, &rt.Name, &rt.Code, &rt.BasePrice, &rt.MaxOccupancy, &rt.IsActive)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rt, nil
}

func (r *RoomsRepoImpl) ListRoomTypes(ctx context.Context) ([]domain.RoomType, error) {
	const q = `SELECT id, name, code, base_price, max_occupancy, is_active
FROM room_types ORDER BY name`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rts []domain.RoomType
	for rows.Next() {
		var rt domain.RoomType
		if err := rows.Scan(&rt.ID, &rt.Name, &rt.Code, &rt.BasePrice, &rt.MaxOccupancy, &rt.IsActive); err != nil {
			return nil, err
		}
		rts = append(rts, rt)
	}
	return rts, rows.Err()
}

func (r *RoomsRepoImpl) CreateRoomType(ctx context.Context, name, code string, basePrice decimal.Decimal, maxOccupancy int) (*domain.RoomType, error) {
	const q = `INSERT INTO room_types (name, code, base_price, max_occupancy, is_active)
VALUES ($1, $2, $3, $4, true)
RETURNING id, name, code, base_price, max_occupancy, is_active`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var rt domain.RoomType
	err := r.pool.QueryRow(ctx, q, name, code, basePrice, maxOccupancy).
		Scan(&rt.ID, &rt.Name, &rt.Code, &rt.BasePrice, &rt.MaxOccupancy, &rt.IsActive)
	if err != nil {
		return nil, err
	}
	return &rt, nil
}

var _ RoomsRepo = (*RoomsRepoImpl)(nil)
