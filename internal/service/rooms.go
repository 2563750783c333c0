package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/harborcrest/pms/internal/apperr"
	"github.com/harborcrest/pms/internal/domain"
	"github.com/harborcrest/pms/internal/repo/postgres"
	"github.com/harborcrest/pms/pkg/clock"
)

type RoomService struct {
	rooms postgres.RoomsRepo
	clock clock.Clock
}

func NewRoomService(rooms postgres.RoomsRepo, c clock.Clock) *RoomService {
	return &RoomService{rooms: rooms, clock: c}
}

func (s *RoomService) Create(ctx context.Context, roomNumber string, roomTypeID int64, price decimal.Decimal, maxOccupancy int) (*domain.Room, error) {
	if roomNumber == "" {
		return nil, apperr.BadRequest("room number is required")
	}
	if price.IsNegative() {
		return nil, apperr.BadRequest("price must not be negative")
	}
	if maxOccupancy < 1 {
		return nil, apperr.BadRequest("max occupancy must be at least 1")
	}
	rt, err := s.rooms.GetRoomType(ctx, nil, roomTypeID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if rt == nil {
		return nil, apperr.NotFound("room type not found")
	}

	room, err := s.rooms.Create(ctx, roomNumber, roomTypeID, price.RoundBank(2), maxOccupancy)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return nil, apperr.Conflict("room number already exists")
		}
		return nil, apperr.Internal(err)
	}
	return room, nil
}

func (s *RoomService) Get(ctx context.Context, id int64) (*domain.Room, error) {
	room, err := s.rooms.GetByID(ctx, nil, id)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if room == nil {
		return nil, apperr.NotFound("room not found")
	}
	return room, nil
}

func (s *RoomService) List(ctx context.Context) ([]domain.Room, error) {
	return s.rooms.List(ctx)
}

func (s *RoomService) UpdateStatus(ctx context.Context, id int64, status domain.RoomStatus) (*domain.Room, error) {
	switch status {
	case domain.RoomAvailable, domain.RoomOccupied, domain.RoomMaintenance,
		domain.RoomCleaning, domain.RoomOutOfOrder, domain.RoomReserved:
	default:
		return nil, apperr.BadRequest("invalid room status")
	}
	ok, err := s.rooms.UpdateStatus(ctx, nil, id, status)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if !ok {
		return nil, apperr.NotFound("room not found")
	}
	return s.Get(ctx, id)
}

// Delete refuses while the room still has non-terminal bookings.
func (s *RoomService) Delete(ctx context.Context, id int64) error {
	busy, err := s.rooms.HasNonTerminalBookings(ctx, id)
	if err != nil {
		return apperr.Internal(err)
	}
	if busy {
		return apperr.Conflict("room has active bookings")
	}
	deleted, err := s.rooms.Delete(ctx, id, s.clock.Now())
	if err != nil {
		return apperr.Internal(err)
	}
	if !deleted {
		return apperr.NotFound("room not found")
	}
	return nil
}

func (s *RoomService) CreateRoomType(ctx context.Context, name, code string, basePrice decimal.Decimal, maxOccupancy int) (*domain.RoomType, error) {
	if name == "" || code == "" {
		return nil, apperr.BadRequest("name and code are required")
	}
	if basePrice.IsNegative() {
		return nil, apperr.BadRequest("base price must not be negative")
	}
	rt, err := s.rooms.CreateRoomType(ctx, name, code, basePrice.RoundBank(2), maxOccupancy)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return nil, apperr.Conflict("room type code already exists")
		}
		return nil, apperr.Internal(err)
	}
	return rt, nil
}

func (s *RoomService) ListRoomTypes(ctx context.Context) ([]domain.RoomType, error) {
	return s.rooms.ListRoomTypes(ctx)
}
