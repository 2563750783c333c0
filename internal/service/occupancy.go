package service

import (
	"context"

	"github.com/harborcrest/pms/internal/apperr"
	"github.com/harborcrest/pms/internal/domain"
	"github.com/harborcrest/pms/internal/repo/postgres"
	"github.com/harborcrest/pms/pkg/clock"
)

// OccupancyService is a read model; it never writes.
type OccupancyService struct {
	repo  postgres.OccupancyRepo
	clock clock.Clock
}

func NewOccupancyService(repo postgres.OccupancyRepo, c clock.Clock) *OccupancyService {
	return &OccupancyService{repo: repo, clock: c}
}

// Rooms returns today's per-room occupancy with guest counts and a
// percentage against each room's maximum occupancy.
func (s *OccupancyService) Rooms(ctx context.Context) ([]domain.RoomOccupancy, error) {
	rooms, err := s.repo.RoomsOn(ctx, s.clock.Today())
	if err != nil {
		return nil, apperr.Internal(err)
	}
	for i := range rooms {
		if rooms[i].BookingID != nil && rooms[i].MaxOccupancy > 0 {
			guests := rooms[i].Adults + rooms[i].Children
			rooms[i].OccupancyPercent = 100 * float64(guests) / float64(rooms[i].MaxOccupancy)
		}
	}
	return rooms, nil
}

// Summary aggregates hotel-wide occupancy for today.
func (s *OccupancyService) Summary(ctx context.Context) (*domain.OccupancySummary, error) {
	rooms, err := s.repo.RoomsOn(ctx, s.clock.Today())
	if err != nil {
		return nil, apperr.Internal(err)
	}

	sum := &domain.OccupancySummary{TotalRooms: len(rooms)}
	for _, r := range rooms {
		if r.BookingID == nil {
			continue
		}
		sum.OccupiedRooms++
		sum.TotalAdults += r.Adults
		sum.TotalChildren += r.Children
	}
	sum.TotalGuests = sum.TotalAdults + sum.TotalChildren
	if sum.TotalRooms > 0 {
		sum.OccupancyRate = 100 * float64(sum.OccupiedRooms) / float64(sum.TotalRooms)
	}
	return sum, nil
}
