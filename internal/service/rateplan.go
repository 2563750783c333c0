package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/harborcrest/pms/internal/apperr"
	"github.com/harborcrest/pms/internal/domain"
	"github.com/harborcrest/pms/internal/repo/postgres"
	"github.com/harborcrest/pms/pkg/clock"
)

// RatePlanService selects the winning rate plan for a stay and prices it.
type RatePlanService struct {
	rates postgres.RatesRepo
	rooms postgres.RoomsRepo
	clock clock.Clock
}

func NewRatePlanService(rates postgres.RatesRepo, rooms postgres.RoomsRepo, c clock.Clock) *RatePlanService {
	return &RatePlanService{rates: rates, rooms: rooms, clock: c}
}

// Quote picks the applicable plan for the stay, highest priority first with
// the lowest id breaking ties, and returns the priced stay. Not-found means
// no plan applies; callers fall back to the room's own nightly price.
func (s *RatePlanService) Quote(ctx context.Context, roomTypeID int64, checkIn, checkOut time.Time) (*domain.RateQuote, error) {
	nights := domain.Nights(checkIn, checkOut)
	if nights < 1 {
		return nil, apperr.BadRequest("check-out must be after check-in")
	}

	roomType, err := s.rooms.GetRoomType(ctx, nil, roomTypeID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if roomType == nil {
		return nil, apperr.NotFound("room type not found")
	}

	plans, err := s.rates.ActivePlans(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	bookingDate := s.clock.Today()
	for _, plan := range plans {
		if !s.applies(&plan, checkIn, checkOut, nights, bookingDate) {
			continue
		}
		rate, err := s.rates.RoomRateFor(ctx, plan.ID, roomTypeID, checkIn)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		if rate == nil {
			continue
		}

		nightly := nightlyPrice(&plan, rate, roomType.BasePrice)
		return &domain.RateQuote{
			RatePlanID:   plan.ID,
			RatePlanName: plan.Name,
			NightlyRate:  nightly,
			Nights:       nights,
			Total:        nightly.Mul(decimal.NewFromInt(int64(nights))).RoundBank(2),
		}, nil
	}
	return nil, apperr.NotFound("no applicable rate plan")
}

// applies checks the plan's validity window, day mask, stay length, and
// advance-booking window against every night of the stay.
func (s *RatePlanService) applies(p *domain.RatePlan, checkIn, checkOut time.Time, nights int, bookingDate time.Time) bool {
	for d := checkIn; d.Before(checkOut); d = d.AddDate(0, 0, 1) {
		if p.ValidFrom != nil && d.Before(*p.ValidFrom) {
			return false
		}
		if p.ValidTo != nil && d.After(*p.ValidTo) {
			return false
		}
		if !p.DayMask.Includes(d.Weekday()) {
			return false
		}
	}

	if nights < p.MinNights {
		return false
	}
	if p.MaxNights != nil && nights > *p.MaxNights {
		return false
	}

	advance := domain.Nights(bookingDate, checkIn)
	if advance < p.MinAdvanceBooking {
		return false
	}
	if p.MaxAdvanceBooking != nil && advance > *p.MaxAdvanceBooking {
		return false
	}
	return true
}

func nightlyPrice(p *domain.RatePlan, rate *domain.RoomRate, basePrice decimal.Decimal) decimal.Decimal {
	switch p.AdjustmentType {
	case domain.AdjustOverride:
		return rate.Price.RoundBank(2)
	case domain.AdjustFixed:
		return basePrice.Add(p.AdjustmentValue).RoundBank(2)
	case domain.AdjustPercent:
		pct := p.AdjustmentValue.Div(decimal.NewFromInt(100))
		return basePrice.Mul(decimal.NewFromInt(1).Add(pct)).RoundBank(2)
	}
	return basePrice.RoundBank(2)
}

func (s *RatePlanService) CreatePlan(ctx context.Context, p *domain.RatePlan) (*domain.RatePlan, error) {
	if p.Name == "" || p.Code == "" {
		return nil, apperr.BadRequest("name and code are required")
	}
	if !p.AdjustmentType.Valid() {
		return nil, apperr.BadRequest("invalid adjustment type")
	}
	if p.DayMask == 0 {
		p.DayMask = domain.AllDays
	}
	if p.MinNights < 1 {
		p.MinNights = 1
	}
	out, err := s.rates.CreatePlan(ctx, p)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return nil, apperr.Conflict("rate plan code already exists")
		}
		return nil, apperr.Internal(err)
	}
	return out, nil
}

func (s *RatePlanService) ListPlans(ctx context.Context) ([]domain.RatePlan, error) {
	return s.rates.ListPlans(ctx)
}

func (s *RatePlanService) DeactivatePlan(ctx context.Context, id int64) error {
	ok, err := s.rates.DeactivatePlan(ctx, id)
	if err != nil {
		return apperr.Internal(err)
	}
	if !ok {
		return apperr.NotFound("rate plan not found")
	}
	return nil
}

func (s *RatePlanService) CreateRoomRate(ctx context.Context, rr *domain.RoomRate) (*domain.RoomRate, error) {
	if rr.Price.IsNegative() {
		return nil, apperr.BadRequest("price must not be negative")
	}
	plan, err := s.rates.GetPlan(ctx, rr.RatePlanID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if plan == nil {
		return nil, apperr.NotFound("rate plan not found")
	}
	out, err := s.rates.CreateRoomRate(ctx, rr)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return out, nil
}

func (s *RatePlanService) RatesForPlan(ctx context.Context, planID int64) ([]domain.RoomRate, error) {
	return s.rates.RatesForPlan(ctx, planID)
}
