package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/harborcrest/pms/internal/apperr"
	"github.com/harborcrest/pms/internal/domain"
	"github.com/harborcrest/pms/internal/repo/postgres"
	"github.com/harborcrest/pms/internal/service"
	"github.com/harborcrest/pms/pkg/clock"
)

type mockRatesRepo struct {
	postgres.RatesRepo
	plans []domain.RatePlan
	rates map[int64]*domain.RoomRate // plan id -> rate
}

func (m *mockRatesRepo) ActivePlans(ctx context.Context) ([]domain.RatePlan, error) {
	return m.plans, nil
}

func (m *mockRatesRepo) RoomRateFor(ctx context.Context, planID, roomTypeID int64, on time.Time) (*domain.RoomRate, error) {
	return m.rates[planID], nil
}

type mockRoomsRepo struct {
	postgres.RoomsRepo
	roomType *domain.RoomType
}

func (m *mockRoomsRepo) GetRoomType(ctx context.Context, q postgres.Querier, id int64) (*domain.RoomType, error) {
	return m.roomType, nil
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func fixedClock() clock.Clock {
	return clock.Fixed{Instant: time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestQuotePicksHighestPriorityPlan(t *testing.T) {
	rates := &mockRatesRepo{
		plans: []domain.RatePlan{
			{ID: 2, Name: "Promo", AdjustmentType: domain.AdjustOverride, DayMask: domain.AllDays, MinNights: 1, Priority: 10, IsActive: true},
			{ID: 1, Name: "Rack", AdjustmentType: domain.AdjustOverride, DayMask: domain.AllDays, MinNights: 1, Priority: 0, IsActive: true},
		},
		rates: map[int64]*domain.RoomRate{
			1: {RatePlanID: 1, Price: dec("200.00")},
			2: {RatePlanID: 2, Price: dec("150.00")},
		},
	}
	rooms := &mockRoomsRepo{roomType: &domain.RoomType{ID: 7, BasePrice: dec("180.00")}}
	svc := service.NewRatePlanService(rates, rooms, fixedClock())

	quote, err := svc.Quote(context.Background(), 7, day(2026, 6, 10), day(2026, 6, 13))
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if quote.RatePlanID != 2 {
		t.Errorf("plan id = %d, want the higher-priority plan 2", quote.RatePlanID)
	}
	if !quote.NightlyRate.Equal(dec("150.00")) {
		t.Errorf("nightly = %s, want 150.00", quote.NightlyRate)
	}
	if quote.Nights != 3 || !quote.Total.Equal(dec("450.00")) {
		t.Errorf("total = %s over %d nights, want 450.00 over 3", quote.Total, quote.Nights)
	}
}

func TestQuotePercentAdjustment(t *testing.T) {
	rates := &mockRatesRepo{
		plans: []domain.RatePlan{
			{ID: 1, Name: "Peak", AdjustmentType: domain.AdjustPercent, AdjustmentValue: dec("15"), DayMask: domain.AllDays, MinNights: 1, IsActive: true},
		},
		rates: map[int64]*domain.RoomRate{1: {RatePlanID: 1}},
	}
	rooms := &mockRoomsRepo{roomType: &domain.RoomType{ID: 7, BasePrice: dec("200.00")}}
	svc := service.NewRatePlanService(rates, rooms, fixedClock())

	quote, err := svc.Quote(context.Background(), 7, day(2026, 6, 10), day(2026, 6, 11))
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if !quote.NightlyRate.Equal(dec("230.00")) {
		t.Errorf("nightly = %s, want 230.00 (200 + 15%%)", quote.NightlyRate)
	}
}

func TestQuoteFixedAdjustment(t *testing.T) {
	rates := &mockRatesRepo{
		plans: []domain.RatePlan{
			{ID: 1, Name: "Surcharge", AdjustmentType: domain.AdjustFixed, AdjustmentValue: dec("25.50"), DayMask: domain.AllDays, MinNights: 1, IsActive: true},
		},
		rates: map[int64]*domain.RoomRate{1: {RatePlanID: 1}},
	}
	rooms := &mockRoomsRepo{roomType: &domain.RoomType{ID: 7, BasePrice: dec("100.00")}}
	svc := service.NewRatePlanService(rates, rooms, fixedClock())

	quote, err := svc.Quote(context.Background(), 7, day(2026, 6, 10), day(2026, 6, 11))
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if !quote.NightlyRate.Equal(dec("125.50")) {
		t.Errorf("nightly = %s, want 125.50", quote.NightlyRate)
	}
}

func TestQuoteSkipsPlanOutsideDayMask(t *testing.T) {
	// 2026-06-13 is a Saturday; a weekday-only plan must not price it.
	weekdaysOnly := domain.DayMask(0x1F)
	rates := &mockRatesRepo{
		plans: []domain.RatePlan{
			{ID: 1, Name: "Corporate", AdjustmentType: domain.AdjustOverride, DayMask: weekdaysOnly, MinNights: 1, IsActive: true},
		},
		rates: map[int64]*domain.RoomRate{1: {RatePlanID: 1, Price: dec("90.00")}},
	}
	rooms := &mockRoomsRepo{roomType: &domain.RoomType{ID: 7, BasePrice: dec("120.00")}}
	svc := service.NewRatePlanService(rates, rooms, fixedClock())

	_, err := svc.Quote(context.Background(), 7, day(2026, 6, 12), day(2026, 6, 14))
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("err = %v, want not_found fallback", err)
	}
}

func TestQuoteEnforcesMinNightsAndAdvanceWindow(t *testing.T) {
	maxAdv := 30
	rates := &mockRatesRepo{
		plans: []domain.RatePlan{
			{ID: 1, Name: "Long stay", AdjustmentType: domain.AdjustOverride, DayMask: domain.AllDays, MinNights: 3, IsActive: true},
			{ID: 2, Name: "Early bird", AdjustmentType: domain.AdjustOverride, DayMask: domain.AllDays, MinNights: 1, MinAdvanceBooking: 14, MaxAdvanceBooking: &maxAdv, IsActive: true},
		},
		rates: map[int64]*domain.RoomRate{
			1: {RatePlanID: 1, Price: dec("80.00")},
			2: {RatePlanID: 2, Price: dec("70.00")},
		},
	}
	rooms := &mockRoomsRepo{roomType: &domain.RoomType{ID: 7, BasePrice: dec("120.00")}}
	svc := service.NewRatePlanService(rates, rooms, fixedClock())

	// 2 nights, 4 days ahead: too short for plan 1, not enough advance for plan 2.
	_, err := svc.Quote(context.Background(), 7, day(2026, 6, 5), day(2026, 6, 7))
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("err = %v, want not_found", err)
	}

	// 3 nights qualifies for the long-stay plan.
	quote, err := svc.Quote(context.Background(), 7, day(2026, 6, 5), day(2026, 6, 8))
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if quote.RatePlanID != 1 {
		t.Errorf("plan id = %d, want 1", quote.RatePlanID)
	}

	// 20 days ahead qualifies for the early-bird plan, which outranks by order.
	quote, err = svc.Quote(context.Background(), 7, day(2026, 6, 21), day(2026, 6, 22))
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if quote.RatePlanID != 2 {
		t.Errorf("plan id = %d, want 2", quote.RatePlanID)
	}
}

func TestQuoteRejectsInvertedStay(t *testing.T) {
	svc := service.NewRatePlanService(&mockRatesRepo{}, &mockRoomsRepo{}, fixedClock())
	_, err := svc.Quote(context.Background(), 7, day(2026, 6, 10), day(2026, 6, 10))
	if !apperr.IsKind(err, apperr.KindBadRequest) {
		t.Errorf("err = %v, want bad_request", err)
	}
}
