package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/harborcrest/pms/internal/domain"
	"github.com/harborcrest/pms/internal/repo/postgres"
	"github.com/harborcrest/pms/internal/service"
	"github.com/harborcrest/pms/pkg/events"
)

type mockBookingsRepo struct {
	postgres.BookingsRepo
	inHouse []domain.Booking
	askedOn time.Time
}

func (m *mockBookingsRepo) InHouseOn(ctx context.Context, q postgres.Querier, on time.Time) ([]domain.Booking, error) {
	m.askedOn = on
	return m.inHouse, nil
}

func TestNightAuditPreview(t *testing.T) {
	bookings := &mockBookingsRepo{inHouse: []domain.Booking{
		{ID: 1, RoomRate: dec("150.00"), Status: domain.BookingCheckedIn},
		{ID: 2, RoomRate: dec("89.505"), Status: domain.BookingAutoCheckedIn},
	}}
	svc := service.NewNightAuditService(nil, nil, bookings, nil, nil, nil, events.NoopPublisher{}, fixedClock())

	preview, err := svc.Preview(context.Background(), time.Date(2026, 5, 30, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if preview.BookingCount != 2 {
		t.Errorf("count = %d, want 2", preview.BookingCount)
	}
	// 150.00 + 89.50 (banker's rounding of 89.505)
	if !preview.TotalAmount.Equal(dec("239.50")) {
		t.Errorf("total = %s, want 239.50", preview.TotalAmount)
	}
}

func TestNightAuditPreviewDefaultsToYesterday(t *testing.T) {
	bookings := &mockBookingsRepo{}
	svc := service.NewNightAuditService(nil, nil, bookings, nil, nil, nil, events.NoopPublisher{}, fixedClock())

	preview, err := svc.Preview(context.Background(), time.Time{})
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	yesterday := time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC)
	if !preview.AuditDate.Equal(yesterday) {
		t.Errorf("audit date = %s, want %s", preview.AuditDate, yesterday)
	}
	if !bookings.askedOn.Equal(yesterday) {
		t.Errorf("queried %s, want %s", bookings.askedOn, yesterday)
	}
	if !preview.TotalAmount.Equal(decimal.Zero) {
		t.Errorf("total = %s, want 0", preview.TotalAmount)
	}
}
