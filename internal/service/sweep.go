package service

import (
	"context"
	"time"

	"github.com/harborcrest/pms/internal/domain"
	"github.com/harborcrest/pms/internal/repo/postgres"
	"github.com/harborcrest/pms/pkg/clock"
	"github.com/harborcrest/pms/pkg/logger"
)

// SweepService applies the scheduled booking transitions: auto check-in
// after the configured arrival time and late checkout after the departure
// cutoff. Every pass is idempotent.
type SweepService struct {
	bookings    postgres.BookingsRepo
	settings    postgres.SettingsRepo
	reservation *ReservationService
	clock       clock.Clock
}

func NewSweepService(bookings postgres.BookingsRepo, settings postgres.SettingsRepo, reservation *ReservationService, c clock.Clock) *SweepService {
	return &SweepService{bookings: bookings, settings: settings, reservation: reservation, clock: c}
}

// Start runs a pass immediately and then hourly until ctx is cancelled.
func (s *SweepService) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	go func() {
		s.RunOnce(ctx)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.RunOnce(ctx)
			}
		}
	}()
}

// RunOnce applies both sweeps once. Errors are logged per booking and do
// not abort the pass.
func (s *SweepService) RunOnce(ctx context.Context) {
	settings, err := s.settings.Load(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "sweep settings load failed", "error", err)
		return
	}

	now := s.clock.Now()
	today := s.clock.Today()

	if settings.AutoCheckinEnabled && pastClockTime(now, today, settings.CheckInTime) {
		s.autoCheckIn(ctx, today)
	}
	if settings.LateCheckoutEnabled && pastClockTime(now, today, settings.CheckOutTime) {
		s.lateCheckout(ctx, today)
	}
}

func (s *SweepService) autoCheckIn(ctx context.Context, today time.Time) {
	arrivals, err := s.bookings.ConfirmedArrivals(ctx, today)
	if err != nil {
		logger.ErrorContext(ctx, "sweep arrivals query failed", "error", err)
		return
	}
	for i := range arrivals {
		b := &arrivals[i]
		if _, err := s.reservation.transition(ctx, b.ID, domain.BookingAutoCheckedIn, nil, nil); err != nil {
			logger.WarnContext(ctx, "auto check-in failed", "booking_id", b.ID, "error", err)
		}
	}
}

func (s *SweepService) lateCheckout(ctx context.Context, today time.Time) {
	departures, err := s.bookings.InHouseDepartures(ctx, today)
	if err != nil {
		logger.ErrorContext(ctx, "sweep departures query failed", "error", err)
		return
	}
	for i := range departures {
		b := &departures[i]
		if _, err := s.reservation.transition(ctx, b.ID, domain.BookingLateCheckout, nil, nil); err != nil {
			logger.WarnContext(ctx, "late checkout transition failed", "booking_id", b.ID, "error", err)
		}
	}
}

// pastClockTime reports whether now has passed the "HH:MM" wall-clock time
// on the given day. A malformed setting disables the sweep rather than
// firing it at midnight.
func pastClockTime(now, day time.Time, hhmm string) bool {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return false
	}
	cutoff := time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC)
	return !now.Before(cutoff)
}
