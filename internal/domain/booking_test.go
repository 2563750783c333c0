package domain_test

import (
	"testing"
	"time"

	"github.com/harborcrest/pms/internal/domain"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to domain.BookingStatus
		want     bool
	}{
		{domain.BookingPending, domain.BookingConfirmed, true},
		{domain.BookingPending, domain.BookingCancelled, true},
		{domain.BookingPending, domain.BookingCheckedIn, true},
		{domain.BookingPending, domain.BookingNoShow, false},
		{domain.BookingConfirmed, domain.BookingCheckedIn, true},
		{domain.BookingConfirmed, domain.BookingAutoCheckedIn, true},
		{domain.BookingConfirmed, domain.BookingNoShow, true},
		{domain.BookingConfirmed, domain.BookingCheckedOut, false},
		{domain.BookingCheckedIn, domain.BookingCheckedOut, true},
		{domain.BookingCheckedIn, domain.BookingLateCheckout, true},
		{domain.BookingCheckedIn, domain.BookingCancelled, false},
		{domain.BookingAutoCheckedIn, domain.BookingCheckedIn, true},
		{domain.BookingAutoCheckedIn, domain.BookingCheckedOut, true},
		{domain.BookingLateCheckout, domain.BookingCheckedOut, true},
		{domain.BookingLateCheckout, domain.BookingLateCheckout, false},
		{domain.BookingCheckedOut, domain.BookingConfirmed, false},
		{domain.BookingCancelled, domain.BookingConfirmed, false},
		{domain.BookingNoShow, domain.BookingCheckedIn, false},
	}
	for _, tc := range cases {
		if got := domain.CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestStatusPredicates(t *testing.T) {
	terminal := []domain.BookingStatus{domain.BookingCheckedOut, domain.BookingCancelled, domain.BookingNoShow}
	for _, s := range terminal {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
		if s.InHouse() {
			t.Errorf("%s should not be in-house", s)
		}
	}

	inHouse := []domain.BookingStatus{domain.BookingCheckedIn, domain.BookingAutoCheckedIn, domain.BookingLateCheckout}
	for _, s := range inHouse {
		if !s.InHouse() {
			t.Errorf("%s should be in-house", s)
		}
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}

	if domain.BookingPending.Terminal() || domain.BookingPending.InHouse() {
		t.Error("pending should be neither terminal nor in-house")
	}
}

func TestNights(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2026, 3, d, 0, 0, 0, 0, time.UTC) }

	if got := domain.Nights(day(10), day(13)); got != 3 {
		t.Errorf("Nights = %d, want 3", got)
	}
	if got := domain.Nights(day(10), day(11)); got != 1 {
		t.Errorf("Nights = %d, want 1", got)
	}
	if got := domain.Nights(day(10), day(10)); got != 0 {
		t.Errorf("Nights = %d, want 0", got)
	}
}
