package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/harborcrest/pms/internal/domain"
	"github.com/harborcrest/pms/internal/repo/postgres"
	"github.com/harborcrest/pms/pkg/events"
)

type stubAuditRuns struct {
	postgres.NightAuditRepo
	existing map[int64]bool
	postings []domain.BookingPosting
	linked   map[int64]int64
}

func (m *stubAuditRuns) InsertPosting(ctx context.Context, q postgres.Querier, p *domain.BookingPosting) (bool, error) {
	if m.existing[p.BookingID] {
		return false, nil
	}
	m.postings = append(m.postings, *p)
	return true, nil
}

func (m *stubAuditRuns) LinkPostingLedger(ctx context.Context, q postgres.Querier, bookingID int64, auditDate time.Time, ledgerID int64) error {
	if m.linked == nil {
		m.linked = map[int64]int64{}
	}
	m.linked[bookingID] = ledgerID
	return nil
}

type stubGuests struct {
	postgres.GuestsRepo
	guest *domain.Guest
}

func (m *stubGuests) GetByID(ctx context.Context, q postgres.Querier, id int64) (*domain.Guest, error) {
	return m.guest, nil
}

type stubLedgers struct {
	postgres.LedgerRepo
	created []domain.CustomerLedger
}

func (m *stubLedgers) Create(ctx context.Context, q postgres.Querier, l *domain.CustomerLedger) (*domain.CustomerLedger, error) {
	out := *l
	out.ID = int64(len(m.created) + 1)
	m.created = append(m.created, out)
	return &out, nil
}

func TestPostChargeCreatesLedgerForNewPosting(t *testing.T) {
	runs := &stubAuditRuns{}
	guests := &stubGuests{guest: &domain.Guest{ID: 7, FirstName: "Aina", LastName: "Rahim"}}
	ledgers := &stubLedgers{}
	svc := NewNightAuditService(nil, runs, nil, guests, ledgers, nil, events.NoopPublisher{}, nil)

	auditDate := time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC)
	b := domain.Booking{ID: 11, GuestID: 7, BookingNumber: "B2605310001", RoomRate: mustDec(t, "120.505")}

	amount, ok, err := svc.postCharge(context.Background(), nil, &b, auditDate)
	if err != nil {
		t.Fatalf("postCharge: %v", err)
	}
	if !ok {
		t.Fatal("fresh posting should report posted")
	}
	if !amount.Equal(mustDec(t, "120.50")) {
		t.Errorf("amount = %s, want 120.50", amount)
	}
	if len(runs.postings) != 1 || runs.postings[0].BookingID != 11 {
		t.Fatalf("postings = %+v, want one for booking 11", runs.postings)
	}
	if len(ledgers.created) != 1 {
		t.Fatalf("ledgers created = %d, want 1", len(ledgers.created))
	}
	l := ledgers.created[0]
	if l.CompanyName != "Aina Rahim" {
		t.Errorf("billed to %q, want guest name", l.CompanyName)
	}
	if !l.BalanceDue.Equal(amount) || !l.PaidAmount.Equal(decimal.Zero) {
		t.Errorf("balance = %s, paid = %s", l.BalanceDue, l.PaidAmount)
	}
	if got := runs.linked[11]; got != l.ID {
		t.Errorf("posting linked to ledger %d, want %d", got, l.ID)
	}
}

func TestPostChargeSkipsLedgerOnReplay(t *testing.T) {
	runs := &stubAuditRuns{existing: map[int64]bool{11: true}}
	ledgers := &stubLedgers{}
	svc := NewNightAuditService(nil, runs, nil, &stubGuests{}, ledgers, nil, events.NoopPublisher{}, nil)

	auditDate := time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC)
	b := domain.Booking{ID: 11, GuestID: 7, BookingNumber: "B2605310001", RoomRate: mustDec(t, "120.50")}

	amount, ok, err := svc.postCharge(context.Background(), nil, &b, auditDate)
	if err != nil {
		t.Fatalf("postCharge: %v", err)
	}
	if ok {
		t.Error("already-posted booking should not report posted")
	}
	if !amount.Equal(decimal.Zero) {
		t.Errorf("amount = %s, want 0", amount)
	}
	if len(ledgers.created) != 0 {
		t.Errorf("ledger rows created on replay: %d", len(ledgers.created))
	}
	if len(runs.linked) != 0 {
		t.Errorf("posting relinked on replay: %v", runs.linked)
	}
}

func TestPostChargeBillsBookingNumberWhenGuestMissing(t *testing.T) {
	runs := &stubAuditRuns{}
	ledgers := &stubLedgers{}
	svc := NewNightAuditService(nil, runs, nil, &stubGuests{}, ledgers, nil, events.NoopPublisher{}, nil)

	auditDate := time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC)
	b := domain.Booking{ID: 12, GuestID: 99, BookingNumber: "B2605310002", RoomRate: mustDec(t, "80.00")}

	if _, _, err := svc.postCharge(context.Background(), nil, &b, auditDate); err != nil {
		t.Fatalf("postCharge: %v", err)
	}
	if len(ledgers.created) != 1 || ledgers.created[0].CompanyName != "B2605310002" {
		t.Fatalf("ledgers = %+v, want billed to booking number", ledgers.created)
	}
}
