package service

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/harborcrest/pms/internal/apperr"
	"github.com/harborcrest/pms/internal/domain"
	"github.com/harborcrest/pms/internal/repo/postgres"
	"github.com/harborcrest/pms/pkg/clock"
	"github.com/harborcrest/pms/pkg/events"
	"github.com/harborcrest/pms/pkg/logger"
)

// NightAuditService posts one room-charge per in-house booking per audit
// date. The unique audit_date run row makes a date run exactly once; the
// (booking_id, audit_date) posting index makes replays insert nothing.
type NightAuditService struct {
	pool     *pgxpool.Pool
	runs     postgres.NightAuditRepo
	bookings postgres.BookingsRepo
	guests   postgres.GuestsRepo
	ledgers  postgres.LedgerRepo
	audit    *AuditLogService
	bus      events.Publisher
	clock    clock.Clock
}

func NewNightAuditService(
	pool *pgxpool.Pool,
	runs postgres.NightAuditRepo,
	bookings postgres.BookingsRepo,
	guests postgres.GuestsRepo,
	ledgers postgres.LedgerRepo,
	audit *AuditLogService,
	bus events.Publisher,
	c clock.Clock,
) *NightAuditService {
	return &NightAuditService{
		pool: pool, runs: runs, bookings: bookings, guests: guests,
		ledgers: ledgers, audit: audit, bus: bus, clock: c,
	}
}

// Run executes the audit for auditDate (zero value means yesterday).
func (s *NightAuditService) Run(ctx context.Context, auditDate time.Time, runBy *int64) (*domain.NightAuditRun, error) {
	if auditDate.IsZero() {
		auditDate = s.clock.Today().AddDate(0, 0, -1)
	}

	var run *domain.NightAuditRun
	err := postgres.InSerializableTx(ctx, s.pool, func(tx pgx.Tx) error {
		var err error
		run, err = s.runs.StartRun(ctx, tx, auditDate, runBy, s.clock.Now())
		if err != nil {
			if postgres.IsUniqueViolation(err) {
				return apperr.Conflict("night audit already run for this date")
			}
			return err
		}

		inHouse, err := s.bookings.InHouseOn(ctx, tx, auditDate)
		if err != nil {
			return err
		}

		posted := 0
		total := decimal.Zero
		for i := range inHouse {
			amount, ok, err := s.postCharge(ctx, tx, &inHouse[i], auditDate)
			if err != nil {
				return err
			}
			if ok {
				posted++
				total = total.Add(amount)
			}
		}

		return s.runs.FinishRun(ctx, tx, run.ID, posted, total, domain.AuditCompleted, s.clock.Now())
	})
	if err != nil {
		return nil, wrap(err)
	}

	out, err := s.runs.GetRunByDate(ctx, auditDate)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	s.audit.Append(ctx, runBy, domain.ActionNightAuditCompleted, "night_audit_run", &out.ID, map[string]any{
		"auditDate":      auditDate.Format("2006-01-02"),
		"bookingsPosted": out.BookingsPosted,
	})
	if err := s.bus.Publish(ctx, events.NightAuditComplete, out); err != nil {
		logger.WarnContext(ctx, "event publish failed", "subject", events.NightAuditComplete, "error", err)
	}
	return out, nil
}

// postCharge posts one room charge for b on auditDate. The posting insert
// goes first: when the (booking_id, audit_date) row already exists the
// charge was posted by an earlier run and no ledger row is appended, so a
// replay after a partial failure never double-bills the guest.
func (s *NightAuditService) postCharge(ctx context.Context, q postgres.Querier, b *domain.Booking, auditDate time.Time) (decimal.Decimal, bool, error) {
	amount := b.RoomRate.RoundBank(2)

	inserted, err := s.runs.InsertPosting(ctx, q, &domain.BookingPosting{
		BookingID: b.ID,
		AuditDate: auditDate,
		Amount:    amount,
	})
	if err != nil {
		return decimal.Zero, false, err
	}
	if !inserted {
		return decimal.Zero, false, nil
	}

	guest, err := s.guests.GetByID(ctx, q, b.GuestID)
	if err != nil {
		return decimal.Zero, false, err
	}
	billTo := b.BookingNumber
	if guest != nil {
		billTo = guest.FullName()
	}

	ledger, err := s.ledgers.Create(ctx, q, &domain.CustomerLedger{
		CompanyName: billTo,
		Description: "Room charge " + auditDate.Format("2006-01-02") + " booking " + b.BookingNumber,
		ExpenseType: "room_charge",
		Amount:      amount,
		PaidAmount:  decimal.Zero,
		BalanceDue:  amount,
		Status:      domain.LedgerPending,
		BookingID:   &b.ID,
	})
	if err != nil {
		return decimal.Zero, false, err
	}
	if err := s.runs.LinkPostingLedger(ctx, q, b.ID, auditDate, ledger.ID); err != nil {
		return decimal.Zero, false, err
	}
	return amount, true, nil
}

// Preview enumerates what Run would post, without writing.
func (s *NightAuditService) Preview(ctx context.Context, auditDate time.Time) (*domain.NightAuditPreview, error) {
	if auditDate.IsZero() {
		auditDate = s.clock.Today().AddDate(0, 0, -1)
	}

	inHouse, err := s.bookings.InHouseOn(ctx, nil, auditDate)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	total := decimal.Zero
	for i := range inHouse {
		total = total.Add(inHouse[i].RoomRate.RoundBank(2))
	}
	return &domain.NightAuditPreview{
		AuditDate:    auditDate,
		BookingCount: len(inHouse),
		TotalAmount:  total,
	}, nil
}

func (s *NightAuditService) ListRuns(ctx context.Context, limit, offset int) ([]domain.NightAuditRun, error) {
	return s.runs.ListRuns(ctx, limit, offset)
}
