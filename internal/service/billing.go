package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/harborcrest/pms/internal/apperr"
	"github.com/harborcrest/pms/internal/domain"
	"github.com/harborcrest/pms/internal/platform/sanitize"
	"github.com/harborcrest/pms/internal/repo/postgres"
	"github.com/harborcrest/pms/pkg/clock"
	"github.com/harborcrest/pms/pkg/events"
	"github.com/harborcrest/pms/pkg/logger"
)

type BillingService struct {
	pool     *pgxpool.Pool
	payments postgres.PaymentsRepo
	bookings postgres.BookingsRepo
	guests   postgres.GuestsRepo
	ledgers  postgres.LedgerRepo
	settings postgres.SettingsRepo
	audit    *AuditLogService
	bus      events.Publisher
	clock    clock.Clock
}

func NewBillingService(
	pool *pgxpool.Pool,
	payments postgres.PaymentsRepo,
	bookings postgres.BookingsRepo,
	guests postgres.GuestsRepo,
	ledgers postgres.LedgerRepo,
	settings postgres.SettingsRepo,
	audit *AuditLogService,
	bus events.Publisher,
	c clock.Clock,
) *BillingService {
	return &BillingService{
		pool: pool, payments: payments, bookings: bookings, guests: guests,
		ledgers: ledgers, settings: settings, audit: audit, bus: bus, clock: c,
	}
}

// Summary composes the bill: service charge on the subtotal, tax on
// subtotal plus service charge, then the keycard deposit. Two-decimal
// banker's rounding at every step.
func (s *BillingService) Summary(ctx context.Context, bookingID int64) (*domain.PaymentSummary, error) {
	b, err := s.bookings.GetByID(ctx, nil, bookingID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if b == nil {
		return nil, apperr.NotFound("booking not found")
	}

	settings, err := s.settings.Load(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return composeSummary(b, settings), nil
}

func composeSummary(b *domain.Booking, settings domain.SystemSettings) *domain.PaymentSummary {
	hundred := decimal.NewFromInt(100)
	subtotal := b.TotalAmount.RoundBank(2)
	serviceCharge := subtotal.Mul(settings.ServiceChargePct).Div(hundred).RoundBank(2)
	tax := subtotal.Add(serviceCharge).Mul(settings.TaxPct).Div(hundred).RoundBank(2)
	deposit := settings.KeycardDeposit.RoundBank(2)

	return &domain.PaymentSummary{
		BookingID:        b.ID,
		Subtotal:         subtotal,
		ServiceCharge:    serviceCharge,
		ServiceChargePct: settings.ServiceChargePct,
		TaxAmount:        tax,
		TaxPct:           settings.TaxPct,
		KeycardDeposit:   deposit,
		TotalAmount:      subtotal.Add(serviceCharge).Add(tax).Add(deposit),
	}
}

// settlementTarget is the amount that marks the booking fully paid. Invoices
// arrive newest first; the latest one carries the current total.
func settlementTarget(summaryTotal decimal.Decimal, invoices []domain.Invoice) decimal.Decimal {
	if len(invoices) > 0 {
		return invoices[0].TotalAmount
	}
	return summaryTotal
}

// RecordPayment inserts a completed payment and, when cumulative completed
// payments cover the invoice total, flips the booking and invoice to paid.
func (s *BillingService) RecordPayment(ctx context.Context, req *domain.RecordPaymentRequest, userID *int64) (*domain.Payment, error) {
	if req.Method == "" {
		return nil, apperr.BadRequest("payment method is required")
	}

	var payment *domain.Payment
	err := postgres.InSerializableTx(ctx, s.pool, func(tx pgx.Tx) error {
		b, err := s.bookings.GetByID(ctx, tx, req.BookingID)
		if err != nil {
			return err
		}
		if b == nil {
			return apperr.NotFound("booking not found")
		}

		settings, err := s.settings.Load(ctx)
		if err != nil {
			return err
		}
		summary := composeSummary(b, settings)

		payment, err = s.payments.Create(ctx, tx, &domain.Payment{
			BookingID:            b.ID,
			UserID:               userID,
			Method:               req.Method,
			Status:               domain.PaymentCompleted,
			Subtotal:             summary.Subtotal,
			ServiceCharge:        summary.ServiceCharge,
			TaxAmount:            summary.TaxAmount,
			KeycardDeposit:       summary.KeycardDeposit,
			TotalAmount:          summary.TotalAmount,
			TransactionReference: req.TransactionReference,
		})
		if err != nil {
			return err
		}

		paid, err := s.payments.CompletedTotal(ctx, tx, b.ID)
		if err != nil {
			return err
		}

		invoices, err := s.payments.ListInvoicesForBooking(ctx, b.ID)
		if err != nil {
			return err
		}
		target := settlementTarget(summary.TotalAmount, invoices)
		if paid.GreaterThanOrEqual(target) {
			if err := s.bookings.UpdatePaymentStatus(ctx, tx, b.ID, domain.PayPaid); err != nil {
				return err
			}
			if err := s.payments.SettleInvoices(ctx, tx, b.ID, paid); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, wrap(err)
	}

	if err := s.bus.Publish(ctx, events.PaymentRecorded, payment); err != nil {
		logger.WarnContext(ctx, "event publish failed", "subject", events.PaymentRecorded, "error", err)
	}
	return payment, nil
}

func (s *BillingService) PaymentsForBooking(ctx context.Context, bookingID int64) ([]domain.Payment, error) {
	return s.payments.ListForBooking(ctx, bookingID)
}

// GenerateInvoice issues the booking's invoice. Idempotent: a booking that
// already has one gets the existing invoice back unchanged.
func (s *BillingService) GenerateInvoice(ctx context.Context, bookingID int64) (*domain.Invoice, error) {
	existing, err := s.payments.ListInvoicesForBooking(ctx, bookingID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if len(existing) > 0 {
		return &existing[0], nil
	}

	var invoice *domain.Invoice
	err = postgres.InSerializableTx(ctx, s.pool, func(tx pgx.Tx) error {
		b, err := s.bookings.GetByID(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		if b == nil {
			return apperr.NotFound("booking not found")
		}
		guest, err := s.guests.GetByID(ctx, tx, b.GuestID)
		if err != nil {
			return err
		}
		if guest == nil {
			return apperr.NotFound("guest not found")
		}

		settings, err := s.settings.Load(ctx)
		if err != nil {
			return err
		}
		summary := composeSummary(b, settings)

		now := s.clock.Now()
		month := now.Format("200601")
		seq, err := s.payments.NextInvoiceSequence(ctx, tx, month)
		if err != nil {
			return err
		}

		invoice, err = s.payments.CreateInvoice(ctx, tx, &domain.Invoice{
			UUID:           uuid.NewString(),
			InvoiceNumber:  fmt.Sprintf("INV-%s-%06d", month, seq),
			BookingID:      b.ID,
			BillingName:    guest.FullName(),
			IssueDate:      s.clock.Today(),
			Subtotal:       summary.Subtotal,
			TaxAmount:      summary.TaxAmount,
			DiscountAmount: b.DiscountAmount,
			TotalAmount:    summary.TotalAmount,
			PaidAmount:     decimal.Zero,
			BalanceDue:     summary.TotalAmount,
			Currency:       "MYR",
			Status:         domain.InvoiceIssued,
		})
		return err
	})
	if err != nil {
		return nil, wrap(err)
	}

	if err := s.bus.Publish(ctx, events.InvoiceIssued, invoice); err != nil {
		logger.WarnContext(ctx, "event publish failed", "subject", events.InvoiceIssued, "error", err)
	}
	return invoice, nil
}

func (s *BillingService) GetInvoice(ctx context.Context, uuid string) (*domain.Invoice, error) {
	inv, err := s.payments.GetInvoiceByUUID(ctx, uuid)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if inv == nil {
		return nil, apperr.NotFound("invoice not found")
	}
	return inv, nil
}

// CreateLedger opens a receivable with the full amount outstanding.
func (s *BillingService) CreateLedger(ctx context.Context, req *domain.CreateLedgerRequest) (*domain.CustomerLedger, error) {
	name := sanitize.Name(req.CompanyName)
	if name == "" {
		return nil, apperr.BadRequest("company name is required")
	}
	if !req.Amount.IsPositive() {
		return nil, apperr.BadRequest("amount must be positive")
	}

	ledger, err := s.ledgers.Create(ctx, nil, &domain.CustomerLedger{
		CompanyName: name,
		Description: sanitize.Notes(req.Description),
		ExpenseType: sanitize.Text(req.ExpenseType),
		Amount:      req.Amount.RoundBank(2),
		PaidAmount:  decimal.Zero,
		BalanceDue:  req.Amount.RoundBank(2),
		Status:      domain.LedgerPending,
		BookingID:   req.BookingID,
	})
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return ledger, nil
}

func (s *BillingService) GetLedger(ctx context.Context, id int64) (*domain.CustomerLedger, error) {
	l, err := s.ledgers.GetByID(ctx, nil, id)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if l == nil {
		return nil, apperr.NotFound("ledger not found")
	}
	return l, nil
}

func (s *BillingService) ListLedgers(ctx context.Context, status *domain.LedgerStatus, limit, offset int) ([]domain.CustomerLedger, error) {
	return s.ledgers.List(ctx, status, limit, offset)
}

// RecordLedgerPayment appends a receipt and atomically re-derives the
// ledger's balance and status.
func (s *BillingService) RecordLedgerPayment(ctx context.Context, ledgerID int64, req *domain.LedgerPaymentRequest, receivedBy *int64) (*domain.CustomerLedger, error) {
	if !req.Amount.IsPositive() {
		return nil, apperr.BadRequest("amount must be positive")
	}
	if req.Method == "" {
		return nil, apperr.BadRequest("payment method is required")
	}

	var out *domain.CustomerLedger
	err := postgres.InSerializableTx(ctx, s.pool, func(tx pgx.Tx) error {
		l, err := s.ledgers.GetByID(ctx, tx, ledgerID)
		if err != nil {
			return err
		}
		if l == nil {
			return apperr.NotFound("ledger not found")
		}
		if !l.Status.AcceptsPayments() {
			return apperr.BadRequest(fmt.Sprintf("ledger in status %s does not accept payments", l.Status))
		}

		_, err = s.ledgers.RecordPayment(ctx, tx, &domain.CustomerLedgerPayment{
			LedgerID:   ledgerID,
			Amount:     req.Amount.RoundBank(2),
			Method:     req.Method,
			Reference:  req.Reference,
			ReceivedBy: receivedBy,
		})
		if err != nil {
			return err
		}

		out, err = s.ledgers.ApplyPayment(ctx, tx, ledgerID, req.Amount.RoundBank(2))
		return err
	})
	if err != nil {
		return nil, wrap(err)
	}
	return out, nil
}

func (s *BillingService) LedgerPayments(ctx context.Context, ledgerID int64) ([]domain.CustomerLedgerPayment, error) {
	return s.ledgers.Payments(ctx, ledgerID)
}

// VoidLedger voids a pending or partial ledger; voided ledgers reject
// further payments.
func (s *BillingService) VoidLedger(ctx context.Context, id int64, actorID int64, reason string) (*domain.CustomerLedger, error) {
	reason = sanitize.Text(reason)
	if reason == "" {
		return nil, apperr.BadRequest("void reason is required")
	}

	err := postgres.InSerializableTx(ctx, s.pool, func(tx pgx.Tx) error {
		l, err := s.ledgers.GetByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if l == nil {
			return apperr.NotFound("ledger not found")
		}
		if l.Status != domain.LedgerPending && l.Status != domain.LedgerPartial {
			return apperr.BadRequest(fmt.Sprintf("cannot void ledger in status %s", l.Status))
		}
		return s.ledgers.Void(ctx, tx, id, actorID, reason, s.clock.Now())
	})
	if err != nil {
		return nil, wrap(err)
	}

	s.audit.Append(ctx, &actorID, domain.ActionLedgerVoided, "customer_ledger", &id, map[string]string{"reason": reason})
	return s.GetLedger(ctx, id)
}

// ReverseLedger inserts a negating counterpart row and marks the source
// reversed. The reversal's negative amount is the only one permitted.
func (s *BillingService) ReverseLedger(ctx context.Context, id int64, actorID int64) (*domain.CustomerLedger, error) {
	var reversal *domain.CustomerLedger

	err := postgres.InSerializableTx(ctx, s.pool, func(tx pgx.Tx) error {
		l, err := s.ledgers.GetByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if l == nil {
			return apperr.NotFound("ledger not found")
		}
		if l.Status == domain.LedgerReversed {
			return apperr.Conflict("ledger is already reversed")
		}

		reversal, err = s.ledgers.Create(ctx, tx, &domain.CustomerLedger{
			CompanyName:           l.CompanyName,
			Description:           "Reversal of: " + l.Description,
			ExpenseType:           l.ExpenseType,
			Amount:                l.Amount.Neg(),
			PaidAmount:            decimal.Zero,
			BalanceDue:            l.Amount.Neg(),
			Status:                domain.LedgerPending,
			BookingID:             l.BookingID,
			IsReversal:            true,
			OriginalTransactionID: &l.ID,
		})
		if err != nil {
			return err
		}
		return s.ledgers.MarkReversed(ctx, tx, id)
	})
	if err != nil {
		return nil, wrap(err)
	}

	s.audit.Append(ctx, &actorID, domain.ActionLedgerReversed, "customer_ledger", &id, map[string]int64{"reversalId": reversal.ID})
	return reversal, nil
}
