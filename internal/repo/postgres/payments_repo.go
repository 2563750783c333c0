package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/harborcrest/pms/internal/domain"
)

type PaymentsRepo interface {
	Create(ctx context.Context, q Querier, p *domain.Payment) (*domain.Payment, error)
	GetByID(ctx context.Context, id int64) (*domain.Payment, error)
	ListForBooking(ctx context.Context, bookingID int64) ([]domain.Payment, error)
	// CompletedTotal sums completed payments for a booking.
	CompletedTotal(ctx context.Context, q Querier, bookingID int64) (decimal.Decimal, error)

	CreateInvoice(ctx context.Context, q Querier, inv *domain.Invoice) (*domain.Invoice, error)
	GetInvoiceByUUID(ctx context.Context, uuid string) (*domain.Invoice, error)
	ListInvoicesForBooking(ctx context.Context, bookingID int64) ([]domain.Invoice, error)
	// NextInvoiceSequence bumps and returns the per-month invoice counter.
	NextInvoiceSequence(ctx context.Context, q Querier, month string) (int64, error)
	// SettleInvoices marks a booking's issued invoices paid, recording the
	// amount received.
	SettleInvoices(ctx context.Context, q Querier, bookingID int64, paid decimal.Decimal) error
}

type PaymentsRepoImpl struct{ pool *pgxpool.Pool }

func NewPaymentsRepo(pool *pgxpool.Pool) *PaymentsRepoImpl { return &PaymentsRepoImpl{pool: pool} }

const paymentCols = `id, booking_id, user_id, method, status, subtotal, service_charge,
tax_amount, keycard_deposit, total_amount, transaction_reference, created_at`

func scanPayment(row pgx.Row) (*domain.Payment, error) {
	var p domain.Payment
	err := row.Scan(
		&p.ID, &p.BookingID, &p.UserID, &p.Method, &p.Status, &p.Subtotal, &p.ServiceCharge,
		&p.TaxAmount, &p.KeycardDeposit, &p.TotalAmount, &p.TransactionReference, &p.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentsRepoImpl) Create(ctx context.Context, q Querier, p *domain.Payment) (*domain.Payment, error) {
	q = orPool(q, r.pool)
	const query = `INSERT INTO payments (
	booking_id, user_id, method, status, subtotal, service_charge,
	tax_amount, keycard_deposit, total_amount, transaction_reference
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
RETURNING ` + paymentCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanPayment(q.QueryRow(ctx, query,
		p.BookingID, p.UserID, p.Method, p.Status, p.Subtotal, p.ServiceCharge,
		p.TaxAmount, p.KeycardDeposit, p.TotalAmount, p.TransactionReference,
	))
}

func (r *PaymentsRepoImpl) GetByID(ctx context.Context, id int64) (*domain.Payment, error) {
	const q = `SELECT ` + paymentCols + ` FROM payments WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return scanPayment(r.pool.QueryRow(ctx, q, id))
}

func (r *PaymentsRepoImpl) ListForBooking(ctx context.Context, bookingID int64) ([]domain.Payment, error) {
	const q = `SELECT ` + paymentCols + ` FROM payments WHERE booking_id = $1 ORDER BY created_at DESC`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ps []domain.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		ps = append(ps, *p)
	}
	return ps, rows.Err()
}

func (r *PaymentsRepoImpl) CompletedTotal(ctx context.Context, q Querier, bookingID int64) (decimal.Decimal, error) {
	q = orPool(q, r.pool)
	const query = `SELECT COALESCE(SUM(total_amount), 0) FROM payments
WHERE booking_id = $1 AND status = 'completed'`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var total decimal.Decimal
	err := q.QueryRow(ctx, query, bookingID).Scan(&total)
	return total, err
}

const invoiceCols = `id, uuid, invoice_number, booking_id, billing_name, issue_date, due_date,
subtotal, tax_amount, discount_amount, total_amount, paid_amount, balance_due,
currency, status, created_at`

func scanInvoice(row pgx.Row) (*domain.Invoice, error) {
	var inv domain.Invoice
	err := row.Scan(
		&inv.ID, &inv.UUID, &inv.InvoiceNumber, &inv.BookingID, &inv.BillingName, &inv.IssueDate, &inv.DueDate,
		&inv.Subtotal, &inv.TaxAmount, &inv.DiscountAmount, &inv.TotalAmount, &inv.PaidAmount, &inv.BalanceDue,
		&inv.Currency, &inv.Status, &inv.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *PaymentsRepoImpl) CreateInvoice(ctx context.Context, q Querier, inv *domain.Invoice) (*domain.Invoice, error) {
	q = orPool(q, r.pool)
	const query = `INSERT INTO invoices (
	uuid, invoice_number, booking_id, billing_name, issue_date, due_date,
	subtotal, tax_amount, discount_amount, total_amount, paid_amount, balance_due,
	currency, status
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
RETURNING ` + invoiceCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanInvoice(q.QueryRow(ctx, query,
		inv.UUID, inv.InvoiceNumber, inv.BookingID, inv.BillingName, inv.IssueDate, inv.DueDate,
		inv.Subtotal, inv.TaxAmount, inv.DiscountAmount, inv.TotalAmount, inv.PaidAmount, inv.BalanceDue,
		inv.Currency, inv.Status,
	))
}

func (r *PaymentsRepoImpl) GetInvoiceByUUID(ctx context.Context, uuid string) (*domain.Invoice, error) {
	const q = `SELECT ` + invoiceCols + ` FROM invoices WHERE uuid = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return scanInvoice(r.pool.QueryRow(ctx, q, uuid))
}

func (r *PaymentsRepoImpl) ListInvoicesForBooking(ctx context.Context, bookingID int64) ([]domain.Invoice, error) {
	const q = `SELECT ` + invoiceCols + ` FROM invoices WHERE booking_id = $1 ORDER BY created_at DESC`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invs []domain.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invs = append(invs, *inv)
	}
	return invs, rows.Err()
}

func (r *PaymentsRepoImpl) NextInvoiceSequence(ctx context.Context, q Querier, month string) (int64, error) {
	q = orPool(q, r.pool)
	const query = `INSERT INTO invoice_number_counters (month, counter)
VALUES ($1, 1)
ON CONFLICT (month) DO UPDATE SET counter = invoice_number_counters.counter + 1
RETURNING counter`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var seq int64
	err := q.QueryRow(ctx, query, month).Scan(&seq)
	return seq, err
}

func (r *PaymentsRepoImpl) SettleInvoices(ctx context.Context, q Querier, bookingID int64, paid decimal.Decimal) error {
	q = orPool(q, r.pool)
	const query = `UPDATE invoices
SET paid_amount = $2, balance_due = GREATEST(total_amount - $2, 0), status = 'paid'
WHERE booking_id = $1 AND status = 'issued'`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := q.Exec(ctx, query, bookingID, paid)
	return err
}

var _ PaymentsRepo = (*PaymentsRepoImpl)(nil)
