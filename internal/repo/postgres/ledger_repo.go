package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/harborcrest/pms/internal/domain"
)

type LedgerRepo interface {
	Create(ctx context.Context, q Querier, l *domain.CustomerLedger) (*domain.CustomerLedger, error)
	GetByID(ctx context.Context, q Querier, id int64) (*domain.CustomerLedger, error)
	List(ctx context.Context, status *domain.LedgerStatus, limit, offset int) ([]domain.CustomerLedger, error)
	// ApplyPayment bumps paid_amount and recomputes balance and status
	// inside the caller's transaction.
	ApplyPayment(ctx context.Context, q Querier, id int64, amount decimal.Decimal) (*domain.CustomerLedger, error)
	RecordPayment(ctx context.Context, q Querier, p *domain.CustomerLedgerPayment) (*domain.CustomerLedgerPayment, error)
	Payments(ctx context.Context, ledgerID int64) ([]domain.CustomerLedgerPayment, error)
	Void(ctx context.Context, q Querier, id int64, by int64, reason string, at time.Time) error
	MarkReversed(ctx context.Context, q Querier, id int64) error
}

type LedgerRepoImpl struct{ pool *pgxpool.Pool }

func NewLedgerRepo(pool *pgxpool.Pool) *LedgerRepoImpl { return &LedgerRepoImpl{pool: pool} }

const ledgerCols = `id, company_name, description, expense_type, amount, paid_amount, balance_due,
status, booking_id, is_reversal, original_transaction_id,
void_at, void_by, void_reason, created_at, updated_at`

func scanLedger(row pgx.Row) (*domain.CustomerLedger, error) {
	var l domain.CustomerLedger
	err := row.Scan(
		&l.ID, &l.CompanyName, &l.Description, &l.ExpenseType, &l.Amount, &l.PaidAmount, &l.BalanceDue,
		&l.Status, &l.BookingID, &l.IsReversal, &l.OriginalTransactionID,
		&l.VoidAt, &l.VoidBy, &l.VoidReason, &l.CreatedAt, &l.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *LedgerRepoImpl) Create(ctx context.Context, q Querier, l *domain.CustomerLedger) (*domain.CustomerLedger, error) {
	q = orPool(q, r.pool)
	const query = `INSERT INTO customer_ledgers (
	company_name, description, expense_type, amount, paid_amount, balance_due,
	status, booking_id, is_reversal, original_transaction_id
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
RETURNING ` + ledgerCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanLedger(q.QueryRow(ctx, query,
		l.CompanyName, l.Description, l.ExpenseType, l.Amount, l.PaidAmount, l.BalanceDue,
		l.Status, l.BookingID, l.IsReversal, l.OriginalTransactionID,
	))
}

func (r *LedgerRepoImpl) GetByID(ctx context.Context, q Querier, id int64) (*domain.CustomerLedger, error) {
	q = orPool(q, r.pool)
	const query = `SELECT ` + ledgerCols + ` FROM customer_ledgers WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return scanLedger(q.QueryRow(ctx, query, id))
}

func (r *LedgerRepoImpl) List(ctx context.Context, status *domain.LedgerStatus, limit, offset int) ([]domain.CustomerLedger, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	query := `SELECT ` + ledgerCols + ` FROM customer_ledgers`
	args := []any{}
	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, *status)
	}
	query += ` ORDER BY created_at DESC`
	args = append(args, limit, offset)
	if status != nil {
		query += ` LIMIT $2 OFFSET $3`
	} else {
		query += ` LIMIT $1 OFFSET $2`
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ls := make([]domain.CustomerLedger, 0, limit)
	for rows.Next() {
		l, err := scanLedger(rows)
		if err != nil {
			return nil, err
		}
		ls = append(ls, *l)
	}
	return ls, rows.Err()
}

func (r *LedgerRepoImpl) ApplyPayment(ctx context.Context, q Querier, id int64, amount decimal.Decimal) (*domain.CustomerLedger, error) {
	q = orPool(q, r.pool)
	const query = `UPDATE customer_ledgers
SET paid_amount = paid_amount + $2,
    balance_due = amount - (paid_amount + $2),
    status = CASE WHEN paid_amount + $2 >= amount THEN 'paid' ELSE 'partial' END,
    updated_at = now()
WHERE id = $1
RETURNING ` + ledgerCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return scanLedger(q.QueryRow(ctx, query, id, amount))
}

const ledgerPaymentCols = `id, ledger_id, amount, method, reference, received_by, created_at`

func (r *LedgerRepoImpl) RecordPayment(ctx context.Context, q Querier, p *domain.CustomerLedgerPayment) (*domain.CustomerLedgerPayment, error) {
	q = orPool(q, r.pool)
	const query = `INSERT INTO customer_ledger_payments (ledger_id, amount, method, reference, received_by)
VALUES ($1,$2,$3,$4,$5)
RETURNING ` + ledgerPaymentCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var out domain.CustomerLedgerPayment
	err := q.QueryRow(ctx, query, p.LedgerID, p.Amount, p.Method, p.Reference, p.ReceivedBy).Scan(
		&out.ID, &out.LedgerID, &out.Amount, &out.Method, &out.Reference, &out.ReceivedBy, &out.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *LedgerRepoImpl) Payments(ctx context.Context, ledgerID int64) ([]domain.CustomerLedgerPayment, error) {
	const q = `SELECT ` + ledgerPaymentCols + ` FROM customer_ledger_payments
WHERE ledger_id = $1 ORDER BY created_at DESC`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, ledgerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ps []domain.CustomerLedgerPayment
	for rows.Next() {
		var p domain.CustomerLedgerPayment
		if err := rows.Scan(&p.ID, &p.LedgerID, &p.Amount, &p.Method, &p.Reference, &p.ReceivedBy, &p.CreatedAt); err != nil {
			return nil, err
		}
		ps = append(ps, p)
	}
	return ps, rows.Err()
}

func (r *LedgerRepoImpl) Void(ctx context.Context, q Querier, id int64, by int64, reason string, at time.Time) error {
	q = orPool(q, r.pool)
	const query = `UPDATE customer_ledgers
SET status = 'void', void_at = $2, void_by = $3, void_reason = $4, updated_at = $2
WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := q.Exec(ctx, query, id, at, by, reason)
	return err
}

func (r *LedgerRepoImpl) MarkReversed(ctx context.Context, q Querier, id int64) error {
	q = orPool(q, r.pool)
	const query = `UPDATE customer_ledgers SET status = 'reversed', updated_at = now() WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := q.Exec(ctx, query, id)
	return err
}

var _ LedgerRepo = (*LedgerRepoImpl)(nil)
