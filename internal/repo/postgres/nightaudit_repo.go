package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/harborcrest/pms/internal/domain"
)

type NightAuditRepo interface {
	// StartRun inserts the run row; a unique violation on audit_date means a
	// run already exists for the date.
	StartRun(ctx context.Context, q Querier, auditDate time.Time, runBy *int64, now time.Time) (*domain.NightAuditRun, error)
	FinishRun(ctx context.Context, q Querier, id int64, posted int, total decimal.Decimal, status domain.AuditRunStatus, at time.Time) error
	GetRunByDate(ctx context.Context, date time.Time) (*domain.NightAuditRun, error)
	ListRuns(ctx context.Context, limit, offset int) ([]domain.NightAuditRun, error)
	// InsertPosting records a room-charge posting. The (booking_id,
	// audit_date) unique index makes re-posting a no-op; inserted reports
	// whether a row was actually written.
	InsertPosting(ctx context.Context, q Querier, p *domain.BookingPosting) (inserted bool, err error)
	// LinkPostingLedger attaches the ledger row created for a freshly
	// inserted posting.
	LinkPostingLedger(ctx context.Context, q Querier, bookingID int64, auditDate time.Time, ledgerID int64) error
	PostingsForDate(ctx context.Context, date time.Time) ([]domain.BookingPosting, error)
}

type NightAuditRepoImpl struct{ pool *pgxpool.Pool }

func NewNightAuditRepo(pool *pgxpool.Pool) *NightAuditRepoImpl { return &NightAuditRepoImpl{pool: pool} }

const auditRunCols = `id, audit_date, started_at, finished_at, run_by, bookings_posted, total_amount_posted, status`

func scanAuditRun(row pgx.Row) (*domain.NightAuditRun, error) {
	var ar domain.NightAuditRun
	err := row.Scan(&ar.ID, &ar.AuditDate, &ar.StartedAt, &ar.FinishedAt, &ar.RunBy, &ar.BookingsPosted, &ar.TotalAmountPosted, &ar.Status)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ar, nil
}

func (r *NightAuditRepoImpl) StartRun(ctx context.Context, q Querier, auditDate time.Time, runBy *int64, now time.Time) (*domain.NightAuditRun, error) {
	q = orPool(q, r.pool)
	const query = `INSERT INTO night_audit_runs (audit_date, started_at, run_by, bookings_posted, total_amount_posted, status)
VALUES ($1, $2, $3, 0, 0, 'running')
RETURNING ` + auditRunCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return scanAuditRun(q.QueryRow(ctx, query, auditDate, now, runBy))
}

func (r *NightAuditRepoImpl) FinishRun(ctx context.Context, q Querier, id int64, posted int, total decimal.Decimal, status domain.AuditRunStatus, at time.Time) error {
	q = orPool(q, r.pool)
	const query = `UPDATE night_audit_runs
SET finished_at = $2, bookings_posted = $3, total_amount_posted = $4, status = $5
WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := q.Exec(ctx, query, id, at, posted, total, status)
	return err
}

func (r *NightAuditRepoImpl) GetRunByDate(ctx context.Context, date time.Time) (*domain.NightAuditRun, error) {
	const q = `SELECT ` + auditRunCols + ` FROM night_audit_runs WHERE audit_date = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return scanAuditRun(r.pool.QueryRow(ctx, q, date))
}

func (r *NightAuditRepoImpl) ListRuns(ctx context.Context, limit, offset int) ([]domain.NightAuditRun, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	const q = `SELECT ` + auditRunCols + ` FROM night_audit_runs ORDER BY audit_date DESC LIMIT $1 OFFSET $2`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []domain.NightAuditRun
	for rows.Next() {
		ar, err := scanAuditRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *ar)
	}
	return runs, rows.Err()
}

func (r *NightAuditRepoImpl) InsertPosting(ctx context.Context, q Querier, p *domain.BookingPosting) (bool, error) {
	q = orPool(q, r.pool)
	const query = `INSERT INTO booking_postings (booking_id, audit_date, amount, ledger_id)
VALUES ($1, $2, $3, $4)
ON CONFLICT (booking_id, audit_date) DO NOTHING`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	tag, err := q.Exec(ctx, query, p.BookingID, p.AuditDate, p.Amount, p.LedgerID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *NightAuditRepoImpl) LinkPostingLedger(ctx context.Context, q Querier, bookingID int64, auditDate time.Time, ledgerID int64) error {
	q = orPool(q, r.pool)
	const query = `UPDATE booking_postings SET ledger_id = $3 WHERE booking_id = $1 AND audit_date = $2`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := q.Exec(ctx, query, bookingID, auditDate, ledgerID)
	return err
}

func (r *NightAuditRepoImpl) PostingsForDate(ctx context.Context, date time.Time) ([]domain.BookingPosting, error) {
	const q = `SELECT id, booking_id, audit_date, amount, ledger_id, created_at
FROM booking_postings WHERE audit_date = $1 ORDER BY booking_id`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ps []domain.BookingPosting
	for rows.Next() {
		var p domain.BookingPosting
		if err := rows.Scan(&p.ID, &p.BookingID, &p.AuditDate, &p.Amount, &p.LedgerID, &p.CreatedAt); err != nil {
			return nil, err
		}
		ps = append(ps, p)
	}
	return ps, rows.Err()
}

var _ NightAuditRepo = (*NightAuditRepoImpl)(nil)
