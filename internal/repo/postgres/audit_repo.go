package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/harborcrest/pms/internal/domain"
)

type AuditRepo interface {
	Insert(ctx context.Context, entry *domain.AuditLog) error
	List(ctx context.Context, f domain.AuditLogFilter) ([]domain.AuditLog, error)
}

type AuditRepoImpl struct{ pool *pgxpool.Pool }

func NewAuditRepo(pool *pgxpool.Pool) *AuditRepoImpl { return &AuditRepoImpl{pool: pool} }

func (r *AuditRepoImpl) Insert(ctx context.Context, entry *domain.AuditLog) error {
	const q = `INSERT INTO audit_logs (user_id, action, resource_type, resource_id, details, ip, user_agent)
VALUES ($1,$2,$3,$4,$5,$6,$7)`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := r.pool.Exec(ctx, q, entry.UserID, entry.Action, entry.ResourceType, entry.ResourceID, entry.Details, entry.IP, entry.UserAgent)
	return err
}

func (r *AuditRepoImpl) List(ctx context.Context, f domain.AuditLogFilter) ([]domain.AuditLog, error) {
	limit := f.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	var conds []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.UserID != nil {
		add("user_id = $%d", *f.UserID)
	}
	if f.Action != nil {
		add("action = $%d", *f.Action)
	}
	if f.ResourceType != nil {
		add("resource_type = $%d", *f.ResourceType)
	}

	query := `SELECT id, user_id, action, resource_type, resource_id, details, ip, user_agent, created_at
FROM audit_logs`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	args = append(args, limit, offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]domain.AuditLog, 0, limit)
	for rows.Next() {
		var l domain.AuditLog
		if err := rows.Scan(&l.ID, &l.UserID, &l.Action, &l.ResourceType, &l.ResourceID, &l.Details, &l.IP, &l.UserAgent, &l.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

var _ AuditRepo = (*AuditRepoImpl)(nil)
