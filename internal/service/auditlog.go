package service

import (
	"context"
	"encoding/json"

	"github.com/harborcrest/pms/internal/domain"
	"github.com/harborcrest/pms/internal/repo/postgres"
	"github.com/harborcrest/pms/pkg/logger"
)

// AuditLogService appends audit entries best-effort: a failed write is
// logged and swallowed so it can never fail the operation being audited.
type AuditLogService struct {
	repo postgres.AuditRepo
}

func NewAuditLogService(repo postgres.AuditRepo) *AuditLogService {
	return &AuditLogService{repo: repo}
}

func (s *AuditLogService) Append(ctx context.Context, userID *int64, action, resourceType string, resourceID *int64, details any) {
	var raw json.RawMessage
	if details != nil {
		b, err := json.Marshal(details)
		if err != nil {
			logger.WarnContext(ctx, "audit details marshal failed", "action", action, "error", err)
		} else {
			raw = b
		}
	}

	entry := &domain.AuditLog{
		UserID:       userID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Details:      raw,
	}
	if err := s.repo.Insert(ctx, entry); err != nil {
		logger.WarnContext(ctx, "audit append failed", "action", action, "error", err)
	}
}

func (s *AuditLogService) List(ctx context.Context, f domain.AuditLogFilter) ([]domain.AuditLog, error) {
	return s.repo.List(ctx, f)
}
