package service

import (
	"context"

	"github.com/harborcrest/pms/internal/apperr"
	"github.com/harborcrest/pms/internal/domain"
	"github.com/harborcrest/pms/internal/repo/postgres"
)

type SettingsService struct {
	repo  postgres.SettingsRepo
	audit *AuditLogService
}

func NewSettingsService(repo postgres.SettingsRepo, audit *AuditLogService) *SettingsService {
	return &SettingsService{repo: repo, audit: audit}
}

func (s *SettingsService) Get(ctx context.Context) (domain.SystemSettings, error) {
	settings, err := s.repo.Load(ctx)
	if err != nil {
		return settings, apperr.Internal(err)
	}
	return settings, nil
}

func (s *SettingsService) Update(ctx context.Context, actorID int64, settings domain.SystemSettings) (domain.SystemSettings, error) {
	if settings.ServiceChargePct.IsNegative() || settings.TaxPct.IsNegative() {
		return settings, apperr.BadRequest("percentages must not be negative")
	}
	if settings.KeycardDeposit.IsNegative() {
		return settings, apperr.BadRequest("keycard deposit must not be negative")
	}

	if err := s.repo.Save(ctx, nil, settings); err != nil {
		return settings, apperr.Internal(err)
	}
	s.audit.Append(ctx, &actorID, domain.ActionSettingsChanged, "system_settings", nil, settings)
	return settings, nil
}
