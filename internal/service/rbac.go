package service

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/harborcrest/pms/internal/apperr"
	"github.com/harborcrest/pms/internal/domain"
	"github.com/harborcrest/pms/internal/repo/postgres"
)

type RBACService struct {
	pool  *pgxpool.Pool
	repo  postgres.RBACRepo
	audit *AuditLogService
}

func NewRBACService(pool *pgxpool.Pool, repo postgres.RBACRepo, audit *AuditLogService) *RBACService {
	return &RBACService{pool: pool, repo: repo, audit: audit}
}

// Can reports whether the user holds the permission. A role carrying
// "<resource>:manage" satisfies any action on that resource, and super
// admins pass every check.
func (s *RBACService) Can(ctx context.Context, userID int64, permission string) (bool, error) {
	super, err := s.repo.IsSuperAdmin(ctx, userID)
	if err != nil {
		return false, err
	}
	if super {
		return true, nil
	}

	ok, err := s.repo.HasPermission(ctx, userID, permission)
	if err != nil || ok {
		return ok, err
	}

	if manage := domain.ManagePermission(permission); manage != permission {
		return s.repo.HasPermission(ctx, userID, manage)
	}
	return false, nil
}

func (s *RBACService) HasRole(ctx context.Context, userID int64, role string) (bool, error) {
	super, err := s.repo.IsSuperAdmin(ctx, userID)
	if err != nil {
		return false, err
	}
	if super {
		return true, nil
	}
	return s.repo.HasRole(ctx, userID, role)
}

func (s *RBACService) IsSuperAdmin(ctx context.Context, userID int64) (bool, error) {
	return s.repo.IsSuperAdmin(ctx, userID)
}

func (s *RBACService) RolesFor(ctx context.Context, userID int64) ([]string, error) {
	return s.repo.UserRoleNames(ctx, userID)
}

func (s *RBACService) CreateRole(ctx context.Context, name string, description *string) (*domain.Role, error) {
	name = strings.TrimSpace(strings.ToLower(name))
	if name == "" {
		return nil, apperr.BadRequest("role name is required")
	}
	role, err := s.repo.CreateRole(ctx, name, description)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return nil, apperr.Conflict("role already exists")
		}
		return nil, apperr.Internal(err)
	}
	return role, nil
}

func (s *RBACService) ListRoles(ctx context.Context) ([]domain.Role, error) {
	return s.repo.ListRoles(ctx)
}

func (s *RBACService) CreatePermission(ctx context.Context, resource, action string, description *string) (*domain.Permission, error) {
	resource = strings.TrimSpace(strings.ToLower(resource))
	action = strings.TrimSpace(strings.ToLower(action))
	if resource == "" || action == "" {
		return nil, apperr.BadRequest("resource and action are required")
	}
	name := resource + ":" + action
	p, err := s.repo.CreatePermission(ctx, name, resource, action, description)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return nil, apperr.Conflict("permission already exists")
		}
		return nil, apperr.Internal(err)
	}
	return p, nil
}

func (s *RBACService) ListPermissions(ctx context.Context) ([]domain.Permission, error) {
	return s.repo.ListPermissions(ctx)
}

func (s *RBACService) AssignRole(ctx context.Context, actorID, userID int64, roleName string) error {
	role, err := s.repo.GetRoleByName(ctx, roleName)
	if err != nil {
		return apperr.Internal(err)
	}
	if role == nil {
		return apperr.NotFound("role not found")
	}
	if err := s.repo.AssignRole(ctx, s.pool, userID, role.ID); err != nil {
		return apperr.Internal(err)
	}
	s.audit.Append(ctx, &actorID, domain.ActionRoleAssigned, "user", &userID, map[string]string{"role": roleName})
	return nil
}

func (s *RBACService) RemoveRole(ctx context.Context, actorID, userID int64, roleName string) error {
	role, err := s.repo.GetRoleByName(ctx, roleName)
	if err != nil {
		return apperr.Internal(err)
	}
	if role == nil {
		return apperr.NotFound("role not found")
	}
	removed, err := s.repo.RemoveRole(ctx, userID, role.ID)
	if err != nil {
		return apperr.Internal(err)
	}
	if !removed {
		return apperr.NotFound("role not assigned to user")
	}
	s.audit.Append(ctx, &actorID, domain.ActionRoleRemoved, "user", &userID, map[string]string{"role": roleName})
	return nil
}

func (s *RBACService) GrantPermission(ctx context.Context, roleID, permissionID int64) error {
	if err := s.repo.GrantPermission(ctx, roleID, permissionID); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

func (s *RBACService) RevokePermission(ctx context.Context, roleID, permissionID int64) error {
	revoked, err := s.repo.RevokePermission(ctx, roleID, permissionID)
	if err != nil {
		return apperr.Internal(err)
	}
	if !revoked {
		return apperr.NotFound("permission not granted to role")
	}
	return nil
}
