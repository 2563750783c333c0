package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/harborcrest/pms/internal/domain"
)

type RBACRepo interface {
	CreateRole(ctx context.Context, name string, description *string) (*domain.Role, error)
	GetRoleByName(ctx context.Context, name string) (*domain.Role, error)
	ListRoles(ctx context.Context) ([]domain.Role, error)
	DeleteRole(ctx context.Context, id int64) (bool, error)
	CreatePermission(ctx context.Context, name, resource, action string, description *string) (*domain.Permission, error)
	ListPermissions(ctx context.Context) ([]domain.Permission, error)
	AssignRole(ctx context.Context, q Querier, userID, roleID int64) error
	RemoveRole(ctx context.Context, userID, roleID int64) (bool, error)
	GrantPermission(ctx context.Context, roleID, permissionID int64) error
	RevokePermission(ctx context.Context, roleID, permissionID int64) (bool, error)
	UserRoleNames(ctx context.Context, userID int64) ([]string, error)
	// HasPermission checks the exact permission name only; the :manage
	// fallback lives in the service.
	HasPermission(ctx context.Context, userID int64, permission string) (bool, error)
	HasRole(ctx context.Context, userID int64, role string) (bool, error)
	IsSuperAdmin(ctx context.Context, userID int64) (bool, error)
}

type RBACRepoImpl struct{ pool *pgxpool.Pool }

func NewRBACRepo(pool *pgxpool.Pool) *RBACRepoImpl { return &RBACRepoImpl{pool: pool} }

func (r *RBACRepoImpl) CreateRole(ctx context.Context, name string, description *string) (*domain.Role, error) {
	const q = `INSERT INTO roles (name, description) VALUES ($1, $2)
RETURNING id, name, description`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var role domain.Role
	err := r.pool.QueryRow(ctx, q, name, description).Scan(&role.ID, &role.Name, &role.Description)
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *RBACRepoImpl) GetRoleByName(ctx context.Context, name string) (*domain.Role, error) {
	const q = `SELECT id, name, description FROM roles WHERE name = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var role domain.Role
	err := r.pool.QueryRow(ctx, q, name).Scan(&role.ID, &role.Name, &role.Description)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *RBACRepoImpl) ListRoles(ctx context.Context) ([]domain.Role, error) {
	const q = `SELECT id, name, description FROM roles ORDER BY name`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []domain.Role
	for rows.Next() {
		var role domain.Role
		if err := rows.Scan(&role.ID, &role.Name, &role.Description); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

func (r *RBACRepoImpl) DeleteRole(ctx context.Context, id int64) (bool, error) {
	const q = `DELETE FROM roles WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	ct, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

func (r *RBACRepoImpl) CreatePermission(ctx context.Context, name, resource, action string, description *string) (*domain.Permission, error) {
	const q = `INSERT INTO permissions (name, resource, action, description)
VALUES ($1, $2, $3, $4)
RETURNING id, name, resource, action, description`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var p domain.Permission
	err := r.pool.QueryRow(ctx, q, name, resource, action, description).
		Scan(&p.ID, &p.Name, &p.Resource, &p.Action, &p.Description)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *RBACRepoImpl) ListPermissions(ctx context.Context) ([]domain.Permission, error) {
	const q = `SELECT id, name, resource, action, description FROM permissions ORDER BY resource, action`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ps []domain.Permission
	for rows.Next() {
		var p domain.Permission
		if err := rows.Scan(&p.ID, &p.Name, &p.Resource, &p.Action, &p.Description); err != nil {
			return nil, err
		}
		ps = append(ps, p)
	}
	return ps, rows.Err()
}

func (r *RBACRepoImpl) AssignRole(ctx context.Context, q Querier, userID, roleID int64) error {
	q = orPool(q, r.pool)
	const query = `INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2)
ON CONFLICT (user_id, role_id) DO NOTHING`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := q.Exec(ctx, query, userID, roleID)
	return err
}

func (r *RBACRepoImpl) RemoveRole(ctx context.Context, userID, roleID int64) (bool, error) {
	const q = `DELETE FROM user_roles WHERE user_id = $1 AND role_id = $2`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	ct, err := r.pool.Exec(ctx, q, userID, roleID)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

func (r *RBACRepoImpl) GrantPermission(ctx context.Context, roleID, permissionID int64) error {
	const q = `INSERT INTO role_permissions (role_id, permission_id) VALUES ($1, $2)
ON CONFLICT (role_id, permission_id) DO NOTHING`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := r.pool.Exec(ctx, q, roleID, permissionID)
	return err
}

func (r *RBACRepoImpl) RevokePermission(ctx context.Context, roleID, permissionID int64) (bool, error) {
	const q = `DELETE FROM role_permissions WHERE role_id = $1 AND permission_id = $2`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	ct, err := r.pool.Exec(ctx, q, roleID, permissionID)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

func (r *RBACRepoImpl) UserRoleNames(ctx context.Context, userID int64) ([]string, error) {
	const q = `SELECT r.name
FROM roles r
INNER JOIN user_roles ur ON r.id = ur.role_id
WHERE ur.user_id = $1
ORDER BY r.name`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (r *RBACRepoImpl) HasPermission(ctx context.Context, userID int64, permission string) (bool, error) {
	const q = `SELECT EXISTS(
	SELECT 1
	FROM permissions p
	INNER JOIN role_permissions rp ON p.id = rp.permission_id
	INNER JOIN user_roles ur ON rp.role_id = ur.role_id
	WHERE ur.user_id = $1 AND p.name = $2
)`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var has bool
	err := r.pool.QueryRow(ctx, q, userID, permission).Scan(&has)
	return has, err
}

func (r *RBACRepoImpl) HasRole(ctx context.Context, userID int64, role string) (bool, error) {
	const q = `SELECT EXISTS(
	SELECT 1
	FROM roles r
	INNER JOIN user_roles ur ON r.id = ur.role_id
	WHERE ur.user_id = $1 AND r.name = $2
)`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var has bool
	err := r.pool.QueryRow(ctx, q, userID, role).Scan(&has)
	return has, err
}

func (r *RBACRepoImpl) IsSuperAdmin(ctx context.Context, userID int64) (bool, error) {
	const q = `SELECT is_super_admin FROM users WHERE id = $1 AND deleted_at IS NULL`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var is bool
	err := r.pool.QueryRow(ctx, q, userID).Scan(&is)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	return is, err
}

var _ RBACRepo = (*RBACRepoImpl)(nil)
