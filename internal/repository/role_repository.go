package repository

import (
	"context"
	"fmt"

	"github.com/Su57/stardew/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type RoleRepository interface {
	CRUDRepository[models.Role, int64]
	GetRoleByName(ctx context.Context, name string) (*models.Role, error)
	GetRolesByIDs(ctx context.Context, ids []int64) ([]*models.Role, error)
	GetRoleMenus(ctx context.Context, roleID int64) ([]*models.Menu, error)
	GetMenusForRoles(ctx context.Context, roleIDs []int64) ([]*models.Menu, error)
	SetRoleMenus(ctx context.Context, roleID int64, menuIDs []int64) error
}

type roleRepository struct {
	db *sqlx.DB
}

func NewRoleRepository(db *sqlx.DB) RoleRepository {
	return &roleRepository{db: db}
}

const roleColumns = `id, name, key, status, del_flag, created_at`

func (r *roleRepository) GetByID(ctx context.Context, id int64) (*models.Role, error) {
	var role models.Role
	query := `SELECT ` + roleColumns + ` FROM sys_role WHERE id = $1`
	if err := getOne(ctx, r.db, &role, fmt.Sprintf("role %d", id), query, id); err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *roleRepository) GetRoleByName(ctx context.Context, name string) (*models.Role, error) {
	var role models.Role
	query := `SELECT ` + roleColumns + ` FROM sys_role WHERE name = $1`
	if err := getOne(ctx, r.db, &role, fmt.Sprintf("role '%s'", name), query, name); err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *roleRepository) GetRolesByIDs(ctx context.Context, ids []int64) ([]*models.Role, error) {
	roles := []*models.Role{}
	if len(ids) == 0 {
		return roles, nil
	}
	query := `SELECT ` + roleColumns + ` FROM sys_role WHERE id = ANY($1) ORDER BY id`
	if err := r.db.SelectContext(ctx, &roles, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("failed to get roles by ids: %w", err)
	}
	return roles, nil
}

func (r *roleRepository) List(ctx context.Context, limit, offset int) ([]*models.Role, error) {
	roles := []*models.Role{}
	query, args := paginate(`SELECT `+roleColumns+` FROM sys_role ORDER BY id`, limit, offset)
	if err := r.db.SelectContext(ctx, &roles, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get roles: %w", err)
	}
	return roles, nil
}

func (r *roleRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM sys_role`); err != nil {
		return 0, fmt.Errorf("failed to count roles: %w", err)
	}
	return total, nil
}

func (r *roleRepository) Create(ctx context.Context, role *models.Role) error {
	query := `
		INSERT INTO sys_role (name, key, status, del_flag)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.db.QueryRowxContext(ctx, query, role.Name, role.Key, role.Status, role.DelFlag).
		Scan(&role.ID, &role.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create role: %w", translatePGError(err))
	}
	return nil
}

func (r *roleRepository) Update(ctx context.Context, role *models.Role) error {
	query := `UPDATE sys_role SET name = $2, key = $3, status = $4, del_flag = $5 WHERE id = $1`
	return execWithCheck(ctx, r.db, "update role", query, role.ID, role.Name, role.Key, role.Status, role.DelFlag)
}

func (r *roleRepository) Delete(ctx context.Context, id int64) error {
	return execWithCheck(ctx, r.db, "delete role", `DELETE FROM sys_role WHERE id = $1`, id)
}

func (r *roleRepository) GetRoleMenus(ctx context.Context, roleID int64) ([]*models.Menu, error) {
	return r.GetMenusForRoles(ctx, []int64{roleID})
}

// GetMenusForRoles returns the distinct menu nodes granted to any of the roles.
func (r *roleRepository) GetMenusForRoles(ctx context.Context, roleIDs []int64) ([]*models.Menu, error) {
	menus := []*models.Menu{}
	if len(roleIDs) == 0 {
		return menus, nil
	}
	query := `
		SELECT DISTINCT m.id, m.name, m.parent_id, m.order_num, m.path, m.menu_type,
		       m.visible, m.status, m.perm, m.icon, m.created_at
		FROM sys_menu m
		INNER JOIN sys_role_menu rm ON m.id = rm.menu_id
		WHERE rm.role_id = ANY($1)
		ORDER BY m.id`

	if err := r.db.SelectContext(ctx, &menus, query, pq.Array(roleIDs)); err != nil {
		return nil, fmt.Errorf("failed to get role menus: %w", err)
	}
	return menus, nil
}

func (r *roleRepository) SetRoleMenus(ctx context.Context, roleID int64, menuIDs []int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM sys_role_menu WHERE role_id = $1`, roleID); err != nil {
		return fmt.Errorf("failed to clear role menus: %w", err)
	}
	for _, menuID := range menuIDs {
		query := `INSERT INTO sys_role_menu (role_id, menu_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
		if _, err := tx.ExecContext(ctx, query, roleID, menuID); err != nil {
			return fmt.Errorf("failed to grant menu %d: %w", menuID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit role menus: %w", err)
	}
	return nil
}
