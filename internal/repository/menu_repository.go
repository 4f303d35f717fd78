package repository

import (
	"context"
	"fmt"

	"github.com/Su57/stardew/internal/models"

	"github.com/jmoiron/sqlx"
)

type MenuRepository interface {
	CRUDRepository[models.Menu, int64]
	GetAllMenus(ctx context.Context) ([]*models.Menu, error)
	GetMenuByPerm(ctx context.Context, perm string) (*models.Menu, error)
}

type menuRepository struct {
	db *sqlx.DB
}

func NewMenuRepository(db *sqlx.DB) MenuRepository {
	return &menuRepository{db: db}
}

const menuColumns = `id, name, parent_id, order_num, path, menu_type, visible, status, perm, icon, created_at`

func (r *menuRepository) GetByID(ctx context.Context, id int64) (*models.Menu, error) {
	var menu models.Menu
	query := `SELECT ` + menuColumns + ` FROM sys_menu WHERE id = $1`
	if err := getOne(ctx, r.db, &menu, fmt.Sprintf("menu %d", id), query, id); err != nil {
		return nil, err
	}
	return &menu, nil
}

func (r *menuRepository) GetMenuByPerm(ctx context.Context, perm string) (*models.Menu, error) {
	var menu models.Menu
	query := `SELECT ` + menuColumns + ` FROM sys_menu WHERE perm = $1 LIMIT 1`
	if err := getOne(ctx, r.db, &menu, fmt.Sprintf("menu with perm '%s'", perm), query, perm); err != nil {
		return nil, err
	}
	return &menu, nil
}

func (r *menuRepository) List(ctx context.Context, limit, offset int) ([]*models.Menu, error) {
	menus := []*models.Menu{}
	query, args := paginate(`SELECT `+menuColumns+` FROM sys_menu ORDER BY order_num, id`, limit, offset)
	if err := r.db.SelectContext(ctx, &menus, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get menus: %w", err)
	}
	return menus, nil
}

// GetAllMenus returns every node in id order, the input of the tree builder.
func (r *menuRepository) GetAllMenus(ctx context.Context) ([]*models.Menu, error) {
	menus := []*models.Menu{}
	if err := r.db.SelectContext(ctx, &menus, `SELECT `+menuColumns+` FROM sys_menu ORDER BY id`); err != nil {
		return nil, fmt.Errorf("failed to get menus: %w", err)
	}
	return menus, nil
}

func (r *menuRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM sys_menu`); err != nil {
		return 0, fmt.Errorf("failed to count menus: %w", err)
	}
	return total, nil
}

func (r *menuRepository) Create(ctx context.Context, menu *models.Menu) error {
	query := `
		INSERT INTO sys_menu (name, parent_id, order_num, path, menu_type, visible, status, perm, icon)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`

	err := r.db.QueryRowxContext(ctx, query, menu.Name, menu.ParentID, menu.OrderNum, menu.Path,
		menu.MenuType, menu.Visible, menu.Status, menu.Perm, menu.Icon).
		Scan(&menu.ID, &menu.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create menu: %w", translatePGError(err))
	}
	return nil
}

func (r *menuRepository) Update(ctx context.Context, menu *models.Menu) error {
	query := `
		UPDATE sys_menu
		SET name = $2, parent_id = $3, order_num = $4, path = $5, menu_type = $6,
		    visible = $7, status = $8, perm = $9, icon = $10
		WHERE id = $1`

	return execWithCheck(ctx, r.db, "update menu", query, menu.ID, menu.Name, menu.ParentID, menu.OrderNum,
		menu.Path, menu.MenuType, menu.Visible, menu.Status, menu.Perm, menu.Icon)
}

func (r *menuRepository) Delete(ctx context.Context, id int64) error {
	return execWithCheck(ctx, r.db, "delete menu", `DELETE FROM sys_menu WHERE id = $1`, id)
}
