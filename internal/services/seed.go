package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Su57/stardew/internal/config"
	"github.com/Su57/stardew/internal/models"
	"github.com/Su57/stardew/internal/repository"

	log "github.com/sirupsen/logrus"
)

// AdminRoleName is the role required by the menu management routes.
const AdminRoleName = "admin"

type seedMenu struct {
	name     string
	path     string
	menuType models.MenuType
	perm     string
	children []seedMenu
}

func crudButtons(entity string) []seedMenu {
	buttons := []seedMenu{}
	for _, action := range []string{"list", "query", "add", "update", "delete"} {
		buttons = append(buttons, seedMenu{
			name:     entity + " " + action,
			menuType: models.MenuTypeButton,
			perm:     fmt.Sprintf("sys:%s:%s", entity, action),
		})
	}
	return buttons
}

var defaultMenus = []seedMenu{
	{
		name:     "System",
		path:     "/system",
		menuType: models.MenuTypeCategory,
		children: []seedMenu{
			{name: "Users", path: "/system/user", menuType: models.MenuTypeMenu, children: crudButtons("user")},
			{name: "Roles", path: "/system/role", menuType: models.MenuTypeMenu, children: crudButtons("role")},
			{name: "Menus", path: "/system/menu", menuType: models.MenuTypeMenu, children: []seedMenu{
				{name: "menu tree", menuType: models.MenuTypeButton, perm: "sys:menu:tree"},
			}},
		},
	},
}

// Seeder bootstraps an empty database: the default menu tree, the admin role
// holding every menu and one super admin account.
type Seeder struct {
	userRepo repository.UserRepository
	roleRepo repository.RoleRepository
	menuRepo repository.MenuRepository
	hasher   PasswordHasher
}

func NewSeeder(userRepo repository.UserRepository, roleRepo repository.RoleRepository, menuRepo repository.MenuRepository, hasher PasswordHasher) *Seeder {
	return &Seeder{
		userRepo: userRepo,
		roleRepo: roleRepo,
		menuRepo: menuRepo,
		hasher:   hasher,
	}
}

// Seed is idempotent; existing rows are left untouched.
func (s *Seeder) Seed(ctx context.Context, cfg config.SeedConfig) error {
	if cfg.AdminPassword == "" {
		return fmt.Errorf("admin password cannot be empty")
	}

	if err := s.seedMenus(ctx); err != nil {
		return fmt.Errorf("failed to seed menus: %w", err)
	}

	role, err := s.seedAdminRole(ctx)
	if err != nil {
		return fmt.Errorf("failed to seed admin role: %w", err)
	}

	if err := s.seedAdminUser(ctx, cfg, role); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	return nil
}

func (s *Seeder) seedMenus(ctx context.Context) error {
	count, err := s.menuRepo.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		log.Infof("menu table holds %d rows, skipping default menus", count)
		return nil
	}
	return s.createMenus(ctx, models.RootMenuID, defaultMenus)
}

func (s *Seeder) createMenus(ctx context.Context, parentID int64, menus []seedMenu) error {
	for i, item := range menus {
		menu := &models.Menu{
			Name:     item.name,
			ParentID: parentID,
			OrderNum: i + 1,
			Path:     item.path,
			MenuType: item.menuType,
			Visible:  true,
			Status:   models.StatusEnable,
			Perm:     item.perm,
		}
		if err := s.menuRepo.Create(ctx, menu); err != nil {
			return err
		}
		if err := s.createMenus(ctx, menu.ID, item.children); err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) seedAdminRole(ctx context.Context) (*models.Role, error) {
	role, err := s.roleRepo.GetRoleByName(ctx, AdminRoleName)
	if err == nil {
		return role, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	role = &models.Role{Name: AdminRoleName, Key: AdminRoleName, Status: models.StatusEnable}
	if err := s.roleRepo.Create(ctx, role); err != nil {
		return nil, err
	}

	menus, err := s.menuRepo.GetAllMenus(ctx)
	if err != nil {
		return nil, err
	}
	menuIDs := make([]int64, 0, len(menus))
	for _, menu := range menus {
		menuIDs = append(menuIDs, menu.ID)
	}
	if err := s.roleRepo.SetRoleMenus(ctx, role.ID, menuIDs); err != nil {
		return nil, err
	}

	log.WithField("role_id", role.ID).Info("admin role created")
	return role, nil
}

func (s *Seeder) seedAdminUser(ctx context.Context, cfg config.SeedConfig, role *models.Role) error {
	if _, err := s.userRepo.GetUserByEmail(ctx, cfg.AdminEmail); err == nil {
		log.WithField("email", cfg.AdminEmail).Info("admin user already exists")
		return nil
	} else if !errors.Is(err, models.ErrNotFound) {
		return err
	}

	hashed, err := s.hasher.Hash(cfg.AdminPassword)
	if err != nil {
		return err
	}

	user := &models.User{
		ID:           newUserID(),
		Username:     cfg.AdminUsername,
		Email:        cfg.AdminEmail,
		PasswordHash: hashed,
		Status:       models.StatusEnable,
		IsSuper:      true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return err
	}
	if err := s.userRepo.SetUserRoles(ctx, user.ID, []int64{role.ID}); err != nil {
		return err
	}

	log.WithFields(log.Fields{"user_id": user.ID, "email": user.Email}).Info("admin user created")
	return nil
}
