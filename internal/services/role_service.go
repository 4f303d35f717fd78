package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Su57/stardew/internal/models"
	"github.com/Su57/stardew/internal/repository"
)

// RoleService provides business logic for role management
type RoleService struct {
	roleRepo repository.RoleRepository
	menuRepo repository.MenuRepository
}

// NewRoleService creates a new role service
func NewRoleService(roleRepo repository.RoleRepository, menuRepo repository.MenuRepository) *RoleService {
	return &RoleService{
		roleRepo: roleRepo,
		menuRepo: menuRepo,
	}
}

func (s *RoleService) GetRole(ctx context.Context, id int64) (*models.Role, error) {
	return s.roleRepo.GetByID(ctx, id)
}

func (s *RoleService) ListRoles(ctx context.Context, pageNo, pageSize int) (*models.PaginatedResponse[*models.Role], error) {
	return listPage(ctx, s.roleRepo, pageNo, pageSize)
}

// CreateRole creates a new role; names are unique.
func (s *RoleService) CreateRole(ctx context.Context, req *models.CreateRoleRequest) (*models.Role, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: role name cannot be empty", models.ErrBadRequest)
	}

	if err := s.checkNameAvailable(ctx, name, 0); err != nil {
		return nil, err
	}

	role := &models.Role{
		Name:   name,
		Key:    strings.TrimSpace(req.Key),
		Status: req.Status,
	}
	if err := s.roleRepo.Create(ctx, role); err != nil {
		return nil, err
	}
	return role, nil
}

func (s *RoleService) UpdateRole(ctx context.Context, id int64, req *models.UpdateRoleRequest) (*models.Role, error) {
	role, err := s.roleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: role name cannot be empty", models.ErrBadRequest)
		}
		if err := s.checkNameAvailable(ctx, name, role.ID); err != nil {
			return nil, err
		}
		role.Name = name
	}
	if req.Key != nil {
		role.Key = strings.TrimSpace(*req.Key)
	}
	if req.Status != nil {
		role.Status = *req.Status
	}

	if err := s.roleRepo.Update(ctx, role); err != nil {
		return nil, err
	}
	return role, nil
}

func (s *RoleService) DeleteRole(ctx context.Context, id int64) error {
	return s.roleRepo.Delete(ctx, id)
}

// AssignMenus replaces the menu set granted to a role. Sessions already issued
// keep their snapshot until they expire.
func (s *RoleService) AssignMenus(ctx context.Context, roleID int64, menuIDs []int64) error {
	if _, err := s.roleRepo.GetByID(ctx, roleID); err != nil {
		return err
	}

	menuIDs = dedupeIDs(menuIDs)
	for _, menuID := range menuIDs {
		if _, err := s.menuRepo.GetByID(ctx, menuID); err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return fmt.Errorf("%w: menu %d does not exist", models.ErrBadRequest, menuID)
			}
			return err
		}
	}

	return s.roleRepo.SetRoleMenus(ctx, roleID, menuIDs)
}

func (s *RoleService) GetRoleMenus(ctx context.Context, roleID int64) ([]*models.Menu, error) {
	if _, err := s.roleRepo.GetByID(ctx, roleID); err != nil {
		return nil, err
	}
	return s.roleRepo.GetRoleMenus(ctx, roleID)
}

// GetRolePermissions flattens the menus granted to a role into permission keys.
func (s *RoleService) GetRolePermissions(ctx context.Context, roleID int64) ([]string, error) {
	menus, err := s.GetRoleMenus(ctx, roleID)
	if err != nil {
		return nil, err
	}
	return ResolvePermissionKeys(menus), nil
}

func (s *RoleService) checkNameAvailable(ctx context.Context, name string, selfID int64) error {
	existing, err := s.roleRepo.GetRoleByName(ctx, name)
	switch {
	case err == nil && existing.ID != selfID:
		return fmt.Errorf("%w: role with name '%s' already exists", models.ErrConflict, name)
	case err != nil && !errors.Is(err, models.ErrNotFound):
		return err
	}
	return nil
}

func dedupeIDs(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
