package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Su57/stardew/internal/models"
	"github.com/Su57/stardew/internal/repository"
)

type MenuService struct {
	menuRepo repository.MenuRepository
	roleRepo repository.RoleRepository
}

func NewMenuService(menuRepo repository.MenuRepository, roleRepo repository.RoleRepository) *MenuService {
	return &MenuService{
		menuRepo: menuRepo,
		roleRepo: roleRepo,
	}
}

func (s *MenuService) GetMenu(ctx context.Context, id int64) (*models.Menu, error) {
	return s.menuRepo.GetByID(ctx, id)
}

func (s *MenuService) ListMenus(ctx context.Context, pageNo, pageSize int) (*models.PaginatedResponse[*models.Menu], error) {
	return listPage(ctx, s.menuRepo, pageNo, pageSize)
}

func (s *MenuService) CreateMenu(ctx context.Context, req *models.CreateMenuRequest) (*models.Menu, error) {
	if !req.MenuType.Valid() {
		return nil, fmt.Errorf("%w: unknown menu type '%s'", models.ErrBadRequest, req.MenuType)
	}
	if err := s.checkParentExists(ctx, req.ParentID); err != nil {
		return nil, err
	}

	perm := strings.TrimSpace(req.Perm)
	if err := s.checkPermAvailable(ctx, perm, 0); err != nil {
		return nil, err
	}

	visible := true
	if req.Visible != nil {
		visible = *req.Visible
	}

	menu := &models.Menu{
		Name:     req.Name,
		ParentID: req.ParentID,
		OrderNum: req.OrderNum,
		Path:     req.Path,
		MenuType: req.MenuType,
		Visible:  visible,
		Status:   req.Status,
		Perm:     perm,
		Icon:     req.Icon,
	}
	if err := s.menuRepo.Create(ctx, menu); err != nil {
		return nil, err
	}
	return menu, nil
}

// UpdateMenu rejects a parent change that would make the node its own ancestor.
func (s *MenuService) UpdateMenu(ctx context.Context, id int64, req *models.UpdateMenuRequest) (*models.Menu, error) {
	menu, err := s.menuRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.ParentID != nil && *req.ParentID != menu.ParentID {
		parentID := *req.ParentID
		if err := s.checkParentExists(ctx, parentID); err != nil {
			return nil, err
		}
		all, err := s.menuRepo.GetAllMenus(ctx)
		if err != nil {
			return nil, err
		}
		if createsMenuCycle(all, menu.ID, parentID) {
			return nil, models.ErrMenuCycle
		}
		menu.ParentID = parentID
	}
	if req.Perm != nil {
		perm := strings.TrimSpace(*req.Perm)
		if perm != menu.Perm {
			if err := s.checkPermAvailable(ctx, perm, menu.ID); err != nil {
				return nil, err
			}
		}
		menu.Perm = perm
	}
	if req.MenuType != nil {
		if !req.MenuType.Valid() {
			return nil, fmt.Errorf("%w: unknown menu type '%s'", models.ErrBadRequest, *req.MenuType)
		}
		menu.MenuType = *req.MenuType
	}
	if req.Name != nil {
		menu.Name = *req.Name
	}
	if req.OrderNum != nil {
		menu.OrderNum = *req.OrderNum
	}
	if req.Path != nil {
		menu.Path = *req.Path
	}
	if req.Visible != nil {
		menu.Visible = *req.Visible
	}
	if req.Status != nil {
		menu.Status = *req.Status
	}
	if req.Icon != nil {
		menu.Icon = *req.Icon
	}

	if err := s.menuRepo.Update(ctx, menu); err != nil {
		return nil, err
	}
	return menu, nil
}

// DeleteMenu removes a single node. Its children stay in the table and are
// shown as roots by the tree builder until they are re-parented.
func (s *MenuService) DeleteMenu(ctx context.Context, id int64) error {
	return s.menuRepo.Delete(ctx, id)
}

func (s *MenuService) Tree(ctx context.Context) ([]*models.TreeNode, error) {
	menus, err := s.menuRepo.GetAllMenus(ctx)
	if err != nil {
		return nil, err
	}
	return BuildMenuTree(menus), nil
}

// TreeWithRole returns the full tree together with the ids of the nodes
// granted to the role.
func (s *MenuService) TreeWithRole(ctx context.Context, roleID int64) (*models.RoleMenuTree, error) {
	if _, err := s.roleRepo.GetByID(ctx, roleID); err != nil {
		return nil, err
	}

	tree, err := s.Tree(ctx)
	if err != nil {
		return nil, err
	}

	granted, err := s.roleRepo.GetRoleMenus(ctx, roleID)
	if err != nil {
		return nil, err
	}
	checked := make([]int64, 0, len(granted))
	for _, menu := range granted {
		checked = append(checked, menu.ID)
	}

	return &models.RoleMenuTree{Tree: tree, CheckedKeys: checked}, nil
}

func (s *MenuService) checkParentExists(ctx context.Context, parentID int64) error {
	if parentID == models.RootMenuID {
		return nil
	}
	if _, err := s.menuRepo.GetByID(ctx, parentID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return fmt.Errorf("%w: parent menu %d does not exist", models.ErrBadRequest, parentID)
		}
		return err
	}
	return nil
}

// checkPermAvailable allows any number of navigation nodes without a key.
func (s *MenuService) checkPermAvailable(ctx context.Context, perm string, selfID int64) error {
	if perm == "" {
		return nil
	}
	existing, err := s.menuRepo.GetMenuByPerm(ctx, perm)
	switch {
	case err == nil && existing.ID != selfID:
		return models.ErrPermTaken
	case err != nil && !errors.Is(err, models.ErrNotFound):
		return err
	}
	return nil
}
