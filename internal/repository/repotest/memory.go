// Package repotest provides in-memory implementations of the credential
// store repositories for tests of the layers above them.
package repotest

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/Su57/stardew/internal/models"
	"github.com/Su57/stardew/internal/repository"
)

// Store holds users, roles, menus and their associations. Repositories
// obtained from the same Store share its data.
type Store struct {
	mu         sync.RWMutex
	users      map[string]models.User
	roles      map[int64]models.Role
	menus      map[int64]models.Menu
	userRoles  map[string][]int64
	roleMenus  map[int64][]int64
	nextRoleID int64
	nextMenuID int64
}

func NewStore() *Store {
	return &Store{
		users:     map[string]models.User{},
		roles:     map[int64]models.Role{},
		menus:     map[int64]models.Menu{},
		userRoles: map[string][]int64{},
		roleMenus: map[int64][]int64{},
	}
}

func (s *Store) Users() repository.UserRepository { return &userRepository{s} }
func (s *Store) Roles() repository.RoleRepository { return &roleRepository{s} }
func (s *Store) Menus() repository.MenuRepository { return &menuRepository{s} }

func notFound(what string, id any) error {
	return fmt.Errorf("%s %v: %w", what, id, models.ErrNotFound)
}

func page[T any](items []T, limit, offset int) []T {
	if limit <= 0 {
		return items
	}
	if offset >= len(items) {
		return []T{}
	}
	return items[offset:min(offset+limit, len(items))]
}

// ============================================================================
// USERS
// ============================================================================

type userRepository struct{ s *Store }

func (r *userRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	user, ok := r.s.users[id]
	if !ok {
		return nil, notFound("user", id)
	}
	return &user, nil
}

func (r *userRepository) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, user := range r.s.users {
		if user.Email == email {
			return &user, nil
		}
	}
	return nil, notFound("user", email)
}

func (r *userRepository) List(_ context.Context, limit, offset int) ([]*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	users := make([]*models.User, 0, len(r.s.users))
	for _, user := range r.s.users {
		users = append(users, &user)
	}
	slices.SortFunc(users, func(a, b *models.User) int {
		return cmp.Or(b.CreatedAt.Compare(a.CreatedAt), cmp.Compare(a.ID, b.ID))
	})
	return page(users, limit, offset), nil
}

func (r *userRepository) Count(_ context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.users), nil
}

func (r *userRepository) Create(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[user.ID]; ok {
		return fmt.Errorf("%w: user id %s", models.ErrConflict, user.ID)
	}
	for _, existing := range r.s.users {
		if existing.Email == user.Email {
			return fmt.Errorf("%w: email %s", models.ErrConflict, user.Email)
		}
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.s.users[user.ID] = *user
	return nil
}

func (r *userRepository) Update(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.users[user.ID]
	if !ok {
		return notFound("user", user.ID)
	}
	for id, existing := range r.s.users {
		if id != user.ID && existing.Email == user.Email {
			return fmt.Errorf("%w: email %s", models.ErrConflict, user.Email)
		}
	}
	user.UpdatedAt = time.Now()
	user.PasswordHash = current.PasswordHash
	user.CreatedAt = current.CreatedAt
	r.s.users[user.ID] = *user
	return nil
}

func (r *userRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return notFound("user", id)
	}
	delete(r.s.users, id)
	delete(r.s.userRoles, id)
	return nil
}

func (r *userRepository) SoftDelete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user, ok := r.s.users[id]
	if !ok {
		return notFound("user", id)
	}
	user.DelFlag = true
	user.Status = models.StatusDisable
	r.s.users[id] = user
	return nil
}

func (r *userRepository) GetUserRoles(_ context.Context, userID string) ([]*models.Role, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	roles := []*models.Role{}
	for _, roleID := range r.s.userRoles[userID] {
		if role, ok := r.s.roles[roleID]; ok {
			roles = append(roles, &role)
		}
	}
	return roles, nil
}

func (r *userRepository) SetUserRoles(_ context.Context, userID string, roleIDs []int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, roleID := range roleIDs {
		if _, ok := r.s.roles[roleID]; !ok {
			return notFound("role", roleID)
		}
	}
	ids := slices.Clone(roleIDs)
	slices.Sort(ids)
	r.s.userRoles[userID] = slices.Compact(ids)
	return nil
}

// ============================================================================
// ROLES
// ============================================================================

type roleRepository struct{ s *Store }

func (r *roleRepository) GetByID(_ context.Context, id int64) (*models.Role, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	role, ok := r.s.roles[id]
	if !ok {
		return nil, notFound("role", id)
	}
	return &role, nil
}

func (r *roleRepository) GetRoleByName(_ context.Context, name string) (*models.Role, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, role := range r.s.roles {
		if role.Name == name {
			return &role, nil
		}
	}
	return nil, notFound("role", name)
}

func (r *roleRepository) GetRolesByIDs(_ context.Context, ids []int64) ([]*models.Role, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	roles := []*models.Role{}
	for _, id := range ids {
		if role, ok := r.s.roles[id]; ok {
			roles = append(roles, &role)
		}
	}
	return roles, nil
}

func (r *roleRepository) List(_ context.Context, limit, offset int) ([]*models.Role, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	roles := make([]*models.Role, 0, len(r.s.roles))
	for _, role := range r.s.roles {
		roles = append(roles, &role)
	}
	slices.SortFunc(roles, func(a, b *models.Role) int { return cmp.Compare(a.ID, b.ID) })
	return page(roles, limit, offset), nil
}

func (r *roleRepository) Count(_ context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.roles), nil
}

func (r *roleRepository) Create(_ context.Context, role *models.Role) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.roles {
		if existing.Name == role.Name {
			return fmt.Errorf("%w: role %s", models.ErrConflict, role.Name)
		}
	}
	r.s.nextRoleID++
	role.ID = r.s.nextRoleID
	role.CreatedAt = time.Now()
	r.s.roles[role.ID] = *role
	return nil
}

func (r *roleRepository) Update(_ context.Context, role *models.Role) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.roles[role.ID]; !ok {
		return notFound("role", role.ID)
	}
	r.s.roles[role.ID] = *role
	return nil
}

func (r *roleRepository) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.roles[id]; !ok {
		return notFound("role", id)
	}
	delete(r.s.roles, id)
	delete(r.s.roleMenus, id)
	for userID, roleIDs := range r.s.userRoles {
		r.s.userRoles[userID] = slices.DeleteFunc(roleIDs, func(v int64) bool { return v == id })
	}
	return nil
}

func (r *roleRepository) GetRoleMenus(ctx context.Context, roleID int64) ([]*models.Menu, error) {
	return r.GetMenusForRoles(ctx, []int64{roleID})
}

func (r *roleRepository) GetMenusForRoles(_ context.Context, roleIDs []int64) ([]*models.Menu, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	seen := map[int64]bool{}
	menus := []*models.Menu{}
	for _, roleID := range roleIDs {
		for _, menuID := range r.s.roleMenus[roleID] {
			menu, ok := r.s.menus[menuID]
			if !ok || seen[menuID] {
				continue
			}
			seen[menuID] = true
			menus = append(menus, &menu)
		}
	}
	slices.SortFunc(menus, func(a, b *models.Menu) int { return cmp.Compare(a.ID, b.ID) })
	return menus, nil
}

func (r *roleRepository) SetRoleMenus(_ context.Context, roleID int64, menuIDs []int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, menuID := range menuIDs {
		if _, ok := r.s.menus[menuID]; !ok {
			return notFound("menu", menuID)
		}
	}
	ids := slices.Clone(menuIDs)
	slices.Sort(ids)
	r.s.roleMenus[roleID] = slices.Compact(ids)
	return nil
}

// ============================================================================
// MENUS
// ============================================================================

type menuRepository struct{ s *Store }

func (r *menuRepository) GetByID(_ context.Context, id int64) (*models.Menu, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	menu, ok := r.s.menus[id]
	if !ok {
		return nil, notFound("menu", id)
	}
	return &menu, nil
}

func (r *menuRepository) GetMenuByPerm(_ context.Context, perm string) (*models.Menu, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, menu := range r.s.menus {
		if menu.Perm == perm {
			return &menu, nil
		}
	}
	return nil, notFound("menu with perm", perm)
}

func (r *menuRepository) sorted(cmpFn func(a, b *models.Menu) int) []*models.Menu {
	menus := make([]*models.Menu, 0, len(r.s.menus))
	for _, menu := range r.s.menus {
		menus = append(menus, &menu)
	}
	slices.SortFunc(menus, cmpFn)
	return menus
}

func (r *menuRepository) List(_ context.Context, limit, offset int) ([]*models.Menu, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	menus := r.sorted(func(a, b *models.Menu) int {
		return cmp.Or(cmp.Compare(a.OrderNum, b.OrderNum), cmp.Compare(a.ID, b.ID))
	})
	return page(menus, limit, offset), nil
}

func (r *menuRepository) GetAllMenus(_ context.Context) ([]*models.Menu, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.sorted(func(a, b *models.Menu) int { return cmp.Compare(a.ID, b.ID) }), nil
}

func (r *menuRepository) Count(_ context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.menus), nil
}

func (r *menuRepository) Create(_ context.Context, menu *models.Menu) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextMenuID++
	menu.ID = r.s.nextMenuID
	menu.CreatedAt = time.Now()
	r.s.menus[menu.ID] = *menu
	return nil
}

func (r *menuRepository) Update(_ context.Context, menu *models.Menu) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.menus[menu.ID]; !ok {
		return notFound("menu", menu.ID)
	}
	r.s.menus[menu.ID] = *menu
	return nil
}

func (r *menuRepository) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.menus[id]; !ok {
		return notFound("menu", id)
	}
	delete(r.s.menus, id)
	for roleID, menuIDs := range r.s.roleMenus {
		r.s.roleMenus[roleID] = slices.DeleteFunc(menuIDs, func(v int64) bool { return v == id })
	}
	return nil
}
