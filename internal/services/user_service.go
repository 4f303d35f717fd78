package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Su57/stardew/internal/models"
	"github.com/Su57/stardew/internal/repository"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type IUserService interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	ListUsers(ctx context.Context, pageNo, pageSize int) (*models.PaginatedResponse[*models.User], error)
	CreateUser(ctx context.Context, req *models.CreateUserRequest) (*models.User, error)
	UpdateUser(ctx context.Context, id string, req *models.UpdateUserRequest) (*models.User, error)
	DeleteUser(ctx context.Context, id string, soft bool) error
	GetUserRoles(ctx context.Context, id string) ([]*models.Role, error)
}

type UserService struct {
	userRepo       repository.UserRepository
	roleRepo       repository.RoleRepository
	hasher         PasswordHasher
	sessionService *SessionService
}

func NewUserService(userRepo repository.UserRepository, roleRepo repository.RoleRepository, hasher PasswordHasher, sessionService *SessionService) IUserService {
	return &UserService{
		userRepo:       userRepo,
		roleRepo:       roleRepo,
		hasher:         hasher,
		sessionService: sessionService,
	}
}

func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *UserService) ListUsers(ctx context.Context, pageNo, pageSize int) (*models.PaginatedResponse[*models.User], error) {
	return listPage(ctx, s.userRepo, pageNo, pageSize)
}

func (s *UserService) CreateUser(ctx context.Context, req *models.CreateUserRequest) (*models.User, error) {
	email := strings.TrimSpace(req.Email)
	if _, err := s.userRepo.GetUserByEmail(ctx, email); err == nil {
		return nil, models.ErrEmailTaken
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	if err := s.checkRolesExist(ctx, req.Roles); err != nil {
		return nil, err
	}

	hashed, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           newUserID(),
		Username:     req.Username,
		Nickname:     req.Nickname,
		Email:        email,
		Mobile:       req.Mobile,
		Gender:       req.Gender,
		Avatar:       req.Avatar,
		PasswordHash: hashed,
		Status:       models.StatusEnable,
		IsSuper:      req.IsSuper,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, models.ErrEmailTaken
		}
		return nil, err
	}

	if len(req.Roles) > 0 {
		if err := s.userRepo.SetUserRoles(ctx, user.ID, req.Roles); err != nil {
			return nil, err
		}
	}

	log.WithFields(log.Fields{"user_id": user.ID, "email": user.Email}).Info("user created")
	return user, nil
}

// UpdateUser applies the non-nil fields of req. Disabling a user revokes all
// of their sessions.
func (s *UserService) UpdateUser(ctx context.Context, id string, req *models.UpdateUserRequest) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	wasEnabled := user.IsEnabled()

	if req.Email != nil && !strings.EqualFold(*req.Email, user.Email) {
		email := strings.TrimSpace(*req.Email)
		if existing, err := s.userRepo.GetUserByEmail(ctx, email); err == nil && existing.ID != user.ID {
			return nil, models.ErrEmailTaken
		} else if err != nil && !errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
		user.Email = email
	}
	if req.Username != nil {
		user.Username = *req.Username
	}
	if req.Nickname != nil {
		user.Nickname = *req.Nickname
	}
	if req.Mobile != nil {
		user.Mobile = *req.Mobile
	}
	if req.Gender != nil {
		user.Gender = *req.Gender
	}
	if req.Avatar != nil {
		user.Avatar = *req.Avatar
	}
	if req.Status != nil {
		user.Status = *req.Status
	}
	if req.Remark != nil {
		user.Remark = *req.Remark
	}

	if req.Roles != nil {
		if err := s.checkRolesExist(ctx, *req.Roles); err != nil {
			return nil, err
		}
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, models.ErrEmailTaken
		}
		return nil, err
	}

	if req.Roles != nil {
		if err := s.userRepo.SetUserRoles(ctx, user.ID, *req.Roles); err != nil {
			return nil, err
		}
	}

	if wasEnabled && !user.IsEnabled() {
		if err := s.sessionService.InvalidateUserSessions(ctx, user.ID); err != nil {
			return nil, fmt.Errorf("user disabled but sessions not revoked: %w", err)
		}
		log.WithField("user_id", user.ID).Info("user disabled, sessions revoked")
	}

	return user, nil
}

// DeleteUser removes the user (or only flags it when soft is true) and revokes
// all of their sessions.
func (s *UserService) DeleteUser(ctx context.Context, id string, soft bool) error {
	var err error
	if soft {
		err = s.userRepo.SoftDelete(ctx, id)
	} else {
		err = s.userRepo.Delete(ctx, id)
	}
	if err != nil {
		return err
	}

	if err := s.sessionService.InvalidateUserSessions(ctx, id); err != nil {
		return fmt.Errorf("user deleted but sessions not revoked: %w", err)
	}

	log.WithFields(log.Fields{"user_id": id, "soft": soft}).Info("user deleted")
	return nil
}

func (s *UserService) GetUserRoles(ctx context.Context, id string) ([]*models.Role, error) {
	if _, err := s.userRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.userRepo.GetUserRoles(ctx, id)
}

func (s *UserService) checkRolesExist(ctx context.Context, roleIDs []int64) error {
	if len(roleIDs) == 0 {
		return nil
	}
	roles, err := s.roleRepo.GetRolesByIDs(ctx, roleIDs)
	if err != nil {
		return err
	}

	found := make(map[int64]bool, len(roles))
	for _, role := range roles {
		found[role.ID] = true
	}
	for _, id := range roleIDs {
		if !found[id] {
			return fmt.Errorf("%w: role %d does not exist", models.ErrBadRequest, id)
		}
	}
	return nil
}

// newUserID returns a dashless uuid.
func newUserID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// listPage reads one page of any CRUD repository. pageNo is zero based.
func listPage[T any, ID comparable](ctx context.Context, repo repository.CRUDRepository[T, ID], pageNo, pageSize int) (*models.PaginatedResponse[*T], error) {
	items, err := repo.List(ctx, pageSize, pageNo*pageSize)
	if err != nil {
		return nil, err
	}
	total, err := repo.Count(ctx)
	if err != nil {
		return nil, err
	}

	return &models.PaginatedResponse[*T]{
		Items:    items,
		Total:    total,
		PageNo:   pageNo,
		PageSize: pageSize,
	}, nil
}
