package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Su57/stardew/internal/models"
	"github.com/Su57/stardew/internal/repository"
)

type AuthService struct {
	userRepo       repository.UserRepository
	roleRepo       repository.RoleRepository
	hasher         PasswordHasher
	jwtService     *JWTService
	sessionService *SessionService
	captchaService *CaptchaService
	tokenType      string
}

func NewAuthService(
	userRepo repository.UserRepository,
	roleRepo repository.RoleRepository,
	hasher PasswordHasher,
	jwtService *JWTService,
	sessionService *SessionService,
	captchaService *CaptchaService,
	tokenType string,
) *AuthService {
	return &AuthService{
		userRepo:       userRepo,
		roleRepo:       roleRepo,
		hasher:         hasher,
		jwtService:     jwtService,
		sessionService: sessionService,
		captchaService: captchaService,
		tokenType:      tokenType,
	}
}

func (s *AuthService) CreateCaptcha(ctx context.Context) (*models.CaptchaInfo, error) {
	return s.captchaService.CreateCaptcha(ctx)
}

// Login verifies the captcha first, then the credentials, stores the identity
// snapshot and returns a token referencing it. Account status is not checked
// here; a disabled account gets a session that every authorization rejects.
func (s *AuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.BearerToken, error) {
	if err := s.captchaService.VerifyCaptcha(ctx, req.UID, req.Code); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrBadCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !s.hasher.Verify(req.Password, user.PasswordHash) {
		return nil, models.ErrBadCredentials
	}

	snapshot, err := s.BuildLoginUser(ctx, user)
	if err != nil {
		return nil, err
	}

	sessionID, err := s.sessionService.CreateSession(ctx, snapshot)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.jwtService.IssueToken(sessionID, s.sessionService.TTL())
	if err != nil {
		return nil, err
	}

	return &models.BearerToken{
		AccessToken: token,
		TokenType:   s.tokenType,
		ExpiresAt:   expiresAt,
	}, nil
}

func (s *AuthService) Logout(ctx context.Context, loginUser *models.LoginUser) error {
	return s.sessionService.InvalidateSession(ctx, loginUser.SessionID)
}

// BuildLoginUser resolves the role names and permission keys of user.
// Disabled or deleted roles and disabled menu nodes contribute nothing.
// Super admins get the wildcard permission.
func (s *AuthService) BuildLoginUser(ctx context.Context, user *models.User) (*models.LoginUser, error) {
	roles, err := s.userRepo.GetUserRoles(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	roleNames := []string{}
	roleIDs := []int64{}
	for _, role := range roles {
		if role.Status != models.StatusEnable || role.DelFlag {
			continue
		}
		roleNames = append(roleNames, role.Name)
		roleIDs = append(roleIDs, role.ID)
	}

	var perms []string
	if user.IsSuper {
		perms = []string{models.SuperPermission}
	} else {
		menus, err := s.roleRepo.GetMenusForRoles(ctx, roleIDs)
		if err != nil {
			return nil, err
		}
		enabled := make([]*models.Menu, 0, len(menus))
		for _, menu := range menus {
			if menu.Status == models.StatusEnable {
				enabled = append(enabled, menu)
			}
		}
		perms = ResolvePermissionKeys(enabled)
	}

	snapshot := *user
	snapshot.PasswordHash = ""

	return &models.LoginUser{
		LoginTime: time.Now().UTC(),
		SysUser:   snapshot,
		Roles:     roleNames,
		Perms:     perms,
	}, nil
}
