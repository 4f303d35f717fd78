package services

import (
	"context"
	"strings"

	"github.com/Su57/stardew/internal/models"
)

// Requirement is what an endpoint demands beyond a valid session. Empty
// fields are not checked.
type Requirement struct {
	Roles      []string
	Permission string
}

// Authorizer is the single decision point between a bearer credential and a
// resolved identity.
type Authorizer struct {
	jwtService     *JWTService
	sessionService *SessionService
	tokenPrefix    string
}

func NewAuthorizer(jwtService *JWTService, sessionService *SessionService, tokenPrefix string) *Authorizer {
	return &Authorizer{
		jwtService:     jwtService,
		sessionService: sessionService,
		tokenPrefix:    tokenPrefix,
	}
}

// Authorize resolves the Authorization header value into the session snapshot
// and checks it against req. Failures are models.ErrUnauthenticated or
// models.ErrForbidden kinds.
func (a *Authorizer) Authorize(ctx context.Context, authorization string, req Requirement) (*models.LoginUser, error) {
	token, err := a.ExtractBearer(authorization)
	if err != nil {
		return nil, err
	}

	sessionID, err := a.jwtService.VerifyToken(token)
	if err != nil {
		return nil, err
	}

	loginUser, err := a.sessionService.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if !loginUser.SysUser.IsEnabled() {
		return nil, models.ErrAccountDisabled
	}
	if !HasRoles(loginUser, req.Roles) {
		return nil, models.ErrInsufficientRole
	}
	if req.Permission != "" && !HasPermission(loginUser, req.Permission) {
		return nil, models.ErrInsufficientPerm
	}

	return loginUser, nil
}

// ExtractBearer splits "<prefix> <token>". The prefix is matched case-insensitively.
func (a *Authorizer) ExtractBearer(authorization string) (string, error) {
	authorization = strings.TrimSpace(authorization)
	if authorization == "" {
		return "", models.ErrMissingToken
	}

	scheme, token, found := strings.Cut(authorization, " ")
	token = strings.TrimSpace(token)
	if !found || !strings.EqualFold(scheme, a.tokenPrefix) || token == "" {
		return "", models.ErrTokenInvalid
	}
	return token, nil
}

// HasRoles passes when every required role is held, or the user is a super admin.
func HasRoles(loginUser *models.LoginUser, roles []string) bool {
	if loginUser.SysUser.IsSuper {
		return true
	}
	for _, role := range roles {
		if !loginUser.HasRole(role) {
			return false
		}
	}
	return true
}

// HasPermission passes when the key is held, the user is a super admin, or the
// snapshot carries the wildcard permission.
func HasPermission(loginUser *models.LoginUser, perm string) bool {
	return loginUser.SysUser.IsSuper ||
		loginUser.HasPerm(perm) ||
		loginUser.HasPerm(models.SuperPermission)
}
