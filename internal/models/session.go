package models

import (
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SuperPermission grants every permission key.
const SuperPermission = "*:*:*"

// LoginUser is the identity snapshot cached for a session. It is written once
// at login and only read afterwards.
type LoginUser struct {
	SessionID string    `json:"session_id"`
	LoginTime time.Time `json:"login_time"`
	SysUser   User      `json:"sys_user"`
	Roles     []string  `json:"roles"`
	Perms     []string  `json:"perms"`
}

func (u *LoginUser) HasRole(role string) bool {
	return slices.Contains(u.Roles, role)
}

func (u *LoginUser) HasPerm(perm string) bool {
	return slices.Contains(u.Perms, perm)
}

// Claims carries nothing but the session reference; authorization data stays
// in the session store.
type Claims struct {
	jwt.RegisteredClaims
}

type BearerToken struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type CaptchaInfo struct {
	UID   string `json:"uid"`
	Image string `json:"image"`
}
