package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/Su57/stardew/internal/config"
	"github.com/Su57/stardew/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

type JWTService struct {
	secret []byte
}

func NewJWTService(jwtSecret string) (*JWTService, error) {
	if len(jwtSecret) < config.MinSecretLength {
		return nil, fmt.Errorf("signing secret must be at least %d bytes", config.MinSecretLength)
	}
	return &JWTService{secret: []byte(jwtSecret)}, nil
}

// IssueToken signs a token whose only payload is the session reference.
func (s *JWTService) IssueToken(sessionID string, ttl time.Duration) (string, time.Time, error) {
	if sessionID == "" {
		return "", time.Time{}, fmt.Errorf("session ID cannot be empty")
	}

	now := time.Now()
	expiresAt := now.Add(ttl)
	claims := models.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("error generate token string: %w", err)
	}
	return tokenString, expiresAt, nil
}

// VerifyToken returns the session id carried by the token, or
// models.ErrTokenExpired / models.ErrTokenInvalid.
func (s *JWTService) VerifyToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&models.Claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", models.ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %v", models.ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*models.Claims)
	if !ok || !token.Valid {
		return "", models.ErrTokenInvalid
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", models.ErrTokenInvalid)
	}

	return claims.Subject, nil
}
