package services

import (
	"context"
	"fmt"
	"time"

	"github.com/Su57/stardew/internal/models"
	"github.com/Su57/stardew/internal/repository"

	"github.com/google/uuid"
)

// SessionService owns the lifetime of login snapshots.
type SessionService struct {
	sessionRepo repository.SessionRepository
	ttl         time.Duration
}

func NewSessionService(sessionRepo repository.SessionRepository, ttl time.Duration) *SessionService {
	return &SessionService{
		sessionRepo: sessionRepo,
		ttl:         ttl,
	}
}

func (s *SessionService) TTL() time.Duration {
	return s.ttl
}

// CreateSession stores the snapshot under a fresh session id and returns the id.
func (s *SessionService) CreateSession(ctx context.Context, snapshot *models.LoginUser) (string, error) {
	if snapshot.SysUser.ID == "" {
		return "", fmt.Errorf("user ID cannot be empty")
	}

	snapshot.SessionID = uuid.New().String()
	if err := s.sessionRepo.SaveSession(ctx, snapshot, s.ttl); err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}

	return snapshot.SessionID, nil
}

func (s *SessionService) GetSession(ctx context.Context, sessionID string) (*models.LoginUser, error) {
	return s.sessionRepo.GetSession(ctx, sessionID)
}

func (s *SessionService) InvalidateSession(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("session ID cannot be empty")
	}

	return s.sessionRepo.DeleteSession(ctx, sessionID)
}

// InvalidateUserSessions removes all sessions for a user
func (s *SessionService) InvalidateUserSessions(ctx context.Context, userID string) error {
	if userID == "" {
		return fmt.Errorf("user ID cannot be empty")
	}

	return s.sessionRepo.DeleteUserSessions(ctx, userID)
}
