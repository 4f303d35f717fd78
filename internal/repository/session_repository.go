package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Su57/stardew/internal/models"

	"github.com/redis/go-redis/v9"
)

// SessionRepository stores login snapshots in Redis, one key per session plus
// a per-user set of session ids used to revoke every session of a user.
type SessionRepository interface {
	SaveSession(ctx context.Context, session *models.LoginUser, ttl time.Duration) error
	GetSession(ctx context.Context, sessionID string) (*models.LoginUser, error)
	DeleteSession(ctx context.Context, sessionID string) error
	DeleteUserSessions(ctx context.Context, userID string) error
}

type sessionRepository struct {
	client *redis.Client
}

func NewSessionRepository(client *redis.Client) SessionRepository {
	return &sessionRepository{client: client}
}

func (r *sessionRepository) SaveSession(ctx context.Context, session *models.LoginUser, ttl time.Duration) error {
	if session.SessionID == "" {
		return fmt.Errorf("session ID cannot be empty")
	}
	if ttl <= 0 {
		return fmt.Errorf("session ttl must be positive")
	}

	sessionData, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	userSessionsKey := r.getUserSessionsKey(session.SysUser.ID)
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.getSessionKey(session.SessionID), sessionData, ttl)
		pipe.SAdd(ctx, userSessionsKey, session.SessionID)
		pipe.Expire(ctx, userSessionsKey, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}

	return nil
}

// GetSession returns models.ErrSessionNotFound when the key never existed or
// has expired.
func (r *sessionRepository) GetSession(ctx context.Context, sessionID string) (*models.LoginUser, error) {
	if sessionID == "" {
		return nil, models.ErrSessionNotFound
	}

	sessionData, err := r.client.Get(ctx, r.getSessionKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, models.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var session models.LoginUser
	if err := json.Unmarshal(sessionData, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return &session, nil
}

func (r *sessionRepository) DeleteSession(ctx context.Context, sessionID string) error {
	session, err := r.GetSession(ctx, sessionID)
	if errors.Is(err, models.ErrSessionNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, r.getSessionKey(sessionID))
	pipe.SRem(ctx, r.getUserSessionsKey(session.SysUser.ID), sessionID)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}

func (r *sessionRepository) DeleteUserSessions(ctx context.Context, userID string) error {
	if userID == "" {
		return fmt.Errorf("user ID cannot be empty")
	}

	userSessionsKey := r.getUserSessionsKey(userID)
	sessionIDs, err := r.client.SMembers(ctx, userSessionsKey).Result()
	if err != nil {
		return fmt.Errorf("failed to get user sessions: %w", err)
	}

	pipe := r.client.TxPipeline()
	for _, sessionID := range sessionIDs {
		pipe.Del(ctx, r.getSessionKey(sessionID))
	}
	pipe.Del(ctx, userSessionsKey)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete user sessions: %w", err)
	}

	return nil
}

func (r *sessionRepository) getSessionKey(sessionID string) string {
	return fmt.Sprintf("login_key:%s", sessionID)
}

func (r *sessionRepository) getUserSessionsKey(userID string) string {
	return fmt.Sprintf("user_sessions:%s", userID)
}
