package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Su57/stardew/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedisTest(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return client, mr
}

func testSnapshot(sessionID, userID string) *models.LoginUser {
	return &models.LoginUser{
		SessionID: sessionID,
		LoginTime: time.Now().UTC().Truncate(time.Second),
		SysUser:   models.User{ID: userID, Email: userID + "@x.com", PasswordHash: "secret-hash"},
		Roles:     []string{"admin"},
		Perms:     []string{"sys:user:list"},
	}
}

// ============================================================================
// SESSION STORE
// ============================================================================

func TestSessionRepository_SaveAndGet(t *testing.T) {
	client, _ := setupRedisTest(t)
	repo := NewSessionRepository(client)
	ctx := context.Background()

	require.NoError(t, repo.SaveSession(ctx, testSnapshot("s1", "u1"), time.Hour))

	got, err := repo.GetSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.SysUser.ID)
	assert.Equal(t, []string{"admin"}, got.Roles)
	assert.Equal(t, []string{"sys:user:list"}, got.Perms)
	assert.Empty(t, got.SysUser.PasswordHash, "password hash must never be serialized into the snapshot")
}

func TestSessionRepository_GetMissingIsNotFound(t *testing.T) {
	client, _ := setupRedisTest(t)
	repo := NewSessionRepository(client)

	_, err := repo.GetSession(context.Background(), "never-set")
	assert.ErrorIs(t, err, models.ErrSessionNotFound)
	assert.ErrorIs(t, err, models.ErrUnauthenticated)
}

func TestSessionRepository_ExpiresAfterTTL(t *testing.T) {
	client, mr := setupRedisTest(t)
	repo := NewSessionRepository(client)
	ctx := context.Background()

	require.NoError(t, repo.SaveSession(ctx, testSnapshot("s1", "u1"), time.Minute))
	mr.FastForward(2 * time.Minute)

	_, err := repo.GetSession(ctx, "s1")
	assert.ErrorIs(t, err, models.ErrSessionNotFound)
}

func TestSessionRepository_SaveOverwrites(t *testing.T) {
	client, _ := setupRedisTest(t)
	repo := NewSessionRepository(client)
	ctx := context.Background()

	first := testSnapshot("s1", "u1")
	second := testSnapshot("s1", "u1")
	second.Roles = []string{"auditor"}

	require.NoError(t, repo.SaveSession(ctx, first, time.Hour))
	require.NoError(t, repo.SaveSession(ctx, second, time.Hour))

	got, err := repo.GetSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"auditor"}, got.Roles)
}

func TestSessionRepository_RejectsBadInput(t *testing.T) {
	client, _ := setupRedisTest(t)
	repo := NewSessionRepository(client)

	assert.Error(t, repo.SaveSession(context.Background(), testSnapshot("", "u1"), time.Hour))
	assert.Error(t, repo.SaveSession(context.Background(), testSnapshot("s1", "u1"), 0))
}

func TestSessionRepository_DeleteSession(t *testing.T) {
	client, mr := setupRedisTest(t)
	repo := NewSessionRepository(client)
	ctx := context.Background()

	require.NoError(t, repo.SaveSession(ctx, testSnapshot("s1", "u1"), time.Hour))
	require.NoError(t, repo.DeleteSession(ctx, "s1"))

	_, err := repo.GetSession(ctx, "s1")
	assert.ErrorIs(t, err, models.ErrSessionNotFound)
	assert.False(t, mr.Exists("login_key:s1"))

	assert.NoError(t, repo.DeleteSession(ctx, "s1"), "deleting twice is not an error")
}

func TestSessionRepository_DeleteUserSessions(t *testing.T) {
	client, _ := setupRedisTest(t)
	repo := NewSessionRepository(client)
	ctx := context.Background()

	require.NoError(t, repo.SaveSession(ctx, testSnapshot("s1", "u1"), time.Hour))
	require.NoError(t, repo.SaveSession(ctx, testSnapshot("s2", "u1"), time.Hour))
	require.NoError(t, repo.SaveSession(ctx, testSnapshot("s3", "u2"), time.Hour))

	require.NoError(t, repo.DeleteUserSessions(ctx, "u1"))

	_, err := repo.GetSession(ctx, "s1")
	assert.ErrorIs(t, err, models.ErrSessionNotFound)
	_, err = repo.GetSession(ctx, "s2")
	assert.ErrorIs(t, err, models.ErrSessionNotFound)
	_, err = repo.GetSession(ctx, "s3")
	assert.NoError(t, err, "other users keep their sessions")
}

// ============================================================================
// CAPTCHA STORE
// ============================================================================

func TestCaptchaRepository_ConsumeOnce(t *testing.T) {
	client, _ := setupRedisTest(t)
	repo := NewCaptchaRepository(client)
	ctx := context.Background()

	require.NoError(t, repo.SaveCaptcha(ctx, "c1", "AbCd", time.Minute))

	answer, err := repo.ConsumeCaptcha(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "AbCd", answer)

	_, err = repo.ConsumeCaptcha(ctx, "c1")
	assert.ErrorIs(t, err, models.ErrCaptchaExpired)
}

func TestCaptchaRepository_Expires(t *testing.T) {
	client, mr := setupRedisTest(t)
	repo := NewCaptchaRepository(client)
	ctx := context.Background()

	require.NoError(t, repo.SaveCaptcha(ctx, "c1", "AbCd", time.Minute))
	mr.FastForward(61 * time.Second)

	_, err := repo.ConsumeCaptcha(ctx, "c1")
	assert.ErrorIs(t, err, models.ErrCaptchaExpired)
}

func TestCaptchaRepository_ConcurrentConsumeHasSingleWinner(t *testing.T) {
	client, _ := setupRedisTest(t)
	repo := NewCaptchaRepository(client)
	ctx := context.Background()

	require.NoError(t, repo.SaveCaptcha(ctx, "c1", "AbCd", time.Minute))

	var wins atomic.Int32
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.ConsumeCaptcha(ctx, "c1"); err == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
}
