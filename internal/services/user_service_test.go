package services

import (
	"context"
	"testing"

	"github.com/Su57/stardew/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_CreateHashesPassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.createUser(t, "a@x.com", "secret1", false)
	assert.Len(t, user.ID, 32)
	assert.Equal(t, models.StatusEnable, user.Status)

	stored, err := env.store.Users().GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", stored.PasswordHash)
	assert.True(t, env.hasher.Verify("secret1", stored.PasswordHash))
}

func TestUserService_DuplicateEmailConflict(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "a@x.com", "secret1", false)

	_, err := env.users.CreateUser(context.Background(), &models.CreateUserRequest{
		Username: "another",
		Email:    "a@x.com",
		Password: "secret2",
	})
	assert.ErrorIs(t, err, models.ErrEmailTaken)
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestUserService_CreateWithUnknownRole(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.users.CreateUser(context.Background(), &models.CreateUserRequest{
		Username: "someone",
		Email:    "a@x.com",
		Password: "secret1",
		Roles:    []int64{42},
	})
	assert.ErrorIs(t, err, models.ErrBadRequest)
}

func TestUserService_UpdateFieldsAndRoles(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	r1 := env.createRole(t, "r1")
	r2 := env.createRole(t, "r2")
	user := env.createUser(t, "a@x.com", "secret1", false, r1)

	nickname := "Abby"
	roles := []int64{r2.ID}
	updated, err := env.users.UpdateUser(ctx, user.ID, &models.UpdateUserRequest{Nickname: &nickname, Roles: &roles})
	require.NoError(t, err)
	assert.Equal(t, "Abby", updated.Nickname)
	assert.Equal(t, "a@x.com", updated.Email)

	got, err := env.users.GetUserRoles(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "r2", got[0].Name)

	stored, err := env.store.Users().GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, env.hasher.Verify("secret1", stored.PasswordHash), "updates keep the password")
}

func TestUserService_UpdateEmailToTakenOne(t *testing.T) {
	env := newTestEnv(t)
	env.createUser(t, "a@x.com", "secret1", false)
	b := env.createUser(t, "b@x.com", "secret1", false)

	email := "a@x.com"
	_, err := env.users.UpdateUser(context.Background(), b.ID, &models.UpdateUserRequest{Email: &email})
	assert.ErrorIs(t, err, models.ErrEmailTaken)
}

func TestUserService_DisableRevokesSessions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "a@x.com", "secret1", false)

	first, err := env.login(t, "a@x.com", "secret1")
	require.NoError(t, err)
	second, err := env.login(t, "a@x.com", "secret1")
	require.NoError(t, err)

	disabled := models.StatusDisable
	_, err = env.users.UpdateUser(ctx, user.ID, &models.UpdateUserRequest{Status: &disabled})
	require.NoError(t, err)

	for _, token := range []*models.BearerToken{first, second} {
		_, err = env.authorizer.Authorize(ctx, bearer(token), Requirement{})
		assert.ErrorIs(t, err, models.ErrSessionNotFound)
	}
}

func TestUserService_DeleteRevokesSessions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "a@x.com", "secret1", false)
	other := env.createUser(t, "b@x.com", "secret1", false)

	token, err := env.login(t, "a@x.com", "secret1")
	require.NoError(t, err)
	otherToken, err := env.login(t, "b@x.com", "secret1")
	require.NoError(t, err)

	require.NoError(t, env.users.DeleteUser(ctx, user.ID, false))

	_, err = env.users.GetUser(ctx, user.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = env.authorizer.Authorize(ctx, bearer(token), Requirement{})
	assert.ErrorIs(t, err, models.ErrSessionNotFound)

	_, err = env.authorizer.Authorize(ctx, bearer(otherToken), Requirement{})
	assert.NoError(t, err)
	_, err = env.users.GetUser(ctx, other.ID)
	assert.NoError(t, err)
}

func TestUserService_SoftDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.createUser(t, "a@x.com", "secret1", false)

	require.NoError(t, env.users.DeleteUser(ctx, user.ID, true))

	got, err := env.users.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, got.DelFlag)
	assert.False(t, got.IsEnabled())
}

func TestUserService_DeleteMissing(t *testing.T) {
	env := newTestEnv(t)
	err := env.users.DeleteUser(context.Background(), "ghost", false)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestUserService_ListPaginates(t *testing.T) {
	env := newTestEnv(t)
	for _, email := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		env.createUser(t, email, "secret1", false)
	}

	page, err := env.users.ListUsers(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.Len(t, page.Items, 1)
	assert.Equal(t, 1, page.PageNo)
	assert.Equal(t, 2, page.PageSize)
}
