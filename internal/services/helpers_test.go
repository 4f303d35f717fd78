package services

import (
	"context"
	"testing"
	"time"

	"github.com/Su57/stardew/internal/models"
	"github.com/Su57/stardew/internal/repository"
	"github.com/Su57/stardew/internal/repository/repotest"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type testEnv struct {
	mr         *miniredis.Miniredis
	store      *repotest.Store
	hasher     PasswordHasher
	jwt        *JWTService
	sessions   *SessionService
	captcha    *CaptchaService
	auth       *AuthService
	authorizer *Authorizer
	users      IUserService
	roles      *RoleService
	menus      *MenuService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	jwtService, err := NewJWTService(testSecret)
	require.NoError(t, err)

	store := repotest.NewStore()
	hasher := NewBcryptHasher(bcrypt.MinCost)
	sessions := NewSessionService(repository.NewSessionRepository(client), time.Hour)
	captcha := NewCaptchaService(repository.NewCaptchaRepository(client), 4, 5*time.Minute)

	return &testEnv{
		mr:         mr,
		store:      store,
		hasher:     hasher,
		jwt:        jwtService,
		sessions:   sessions,
		captcha:    captcha,
		auth:       NewAuthService(store.Users(), store.Roles(), hasher, jwtService, sessions, captcha, "Bearer"),
		authorizer: NewAuthorizer(jwtService, sessions, "Bearer"),
		users:      NewUserService(store.Users(), store.Roles(), hasher, sessions),
		roles:      NewRoleService(store.Roles(), store.Menus()),
		menus:      NewMenuService(store.Menus(), store.Roles()),
	}
}

// solveCaptcha creates a challenge and reads its answer straight from Redis.
func (e *testEnv) solveCaptcha(t *testing.T) (string, string) {
	t.Helper()
	info, err := e.captcha.CreateCaptcha(context.Background())
	require.NoError(t, err)
	answer, err := e.mr.Get("captcha_key:" + info.UID)
	require.NoError(t, err)
	return info.UID, answer
}

func (e *testEnv) login(t *testing.T, email, password string) (*models.BearerToken, error) {
	t.Helper()
	uid, code := e.solveCaptcha(t)
	return e.auth.Login(context.Background(), &models.LoginRequest{
		Email:    email,
		Password: password,
		UID:      uid,
		Code:     code,
	})
}

func (e *testEnv) createMenu(t *testing.T, name string, parentID int64, orderNum int, perm string) *models.Menu {
	t.Helper()
	menuType := models.MenuTypeButton
	if perm == "" {
		menuType = models.MenuTypeCategory
	}
	menu, err := e.menus.CreateMenu(context.Background(), &models.CreateMenuRequest{
		Name:     name,
		ParentID: parentID,
		OrderNum: orderNum,
		MenuType: menuType,
		Perm:     perm,
	})
	require.NoError(t, err)
	return menu
}

func (e *testEnv) createRole(t *testing.T, name string, menus ...*models.Menu) *models.Role {
	t.Helper()
	ctx := context.Background()
	role, err := e.roles.CreateRole(ctx, &models.CreateRoleRequest{Name: name, Key: name})
	require.NoError(t, err)

	ids := make([]int64, 0, len(menus))
	for _, menu := range menus {
		ids = append(ids, menu.ID)
	}
	require.NoError(t, e.roles.AssignMenus(ctx, role.ID, ids))
	return role
}

func (e *testEnv) createUser(t *testing.T, email, password string, isSuper bool, roles ...*models.Role) *models.User {
	t.Helper()
	ids := make([]int64, 0, len(roles))
	for _, role := range roles {
		ids = append(ids, role.ID)
	}
	user, err := e.users.CreateUser(context.Background(), &models.CreateUserRequest{
		Username: "user_" + email,
		Email:    email,
		Password: password,
		IsSuper:  isSuper,
		Roles:    ids,
	})
	require.NoError(t, err)
	return user
}

func bearer(token *models.BearerToken) string {
	return token.TokenType + " " + token.AccessToken
}
