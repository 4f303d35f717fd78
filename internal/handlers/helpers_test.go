package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Su57/stardew/internal/metrics"
	"github.com/Su57/stardew/internal/models"
	"github.com/Su57/stardew/internal/repository"
	"github.com/Su57/stardew/internal/repository/repotest"
	"github.com/Su57/stardew/internal/services"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router  *gin.Engine
	mr      *miniredis.Miniredis
	store   *repotest.Store
	metrics *metrics.Metrics
	auth    *services.AuthService
	users   services.IUserService
	roles   *services.RoleService
	menus   *services.MenuService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	jwtService, err := services.NewJWTService(testSecret)
	require.NoError(t, err)

	store := repotest.NewStore()
	hasher := services.NewBcryptHasher(bcrypt.MinCost)
	sessions := services.NewSessionService(repository.NewSessionRepository(client), time.Hour)
	captcha := services.NewCaptchaService(repository.NewCaptchaRepository(client), 4, 5*time.Minute)

	authService := services.NewAuthService(store.Users(), store.Roles(), hasher, jwtService, sessions, captcha, "Bearer")
	userService := services.NewUserService(store.Users(), store.Roles(), hasher, sessions)
	roleService := services.NewRoleService(store.Roles(), store.Menus())
	menuService := services.NewMenuService(store.Menus(), store.Roles())

	m := metrics.NewMetrics(prometheus.NewRegistry())
	middleware := NewMiddleware(services.NewAuthorizer(jwtService, sessions, "Bearer"), m)

	router := gin.New()
	router.Use(RequestLogger(m))
	NewAuthHandler(authService, middleware, m).RegisterRoutes(router)
	NewUserHandler(userService, middleware).RegisterRoutes(router)
	NewRoleHandler(roleService, middleware).RegisterRoutes(router)
	NewMenuHandler(menuService, middleware).RegisterRoutes(router)

	return &testServer{
		router:  router,
		mr:      mr,
		store:   store,
		metrics: m,
		auth:    authService,
		users:   userService,
		roles:   roleService,
		menus:   menuService,
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (s *testServer) do(t *testing.T, method, path, authorization string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

// login walks the public captcha and login endpoints and returns the
// Authorization header value.
func (s *testServer) login(t *testing.T, email, password string) string {
	t.Helper()

	rec, env := s.do(t, http.MethodGet, "/captcha", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var captcha models.CaptchaInfo
	require.NoError(t, json.Unmarshal(env.Data, &captcha))

	answer, err := s.mr.Get("captcha_key:" + captcha.UID)
	require.NoError(t, err)

	rec, env = s.do(t, http.MethodPost, "/login", "", models.LoginRequest{
		Email:    email,
		Password: password,
		UID:      captcha.UID,
		Code:     answer,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var token models.BearerToken
	require.NoError(t, json.Unmarshal(env.Data, &token))
	return token.TokenType + " " + token.AccessToken
}

func (s *testServer) createMenu(t *testing.T, name string, parentID int64, perm string) *models.Menu {
	t.Helper()
	menuType := models.MenuTypeButton
	if perm == "" {
		menuType = models.MenuTypeCategory
	}
	menu, err := s.menus.CreateMenu(context.Background(), &models.CreateMenuRequest{
		Name:     name,
		ParentID: parentID,
		MenuType: menuType,
		Perm:     perm,
	})
	require.NoError(t, err)
	return menu
}

func (s *testServer) createRole(t *testing.T, name string, menus ...*models.Menu) *models.Role {
	t.Helper()
	ctx := context.Background()
	role, err := s.roles.CreateRole(ctx, &models.CreateRoleRequest{Name: name, Key: name})
	require.NoError(t, err)

	ids := make([]int64, 0, len(menus))
	for _, menu := range menus {
		ids = append(ids, menu.ID)
	}
	require.NoError(t, s.roles.AssignMenus(ctx, role.ID, ids))
	return role
}

func (s *testServer) createUser(t *testing.T, email, password string, isSuper bool, roles ...*models.Role) *models.User {
	t.Helper()
	ids := make([]int64, 0, len(roles))
	for _, role := range roles {
		ids = append(ids, role.ID)
	}
	user, err := s.users.CreateUser(context.Background(), &models.CreateUserRequest{
		Username: "user_" + email,
		Email:    email,
		Password: password,
		IsSuper:  isSuper,
		Roles:    ids,
	})
	require.NoError(t, err)
	return user
}
