package http

import (
	"bytes"
	"context"
	"encoding/json"
	nethttp "net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"bizdesk/internal/infrastructure/auth"
	"bizdesk/internal/infrastructure/config"
	"bizdesk/internal/infrastructure/persistence/models"
	"bizdesk/internal/infrastructure/persistence/seeds"
	"bizdesk/internal/infrastructure/repository"
	"bizdesk/internal/shared/authorization"
	sharedConfig "bizdesk/internal/shared/config"
	"bizdesk/internal/shared/db"
	"bizdesk/internal/shared/logger"
)

const routerSeed = `
modules:
  - tab_name: Dashboard
    tab_url: /dashboard
    number: 1
    capabilities: [view]
    default: true
  - tab_name: Accounts
    tab_url: /accounts
    number: 2
    capabilities: [view, add, edit, delete]
    children:
      - tab_name: Invoices
        tab_url: /invoices
        number: 1
        capabilities: [view, add, edit, delete]
users:
  - email: root@bizdesk.test
    name: Root
    role: super_admin
    password: root-password
  - email: admin@bizdesk.test
    name: Admin
    role: admin
    password: admin-password
  - email: clerk@bizdesk.test
    name: Clerk
    role: user
    password: clerk-password
`

type testServer struct {
	container *Container
	gdb       *gorm.DB
	tokens    map[string]string
	userIDs   map[string]uint
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gdb, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, gdb.AutoMigrate(&models.UserModel{}, &models.ModuleModel{}, &models.PermissionModel{}))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := &config.Config{
		Server: sharedConfig.ServerConfig{Mode: gin.TestMode},
		Auth: sharedConfig.AuthConfig{
			Password:       sharedConfig.PasswordConfig{BcryptCost: 4},
			JWT:            sharedConfig.JWTConfig{Secret: "router-test-secret", AccessExpMinutes: 5},
			LoginRateLimit: sharedConfig.LoginRateLimitConfig{PerMinute: 3},
		},
		Redis: sharedConfig.RedisConfig{Enabled: true},
		Access: sharedConfig.AccessConfig{
			BypassRole:      string(authorization.RoleSuperAdmin),
			CacheTTLSeconds: 60,
			Routes: []sharedConfig.RouteRule{
				{Method: "GET", Path: "/erp/dashboard", Module: "/dashboard", Capability: "view"},
				{Method: "GET", Path: "/erp/invoices", Module: "/invoices", Capability: "view"},
				{Method: "POST", Path: "/erp/invoices", Module: "/invoices", Capability: "add"},
				{Method: "GET", Path: "/erp/ledger", Module: "/ledger", Capability: "view"},
			},
		},
	}

	log := logger.NewNop()
	users := repository.NewUserRepository(gdb, log)
	seedFile, err := seeds.Parse([]byte(routerSeed))
	require.NoError(t, err)
	hasher, err := auth.NewBcryptPasswordHasher(4)
	require.NoError(t, err)
	seeder := seeds.NewSeeder(
		repository.NewModuleRepository(gdb, log), users,
		hasher, db.NewTransactionManager(gdb), log,
	)
	_, err = seeder.Apply(context.Background(), seedFile)
	require.NoError(t, err)

	c, err := NewContainer(cfg, gdb, rdb, log)
	require.NoError(t, err)

	s := &testServer{container: c, gdb: gdb, tokens: map[string]string{}, userIDs: map[string]uint{}}
	for _, email := range []string{"root@bizdesk.test", "admin@bizdesk.test", "clerk@bizdesk.test"} {
		u, err := users.GetByEmail(context.Background(), email)
		require.NoError(t, err)
		require.NotNil(t, u)
		issued, err := c.svcs.jwt.Generate(u.ID(), u.Role())
		require.NoError(t, err)
		s.tokens[email] = issued.AccessToken
		s.userIDs[email] = u.ID()
	}
	return s
}

func (s *testServer) do(t *testing.T, method, path, as string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if as != "" {
		req.Header.Set("Authorization", "Bearer "+s.tokens[as])
	}
	w := httptest.NewRecorder()
	s.container.Engine().ServeHTTP(w, req)
	return w
}

func (s *testServer) moduleID(t *testing.T, tabURL string) string {
	t.Helper()
	m, err := repository.NewModuleRepository(s.gdb, logger.NewNop()).GetByTabURL(context.Background(), tabURL)
	require.NoError(t, err)
	require.NotNil(t, m)
	return m.ID()
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, nethttp.MethodGet, "/health", "", nil)
	assert.Equal(t, nethttp.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = s.do(t, nethttp.MethodGet, "/metrics", "", nil)
	assert.Equal(t, nethttp.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "bizdesk_http_requests_total")
}

func TestRouter_Login(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, nethttp.MethodPost, "/auth/login", "", map[string]string{
		"email": "clerk@bizdesk.test", "password": "clerk-password",
	})
	require.Equal(t, nethttp.StatusOK, w.Code)

	var resp struct {
		Data struct {
			AccessToken string `json:"access_token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.AccessToken)

	req := httptest.NewRequest(nethttp.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+resp.Data.AccessToken)
	me := httptest.NewRecorder()
	s.container.Engine().ServeHTTP(me, req)
	assert.Equal(t, nethttp.StatusOK, me.Code)
	assert.Contains(t, me.Body.String(), "clerk@bizdesk.test")

	w = s.do(t, nethttp.MethodPost, "/auth/login", "", map[string]string{
		"email": "clerk@bizdesk.test", "password": "wrong",
	})
	assert.Equal(t, nethttp.StatusUnauthorized, w.Code)
}

func TestRouter_LoginRateLimited(t *testing.T) {
	s := newTestServer(t)

	body := map[string]string{"email": "nobody@bizdesk.test", "password": "x"}
	for i := 0; i < 3; i++ {
		w := s.do(t, nethttp.MethodPost, "/auth/login", "", body)
		require.Equal(t, nethttp.StatusUnauthorized, w.Code)
	}
	w := s.do(t, nethttp.MethodPost, "/auth/login", "", body)
	assert.Equal(t, nethttp.StatusTooManyRequests, w.Code)
}

func TestRouter_ModulesRequireAdmin(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, nethttp.StatusUnauthorized, s.do(t, nethttp.MethodGet, "/modules", "", nil).Code)
	assert.Equal(t, nethttp.StatusForbidden, s.do(t, nethttp.MethodGet, "/modules", "clerk@bizdesk.test", nil).Code)
	assert.Equal(t, nethttp.StatusOK, s.do(t, nethttp.MethodGet, "/modules", "admin@bizdesk.test", nil).Code)
	assert.Equal(t, nethttp.StatusOK, s.do(t, nethttp.MethodGet, "/modules/tree", "admin@bizdesk.test", nil).Code)

	w := s.do(t, nethttp.MethodPost, "/modules", "admin@bizdesk.test", map[string]any{
		"tab_name": "Reports",
		"tab_url":  "/reports",
	})
	assert.Equal(t, nethttp.StatusCreated, w.Code)
}

func TestRouter_ERPRoutes(t *testing.T) {
	s := newTestServer(t)
	clerk := "clerk@bizdesk.test"

	t.Run("default module is open to everyone", func(t *testing.T) {
		assert.Equal(t, nethttp.StatusOK, s.do(t, nethttp.MethodGet, "/erp/dashboard", clerk, nil).Code)
	})

	t.Run("no grant is denied", func(t *testing.T) {
		assert.Equal(t, nethttp.StatusForbidden, s.do(t, nethttp.MethodGet, "/erp/invoices", clerk, nil).Code)
	})

	t.Run("unmapped path is denied", func(t *testing.T) {
		assert.Equal(t, nethttp.StatusForbidden, s.do(t, nethttp.MethodGet, "/erp/unknown", clerk, nil).Code)
	})

	t.Run("unregistered module only passes the bypass role", func(t *testing.T) {
		assert.Equal(t, nethttp.StatusForbidden, s.do(t, nethttp.MethodGet, "/erp/ledger", clerk, nil).Code)
		assert.Equal(t, nethttp.StatusOK, s.do(t, nethttp.MethodGet, "/erp/ledger", "root@bizdesk.test", nil).Code)
	})

	t.Run("bypass role skips module checks", func(t *testing.T) {
		assert.Equal(t, nethttp.StatusOK, s.do(t, nethttp.MethodPost, "/erp/invoices", "root@bizdesk.test", nil).Code)
	})

	t.Run("anonymous is rejected", func(t *testing.T) {
		assert.Equal(t, nethttp.StatusUnauthorized, s.do(t, nethttp.MethodGet, "/erp/dashboard", "", nil).Code)
	})
}

func TestRouter_GrantTakesEffectAfterCachedDeny(t *testing.T) {
	s := newTestServer(t)
	clerk := "clerk@bizdesk.test"
	invoices := s.moduleID(t, "/invoices")
	userPath := "/permissions/users/" + strconv.FormatUint(uint64(s.userIDs[clerk]), 10)

	// first read fills the grants cache with an empty set
	require.Equal(t, nethttp.StatusForbidden, s.do(t, nethttp.MethodGet, "/erp/invoices", clerk, nil).Code)

	w := s.do(t, nethttp.MethodPut, userPath, "admin@bizdesk.test", map[string]any{
		"permissions": []map[string]any{{"module_id": invoices, "view": true}},
	})
	require.Equal(t, nethttp.StatusOK, w.Code, w.Body.String())

	assert.Equal(t, nethttp.StatusOK, s.do(t, nethttp.MethodGet, "/erp/invoices", clerk, nil).Code)
	assert.Equal(t, nethttp.StatusForbidden, s.do(t, nethttp.MethodPost, "/erp/invoices", clerk, nil).Code)

	w = s.do(t, nethttp.MethodGet, "/permissions/me", clerk, nil)
	require.Equal(t, nethttp.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), invoices)

	w = s.do(t, nethttp.MethodDelete, userPath+"/modules/"+invoices, "admin@bizdesk.test", nil)
	require.Equal(t, nethttp.StatusNoContent, w.Code, w.Body.String())
	assert.Equal(t, nethttp.StatusForbidden, s.do(t, nethttp.MethodGet, "/erp/invoices", clerk, nil).Code)
}

func TestRouter_PermissionAdminRoutesRequireAdmin(t *testing.T) {
	s := newTestServer(t)
	path := "/permissions/users/" + strconv.FormatUint(uint64(s.userIDs["admin@bizdesk.test"]), 10)

	assert.Equal(t, nethttp.StatusForbidden, s.do(t, nethttp.MethodGet, path, "clerk@bizdesk.test", nil).Code)
	assert.Equal(t, nethttp.StatusOK, s.do(t, nethttp.MethodGet, path, "admin@bizdesk.test", nil).Code)
}
