package web_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moviecatalog/moviecatalog/internal/auth"
	"github.com/moviecatalog/moviecatalog/internal/config"
	"github.com/moviecatalog/moviecatalog/internal/daemon"
	"github.com/moviecatalog/moviecatalog/internal/web"
	"github.com/moviecatalog/moviecatalog/internal/web/respond"
)

const (
	adminEmail    = "admin@example.com"
	adminPassword = "admin-pass-123"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   *respond.Body   `json:"error"`
}

type client struct {
	t   *testing.T
	app *fiber.App
}

func newTestService(t *testing.T, mutate ...func(*config.Config)) *client {
	t.Helper()

	cfg := &config.Config{
		Title:   "test",
		DevMode: true,
		Webserver: config.Webserver{
			Port: 8080,
			URL:  "http://localhost:8080",
		},
		Auth: config.Auth{JWTSecret: "web-test-secret", JWTIssuer: "moviecatalog-test", TokenExpiry: time.Hour},
		DB:   config.DB{GormEngine: config.EngineSQLite, LogLevel: "silent"},
		Bootstrap: config.Bootstrap{
			AdminUsername: "admin",
			AdminEmail:    adminEmail,
			AdminPassword: adminPassword,
		},
	}

	for _, m := range mutate {
		m(cfg)
	}

	db, err := daemon.OpenDB(cfg)
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	require.NoError(t, daemon.Migrate(db))
	require.NoError(t, daemon.Seed(context.Background(), cfg, db))

	tokens, err := daemon.NewTokenManager(cfg)
	require.NoError(t, err)

	svc, err := web.New(cfg, db, tokens, web.Options{FastShutDown: true})
	require.NoError(t, err)

	return &client{t: t, app: svc.App}
}

// call sends a JSON request and decodes the envelope.
func (c *client) call(method, path, token string, body any) (int, envelope) {
	c.t.Helper()

	var reader io.Reader

	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)

		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := c.app.Test(req, fiber.TestConfig{Timeout: 10 * time.Second})
	require.NoError(c.t, err)

	defer resp.Body.Close()

	var env envelope

	require.NoError(c.t, json.NewDecoder(resp.Body).Decode(&env), "%s %s", method, path)

	return resp.StatusCode, env
}

// expectError asserts a failure status and code.
func (c *client) expectError(method, path, token string, body any, status int, code string) {
	c.t.Helper()

	got, env := c.call(method, path, token, body)
	assert.Equal(c.t, status, got, "%s %s", method, path)
	assert.False(c.t, env.Success)

	if assert.NotNil(c.t, env.Error, "%s %s", method, path) {
		assert.Equal(c.t, code, env.Error.Code, "%s %s", method, path)
	}
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()

	var out T

	require.NoError(t, json.Unmarshal(env.Data, &out), string(env.Data))

	return out
}

type tokenData struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      struct {
		ID           uint64   `json:"id"`
		Username     string   `json:"username"`
		Email        string   `json:"email"`
		Role         string   `json:"role"`
		RoleID       *uint    `json:"roleId"`
		RoleName     *string  `json:"roleName"`
		Permissions  []string `json:"permissions"`
		IsSuperAdmin bool     `json:"isSuperAdmin"`
	} `json:"user"`
}

type mePermissions struct {
	User struct {
		ID       uint64 `json:"id"`
		Username string `json:"username"`
	} `json:"user"`
	Role *struct {
		ID   uint   `json:"id"`
		Name string `json:"name"`
	} `json:"role"`
	Permissions  []string `json:"permissions"`
	IsSuperAdmin bool     `json:"isSuperAdmin"`
}

type permissionEntry struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Module    string `json:"module"`
	RoleCount int64  `json:"role_count"`
}

type roleEntry struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	IsSystem        bool   `json:"is_system"`
	UserCount       int64  `json:"user_count"`
	PermissionCount int64  `json:"permission_count"`
}

func (c *client) login(email, password string) tokenData {
	c.t.Helper()

	status, env := c.call(fiber.MethodPost, "/api/auth/login", "", fiber.Map{"email": email, "password": password})
	require.Equal(c.t, fiber.StatusOK, status, env.Error)

	return decode[tokenData](c.t, env)
}

func TestRegisterAndLogin(t *testing.T) {
	c := newTestService(t)

	status, env := c.call(fiber.MethodPost, "/api/auth/register", "", fiber.Map{
		"username": "alice",
		"email":    "Alice@Example.com",
		"password": "secret-pw",
	})
	require.Equal(t, fiber.StatusCreated, status)

	reg := decode[tokenData](t, env)
	assert.NotEmpty(t, reg.Token)
	assert.Equal(t, "alice@example.com", reg.User.Email)
	assert.Equal(t, "user", reg.User.Role)

	t.Run("duplicate", func(t *testing.T) {
		c.expectError(fiber.MethodPost, "/api/auth/register", "", fiber.Map{
			"username": "alice2", "email": "alice@example.com", "password": "secret-pw",
		}, fiber.StatusConflict, respond.CodeUserExists)
	})

	t.Run("invalid body", func(t *testing.T) {
		status, env := c.call(fiber.MethodPost, "/api/auth/register", "", fiber.Map{
			"username": "al", "email": "nope", "password": "123",
		})
		assert.Equal(t, fiber.StatusBadRequest, status)
		require.NotNil(t, env.Error)
		assert.Equal(t, respond.CodeValidation, env.Error.Code)
		assert.Len(t, env.Error.Details, 3)
	})

	t.Run("wrong password and unknown email look the same", func(t *testing.T) {
		_, wrong := c.call(fiber.MethodPost, "/api/auth/login", "", fiber.Map{
			"email": "alice@example.com", "password": "bad",
		})
		_, unknown := c.call(fiber.MethodPost, "/api/auth/login", "", fiber.Map{
			"email": "ghost@example.com", "password": "bad",
		})

		require.NotNil(t, wrong.Error)
		require.NotNil(t, unknown.Error)
		assert.Equal(t, respond.CodeInvalidCredentials, wrong.Error.Code)
		assert.Equal(t, wrong.Error, unknown.Error)
	})

	t.Run("login without role", func(t *testing.T) {
		got := c.login("alice@example.com", "secret-pw")
		assert.NotEmpty(t, got.Token)
		assert.Nil(t, got.User.RoleID)
		assert.Nil(t, got.User.RoleName)
		assert.Empty(t, got.User.Permissions)
		assert.False(t, got.User.IsSuperAdmin)

		status, env := c.call(fiber.MethodGet, "/api/me/permissions", got.Token, nil)
		require.Equal(t, fiber.StatusOK, status)

		me := decode[mePermissions](t, env)
		assert.Equal(t, "alice", me.User.Username)
		assert.Nil(t, me.Role)
		assert.NotNil(t, me.Permissions)
		assert.Empty(t, me.Permissions)
	})

	t.Run("me requires a token", func(t *testing.T) {
		c.expectError(fiber.MethodGet, "/api/me/permissions", "", nil, fiber.StatusUnauthorized, respond.CodeUnauthorized)
		c.expectError(fiber.MethodGet, "/api/me/permissions", "junk", nil, fiber.StatusUnauthorized, respond.CodeInvalidToken)
	})

	t.Run("super admin login", func(t *testing.T) {
		got := c.login(adminEmail, adminPassword)
		assert.True(t, got.User.IsSuperAdmin)
		require.NotNil(t, got.User.RoleName)
		assert.Equal(t, "Super Administrator", *got.User.RoleName)
		assert.Len(t, got.User.Permissions, len(auth.Catalog))
	})
}

func TestAdminRoleManagement(t *testing.T) {
	c := newTestService(t)
	admin := c.login(adminEmail, adminPassword).Token

	status, env := c.call(fiber.MethodPost, "/api/auth/register", "", fiber.Map{
		"username": "alice", "email": "alice@example.com", "password": "secret-pw",
	})
	require.Equal(t, fiber.StatusCreated, status)

	alice := decode[tokenData](t, env)

	// catalog
	status, env = c.call(fiber.MethodGet, "/api/admin/permissions", admin, nil)
	require.Equal(t, fiber.StatusOK, status)

	catalog := decode[struct {
		Permissions []permissionEntry            `json:"permissions"`
		Grouped     map[string][]permissionEntry `json:"grouped"`
	}](t, env)
	require.Len(t, catalog.Permissions, len(auth.Catalog))
	assert.Len(t, catalog.Grouped, 5)

	permID := make(map[string]uint, len(catalog.Permissions))
	for _, p := range catalog.Permissions {
		permID[p.Name] = p.ID
	}

	// roles
	status, env = c.call(fiber.MethodGet, "/api/admin/roles", admin, nil)
	require.Equal(t, fiber.StatusOK, status)

	roles := decode[[]roleEntry](t, env)
	require.Len(t, roles, 4)

	roleID := make(map[string]uint, len(roles))
	for _, r := range roles {
		roleID[r.Name] = r.ID
		assert.True(t, r.IsSystem)
	}

	status, env = c.call(fiber.MethodPost, "/api/admin/roles", admin, fiber.Map{
		"name":         "critic",
		"display_name": "Critic",
		"permissions":  []uint{permID[auth.PermReviewView], permID[auth.PermReviewAudit]},
	})
	require.Equal(t, fiber.StatusCreated, status, env.Error)

	critic := decode[roleEntry](t, env)
	assert.False(t, critic.IsSystem)

	criticPath := fmt.Sprintf("/api/admin/roles/%d", critic.ID)
	aliceRolePath := fmt.Sprintf("/api/admin/users/%d/role", alice.User.ID)

	t.Run("create errors", func(t *testing.T) {
		c.expectError(fiber.MethodPost, "/api/admin/roles", admin,
			fiber.Map{"name": "critic", "display_name": "Again"}, fiber.StatusConflict, respond.CodeRoleExists)
		c.expectError(fiber.MethodPost, "/api/admin/roles", admin,
			fiber.Map{"name": "Bad Name", "display_name": "Bad"}, fiber.StatusBadRequest, respond.CodeValidation)
		c.expectError(fiber.MethodPost, "/api/admin/roles", admin,
			fiber.Map{"name": auth.RoleEditor, "display_name": "Editor"}, fiber.StatusBadRequest, respond.CodeSystemRole)
		c.expectError(fiber.MethodPost, "/api/admin/roles", admin,
			fiber.Map{"name": "ghost", "display_name": "Ghost", "permissions": []uint{9999}},
			fiber.StatusBadRequest, respond.CodeInvalidPermission)
	})

	t.Run("role lookups", func(t *testing.T) {
		c.expectError(fiber.MethodGet, "/api/admin/roles/abc", admin, nil, fiber.StatusBadRequest, respond.CodeInvalidID)
		c.expectError(fiber.MethodGet, "/api/admin/roles/9999", admin, nil, fiber.StatusNotFound, respond.CodeNotFound)

		status, env := c.call(fiber.MethodGet, criticPath, admin, nil)
		require.Equal(t, fiber.StatusOK, status)

		detail := decode[struct {
			Name        string            `json:"name"`
			Permissions []permissionEntry `json:"permissions"`
		}](t, env)
		assert.Equal(t, "critic", detail.Name)
		assert.Len(t, detail.Permissions, 2)
	})

	t.Run("system roles are protected", func(t *testing.T) {
		sysPath := fmt.Sprintf("/api/admin/roles/%d", roleID[auth.RoleSuperAdmin])

		c.expectError(fiber.MethodPut, sysPath, admin, fiber.Map{"display_name": "Boss"},
			fiber.StatusBadRequest, respond.CodeSystemRole)
		c.expectError(fiber.MethodPut, sysPath+"/permissions", admin, fiber.Map{"permissions": []uint{}},
			fiber.StatusBadRequest, respond.CodeSystemRole)
		c.expectError(fiber.MethodDelete, sysPath, admin, nil, fiber.StatusBadRequest, respond.CodeSystemRole)
	})

	t.Run("assign role to user", func(t *testing.T) {
		status, _ := c.call(fiber.MethodPut, aliceRolePath, admin, fiber.Map{"role_id": critic.ID})
		require.Equal(t, fiber.StatusOK, status)

		status, env := c.call(fiber.MethodGet, "/api/me/permissions", alice.Token, nil)
		require.Equal(t, fiber.StatusOK, status)

		me := decode[mePermissions](t, env)
		require.NotNil(t, me.Role)
		assert.Equal(t, "critic", me.Role.Name)
		assert.Equal(t, []string{auth.PermReviewAudit, auth.PermReviewView}, me.Permissions)

		c.expectError(fiber.MethodPut, aliceRolePath, admin, fiber.Map{"role_id": 9999},
			fiber.StatusBadRequest, respond.CodeInvalidRole)
		c.expectError(fiber.MethodPut, aliceRolePath, admin, fiber.Map{},
			fiber.StatusBadRequest, respond.CodeValidation)
		c.expectError(fiber.MethodPut, "/api/admin/users/9999/role", admin, fiber.Map{"role_id": critic.ID},
			fiber.StatusNotFound, respond.CodeNotFound)
	})

	t.Run("critic is kept out of admin routes", func(t *testing.T) {
		c.expectError(fiber.MethodGet, "/api/admin/roles", alice.Token, nil, fiber.StatusForbidden, respond.CodeForbidden)
		c.expectError(fiber.MethodGet, "/api/admin/users", alice.Token, nil, fiber.StatusForbidden, respond.CodeForbidden)
		c.expectError(fiber.MethodGet, "/api/admin/roles", "", nil, fiber.StatusUnauthorized, respond.CodeUnauthorized)
	})

	t.Run("regrant applies on the next request", func(t *testing.T) {
		status, _ := c.call(fiber.MethodPut, criticPath+"/permissions", admin,
			fiber.Map{"permissions": []uint{permID[auth.PermUserView]}})
		require.Equal(t, fiber.StatusOK, status)

		status, env := c.call(fiber.MethodGet, "/api/admin/users?page=1&limit=1", alice.Token, nil)
		require.Equal(t, fiber.StatusOK, status)

		list := decode[struct {
			Users      []struct{ Username string } `json:"users"`
			Pagination struct {
				Page       int   `json:"page"`
				Limit      int   `json:"limit"`
				Total      int64 `json:"total"`
				TotalPages int64 `json:"totalPages"`
			} `json:"pagination"`
		}](t, env)
		assert.Len(t, list.Users, 1)
		assert.Equal(t, int64(2), list.Pagination.Total)
		assert.Equal(t, int64(2), list.Pagination.TotalPages)

		c.expectError(fiber.MethodPut, criticPath+"/permissions", admin, fiber.Map{"permissions": []uint{4242}},
			fiber.StatusBadRequest, respond.CodeInvalidPermission)
	})

	t.Run("delete role in use", func(t *testing.T) {
		c.expectError(fiber.MethodDelete, criticPath, admin, nil, fiber.StatusBadRequest, respond.CodeHasUsers)
	})

	t.Run("delete user and role", func(t *testing.T) {
		c.expectError(fiber.MethodDelete, fmt.Sprintf("/api/admin/users/%d", alice.User.ID), alice.Token, nil,
			fiber.StatusForbidden, respond.CodeForbidden)

		status, _ := c.call(fiber.MethodDelete, fmt.Sprintf("/api/admin/users/%d", alice.User.ID), admin, nil)
		require.Equal(t, fiber.StatusOK, status)

		// the token outlives the account
		c.expectError(fiber.MethodGet, "/api/me/permissions", alice.Token, nil, fiber.StatusNotFound, respond.CodeNotFound)
		c.expectError(fiber.MethodGet, "/api/admin/users", alice.Token, nil,
			fiber.StatusUnauthorized, respond.CodeUnauthorized)

		status, _ = c.call(fiber.MethodDelete, criticPath, admin, nil)
		require.Equal(t, fiber.StatusOK, status)

		c.expectError(fiber.MethodGet, criticPath, admin, nil, fiber.StatusNotFound, respond.CodeNotFound)
	})
}

func TestLoginRateLimit(t *testing.T) {
	c := newTestService(t, func(cfg *config.Config) {
		cfg.Webserver.LoginRateLimit = config.LoginRateLimit{Enabled: true, Max: 2, Expiration: time.Minute}
	})

	body := fiber.Map{"email": "nobody@example.com", "password": "nope"}

	for range 2 {
		c.expectError(fiber.MethodPost, "/api/auth/login", "", body, fiber.StatusUnauthorized, respond.CodeInvalidCredentials)
	}

	c.expectError(fiber.MethodPost, "/api/auth/login", "", body, fiber.StatusTooManyRequests, respond.CodeTooManyRequests)
}

func TestMetricsAndNotFound(t *testing.T) {
	c := newTestService(t)

	resp, err := c.app.Test(httptest.NewRequest(fiber.MethodGet, web.MetricsPath, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "go_goroutines")

	c.expectError(fiber.MethodGet, "/api/nothing-here", "", nil, fiber.StatusNotFound, respond.CodeNotFound)
}

func TestAccountSelfService(t *testing.T) {
	c := newTestService(t)

	status, env := c.call(fiber.MethodPost, "/api/auth/register", "", fiber.Map{
		"username": "alice", "email": "alice@example.com", "password": "secret-pw",
	})
	require.Equal(t, fiber.StatusCreated, status)

	token := decode[tokenData](t, env).Token

	type profile struct {
		ID       uint64  `json:"id"`
		Username string  `json:"username"`
		Email    string  `json:"email"`
		Avatar   *string `json:"avatar"`
	}

	t.Run("requires a token", func(t *testing.T) {
		c.expectError(fiber.MethodGet, "/api/users/profile", "", nil, fiber.StatusUnauthorized, respond.CodeUnauthorized)
		c.expectError(fiber.MethodPut, "/api/users/password", "", fiber.Map{"oldPassword": "x", "newPassword": "yyyyyy"},
			fiber.StatusUnauthorized, respond.CodeUnauthorized)
	})

	t.Run("read and update profile", func(t *testing.T) {
		status, env := c.call(fiber.MethodGet, "/api/users/profile", token, nil)
		require.Equal(t, fiber.StatusOK, status)

		got := decode[profile](t, env)
		assert.Equal(t, "alice", got.Username)
		assert.Nil(t, got.Avatar)

		status, env = c.call(fiber.MethodPut, "/api/users/profile", token, fiber.Map{
			"username": "alicia", "avatar": "avatars/alicia.png",
		})
		require.Equal(t, fiber.StatusOK, status, env.Error)

		got = decode[profile](t, env)
		assert.Equal(t, "alicia", got.Username)
		require.NotNil(t, got.Avatar)
		assert.Equal(t, "avatars/alicia.png", *got.Avatar)

		c.expectError(fiber.MethodPut, "/api/users/profile", token, fiber.Map{"username": "admin"},
			fiber.StatusConflict, respond.CodeUserExists)
		c.expectError(fiber.MethodPut, "/api/users/profile", token, fiber.Map{"username": "al"},
			fiber.StatusBadRequest, respond.CodeValidation)
	})

	t.Run("change password", func(t *testing.T) {
		c.expectError(fiber.MethodPut, "/api/users/password", token,
			fiber.Map{"oldPassword": "wrong-pw", "newPassword": "brand-new-pw"},
			fiber.StatusBadRequest, respond.CodeInvalidPassword)
		c.expectError(fiber.MethodPut, "/api/users/password", token,
			fiber.Map{"oldPassword": "secret-pw", "newPassword": "123"},
			fiber.StatusBadRequest, respond.CodeValidation)

		status, env := c.call(fiber.MethodPut, "/api/users/password", token,
			fiber.Map{"oldPassword": "secret-pw", "newPassword": "brand-new-pw"})
		require.Equal(t, fiber.StatusOK, status, env.Error)

		c.expectError(fiber.MethodPost, "/api/auth/login", "",
			fiber.Map{"email": "alice@example.com", "password": "secret-pw"},
			fiber.StatusUnauthorized, respond.CodeInvalidCredentials)

		got := c.login("alice@example.com", "brand-new-pw")
		assert.Equal(t, "alicia", got.User.Username)
	})
}

func TestBearerSchemeIsCaseInsensitive(t *testing.T) {
	c := newTestService(t)
	token := c.login(adminEmail, adminPassword).Token

	for _, scheme := range []string{"Bearer", "bearer", "BEARER"} {
		t.Run(scheme, func(t *testing.T) {
			req := httptest.NewRequest(fiber.MethodGet, "/api/me/permissions", nil)
			req.Header.Set(fiber.HeaderAuthorization, scheme+" "+token)

			resp, err := c.app.Test(req, fiber.TestConfig{Timeout: 10 * time.Second})
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		})
	}
}
