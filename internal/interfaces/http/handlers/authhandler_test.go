package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	userdto "bizdesk/internal/application/user/dto"
	userusecases "bizdesk/internal/application/user/usecases"
	"bizdesk/internal/interfaces/http/handlers/testutil"
	"bizdesk/internal/shared/authorization"
	"bizdesk/internal/shared/errors"
	"bizdesk/internal/shared/utils"
)

type mockLoginUC struct {
	got    userusecases.LoginWithPasswordCommand
	result *userdto.LoginResponse
	err    error
}

func (m *mockLoginUC) Execute(ctx context.Context, cmd userusecases.LoginWithPasswordCommand) (*userdto.LoginResponse, error) {
	m.got = cmd
	return m.result, m.err
}

type mockGetUserUC struct {
	got    uint
	result *userdto.UserResponse
	err    error
}

func (m *mockGetUserUC) Execute(ctx context.Context, userID uint) (*userdto.UserResponse, error) {
	m.got = userID
	return m.result, m.err
}

func TestAuthHandler_Login_Success(t *testing.T) {
	loginUC := &mockLoginUC{result: &userdto.LoginResponse{
		AccessToken: "signed.jwt.token",
		TokenType:   "Bearer",
		ExpiresIn:   3600,
		ExpiresAt:   time.Now().Add(time.Hour),
		User:        &userdto.UserResponse{ID: 1, Email: "admin@bizdesk.local", Role: "super_admin"},
	}}
	h := NewAuthHandler(loginUC, &mockGetUserUC{}, false, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodPost, "/auth/login", map[string]string{
		"email":    "admin@bizdesk.local",
		"password": "s3cret",
	})
	h.Login(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin@bizdesk.local", loginUC.got.Email)
	assert.Equal(t, "s3cret", loginUC.got.Password)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, utils.AccessTokenCookie, cookies[0].Name)
	assert.Equal(t, "signed.jwt.token", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestAuthHandler_Login_Failures(t *testing.T) {
	tests := []struct {
		name string
		body any
		err  error
		want int
	}{
		{"missing password", map[string]string{"email": "a@b.c"}, nil, http.StatusBadRequest},
		{"bad email", map[string]string{"email": "nope", "password": "x"}, nil, http.StatusBadRequest},
		{"wrong credentials", map[string]string{"email": "a@b.c", "password": "x"}, errors.NewInvalidCredentialsError(), http.StatusUnauthorized},
		{"inactive account", map[string]string{"email": "a@b.c", "password": "x"}, errors.NewAccountInactiveError(), http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAuthHandler(&mockLoginUC{err: tt.err}, &mockGetUserUC{}, false, testutil.NewMockLogger())

			c, w := testutil.NewTestContext(http.MethodPost, "/auth/login", tt.body)
			h.Login(c)

			assert.Equal(t, tt.want, w.Code)
			assert.Empty(t, w.Result().Cookies())
		})
	}
}

func TestAuthHandler_GetCurrentUser(t *testing.T) {
	t.Run("authenticated", func(t *testing.T) {
		getUC := &mockGetUserUC{result: &userdto.UserResponse{ID: 5, Email: "u@bizdesk.local", Role: "user"}}
		h := NewAuthHandler(&mockLoginUC{}, getUC, false, testutil.NewMockLogger())

		c, w := testutil.NewTestContext(http.MethodGet, "/auth/me", nil)
		testutil.SetAuthContext(c, 5, authorization.RoleUser)
		h.GetCurrentUser(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, uint(5), getUC.got)
	})

	t.Run("anonymous", func(t *testing.T) {
		h := NewAuthHandler(&mockLoginUC{}, &mockGetUserUC{}, false, testutil.NewMockLogger())

		c, w := testutil.NewTestContext(http.MethodGet, "/auth/me", nil)
		h.GetCurrentUser(c)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
