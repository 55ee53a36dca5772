package utils

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizdesk/internal/shared/constants"
	"bizdesk/internal/shared/errors"
)

func newContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/modules", nil)
	return c, w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestErrorResponseWithError_AppError(t *testing.T) {
	c, w := newContext()
	c.Set(constants.ContextKeyRequestID, "req-1")

	ErrorResponseWithError(c, fmt.Errorf("wrapped: %w", errors.NewForbiddenError("access denied", errors.DetailBlocked)))

	assert.Equal(t, http.StatusForbidden, w.Code)
	resp := decode(t, w)
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, string(errors.ErrorTypeForbidden), resp.Error.Type)
	assert.Equal(t, errors.DetailBlocked, resp.Error.Details)
	assert.Equal(t, "req-1", resp.Error.RequestID)
}

func TestErrorResponseWithError_HidesUnknownErrors(t *testing.T) {
	c, w := newContext()

	ErrorResponseWithError(c, fmt.Errorf("dial tcp 10.0.0.3:3306: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decode(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, string(errors.ErrorTypeInternal), resp.Error.Type)
	assert.NotContains(t, w.Body.String(), "10.0.0.3")
	assert.Empty(t, resp.Error.RequestID)
}

func TestSuccessAndCreatedResponse(t *testing.T) {
	c, w := newContext()
	CreatedResponse(c, map[string]string{"id": "mod_abc"}, "Module created successfully")

	assert.Equal(t, http.StatusCreated, w.Code)
	resp := decode(t, w)
	assert.True(t, resp.Success)
	assert.Equal(t, "Module created successfully", resp.Message)
	assert.Equal(t, map[string]any{"id": "mod_abc"}, resp.Data)
}
