package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizdesk/internal/interfaces/http/handlers/testutil"
)

func TestHealthHandler(t *testing.T) {
	up := PingFunc(func(context.Context) error { return nil })
	down := PingFunc(func(context.Context) error { return assert.AnError })

	t.Run("all up", func(t *testing.T) {
		h := NewHealthHandler(map[string]Pinger{"database": up, "redis": up}, testutil.NewMockLogger())
		c, w := testutil.NewTestContext(http.MethodGet, "/health", nil)

		h.Health(c)

		require.Equal(t, http.StatusOK, w.Code)
		var data HealthResponse
		require.NoError(t, json.Unmarshal(testutil.DecodeBody(t, w.Body.Bytes()).Data, &data))
		assert.Equal(t, "ok", data.Status)
		assert.Equal(t, map[string]string{"database": "up", "redis": "up"}, data.Checks)
	})

	t.Run("one down", func(t *testing.T) {
		h := NewHealthHandler(map[string]Pinger{"database": up, "redis": down}, testutil.NewMockLogger())
		c, w := testutil.NewTestContext(http.MethodGet, "/health", nil)

		h.Health(c)

		require.Equal(t, http.StatusServiceUnavailable, w.Code)
		resp := testutil.DecodeBody(t, w.Body.Bytes())
		assert.False(t, resp.Success)
		var data HealthResponse
		require.NoError(t, json.Unmarshal(resp.Data, &data))
		assert.Equal(t, "degraded", data.Status)
		assert.Equal(t, "down", data.Checks["redis"])
	})
}

func TestERPHandler_Handle(t *testing.T) {
	h := NewERPHandler()
	c, w := testutil.NewTestContext(http.MethodPut, "/erp/invoices/12", nil)

	h.Handle(c)

	require.Equal(t, http.StatusOK, w.Code)
	var data ERPStubResponse
	require.NoError(t, json.Unmarshal(testutil.DecodeBody(t, w.Body.Bytes()).Data, &data))
	assert.Equal(t, ERPStubResponse{Method: http.MethodPut, Path: "/erp/invoices/12"}, data)
}
