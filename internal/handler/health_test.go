package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/fanblog/internal/handler"
)

// TestGetHealth_returns200WithOKStatus verifies that GET /healthz returns
// HTTP 200 and a JSON body of {"status":"ok"}.
func TestGetHealth_returns200WithOKStatus(t *testing.T) {
	httpHandler := handler.Handler(handler.NewHealthHandler())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	httpHandler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body handler.HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Equal(t, "ok", body.Status)
}

func TestGetOpenAPISpec_ServesYAML(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil)
	rec := httptest.NewRecorder()

	handler.Handler(handler.NewHealthHandler()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "yaml")
	assert.Contains(t, rec.Body.String(), "openapi: 3.0.3")
	assert.Contains(t, rec.Body.String(), "/categories/availability")
}
