package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webangle/teardown-cli/internal/config"
)

func TestRouterHealth(t *testing.T) {
	cfg = &config.Config{Server: config.ServerConfig{AllowedOrigins: []string{"*"}}}

	router := newRouter(nil)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestRouterAnalyzeBadBody(t *testing.T) {
	cfg = &config.Config{Server: config.ServerConfig{AllowedOrigins: []string{"*"}}}

	router := newRouter(nil)
	req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader("not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid request body")
}

func TestRouterAnalyzeMissingURL(t *testing.T) {
	cfg = &config.Config{Server: config.ServerConfig{AllowedOrigins: []string{"*"}}}

	router := newRouter(nil)
	req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "url is required")
}

func TestRouterCORSPreflight(t *testing.T) {
	cfg = &config.Config{Server: config.ServerConfig{AllowedOrigins: []string{"https://app.webangle.dev"}}}

	router := newRouter(nil)
	req := httptest.NewRequest(http.MethodOptions, "/analyze", nil)
	req.Header.Set("Origin", "https://app.webangle.dev")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "https://app.webangle.dev", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["analyze"])
	assert.True(t, names["serve"])
	assert.True(t, names["cache"])
}
