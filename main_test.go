package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearCredentials(t *testing.T) {
	t.Helper()
	for _, k := range []string{"GEMINI_API_KEY", "GOOGLE_CLOUD_API_KEY", "SEARCH_ENGINE_ID"} {
		t.Setenv(k, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearCredentials(t)

	cfg, err := loadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
	assert.Equal(t, "gemini-2.5-flash", cfg.Gemini.VisionModel)
	assert.Equal(t, 5*time.Second, cfg.Gemini.Timeout)
	assert.Equal(t, 30*time.Minute, cfg.Search.CacheTTL)
	assert.Equal(t, uint32(5), cfg.Breaker.FailureThreshold)
	assert.Equal(t, 3, cfg.Ambassador.MaxLiveTargets)
	assert.Equal(t, 20, cfg.Store.HistoryLimit)
	assert.False(t, cfg.Gemini.Enabled())
	assert.False(t, cfg.Search.Enabled())
}

func TestLoadConfigOverrides(t *testing.T) {
	clearCredentials(t)
	t.Setenv("GEMINI_API_KEY", "key")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("REDIS_URL", "redis://cache:6379/1")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := loadConfig()
	require.NoError(t, err)

	assert.True(t, cfg.Gemini.Enabled())
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, "redis://cache:6379/1", cfg.Redis.URL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.CORSOrigins)
}

func TestBuildHandlerWithoutCredentials(t *testing.T) {
	clearCredentials(t)
	cfg, err := loadConfig()
	require.NoError(t, err)
	cfg.HTTP.RateLimitDisabled = true

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	h, err := buildHandler(context.Background(), cfg, rdb)
	require.NoError(t, err)

	serve := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, serve(http.MethodGet, "/healthz", "").Code)

	rec := serve(http.MethodPost, "/api/v1/products/p-1/analysis", `{"name":"Kettle","price":"49.99"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, mr.Exists("product:p-1:demand"))
	// synthetic quotes are never cached
	assert.False(t, mr.Exists("competitors:kettle"))

	rec = serve(http.MethodGet, "/api/v1/products/p-1/analysis", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(http.MethodPost, "/api/v1/moderation/score", `{"text":"nice product"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"degraded":true`)

	// more targets than MaxLiveTargets skips scraping
	rec = serve(http.MethodGet, "/api/v1/ambassadors?query=cooking+recipes&targets=a,b,c,d", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "@gordonramsayofficial")
}
