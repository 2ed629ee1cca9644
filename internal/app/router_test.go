package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bits/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Server: config.ServerConfig{
			Port:          "0",
			CORSOrigins:   []string{"*"},
			ChatRateLimit: 100,
			ChatBurst:     100,
		},
		Database: config.DatabaseConfig{
			Driver: "sqlite",
			Path:   filepath.Join(t.TempDir(), "bits.db"),
		},
		Log:   config.LogConfig{Level: "info", Format: "json"},
		Admin: config.AdminConfig{Password: "admin123"},
		Surge: config.SurgeConfig{WeatherTTL: time.Minute, Weather: "clear", Timezone: "Asia/Baghdad"},
	}
}

func newTestApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()
	gin.SetMode(gin.TestMode)

	a, err := New(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })

	_, err = a.Migrate(context.Background(), false)
	require.NoError(t, err)
	return a
}

func request(t *testing.T, h http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	h := newTestApp(t, testConfig(t)).Router()

	w := request(t, h, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	request(t, h, http.MethodGet, "/v1/zones", nil, nil)
	w = request(t, h, http.MethodGet, "/metrics", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "bits_http_requests_total")
}

func TestRouter_AdminGate(t *testing.T) {
	h := newTestApp(t, testConfig(t)).Router()
	body := map[string]string{"zone": "Karrada", "category": "accident", "severity": "high"}

	w := request(t, h, http.MethodPost, "/v1/admin/incidents", body, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = request(t, h, http.MethodPost, "/v1/admin/incidents", body, map[string]string{"X-Admin-Password": "admin123"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = request(t, h, http.MethodGet, "/v1/incidents/counts", nil, nil)
	assert.JSONEq(t, `{"Karrada":1}`, w.Body.String())
}

func TestRouter_AdminRateLimited(t *testing.T) {
	cfg := testConfig(t)
	cfg.Server.AdminRateLimit = 0.001
	cfg.Server.AdminBurst = 1
	h := newTestApp(t, cfg).Router()

	w := request(t, h, http.MethodDelete, "/v1/admin/incidents/1", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = request(t, h, http.MethodDelete, "/v1/admin/incidents/1", nil, map[string]string{"X-Admin-Password": "admin123"})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	// Public routes are not throttled by the admin limiter.
	w = request(t, h, http.MethodGet, "/v1/incidents", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_QuoteUsesLedger(t *testing.T) {
	a := newTestApp(t, testConfig(t))
	h := a.Router()
	quote := map[string]string{"origin": "Mansour", "destination": "Jadriya"}

	w := request(t, h, http.MethodPost, "/v1/quotes", quote, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var before map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &before))

	request(t, h, http.MethodPost, "/v1/admin/incidents",
		map[string]string{"zone": "Mansour", "category": "road_closure", "severity": "critical"},
		map[string]string{"X-Admin-Password": "admin123"})

	w = request(t, h, http.MethodPost, "/v1/quotes", quote, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var after map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &after))

	fastestBefore := before["fastest"].(map[string]any)["price"].(float64)
	fastestAfter := after["fastest"].(map[string]any)["price"].(float64)
	economicBefore := before["economic"].(map[string]any)["price"].(float64)
	economicAfter := after["economic"].(map[string]any)["price"].(float64)
	assert.Equal(t, fastestBefore, fastestAfter)
	assert.Greater(t, economicAfter, economicBefore)

	var audits int
	require.NoError(t, a.Storage.DB.QueryRow(`SELECT COUNT(*) FROM pricing_history`).Scan(&audits))
	assert.Equal(t, 4, audits)
}

func TestApp_ClockUsesCityTimezone(t *testing.T) {
	a := newTestApp(t, testConfig(t))
	assert.Equal(t, "Asia/Baghdad", a.Clock().Location().String())

	cfg := testConfig(t)
	cfg.Surge.Timezone = "Nowhere/Special"
	_, err := New(context.Background(), cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestRouter_LiveOnlyWithRedis(t *testing.T) {
	h := newTestApp(t, testConfig(t)).Router()
	w := request(t, h, http.MethodGet, "/v1/live", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestApp_WithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(t)
	cfg.Redis = config.RedisConfig{Enabled: true, Addr: mr.Addr()}

	a := newTestApp(t, cfg)
	require.NotNil(t, a.RedisClient)

	seeded, err := a.Migrate(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, 4, seeded)

	// Seeding an already populated ledger is a no-op
	seeded, err = a.Migrate(context.Background(), true)
	require.NoError(t, err)
	assert.Zero(t, seeded)

	// A lost geo index is rebuilt from the ledger
	mr.Del("incidents:locations")
	_, err = a.Migrate(context.Background(), false)
	require.NoError(t, err)
	members, err := mr.ZMembers("incidents:locations")
	require.NoError(t, err)
	assert.Len(t, members, 4)

	h := a.Router()
	headers := map[string]string{"X-Admin-Password": "admin123", "Idempotency-Key": "add-1"}
	body := map[string]string{"zone": "Dora", "category": "construction", "severity": "low"}
	first := request(t, h, http.MethodPost, "/v1/admin/incidents", body, headers)
	second := request(t, h, http.MethodPost, "/v1/admin/incidents", body, headers)
	require.Equal(t, http.StatusCreated, first.Code)
	assert.JSONEq(t, first.Body.String(), second.Body.String())

	w := request(t, h, http.MethodGet, "/v1/incidents", nil, nil)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 5)

	assert.True(t, mr.Exists("incidents:locations"))
}

func TestWeatherProvider(t *testing.T) {
	p, err := weatherProvider(config.SurgeConfig{Weather: "sandstorm"})
	require.NoError(t, err)
	assert.Equal(t, "sandstorm", string(p.Sample()))

	_, err = weatherProvider(config.SurgeConfig{Weather: "snow"})
	assert.Error(t, err)

	p, err = weatherProvider(config.SurgeConfig{})
	require.NoError(t, err)
	assert.NotNil(t, p)
}

func TestCollectionFor(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "incidents", collectionFor(goredis.NewCmd(ctx, "geoadd", "incidents:locations", 44.3, 33.3, "1")))
	assert.Equal(t, "lock", collectionFor(goredis.NewCmd(ctx, "evalsha", "0123abcd", 1, "lock:incident-ledger", "token")))
	assert.Equal(t, "redis", collectionFor(goredis.NewCmd(ctx, "ping")))
}
