package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, ":8080", cfg.Server.Addr())
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 1.0, cfg.Server.AdminRateLimit)
	assert.Equal(t, 10, cfg.Server.AdminBurst)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "bits.db", cfg.Database.Path)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.False(t, cfg.NewRelic.Enabled)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "admin123", cfg.Admin.Password)
	assert.Equal(t, 5*time.Minute, cfg.Surge.WeatherTTL)
	assert.Empty(t, cfg.Surge.Weather)
	assert.Equal(t, "Asia/Baghdad", cfg.Surge.Timezone)
	assert.Empty(t, cfg.Zones.Path)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
server:
  port: "9090"
database:
  driver: postgres
  dbname: traffic
log:
  level: debug
  format: console
surge:
  weather_ttl: 30s
  weather: heavy_rain
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bits.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "traffic", cfg.Database.DBName)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 30*time.Second, cfg.Surge.WeatherTTL)
	assert.Equal(t, "heavy_rain", cfg.Surge.Weather)
	// Defaults still apply for unset values
	assert.Equal(t, "localhost", cfg.Database.Host)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "bits.yaml"), []byte("server:\n  port: \"9090\"\n"), 0644))
	t.Setenv("BITS_SERVER_PORT", "7070")
	t.Setenv("BITS_REDIS_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.Server.Port)
	assert.True(t, cfg.Redis.Enabled)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	chdirTemp(t)
	t.Setenv("BITS_DATABASE_DRIVER", "mysql")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsUnknownTimezone(t *testing.T) {
	chdirTemp(t)
	t.Setenv("BITS_SURGE_TIMEZONE", "Mars/Olympus")

	_, err := Load()
	assert.Error(t, err)
}

func TestSurgeLocation(t *testing.T) {
	loc, err := SurgeConfig{Timezone: "Asia/Baghdad"}.Location()
	require.NoError(t, err)

	noon := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC).In(loc)
	assert.Equal(t, 12, noon.Hour())

	loc, err = SurgeConfig{}.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestInitLogger(t *testing.T) {
	logger, err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.Same(t, logger, zap.L())

	_, err = InitLogger(LogConfig{Level: "loud", Format: "json"})
	assert.Error(t, err)
}
