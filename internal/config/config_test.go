package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/practice-booking/internal/utils"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("APP_ENV", "test")
	t.Setenv("APP_PORT", "8080")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("ADMIN_EMAIL", " Admin@Example.com ")
	t.Setenv("ADMIN_PASSWORD", "hunter2")
	t.Setenv("ADMIN_PASSWORD_HASH", "")
	t.Setenv("BCRYPT_COST", "4")
	t.Setenv("DB_DRIVER", "sqlite3")
	t.Setenv("DB_PATH", ":memory:")
	t.Setenv("APP_TIMEZONE", "UTC")
}

func TestLoad(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "admin@example.com", cfg.AdminEmail)
	assert.Equal(t, DriverSQLite, cfg.DB.Driver)
	assert.Equal(t, ":memory:", cfg.DB.Path)
	assert.Equal(t, 8*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "contact.submitted", cfg.Broker.Queue)
	assert.Equal(t, time.UTC, cfg.Location)
	assert.True(t, utils.VerifyPassword(cfg.AdminPasswordHash, "hunter2"))
	assert.False(t, cfg.IsProduction())
}

func TestLoadMissing(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("APP_PORT", "")
	t.Setenv("DB_PATH", "")
	t.Setenv("ADMIN_PASSWORD", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "APP_PORT")
	assert.Contains(t, err.Error(), "DB_PATH")
	assert.Contains(t, err.Error(), "ADMIN_PASSWORD_HASH or ADMIN_PASSWORD")
}

func TestLoadMySQLRequiresConnectionVars(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("DB_DRIVER", "mysql")
	t.Setenv("DB_USER", "")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "3306")
	t.Setenv("DB_NAME", "practice")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_USER")
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("DB_DRIVER", "mongodb")

	_, err := Load()
	assert.ErrorContains(t, err, "unsupported DB_DRIVER")
}

func TestLoadRejectsBadTimezone(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("APP_TIMEZONE", "Mars/Olympus")

	_, err := Load()
	assert.ErrorContains(t, err, "APP_TIMEZONE")
}

func TestLoadRateLimitConfig(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	cfg := LoadRateLimitConfig()
	assert.Equal(t, 1, cfg.Capacity)
	assert.Equal(t, 2*time.Second, cfg.RefillInterval)
	assert.Equal(t, 10*time.Second, cfg.TTL)
	assert.Equal(t, "ip_route", cfg.KeyStrategy)
}

func TestLoadCacheConfig(t *testing.T) {
	t.Setenv("CACHE_METHODS", "get, head")
	t.Setenv("CACHE_ENABLED", "off")

	cfg := LoadCacheConfig()
	assert.False(t, cfg.Enabled)
	assert.True(t, cfg.Methods["GET"])
	assert.True(t, cfg.Methods["HEAD"])
	assert.Equal(t, "availability", cfg.Prefix)
}

func TestSchedule(t *testing.T) {
	t.Run("Default", func(t *testing.T) {
		tpl, err := LoadSchedule("")
		require.NoError(t, err)
		assert.Equal(t, 14, tpl.HorizonDays)
		require.Len(t, tpl.Times, 20)
		assert.Equal(t, "09:00-09:30", tpl.Times[0])
		assert.Equal(t, "18:30-19:00", tpl.Times[19])
	})

	t.Run("File", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "schedule.yaml")
		content := "horizon_days: 3\ntimes:\n  - \"10:00-11:00\"\n  - \"11:00-12:00\"\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		tpl, err := LoadSchedule(path)
		require.NoError(t, err)
		assert.Equal(t, 3, tpl.HorizonDays)
		assert.Equal(t, []string{"10:00-11:00", "11:00-12:00"}, tpl.Times)

		now := time.Date(2025, 12, 31, 23, 0, 0, 0, time.UTC)
		assert.Equal(t, []string{"2025-12-31", "2026-01-01", "2026-01-02"}, tpl.Dates(now, time.UTC))
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, err := LoadSchedule(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}
