package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8000", cfg.HTTP.Addr())
	assert.Equal(t, DefaultDatabaseURL, cfg.Database.URL)
	assert.EqualValues(t, 10, cfg.Database.MaxConns)
	assert.EqualValues(t, 0, cfg.Database.MinConns)
	assert.Equal(t, 5*time.Second, cfg.Database.AcquireTimeout)
	assert.False(t, cfg.Database.AutoMigrate)
	assert.Equal(t, 10*time.Second, cfg.Global.ShutdownTimeout)
	assert.Equal(t, slog.LevelInfo, cfg.Global.LogLevel)
	assert.Equal(t, "*", cfg.HTTP.CORSOrigin)
	assert.EqualValues(t, 1<<20, cfg.HTTP.MaxBodyBytes)
	assert.Zero(t, cfg.HTTP.RateLimit)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/cafe")
	t.Setenv("POOL_MAX_CONNS", "3")
	t.Setenv("POOL_MIN_CONNS", "1")
	t.Setenv("POOL_ACQUIRE_TIMEOUT", "250ms")
	t.Setenv("AUTO_MIGRATE", "true")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CORS_ALLOWED_ORIGIN", "https://caja.example")
	t.Setenv("RATE_LIMIT_RPS", "20")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, "postgres://u:p@db:5432/cafe", cfg.Database.URL)
	assert.EqualValues(t, 3, cfg.Database.MaxConns)
	assert.EqualValues(t, 1, cfg.Database.MinConns)
	assert.Equal(t, 250*time.Millisecond, cfg.Database.AcquireTimeout)
	assert.True(t, cfg.Database.AutoMigrate)
	assert.Equal(t, slog.LevelDebug, cfg.Global.LogLevel)
	assert.Equal(t, "https://caja.example", cfg.HTTP.CORSOrigin)
	assert.Equal(t, 20, cfg.HTTP.RateLimit)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cafeteria.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: 7000\npool_max_conns: 4\n"), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("POOL_MAX_CONNS", "6")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.HTTP.Port)
	// env wins over file
	assert.EqualValues(t, 6, cfg.Database.MaxConns)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]map[string]string{
		"zero max conns":     {"POOL_MAX_CONNS": "0"},
		"min above max":      {"POOL_MAX_CONNS": "2", "POOL_MIN_CONNS": "5"},
		"negative timeout":   {"POOL_ACQUIRE_TIMEOUT": "-1s"},
		"bad log level":      {"LOG_LEVEL": "loud"},
		"empty database url": {"DATABASE_URL": " "},
		"zero body limit":    {"MAX_BODY_BYTES": "0"},
		"negative rate":      {"RATE_LIMIT_RPS": "-1"},
	}

	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
