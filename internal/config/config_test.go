package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("POSTGRESQL_HOST", "")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.False(t, cfg.IsProduction())
	assert.False(t, cfg.MirrorEnabled())
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
	assert.NotEmpty(t, cfg.JWTSecret)
	assert.NotEqual(t, cfg.JWTSecret, cfg.RefreshSecret)
	assert.Contains(t, cfg.DatabaseURL, "postgres://")
	assert.Equal(t, 10, cfg.MirrorMaxAttempts)
}

func TestFromEnv_PostgresParts(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("POSTGRESQL_HOST", "db")
	t.Setenv("POSTGRESQL_PORT", "6432")
	t.Setenv("POSTGRESQL_USER", "app")
	t.Setenv("POSTGRESQL_PASSWORD", "p@ss/word")
	t.Setenv("POSTGRESQL_DBNAME", "market")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "postgres://app:p%40ss%2Fword@db:6432/market?sslmode=disable", cfg.DatabaseURL)
}

func TestFromEnv_ProductionRequiresSecrets(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "short")
	t.Setenv("JWT_REFRESH_SECRET", strings.Repeat("r", 32))
	t.Setenv("ALLOWED_ORIGINS", "https://example.com")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")

	t.Setenv("JWT_SECRET", strings.Repeat("a", 32))
	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, []string{"https://example.com"}, cfg.AllowedOrigins)
}

func TestFromEnv_ProductionRequiresOrigins(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", strings.Repeat("a", 32))
	t.Setenv("JWT_REFRESH_SECRET", strings.Repeat("r", 32))
	t.Setenv("ALLOWED_ORIGINS", "")

	_, err := FromEnv()
	assert.Error(t, err)
}

func TestFromEnv_Mirror(t *testing.T) {
	t.Setenv("MIRROR_BASE_URL", "https://mirror.example.com/")
	t.Setenv("MIRROR_POLL_INTERVAL", "30s")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.True(t, cfg.MirrorEnabled())
	assert.Equal(t, "https://mirror.example.com", cfg.MirrorBaseURL)
	assert.Equal(t, 30*time.Second, cfg.MirrorPollInterval)
}
