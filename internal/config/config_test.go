package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jrsteele09/go-auth-client/internal/config"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	for _, v := range []string{"ENV", "LOG_LEVEL", "API_BASE_URL", "REQUEST_TIMEOUT", "CREDENTIAL_STORE", "DEV_PORT", "DEV_ACCESS_TTL"} {
		t.Setenv(v, "")
	}
	cfg := config.New()

	require.Equal(t, "DEV", cfg.GetEnv())
	require.True(t, cfg.IsDev())
	require.Equal(t, "info", cfg.GetLogLevel())
	require.Equal(t, "http://localhost:8080", cfg.GetAPIBaseURL())
	require.Equal(t, 10*time.Second, cfg.GetRequestTimeout())
	require.Equal(t, "/auth/refresh", cfg.GetRefreshPath())
	require.Equal(t, config.StoreBolt, cfg.GetStoreKind())
	require.Equal(t, ":8080", cfg.GetDevPort())
	require.Equal(t, 30*time.Second, cfg.GetDevAccessTokenTTL())
}

func TestOverrides(t *testing.T) {
	t.Setenv("ENV", "prod")
	t.Setenv("REQUEST_TIMEOUT", "3s")
	t.Setenv("REFRESH_TIMEOUT", "20")
	t.Setenv("DEV_ACCESS_TTL", "not-a-duration")
	t.Setenv("CREDENTIAL_STORE", "Redis")
	t.Setenv("DEV_PORT", ":9000")
	cfg := config.New()

	require.Equal(t, "PROD", cfg.GetEnv())
	require.False(t, cfg.IsDev())
	require.Equal(t, 3*time.Second, cfg.GetRequestTimeout())
	require.Equal(t, 20*time.Second, cfg.GetRefreshTimeout())
	require.Equal(t, 30*time.Second, cfg.GetDevAccessTokenTTL())
	require.Equal(t, config.StoreRedis, cfg.GetStoreKind())
	require.Equal(t, ":9000", cfg.GetDevPort())
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("API_BASE_URL=https://api.example.com\nLOGIN_PATH=/session\n"), 0o600))

	t.Setenv("API_BASE_URL", "")
	t.Setenv("LOGIN_PATH", "/already-set")
	require.NoError(t, os.Unsetenv("API_BASE_URL"))

	config.LoadDotEnv(path, filepath.Join(dir, "missing.env"))
	cfg := config.New()

	require.Equal(t, "https://api.example.com", cfg.GetAPIBaseURL())
	require.Equal(t, "/already-set", cfg.GetLoginPath())
}
