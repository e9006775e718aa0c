package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/eventforge")
	t.Setenv("JWT_SECRET", "test-secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "0.0.0.0", cfg.Server.Host)
	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, 24*time.Hour, cfg.Auth.JWTExpiry)
	require.Equal(t, "eventforge", cfg.Auth.Issuer)
	require.Equal(t, 10, cfg.RateLimit.LoginPerMinute)
	require.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "test-secret")

	_, err := Load("")
	require.ErrorContains(t, err, "DATABASE_URL")
}

func TestLoad_RequiresJWTSecret(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/eventforge")
	t.Setenv("JWT_SECRET", "")

	_, err := Load("")
	require.ErrorContains(t, err, "JWT_SECRET")
}

func TestLoad_EnvOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("JWT_EXPIRY_HOURS", "2")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("ADMIN_USERNAME", "root")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, 2*time.Hour, cfg.Auth.JWTExpiry)
	require.Equal(t, "debug", cfg.Logging.Level)
	require.Equal(t, "root", cfg.AdminBootstrap.Username)
}

func TestLoad_YAMLFileWithEnvOverride(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SERVER_PORT", "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 7070
logging:
  format: console
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 7070, cfg.Server.Port)
	require.Equal(t, "console", cfg.Logging.Format)

	// Env still wins over file values.
	t.Setenv("SERVER_PORT", "6060")
	cfg, err = Load(path)
	require.NoError(t, err)
	require.Equal(t, 6060, cfg.Server.Port)
}

func TestLoad_MissingFile(t *testing.T) {
	setRequiredEnv(t)

	_, err := Load("/nonexistent/config.yaml")
	require.Error(t, err)
}
