package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sumire/phlink/internal/domain"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("PRODUCTHUNT_CLIENT_ID", "client-id")
	t.Setenv("PRODUCTHUNT_CLIENT_SECRET", "client-secret")
	t.Setenv("PRODUCTHUNT_REDIRECT_URI", "https://example.com/auth/producthunt/callback")
	t.Setenv("TELEGRAM_BOT_TOKEN", "bot-token")
	t.Setenv("JWT_SECRET", "jwt-secret")
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/phlink")
}

func clearRequiredEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "STORAGE_BACKEND", "DATABASE_URL", "SQLITE_PATH",
		"PRODUCTHUNT_CLIENT_ID", "PRODUCTHUNT_CLIENT_SECRET", "PRODUCTHUNT_REDIRECT_URI",
		"TELEGRAM_BOT_TOKEN", "JWT_SECRET",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad(t *testing.T) {
	clearRequiredEnv(t)
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, BackendPostgres, cfg.StorageBackend)
	assert.Equal(t, "client-id", cfg.ProductHuntClientID)
	assert.Equal(t, "https://api.producthunt.com/v2/oauth/token", cfg.ProductHuntTokenURL)
	assert.Equal(t, "https://api.telegram.org", cfg.TelegramAPIBase)
}

func TestLoadReportsAllMissingKeys(t *testing.T) {
	clearRequiredEnv(t)

	_, err := Load()
	require.Error(t, err)

	var configErr *domain.ConfigError
	require.True(t, errors.As(err, &configErr))
	assert.ElementsMatch(t, []string{
		"PRODUCTHUNT_CLIENT_ID",
		"PRODUCTHUNT_CLIENT_SECRET",
		"PRODUCTHUNT_REDIRECT_URI",
		"TELEGRAM_BOT_TOKEN",
		"JWT_SECRET",
		"DATABASE_URL",
	}, configErr.Missing)
}

func TestLoadSQLiteBackendRequiresPath(t *testing.T) {
	clearRequiredEnv(t)
	setRequiredEnv(t)
	t.Setenv("STORAGE_BACKEND", BackendSQLite)
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	require.Error(t, err)

	var configErr *domain.ConfigError
	require.True(t, errors.As(err, &configErr))
	assert.Equal(t, []string{"SQLITE_PATH"}, configErr.Missing)

	t.Setenv("SQLITE_PATH", "/tmp/phlink.db")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, BackendSQLite, cfg.StorageBackend)
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	clearRequiredEnv(t)
	setRequiredEnv(t)
	t.Setenv("STORAGE_BACKEND", "dynamo")

	_, err := Load()
	require.Error(t, err)
}
