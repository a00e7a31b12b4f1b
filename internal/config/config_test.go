package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseEnv() map[string]string {
	return map[string]string{
		"DATABASE_URL":   "postgres://u:p@localhost:5432/auth?sslmode=disable",
		"JWT_SECRET_KEY": "secret",
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(env.Options{Environment: baseEnv()})
	require.NoError(t, err)

	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, 5, cfg.DBConnectRetries)
	assert.Equal(t, 5*time.Second, cfg.DBRetryInterval)
	assert.Empty(t, cfg.InitialAdminEmail)
}

func TestLoad_Overrides(t *testing.T) {
	e := baseEnv()
	e["JWT_TTL"] = "90m"
	e["ALLOWED_ORIGINS"] = "https://app.example.com, http://localhost:3000,"
	e["INITIAL_ADMIN_EMAIL"] = "  Boss@Example.com "

	cfg, err := load(env.Options{Environment: e})
	require.NoError(t, err)

	assert.Equal(t, 90*time.Minute, cfg.JWTTTL)
	assert.Equal(t, []string{"https://app.example.com", "http://localhost:3000"}, cfg.AllowedOrigins)
	assert.Equal(t, "boss@example.com", cfg.InitialAdminEmail)
}

func TestLoad_MissingSecret(t *testing.T) {
	e := baseEnv()
	delete(e, "JWT_SECRET_KEY")

	_, err := load(env.Options{Environment: e})
	assert.Error(t, err)
}

func TestLoad_RejectsWildcardOrigin(t *testing.T) {
	e := baseEnv()
	e["ALLOWED_ORIGINS"] = "*"

	_, err := load(env.Options{Environment: e})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "explicit origins")
}

func TestLoad_RejectsSchemelessOrigin(t *testing.T) {
	for _, origin := range []string{"app.example.com", "ftp://app.example.com", "https://", "https://app.example.com/login"} {
		t.Run(origin, func(t *testing.T) {
			e := baseEnv()
			e["ALLOWED_ORIGINS"] = "http://localhost:3000," + origin

			_, err := load(env.Options{Environment: e})
			require.Error(t, err)
			assert.Contains(t, err.Error(), "ALLOWED_ORIGINS")
		})
	}
}

func TestLoad_RejectsNonPositiveTTL(t *testing.T) {
	e := baseEnv()
	e["JWT_TTL"] = "0s"

	_, err := load(env.Options{Environment: e})
	assert.Error(t, err)
}

func TestLoad_RejectsBcryptCostOutOfRange(t *testing.T) {
	e := baseEnv()
	e["BCRYPT_COST"] = "2"

	_, err := load(env.Options{Environment: e})
	assert.Error(t, err)
}

func TestLoadClient_Defaults(t *testing.T) {
	cfg, err := loadClient(env.Options{Environment: map[string]string{
		"AUTH_API_URL":    "http://api.local:9000/",
		"AUTH_TOKEN_PATH": "/tmp/x/token",
	}})
	require.NoError(t, err)

	assert.Equal(t, "http://api.local:9000", cfg.APIURL)
	assert.Equal(t, "file", cfg.TokenStore)
	assert.Equal(t, "/tmp/x/token", cfg.TokenPath)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadClient_LogLevel(t *testing.T) {
	cfg, err := loadClient(env.Options{Environment: map[string]string{
		"AUTH_TOKEN_PATH": "/tmp/x/token",
		"LOG_LEVEL":       "debug",
	}})
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadClient_SQLiteDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := loadClient(env.Options{Environment: map[string]string{"AUTH_TOKEN_STORE": "sqlite"}})
	require.NoError(t, err)
	assert.Equal(t, "session.db", filepath.Base(cfg.TokenPath))
}

func TestLoadClient_UnknownStore(t *testing.T) {
	_, err := loadClient(env.Options{Environment: map[string]string{"AUTH_TOKEN_STORE": "keychain"}})
	assert.Error(t, err)
}
