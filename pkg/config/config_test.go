package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "http://localhost:8080", cfg.Backend.BaseURL)
	assert.Equal(t, time.Duration(0), cfg.Backend.Timeout)
	assert.Equal(t, []string{"JSESSIONID"}, cfg.Backend.SessionCookies)
	assert.Equal(t, "google", cfg.Auth.DefaultProvider)
	assert.False(t, cfg.Auth.AutoRedirect)
	assert.Equal(t, "https://mail.google.com/mail/logout", cfg.Auth.ProviderLogoutURL)
	assert.Equal(t, 3*time.Second, cfg.Auth.CallbackErrorDelay)
	assert.Equal(t, StorageBackendCookie, cfg.Storage.Backend)
	assert.False(t, cfg.Audit.Enabled)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("BACKEND_URL", "https://api.example.edu/")
	t.Setenv("BACKEND_TIMEOUT", "4s")
	t.Setenv("SESSION_COOKIE_NAMES", "JSESSIONID, XSRF-TOKEN")
	t.Setenv("AUTH_AUTO_REDIRECT", "true")
	t.Setenv("STORAGE_BACKEND", "REDIS")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, ,http://b.test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.edu", cfg.Backend.BaseURL)
	assert.Equal(t, 4*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, []string{"JSESSIONID", "XSRF-TOKEN"}, cfg.Backend.SessionCookies)
	assert.True(t, cfg.Auth.AutoRedirect)
	assert.Equal(t, StorageBackendRedis, cfg.Storage.Backend)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
}

func TestLoadRejectsUnknownStorage(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "localstorage")

	_, err := Load()
	require.Error(t, err)
}

func TestParseDurationFallback(t *testing.T) {
	assert.Equal(t, time.Minute, parseDuration("", time.Minute))
	assert.Equal(t, time.Minute, parseDuration("soon", time.Minute))
	assert.Equal(t, 2*time.Second, parseDuration("2s", time.Minute))
}
