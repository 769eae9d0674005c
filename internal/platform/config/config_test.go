package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"STOREFRONT_ADDR", "JWT_SECRET", "TOKEN_TTL", "STORE_BACKEND", "USER_STORE_BACKEND", "SESSION_COOKIE"} {
		t.Setenv(key, "")
	}

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "token", cfg.Auth.CookieName)
	assert.Equal(t, BackendMemory, cfg.Store.Backend)
	assert.True(t, cfg.UsesDevSecret())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("STOREFRONT_ADDR", ":9090")
	t.Setenv("JWT_SECRET", "real-secret")
	t.Setenv("TOKEN_TTL", "2h")
	t.Setenv("STORE_BACKEND", "Redis")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, BackendRedis, cfg.Store.Backend)
	assert.False(t, cfg.UsesDevSecret())
}

func TestValidate(t *testing.T) {
	t.Run("redis backend needs url", func(t *testing.T) {
		cfg := Server{Store: StoreConfig{Backend: BackendRedis, UserBackend: BackendMemory}, Auth: AuthConfig{TokenTTL: time.Hour}}
		assert.Error(t, cfg.Validate())
	})

	t.Run("redis is not a user backend", func(t *testing.T) {
		cfg := Server{
			Store: StoreConfig{Backend: BackendMemory, UserBackend: BackendRedis},
			Redis: RedisConfig{URL: "redis://x"},
			Auth:  AuthConfig{TokenTTL: time.Hour},
		}
		assert.Error(t, cfg.Validate())
	})

	t.Run("unknown backend rejected", func(t *testing.T) {
		cfg := Server{Store: StoreConfig{Backend: "mongo", UserBackend: BackendMemory}, Auth: AuthConfig{TokenTTL: time.Hour}}
		assert.Error(t, cfg.Validate())
	})
}
