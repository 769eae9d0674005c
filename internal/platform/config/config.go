package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const devJWTSecret = "dev-secret-key-change-in-production"

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
	CatalogFile     string
	AdminToken      string
	Auth            AuthConfig
	Store           StoreConfig
	Redis           RedisConfig
	Postgres        PostgresConfig
}

// AuthConfig covers session tokens and the seeded admin account.
type AuthConfig struct {
	JWTSecret     string
	Issuer        string
	TokenTTL      time.Duration
	CookieName    string
	SecureCookies bool
	AdminEmail    string
	AdminPassword string
}

// StoreBackend selects where accounts, carts and wishlists live.
type StoreBackend string

const (
	BackendMemory   StoreBackend = "memory"
	BackendRedis    StoreBackend = "redis"
	BackendPostgres StoreBackend = "postgres"
)

type StoreConfig struct {
	// Backend holds carts and wishlists.
	Backend StoreBackend
	// UserBackend holds accounts. Redis is not a user backend.
	UserBackend StoreBackend
}

// RedisConfig configures the Redis connection.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type PostgresConfig struct {
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	cfg := Server{
		Addr:            envOr("STOREFRONT_ADDR", ":8080"),
		LogLevel:        envOr("LOG_LEVEL", "info"),
		LogFormat:       envOr("LOG_FORMAT", "json"),
		ShutdownTimeout: envDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		CatalogFile:     os.Getenv("CATALOG_FILE"),
		AdminToken:      os.Getenv("ADMIN_API_TOKEN"),
		Auth: AuthConfig{
			// Use a default for development - should be overridden in production
			JWTSecret:     envOr("JWT_SECRET", devJWTSecret),
			Issuer:        envOr("JWT_ISSUER", "storefront"),
			TokenTTL:      envDuration("TOKEN_TTL", 24*time.Hour),
			CookieName:    envOr("SESSION_COOKIE", "token"),
			SecureCookies: os.Getenv("SECURE_COOKIES") == "true",
			AdminEmail:    os.Getenv("ADMIN_EMAIL"),
			AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		},
		Store: StoreConfig{
			Backend:     StoreBackend(strings.ToLower(envOr("STORE_BACKEND", string(BackendMemory)))),
			UserBackend: StoreBackend(strings.ToLower(envOr("USER_STORE_BACKEND", string(BackendMemory)))),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Postgres: PostgresConfig{
			DSN:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns: envInt("DB_MAX_IDLE_CONNS", 5),
		},
	}
	return cfg, cfg.Validate()
}

// Validate checks backend selections against the configured connections.
func (s Server) Validate() error {
	switch s.Store.Backend {
	case BackendMemory:
	case BackendRedis:
		if s.Redis.URL == "" {
			return fmt.Errorf("STORE_BACKEND=redis requires REDIS_URL")
		}
	case BackendPostgres:
		if s.Postgres.DSN == "" {
			return fmt.Errorf("STORE_BACKEND=postgres requires DATABASE_URL")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", s.Store.Backend)
	}
	switch s.Store.UserBackend {
	case BackendMemory:
	case BackendPostgres:
		if s.Postgres.DSN == "" {
			return fmt.Errorf("USER_STORE_BACKEND=postgres requires DATABASE_URL")
		}
	default:
		return fmt.Errorf("unsupported USER_STORE_BACKEND %q", s.Store.UserBackend)
	}
	if s.Auth.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	return nil
}

// UsesDevSecret reports whether the JWT secret is the built-in development default.
func (s Server) UsesDevSecret() bool {
	return s.Auth.JWTSecret == devJWTSecret
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}
