package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	accountService "storefront/internal/account/service"
	accountStore "storefront/internal/account/store"
	authService "storefront/internal/auth/service"
	"storefront/internal/auth/store/revocation"
	userStore "storefront/internal/auth/store/user"
	"storefront/internal/catalog"
	jwttoken "storefront/internal/jwt_token"
	"storefront/internal/platform/config"
	"storefront/internal/platform/httpserver"
	"storefront/internal/platform/logger"
	"storefront/internal/platform/metrics"
	"storefront/internal/platform/postgres"
	"storefront/internal/platform/redis"
	httptransport "storefront/internal/transport/http"
	authmw "storefront/pkg/platform/middleware/auth"
	"storefront/pkg/platform/middleware/routeguard"
)

// main wires the storefront account API. Business logic lives in the
// internal service packages.
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "storefront:", err)
		os.Exit(1)
	}
}

type revocationList interface {
	authService.RevocationList
	authmw.TokenRevocationChecker
}

type backends struct {
	redis *redis.Client
	db    *sql.DB
}

func (b backends) health(ctx context.Context) error {
	var errs []error
	if b.redis != nil {
		errs = append(errs, b.redis.Health(ctx))
	}
	if b.db != nil {
		errs = append(errs, b.db.PingContext(ctx))
	}
	return errors.Join(errs...)
}

func (b backends) close() {
	if b.redis != nil {
		_ = b.redis.Close()
	}
	if b.db != nil {
		_ = b.db.Close()
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	if cfg.UsesDevSecret() {
		log.Warn("JWT_SECRET not set, using the development secret")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cat := catalog.NewInMemory()
	if cfg.CatalogFile != "" {
		err = cat.LoadFile(cfg.CatalogFile)
	} else {
		err = cat.LoadDefault()
	}
	if err != nil {
		return err
	}

	b, err := openBackends(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer b.close()

	var accounts accountStore.Store
	switch cfg.Store.Backend {
	case config.BackendRedis:
		accounts = accountStore.NewRedis(b.redis.Client)
	case config.BackendPostgres:
		accounts = accountStore.NewPostgres(b.db)
	default:
		accounts = accountStore.NewInMemory()
	}

	var users authService.UserStore = userStore.NewInMemoryUserStore()
	if cfg.Store.UserBackend == config.BackendPostgres {
		users = userStore.NewPostgresUserStore(b.db)
	}

	var trl revocationList
	switch {
	case b.redis != nil:
		trl = revocation.NewRedisTRL(b.redis.Client)
	case b.db != nil:
		trl = revocation.NewPostgresTRL(b.db, time.Now)
	default:
		trl = revocation.NewInMemoryTRL(time.Now)
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	jwt := jwttoken.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	auth := authService.New(users, jwt, trl, cfg.Auth.TokenTTL,
		authService.WithLogger(log),
		authService.WithMetrics(m),
	)
	if err := auth.SeedAdmin(ctx, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword, ""); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:     log,
		Auth:       auth,
		Account:    accountService.New(accounts, cat, log, m),
		Catalog:    cat,
		Validator:  jwttoken.NewJWTServiceAdapter(jwt),
		Revocation: trl,
		Cookie: httptransport.CookieConfig{
			Name:   cfg.Auth.CookieName,
			Secure: cfg.Auth.SecureCookies,
		},
		Metrics:    promhttp.Handler(),
		AdminToken: cfg.AdminToken,
		OnGuardDecision: func(d routeguard.Decision) {
			m.ObserveRouteGuardDecision(string(d))
		},
		Health: b.health,
	})

	log.Info("starting storefront",
		"addr", cfg.Addr,
		"store_backend", cfg.Store.Backend,
		"user_backend", cfg.Store.UserBackend,
	)
	return httpserver.Run(ctx, httpserver.New(cfg.Addr, router), cfg.ShutdownTimeout, log)
}

func openBackends(ctx context.Context, cfg config.Server, log *slog.Logger) (backends, error) {
	var b backends
	rc, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return b, err
	}
	b.redis = rc

	db, err := postgres.Open(ctx, cfg.Postgres)
	if err != nil {
		b.close()
		return backends{}, err
	}
	b.db = db
	if db != nil {
		if err := postgres.Migrate(ctx, db, userStore.Schema, accountStore.Schema, revocation.Schema); err != nil {
			b.close()
			return backends{}, err
		}
		log.Info("postgres schema applied")
	}
	return b, nil
}
