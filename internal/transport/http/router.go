package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"storefront/pkg/platform/httputil"
	"storefront/pkg/platform/middleware/admin"
	authmw "storefront/pkg/platform/middleware/auth"
	"storefront/pkg/platform/middleware/device"
	"storefront/pkg/platform/middleware/metadata"
	request "storefront/pkg/platform/middleware/request"
	"storefront/pkg/platform/middleware/requesttime"
	"storefront/pkg/platform/middleware/routeguard"
)

// Deps is everything the router wires together.
type Deps struct {
	Logger     *slog.Logger
	Auth       AuthService
	Account    AccountService
	Catalog    Catalog
	Validator  authmw.JWTValidator
	Revocation authmw.TokenRevocationChecker
	Cookie     CookieConfig
	// Metrics serves /metrics; nil leaves the route unmounted.
	Metrics    http.Handler
	AdminToken string
	// OnGuardDecision observes route guard outcomes.
	OnGuardDecision func(routeguard.Decision)
	// Health reports backend reachability for /health.
	Health func(ctx context.Context) error
}

// NewRouter wires all public endpoints.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(device.Middleware(device.Config{Secure: d.Cookie.Secure}))
	r.Use(request.Logger(d.Logger))
	r.Use(middleware.Recoverer)
	r.Use(routeguard.New(routeguard.Config{
		Validator:    d.Validator,
		CookieName:   d.Cookie.Name,
		SecureCookie: d.Cookie.Secure,
		Logger:       d.Logger,
		OnDecision:   d.OnGuardDecision,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if d.Health != nil {
			if err := d.Health(r.Context()); err != nil {
				d.Logger.WarnContext(r.Context(), "health check failed", "error", err)
				httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if d.Metrics != nil {
		r.With(admin.RequireAdminToken(d.AdminToken, d.Logger)).Handle("/metrics", d.Metrics)
	}

	PagesHandler{}.Register(r)
	NewCatalogHandler(d.Catalog).Register(r)

	authHandler := NewAuthHandler(d.Auth, d.Logger, d.Cookie)
	authHandler.Register(r)

	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireAuth(d.Validator, d.Revocation, d.Logger))
		authHandler.RegisterAuthenticated(r)
		NewAccountHandler(d.Account, d.Logger).Register(r)
	})

	return r
}
