// Package routeguard protects the account pages at the edge. It is stateless:
// each request is decided from the session cookie alone.
package routeguard

import (
	"log/slog"
	"net/http"
	"strings"

	id "storefront/pkg/domain"
	"storefront/pkg/platform/middleware/auth"
	request "storefront/pkg/platform/middleware/request"
	"storefront/pkg/requestcontext"
)

const (
	DefaultCookieName  = "token"
	DefaultLoginPath   = "/login"
	DefaultAdminPrefix = "/account/admin"
	DefaultUserPrefix  = "/account/user"
)

// Decision is the outcome for one request.
type Decision string

const (
	DecisionUnprotected   Decision = "unprotected"
	DecisionAllow         Decision = "allow"
	DecisionNoToken       Decision = "no_token"
	DecisionInvalidToken  Decision = "invalid_token"
	DecisionRedirectUser  Decision = "redirect_user_home"
	DecisionRedirectAdmin Decision = "redirect_admin_home"
)

type Config struct {
	Validator   auth.JWTValidator
	CookieName  string
	LoginPath   string
	AdminPrefix string
	UserPrefix  string
	// SecureCookie marks the purge cookie Secure.
	SecureCookie bool
	Logger       *slog.Logger
	// OnDecision observes every decision, e.g. for metrics.
	OnDecision func(Decision)
}

func (c *Config) setDefaults() {
	if c.CookieName == "" {
		c.CookieName = DefaultCookieName
	}
	if c.LoginPath == "" {
		c.LoginPath = DefaultLoginPath
	}
	if c.AdminPrefix == "" {
		c.AdminPrefix = DefaultAdminPrefix
	}
	if c.UserPrefix == "" {
		c.UserPrefix = DefaultUserPrefix
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

type area int

const (
	areaNone area = iota
	areaAdmin
	areaUser
)

// New returns the guard middleware.
func New(cfg Config) func(http.Handler) http.Handler {
	cfg.setDefaults()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision := cfg.decide(w, r, next)
			if cfg.OnDecision != nil {
				cfg.OnDecision(decision)
			}
		})
	}
}

func (c *Config) decide(w http.ResponseWriter, r *http.Request, next http.Handler) Decision {
	target := c.areaOf(r.URL.Path)
	if target == areaNone {
		next.ServeHTTP(w, r)
		return DecisionUnprotected
	}

	ctx := r.Context()
	cookie, err := r.Cookie(c.CookieName)
	if err != nil || cookie.Value == "" {
		http.Redirect(w, r, c.LoginPath, http.StatusFound)
		return DecisionNoToken
	}

	claims, ok := c.verify(cookie.Value)
	if !ok {
		c.Logger.InfoContext(ctx, "route guard rejected session cookie",
			"path", r.URL.Path,
			"request_id", request.GetRequestID(ctx),
		)
		http.SetCookie(w, &http.Cookie{
			Name:     c.CookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   c.SecureCookie,
			SameSite: http.SameSiteLaxMode,
		})
		http.Redirect(w, r, c.LoginPath, http.StatusFound)
		return DecisionInvalidToken
	}

	switch {
	case target == areaAdmin && claims.Role == id.RoleUser:
		http.Redirect(w, r, c.UserPrefix, http.StatusFound)
		return DecisionRedirectUser
	case target == areaUser && claims.Role == id.RoleAdmin:
		http.Redirect(w, r, c.AdminPrefix, http.StatusFound)
		return DecisionRedirectAdmin
	}

	ctx = requestcontext.WithUserID(ctx, claims.UserID)
	ctx = requestcontext.WithRole(ctx, claims.Role)
	next.ServeHTTP(w, r.WithContext(ctx))
	return DecisionAllow
}

// verify treats any validator failure, including a panic, as an invalid token.
func (c *Config) verify(token string) (claims *auth.JWTClaims, ok bool) {
	if c.Validator == nil {
		return nil, false
	}
	defer func() {
		if rec := recover(); rec != nil {
			claims, ok = nil, false
		}
	}()
	var err error
	claims, err = c.Validator.ValidateToken(token)
	if err != nil || claims == nil {
		return nil, false
	}
	return claims, true
}

func (c *Config) areaOf(path string) area {
	switch {
	case underPrefix(path, c.AdminPrefix):
		return areaAdmin
	case underPrefix(path, c.UserPrefix):
		return areaUser
	default:
		return areaNone
	}
}

// underPrefix matches prefix itself and anything below it, but not siblings
// such as "/account/administrator".
func underPrefix(path, prefix string) bool {
	if path == prefix {
		return true
	}
	return strings.HasPrefix(path, strings.TrimSuffix(prefix, "/")+"/")
}
