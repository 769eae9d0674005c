package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	authModel "storefront/internal/auth/models"
	"storefront/pkg/platform/httputil"
	"storefront/pkg/requestcontext"
)

type AuthService interface {
	Login(ctx context.Context, req authModel.LoginRequest) (*authModel.AuthResult, error)
	Register(ctx context.Context, req authModel.RegisterRequest) (*authModel.AuthResult, error)
	Logout(ctx context.Context, jti string, remaining time.Duration) error
}

// CookieConfig shapes the session cookie the route guard reads.
type CookieConfig struct {
	Name   string
	Secure bool
}

type AuthHandler struct {
	auth   AuthService
	logger *slog.Logger
	cookie CookieConfig
}

func NewAuthHandler(auth AuthService, logger *slog.Logger, cookie CookieConfig) *AuthHandler {
	if cookie.Name == "" {
		cookie.Name = "token"
	}
	return &AuthHandler{auth: auth, logger: logger, cookie: cookie}
}

// Register mounts the public auth routes.
func (h *AuthHandler) Register(r chi.Router) {
	r.Post("/api/auth/login", h.handleLogin)
	r.Post("/api/auth/register", h.handleRegister)
}

// RegisterAuthenticated mounts routes that need a bearer token.
func (h *AuthHandler) RegisterAuthenticated(r chi.Router) {
	r.Post("/api/auth/logout", h.handleLogout)
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req authModel.LoginRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	res, err := h.auth.Login(r.Context(), req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.setSessionCookie(w, res)
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req authModel.RegisterRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	res, err := h.auth.Register(r.Context(), req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.setSessionCookie(w, res)
	httputil.WriteJSON(w, http.StatusCreated, res)
}

func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	remaining := time.Until(requestcontext.TokenExpiry(ctx))
	if err := h.auth.Logout(ctx, requestcontext.TokenID(ctx), remaining); err != nil {
		h.logger.ErrorContext(ctx, "logout revocation failed",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, res *authModel.AuthResult) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    res.AccessToken,
		Path:     "/",
		MaxAge:   int(res.ExpiresIn.Seconds()),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
