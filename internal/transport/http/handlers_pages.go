package httptransport

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"storefront/pkg/requestcontext"
)

// Pages are placeholders for the storefront UI; they exist so the route guard
// has something to protect and redirect to.
type PagesHandler struct{}

func (PagesHandler) Register(r chi.Router) {
	r.Get("/login", handleLoginPage)
	r.Get("/account/user", handleAccountPage)
	r.Get("/account/user/*", handleAccountPage)
	r.Get("/account/admin", handleAccountPage)
	r.Get("/account/admin/*", handleAccountPage)
}

func handleLoginPage(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = fmt.Fprintln(w, "Sign in with POST /api/auth/login")
}

func handleAccountPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = fmt.Fprintf(w, "account %s (%s)\n", requestcontext.UserID(ctx), requestcontext.Role(ctx))
}
