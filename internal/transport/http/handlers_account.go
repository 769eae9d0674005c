package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"storefront/internal/account/models"
	id "storefront/pkg/domain"
	"storefront/pkg/platform/httputil"
	"storefront/pkg/requestcontext"
)

type AccountService interface {
	Cart(ctx context.Context, userID id.UserID) (models.Cart, error)
	AddToCart(ctx context.Context, userID id.UserID, req models.AddToCartRequest) (models.CartLine, error)
	ClearCart(ctx context.Context, userID id.UserID) error
	Wishlist(ctx context.Context, userID id.UserID) ([]models.WishlistEntry, error)
	AddToWishlist(ctx context.Context, userID id.UserID, req models.AddToWishlistRequest) (models.AddToWishlistResult, error)
	RemoveFromWishlist(ctx context.Context, userID id.UserID, productID, variantKey string) error
}

// AccountHandler serves the signed-in shopper's cart and wishlist. Routes
// must be mounted behind RequireAuth.
type AccountHandler struct {
	account AccountService
	logger  *slog.Logger
}

func NewAccountHandler(account AccountService, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{account: account, logger: logger}
}

func (h *AccountHandler) Register(r chi.Router) {
	r.Get("/api/cart", h.handleGetCart)
	r.Post("/api/cart", h.handleAddToCart)
	r.Delete("/api/cart", h.handleClearCart)
	r.Get("/api/wishlist", h.handleGetWishlist)
	r.Post("/api/wishlist", h.handleAddToWishlist)
	r.Delete("/api/wishlist/{productId}", h.handleRemoveFromWishlist)
}

func (h *AccountHandler) handleGetCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.account.Cart(r.Context(), requestcontext.UserID(r.Context()))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, cart)
}

func (h *AccountHandler) handleAddToCart(w http.ResponseWriter, r *http.Request) {
	var req models.AddToCartRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	line, err := h.account.AddToCart(r.Context(), requestcontext.UserID(r.Context()), req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, line)
}

func (h *AccountHandler) handleClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.account.ClearCart(r.Context(), requestcontext.UserID(r.Context())); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AccountHandler) handleGetWishlist(w http.ResponseWriter, r *http.Request) {
	entries, err := h.account.Wishlist(r.Context(), requestcontext.UserID(r.Context()))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.WishlistResponse{Items: entries})
}

// handleAddToWishlist answers 201 for a new entry and 200 for one that was
// already there.
func (h *AccountHandler) handleAddToWishlist(w http.ResponseWriter, r *http.Request) {
	var req models.AddToWishlistRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	res, err := h.account.AddToWishlist(r.Context(), requestcontext.UserID(r.Context()), req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	httputil.WriteJSON(w, status, res)
}

func (h *AccountHandler) handleRemoveFromWishlist(w http.ResponseWriter, r *http.Request) {
	err := h.account.RemoveFromWishlist(r.Context(), requestcontext.UserID(r.Context()),
		chi.URLParam(r, "productId"), r.URL.Query().Get("variantKey"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
