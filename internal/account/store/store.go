// Package store persists account carts and wishlists. Every backend enforces
// one cart line and one wishlist entry per (product, variant) per user.
package store

import (
	"context"
	"sort"

	"storefront/internal/account/models"
	id "storefront/pkg/domain"
)

// Store is implemented by the memory, Redis and Postgres backends.
type Store interface {
	ListCart(ctx context.Context, userID id.UserID) ([]models.CartLine, error)
	// AddToCart inserts line or, when the key exists, adds line.Quantity to it.
	// The snapshot fields of an existing line are kept. Returns the stored line.
	AddToCart(ctx context.Context, userID id.UserID, line models.CartLine) (models.CartLine, error)
	ClearCart(ctx context.Context, userID id.UserID) error

	ListWishlist(ctx context.Context, userID id.UserID) ([]models.WishlistEntry, error)
	// AddToWishlist returns sentinel.ErrConflict when the key is present.
	AddToWishlist(ctx context.Context, userID id.UserID, entry models.WishlistEntry) error
	// RemoveFromWishlist returns sentinel.ErrNotFound when the key is absent.
	RemoveFromWishlist(ctx context.Context, userID id.UserID, key id.LineKey) error
}

func sortCart(lines []models.CartLine) {
	sort.Slice(lines, func(i, j int) bool { return lines[i].Key().String() < lines[j].Key().String() })
}

func sortWishlist(entries []models.WishlistEntry) {
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key().String() < entries[j].Key().String() })
}
