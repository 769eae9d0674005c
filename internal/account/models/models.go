// Package models holds the account cart and wishlist records and their wire
// shapes. The storefront client decodes the same types it is served.
package models

import (
	"time"

	"storefront/internal/catalog"
	id "storefront/pkg/domain"
)

// CartLine is a server-side cart line. (ProductID, VariantKey) is unique per user.
type CartLine struct {
	ProductID  id.ProductID      `json:"productId"`
	VariantKey id.VariantKey     `json:"variantKey"`
	Quantity   int               `json:"quantity"`
	Name       string            `json:"name"`
	Slug       string            `json:"slug"`
	Image      string            `json:"image"`
	UnitPrice  catalog.Money     `json:"unitPrice"`
	Attributes map[string]string `json:"attributes,omitempty"`
	UpdatedAt  time.Time         `json:"updatedAt"`
}

func (l CartLine) Key() id.LineKey { return id.NewLineKey(l.ProductID, l.VariantKey) }

// Cart is the account cart with derived totals.
type Cart struct {
	Lines      []CartLine    `json:"items"`
	TotalItems int           `json:"totalItems"`
	TotalPrice catalog.Money `json:"totalPrice"`
}

// NewCart derives totals from lines.
func NewCart(lines []CartLine) Cart {
	c := Cart{Lines: lines}
	if c.Lines == nil {
		c.Lines = []CartLine{}
	}
	for _, l := range lines {
		c.TotalItems += l.Quantity
		c.TotalPrice += l.UnitPrice * catalog.Money(l.Quantity)
	}
	return c
}

// WishlistEntry is a server-side wishlist entry. (ProductID, VariantKey) is unique per user.
type WishlistEntry struct {
	ProductID  id.ProductID  `json:"productId"`
	VariantKey id.VariantKey `json:"variantKey"`
	Name       string        `json:"name"`
	Slug       string        `json:"slug"`
	Image      string        `json:"image"`
	Price      catalog.Money `json:"price"`
	Stock      int           `json:"stock"`
	AddedAt    time.Time     `json:"addedAt"`
}

func (e WishlistEntry) Key() id.LineKey { return id.NewLineKey(e.ProductID, e.VariantKey) }

type AddToWishlistRequest struct {
	ProductID  string `json:"productId"`
	VariantKey string `json:"variantKey,omitempty"`
}

type AddToWishlistResult struct {
	Entry   WishlistEntry `json:"entry"`
	Created bool          `json:"created"`
}

type AddToCartRequest struct {
	ProductID  string `json:"productId"`
	VariantKey string `json:"variantKey,omitempty"`
	Quantity   int    `json:"quantity"`
}

type WishlistResponse struct {
	Items []WishlistEntry `json:"items"`
}
