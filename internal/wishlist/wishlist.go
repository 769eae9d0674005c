// Package wishlist is the anonymous shopper's wishlist aggregate: a set of
// (product, variant) entries with product snapshots.
package wishlist

import (
	"encoding/json"
	"fmt"
	"sync"

	"storefront/internal/catalog"
	id "storefront/pkg/domain"
)

// ProductSnapshot captures the product as it looked when it was wished for.
type ProductSnapshot struct {
	ID    id.ProductID  `json:"id"`
	Name  string        `json:"name"`
	Slug  string        `json:"slug"`
	Image string        `json:"image"`
	Price catalog.Money `json:"price"`
	Stock int           `json:"stock"`
}

// Item is one wishlist entry. (Product.ID, VariantKey) is unique.
type Item struct {
	Product    ProductSnapshot
	VariantKey id.VariantKey
}

func (i Item) Key() id.LineKey {
	return id.NewLineKey(i.Product.ID, i.VariantKey)
}

type wireItem struct {
	Product    ProductSnapshot `json:"product"`
	VariantKey string          `json:"variantKey"`
}

// MarshalJSON writes NoVariant as the "default" sentinel.
func (i Item) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireItem{Product: i.Product, VariantKey: i.VariantKey.String()})
}

func (i *Item) UnmarshalJSON(data []byte) error {
	var w wireItem
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	i.Product = w.Product
	i.VariantKey = id.Variant(w.VariantKey)
	return nil
}

// Storage persists wishlist entries. Unreadable data must load as empty.
type Storage interface {
	LoadWishlist() []Item
	SaveWishlist(items []Item) error
}

type Wishlist struct {
	mu      sync.Mutex
	storage Storage
	items   []Item
}

func New(storage Storage) *Wishlist {
	return &Wishlist{storage: storage, items: dedupe(storage.LoadWishlist())}
}

// Add records product (optionally a variant). Adding a present key is a
// no-op. Stock is captured from the variant when one is given.
func (w *Wishlist) Add(product catalog.Product, variant *catalog.Variant) error {
	snap := ProductSnapshot{
		ID:    product.ID,
		Name:  product.Name,
		Slug:  product.Slug,
		Image: product.ImageFor(variant),
		Price: product.EffectivePrice(),
		Stock: product.Stock,
	}
	key := id.NoVariant
	if variant != nil {
		key = variant.VariantKey()
		snap.Price = variant.EffectivePrice()
		snap.Stock = variant.Stock
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.indexOf(id.NewLineKey(product.ID, key)) >= 0 {
		return nil
	}
	w.items = append(w.items, Item{Product: snap, VariantKey: key})
	return w.commit()
}

// Remove deletes the matching entry. NoVariant only matches variant-less entries.
func (w *Wishlist) Remove(productID id.ProductID, variant id.VariantKey) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	i := w.indexOf(id.NewLineKey(productID, variant))
	if i < 0 {
		return nil
	}
	w.items = append(w.items[:i], w.items[i+1:]...)
	return w.commit()
}

// IsPresent is a pure membership test with the same matching rule as Remove.
func (w *Wishlist) IsPresent(productID id.ProductID, variant id.VariantKey) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.indexOf(id.NewLineKey(productID, variant)) >= 0
}

func (w *Wishlist) Clear() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.items = nil
	return w.commit()
}

// Take re-reads storage, empties the wishlist and returns the entries it
// held. The entries are valid even when persisting the empty list fails.
func (w *Wishlist) Take() ([]Item, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	taken := dedupe(w.storage.LoadWishlist())
	w.items = nil
	return taken, w.commit()
}

// Restore puts entries back. Entries already present stay as they are.
func (w *Wishlist) Restore(items []Item) error {
	items = dedupe(items)
	if len(items) == 0 {
		return nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	for _, it := range items {
		if w.indexOf(it.Key()) < 0 {
			w.items = append(w.items, it)
		}
	}
	return w.commit()
}

func (w *Wishlist) Items() []Item {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]Item{}, w.items...)
}

func (w *Wishlist) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.items)
}

func (w *Wishlist) indexOf(key id.LineKey) int {
	for i := range w.items {
		if w.items[i].Key() == key {
			return i
		}
	}
	return -1
}

func (w *Wishlist) commit() error {
	if err := w.storage.SaveWishlist(append([]Item{}, w.items...)); err != nil {
		return fmt.Errorf("persist wishlist: %w", err)
	}
	return nil
}

func dedupe(items []Item) []Item {
	seen := make(map[id.LineKey]struct{}, len(items))
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if it.Product.ID == "" {
			continue
		}
		if _, ok := seen[it.Key()]; ok {
			continue
		}
		seen[it.Key()] = struct{}{}
		out = append(out, it)
	}
	return out
}
