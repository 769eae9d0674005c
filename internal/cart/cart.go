// Package cart is the anonymous shopper's cart aggregate. Every mutation is
// applied under the cart's lock, re-derives totals and is written through to
// device storage before the lock is released.
package cart

import (
	"fmt"
	"maps"
	"sync"

	"storefront/internal/catalog"
	id "storefront/pkg/domain"
)

// Item is one cart line. (ProductID, VariantKey) is unique within a cart.
type Item struct {
	ProductID  id.ProductID      `json:"productId"`
	VariantKey id.VariantKey     `json:"variantKey"`
	Quantity   int               `json:"quantity"`
	Name       string            `json:"name"`
	Slug       string            `json:"slug"`
	Image      string            `json:"image"`
	UnitPrice  catalog.Money     `json:"unitPrice"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

func (i Item) Key() id.LineKey {
	return id.NewLineKey(i.ProductID, i.VariantKey)
}

// Subtotal is UnitPrice × Quantity.
func (i Item) Subtotal() catalog.Money {
	return i.UnitPrice * catalog.Money(i.Quantity)
}

// Storage persists the cart lines. Implementations must treat unreadable
// data as an empty cart.
type Storage interface {
	LoadCart() []Item
	SaveCart(items []Item) error
}

// Summary is a consistent view of the cart at one instant.
type Summary struct {
	Items      []Item
	TotalItems int
	TotalPrice catalog.Money
}

type Cart struct {
	mu         sync.Mutex
	storage    Storage
	items      []Item
	totalItems int
	totalPrice catalog.Money
}

// New loads the persisted lines from storage.
func New(storage Storage) *Cart {
	c := &Cart{storage: storage}
	c.items = normalize(storage.LoadCart())
	c.recompute()
	return c
}

// Add puts quantity units of product (optionally a variant) in the cart.
// An existing line for the same key is incremented; no stock ceiling is
// applied here. Quantities below one are treated as one.
func (c *Cart) Add(product catalog.Product, variant *catalog.Variant, quantity int) error {
	if quantity < 1 {
		quantity = 1
	}
	key := id.NewLineKey(product.ID, id.NoVariant)
	if variant != nil {
		key.Variant = variant.VariantKey()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.indexOf(key); i >= 0 {
		c.items[i].Quantity += quantity
		return c.commit()
	}

	item := Item{
		ProductID:  product.ID,
		VariantKey: key.Variant,
		Quantity:   quantity,
		Name:       product.Name,
		Slug:       product.Slug,
		Image:      product.ImageFor(variant),
		UnitPrice:  product.EffectivePrice(),
	}
	if variant != nil {
		item.UnitPrice = variant.EffectivePrice()
		item.Attributes = maps.Clone(variant.Attributes)
	}
	c.items = append(c.items, item)
	return c.commit()
}

// Remove deletes the line for (productID, variant). NoVariant only ever
// matches the variant-less line of that product.
func (c *Cart) Remove(productID id.ProductID, variant id.VariantKey) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.removeLocked(id.NewLineKey(productID, variant))
}

// UpdateQuantity sets the line's quantity exactly. A non-positive quantity
// removes the line.
func (c *Cart) UpdateQuantity(productID id.ProductID, variant id.VariantKey, quantity int) error {
	key := id.NewLineKey(productID, variant)

	c.mu.Lock()
	defer c.mu.Unlock()

	if quantity <= 0 {
		return c.removeLocked(key)
	}
	i := c.indexOf(key)
	if i < 0 {
		return nil
	}
	c.items[i].Quantity = quantity
	return c.commit()
}

// Clear empties the cart and its storage.
func (c *Cart) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
	return c.commit()
}

// Take re-reads storage, empties the cart and returns the lines it held.
// Lines added after Take are not part of the result. The returned lines are
// valid even when persisting the empty cart fails.
func (c *Cart) Take() ([]Item, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	taken := normalize(c.storage.LoadCart())
	c.items = nil
	return taken, c.commit()
}

// Restore puts lines back, adding quantities onto lines with the same key.
func (c *Cart) Restore(items []Item) error {
	items = normalize(items)
	if len(items) == 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, it := range items {
		if i := c.indexOf(it.Key()); i >= 0 {
			c.items[i].Quantity += it.Quantity
			continue
		}
		c.items = append(c.items, cloneItem(it))
	}
	return c.commit()
}

// Lookup returns the line for the key, if any.
func (c *Cart) Lookup(productID id.ProductID, variant id.VariantKey) (Item, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(id.NewLineKey(productID, variant))
	if i < 0 {
		return Item{}, false
	}
	return cloneItem(c.items[i]), true
}

func (c *Cart) Items() []Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneItems(c.items)
}

func (c *Cart) TotalItems() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalItems
}

func (c *Cart) TotalPrice() catalog.Money {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalPrice
}

func (c *Cart) Summary() Summary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Summary{
		Items:      cloneItems(c.items),
		TotalItems: c.totalItems,
		TotalPrice: c.totalPrice,
	}
}

func (c *Cart) removeLocked(key id.LineKey) error {
	i := c.indexOf(key)
	if i < 0 {
		return nil
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
	return c.commit()
}

func (c *Cart) indexOf(key id.LineKey) int {
	for i := range c.items {
		if c.items[i].Key() == key {
			return i
		}
	}
	return -1
}

// commit re-derives totals and writes the lines through. Caller holds mu.
func (c *Cart) commit() error {
	c.recompute()
	if err := c.storage.SaveCart(cloneItems(c.items)); err != nil {
		return fmt.Errorf("persist cart: %w", err)
	}
	return nil
}

func (c *Cart) recompute() {
	c.totalItems = 0
	c.totalPrice = 0
	for _, it := range c.items {
		c.totalItems += it.Quantity
		c.totalPrice += it.Subtotal()
	}
}

// normalize drops unusable lines and folds duplicate keys so the uniqueness
// invariant holds even for hand-edited or legacy storage.
func normalize(items []Item) []Item {
	out := make([]Item, 0, len(items))
	index := make(map[id.LineKey]int, len(items))
	for _, it := range items {
		if it.ProductID == "" || it.Quantity <= 0 {
			continue
		}
		if i, ok := index[it.Key()]; ok {
			out[i].Quantity += it.Quantity
			continue
		}
		index[it.Key()] = len(out)
		out = append(out, it)
	}
	return out
}

func cloneItem(it Item) Item {
	it.Attributes = maps.Clone(it.Attributes)
	return it
}

func cloneItems(items []Item) []Item {
	out := make([]Item, len(items))
	for i, it := range items {
		out[i] = cloneItem(it)
	}
	return out
}
