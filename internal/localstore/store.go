package localstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"storefront/internal/cart"
	"storefront/internal/wishlist"
	"storefront/pkg/platform/sentinel"
)

// DefaultNamespace prefixes every key this package writes.
const DefaultNamespace = "storefront"

// Store maps the cart and wishlist onto two namespaced keys of a KV backend.
// It satisfies cart.Storage and wishlist.Storage.
type Store struct {
	kv        KV
	namespace string
	logger    *slog.Logger
}

func New(kv KV, namespace string, logger *slog.Logger) *Store {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{kv: kv, namespace: namespace, logger: logger}
}

func (s *Store) CartKey() string     { return s.namespace + ":cart" }
func (s *Store) WishlistKey() string { return s.namespace + ":wishlist" }

// LoadCart never fails: missing or corrupt data reads as an empty cart.
func (s *Store) LoadCart() []cart.Item {
	var items []cart.Item
	s.load(s.CartKey(), &items)
	return items
}

func (s *Store) SaveCart(items []cart.Item) error {
	return s.save(s.CartKey(), items)
}

func (s *Store) LoadWishlist() []wishlist.Item {
	var items []wishlist.Item
	s.load(s.WishlistKey(), &items)
	return items
}

func (s *Store) SaveWishlist(items []wishlist.Item) error {
	return s.save(s.WishlistKey(), items)
}

// Raw returns the stored string for key.
func (s *Store) Raw(key string) (string, error) {
	return s.kv.Get(key)
}

// GetJSON decodes an arbitrary namespaced value. Returns sentinel.ErrNotFound
// when absent and sentinel.ErrCorrupt when undecodable.
func (s *Store) GetJSON(name string, v any) error {
	raw, err := s.kv.Get(s.namespace + ":" + name)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("%s: %w", name, sentinel.ErrCorrupt)
	}
	return nil
}

func (s *Store) PutJSON(name string, v any) error {
	return s.save(s.namespace+":"+name, v)
}

func (s *Store) DeleteJSON(name string) error {
	return s.kv.Delete(s.namespace + ":" + name)
}

func (s *Store) load(key string, into any) {
	raw, err := s.kv.Get(key)
	if errors.Is(err, sentinel.ErrNotFound) {
		return
	}
	if err != nil {
		s.logger.Warn("local store read failed, using empty value", "key", key, "error", err)
		return
	}
	if err := json.Unmarshal([]byte(raw), into); err != nil {
		s.logger.Warn("local store value corrupt, using empty value", "key", key, "error", err)
	}
}

func (s *Store) save(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.kv.Set(key, string(data))
}
