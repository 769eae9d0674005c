package store

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"storefront/internal/account/models"
	id "storefront/pkg/domain"
	"storefront/pkg/platform/sentinel"
)

type account struct {
	cart     map[id.LineKey]models.CartLine
	wishlist map[id.LineKey]models.WishlistEntry
}

// InMemory keeps accounts in process memory.
type InMemory struct {
	mu       sync.RWMutex
	accounts map[id.UserID]*account
}

func NewInMemory() *InMemory {
	return &InMemory{accounts: make(map[id.UserID]*account)}
}

func (s *InMemory) get(userID id.UserID) *account {
	a, ok := s.accounts[userID]
	if !ok {
		a = &account{
			cart:     make(map[id.LineKey]models.CartLine),
			wishlist: make(map[id.LineKey]models.WishlistEntry),
		}
		s.accounts[userID] = a
	}
	return a
}

func (s *InMemory) ListCart(_ context.Context, userID id.UserID) ([]models.CartLine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[userID]
	if !ok {
		return []models.CartLine{}, nil
	}
	out := make([]models.CartLine, 0, len(a.cart))
	for _, l := range a.cart {
		l.Attributes = maps.Clone(l.Attributes)
		out = append(out, l)
	}
	sortCart(out)
	return out, nil
}

func (s *InMemory) AddToCart(_ context.Context, userID id.UserID, line models.CartLine) (models.CartLine, error) {
	if line.Quantity <= 0 {
		return models.CartLine{}, fmt.Errorf("quantity %d: %w", line.Quantity, sentinel.ErrInvalidState)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.get(userID)
	key := line.Key()
	if existing, ok := a.cart[key]; ok {
		existing.Quantity += line.Quantity
		existing.UpdatedAt = line.UpdatedAt
		a.cart[key] = existing
		return existing, nil
	}
	line.Attributes = maps.Clone(line.Attributes)
	a.cart[key] = line
	return line, nil
}

func (s *InMemory) ClearCart(_ context.Context, userID id.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.accounts[userID]; ok {
		clear(a.cart)
	}
	return nil
}

func (s *InMemory) ListWishlist(_ context.Context, userID id.UserID) ([]models.WishlistEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[userID]
	if !ok {
		return []models.WishlistEntry{}, nil
	}
	out := make([]models.WishlistEntry, 0, len(a.wishlist))
	for _, e := range a.wishlist {
		out = append(out, e)
	}
	sortWishlist(out)
	return out, nil
}

func (s *InMemory) AddToWishlist(_ context.Context, userID id.UserID, entry models.WishlistEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.get(userID)
	key := entry.Key()
	if _, ok := a.wishlist[key]; ok {
		return fmt.Errorf("wishlist entry %s: %w", key, sentinel.ErrConflict)
	}
	a.wishlist[key] = entry
	return nil
}

func (s *InMemory) RemoveFromWishlist(_ context.Context, userID id.UserID, key id.LineKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[userID]
	if !ok {
		return fmt.Errorf("wishlist entry %s: %w", key, sentinel.ErrNotFound)
	}
	if _, ok := a.wishlist[key]; !ok {
		return fmt.Errorf("wishlist entry %s: %w", key, sentinel.ErrNotFound)
	}
	delete(a.wishlist, key)
	return nil
}
