package reconcile

import (
	"slices"
	"sync"

	accountModel "storefront/internal/account/models"
	id "storefront/pkg/domain"
)

// View holds the server's cart and wishlist as last fetched after a merge.
type View struct {
	mu       sync.RWMutex
	userID   id.UserID
	loaded   bool
	wishlist []accountModel.WishlistEntry
	cart     accountModel.Cart
}

// Loaded reports whether the view reflects userID's account.
func (v *View) Loaded(userID id.UserID) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.loaded && v.userID == userID
}

func (v *View) Wishlist() []accountModel.WishlistEntry {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return slices.Clone(v.wishlist)
}

func (v *View) Cart() accountModel.Cart {
	v.mu.RLock()
	defer v.mu.RUnlock()
	c := v.cart
	c.Lines = slices.Clone(c.Lines)
	return c
}

func (v *View) setWishlist(userID id.UserID, entries []accountModel.WishlistEntry) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.bind(userID)
	v.wishlist = entries
}

func (v *View) setCart(userID id.UserID, c accountModel.Cart) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.bind(userID)
	v.cart = c
}

// bind switches the view to userID, dropping another account's data.
func (v *View) bind(userID id.UserID) {
	if v.userID != userID {
		v.wishlist = nil
		v.cart = accountModel.Cart{}
	}
	v.userID = userID
	v.loaded = true
}

func (v *View) reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.userID = id.UserID{}
	v.loaded = false
	v.wishlist = nil
	v.cart = accountModel.Cart{}
}
