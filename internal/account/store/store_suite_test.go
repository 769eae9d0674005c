package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"storefront/internal/account/models"
	id "storefront/pkg/domain"
	"storefront/pkg/platform/sentinel"

	"github.com/stretchr/testify/suite"
)

// StoreSuite runs the same behavioural checks against every backend.
type StoreSuite struct {
	suite.Suite
	newStore func() Store
	store    Store
	user     id.UserID
}

func (s *StoreSuite) SetupTest() {
	s.store = s.newStore()
	s.user = id.NewUserID()
}

func cartLine(pid string, variant id.VariantKey, qty int) models.CartLine {
	return models.CartLine{
		ProductID:  id.ProductID(pid),
		VariantKey: variant,
		Quantity:   qty,
		Name:       "Signet Ring",
		Slug:       "signet-ring",
		Image:      "/img/signet.jpg",
		UnitPrice:  8900,
		Attributes: map[string]string{"size": "7"},
		UpdatedAt:  time.Now().UTC().Truncate(time.Millisecond),
	}
}

func wishEntry(pid string, variant id.VariantKey) models.WishlistEntry {
	return models.WishlistEntry{
		ProductID:  id.ProductID(pid),
		VariantKey: variant,
		Name:       "Gold Hoop Earrings",
		Slug:       "gold-hoop-earrings",
		Image:      "/img/hoops.jpg",
		Price:      12500,
		Stock:      4,
		AddedAt:    time.Now().UTC().Truncate(time.Millisecond),
	}
}

func (s *StoreSuite) TestCartIncrementsExistingLine() {
	ctx := context.Background()
	_, err := s.store.AddToCart(ctx, s.user, cartLine("signet-ring", id.Variant("size-7"), 2))
	s.Require().NoError(err)
	line, err := s.store.AddToCart(ctx, s.user, cartLine("signet-ring", id.Variant("size-7"), 3))
	s.Require().NoError(err)
	s.Equal(5, line.Quantity)

	lines, err := s.store.ListCart(ctx, s.user)
	s.Require().NoError(err)
	s.Require().Len(lines, 1)
	s.Equal(5, lines[0].Quantity)
	s.Equal(id.Variant("size-7"), lines[0].VariantKey)
	s.Equal("7", lines[0].Attributes["size"])
}

func (s *StoreSuite) TestCartKeepsVariantsApart() {
	ctx := context.Background()
	_, err := s.store.AddToCart(ctx, s.user, cartLine("signet-ring", id.Variant("size-6"), 1))
	s.Require().NoError(err)
	_, err = s.store.AddToCart(ctx, s.user, cartLine("signet-ring", id.NoVariant, 1))
	s.Require().NoError(err)

	lines, err := s.store.ListCart(ctx, s.user)
	s.Require().NoError(err)
	s.Len(lines, 2)
}

func (s *StoreSuite) TestCartRejectsNonPositiveQuantity() {
	_, err := s.store.AddToCart(context.Background(), s.user, cartLine("signet-ring", id.NoVariant, 0))
	s.True(errors.Is(err, sentinel.ErrInvalidState))
}

func (s *StoreSuite) TestConcurrentCartAddsDoNotLoseIncrements() {
	ctx := context.Background()
	const workers = 20
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.store.AddToCart(ctx, s.user, cartLine("gold-hoop-earrings", id.NoVariant, 1))
			s.NoError(err)
		}()
	}
	wg.Wait()

	lines, err := s.store.ListCart(ctx, s.user)
	s.Require().NoError(err)
	s.Require().Len(lines, 1)
	s.Equal(workers, lines[0].Quantity)
}

func (s *StoreSuite) TestClearCart() {
	ctx := context.Background()
	_, err := s.store.AddToCart(ctx, s.user, cartLine("signet-ring", id.NoVariant, 1))
	s.Require().NoError(err)
	s.Require().NoError(s.store.ClearCart(ctx, s.user))

	lines, err := s.store.ListCart(ctx, s.user)
	s.Require().NoError(err)
	s.Empty(lines)
}

func (s *StoreSuite) TestEmptyAccountListsAreEmpty() {
	ctx := context.Background()
	lines, err := s.store.ListCart(ctx, s.user)
	s.Require().NoError(err)
	s.NotNil(lines)
	s.Empty(lines)

	entries, err := s.store.ListWishlist(ctx, s.user)
	s.Require().NoError(err)
	s.NotNil(entries)
	s.Empty(entries)
}

func (s *StoreSuite) TestWishlistDuplicateConflicts() {
	ctx := context.Background()
	s.Require().NoError(s.store.AddToWishlist(ctx, s.user, wishEntry("gold-hoop-earrings", id.NoVariant)))
	err := s.store.AddToWishlist(ctx, s.user, wishEntry("gold-hoop-earrings", id.NoVariant))
	s.True(errors.Is(err, sentinel.ErrConflict))

	s.Require().NoError(s.store.AddToWishlist(ctx, s.user, wishEntry("gold-hoop-earrings", id.Variant("rose"))))
	entries, err := s.store.ListWishlist(ctx, s.user)
	s.Require().NoError(err)
	s.Len(entries, 2)
}

func (s *StoreSuite) TestWishlistIsPerUser() {
	ctx := context.Background()
	other := id.NewUserID()
	s.Require().NoError(s.store.AddToWishlist(ctx, s.user, wishEntry("gold-hoop-earrings", id.NoVariant)))
	s.Require().NoError(s.store.AddToWishlist(ctx, other, wishEntry("gold-hoop-earrings", id.NoVariant)))

	entries, err := s.store.ListWishlist(ctx, other)
	s.Require().NoError(err)
	s.Len(entries, 1)
}

func (s *StoreSuite) TestWishlistRemove() {
	ctx := context.Background()
	s.Require().NoError(s.store.AddToWishlist(ctx, s.user, wishEntry("gold-hoop-earrings", id.NoVariant)))

	key := id.NewLineKey("gold-hoop-earrings", id.NoVariant)
	s.Require().NoError(s.store.RemoveFromWishlist(ctx, s.user, key))
	err := s.store.RemoveFromWishlist(ctx, s.user, key)
	s.True(errors.Is(err, sentinel.ErrNotFound))

	entries, err := s.store.ListWishlist(ctx, s.user)
	s.Require().NoError(err)
	s.Empty(entries)
}
