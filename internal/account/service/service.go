// Package service implements the account cart and wishlist operations behind
// /api/cart and /api/wishlist.
package service

import (
	"context"
	"errors"
	"log/slog"
	"maps"

	"storefront/internal/account/models"
	"storefront/internal/account/store"
	"storefront/internal/catalog"
	id "storefront/pkg/domain"
	dErrors "storefront/pkg/domain-errors"
	"storefront/pkg/platform/sentinel"
	"storefront/pkg/requestcontext"
)

// Catalog resolves products for price and image snapshots.
type Catalog interface {
	FindByID(ctx context.Context, productID id.ProductID) (catalog.Product, error)
}

type Metrics interface {
	ObserveAccountWrite(kind string, created bool)
}

type Service struct {
	store   store.Store
	catalog Catalog
	logger  *slog.Logger
	metrics Metrics
}

func New(st store.Store, cat Catalog, logger *slog.Logger, metrics Metrics) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: st, catalog: cat, logger: logger, metrics: metrics}
}

// Cart returns the account cart with totals.
func (s *Service) Cart(ctx context.Context, userID id.UserID) (models.Cart, error) {
	lines, err := s.store.ListCart(ctx, userID)
	if err != nil {
		return models.Cart{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load cart")
	}
	return models.NewCart(lines), nil
}

// AddToCart adds quantity of a product (variant) to the cart, incrementing an
// existing line. Quantity below 1 counts as 1.
func (s *Service) AddToCart(ctx context.Context, userID id.UserID, req models.AddToCartRequest) (models.CartLine, error) {
	product, variant, err := s.resolve(ctx, req.ProductID, req.VariantKey)
	if err != nil {
		return models.CartLine{}, err
	}
	qty := req.Quantity
	if qty < 1 {
		qty = 1
	}
	line := models.CartLine{
		ProductID:  product.ID,
		VariantKey: id.NoVariant,
		Quantity:   qty,
		Name:       product.Name,
		Slug:       product.Slug,
		Image:      product.ImageFor(variant),
		UnitPrice:  product.EffectivePrice(),
		UpdatedAt:  requestcontext.Now(ctx),
	}
	if variant != nil {
		line.VariantKey = variant.VariantKey()
		line.UnitPrice = variant.EffectivePrice()
		line.Attributes = maps.Clone(variant.Attributes)
	}

	stored, err := s.store.AddToCart(ctx, userID, line)
	if err != nil {
		return models.CartLine{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to add to cart")
	}
	if s.metrics != nil {
		s.metrics.ObserveAccountWrite("cart", stored.Quantity == qty)
	}
	s.logger.InfoContext(ctx, "cart line added",
		"user_id", userID.String(),
		"line", stored.Key().String(),
		"quantity", stored.Quantity,
		"request_id", requestcontext.RequestID(ctx),
	)
	return stored, nil
}

func (s *Service) ClearCart(ctx context.Context, userID id.UserID) error {
	if err := s.store.ClearCart(ctx, userID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to clear cart")
	}
	return nil
}

func (s *Service) Wishlist(ctx context.Context, userID id.UserID) ([]models.WishlistEntry, error) {
	entries, err := s.store.ListWishlist(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load wishlist")
	}
	return entries, nil
}

// AddToWishlist is idempotent: adding an entry that already exists succeeds
// with Created=false.
func (s *Service) AddToWishlist(ctx context.Context, userID id.UserID, req models.AddToWishlistRequest) (models.AddToWishlistResult, error) {
	product, variant, err := s.resolve(ctx, req.ProductID, req.VariantKey)
	if err != nil {
		return models.AddToWishlistResult{}, err
	}
	entry := models.WishlistEntry{
		ProductID:  product.ID,
		VariantKey: id.NoVariant,
		Name:       product.Name,
		Slug:       product.Slug,
		Image:      product.ImageFor(variant),
		Price:      product.EffectivePrice(),
		Stock:      product.Stock,
		AddedAt:    requestcontext.Now(ctx),
	}
	if variant != nil {
		entry.VariantKey = variant.VariantKey()
		entry.Price = variant.EffectivePrice()
		entry.Stock = variant.Stock
	}

	created := true
	if err := s.store.AddToWishlist(ctx, userID, entry); err != nil {
		if !errors.Is(err, sentinel.ErrConflict) {
			return models.AddToWishlistResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to add to wishlist")
		}
		created = false
	}
	if s.metrics != nil {
		s.metrics.ObserveAccountWrite("wishlist", created)
	}
	return models.AddToWishlistResult{Entry: entry, Created: created}, nil
}

func (s *Service) RemoveFromWishlist(ctx context.Context, userID id.UserID, rawProductID, rawVariant string) error {
	productID, err := id.ParseProductID(rawProductID)
	if err != nil {
		return err
	}
	key := id.NewLineKey(productID, id.Variant(rawVariant))
	if err := s.store.RemoveFromWishlist(ctx, userID, key); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "wishlist entry not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to remove from wishlist")
	}
	return nil
}

// resolve looks up the product and, when a variant key is given, the variant.
func (s *Service) resolve(ctx context.Context, rawProductID, rawVariant string) (catalog.Product, *catalog.Variant, error) {
	productID, err := id.ParseProductID(rawProductID)
	if err != nil {
		return catalog.Product{}, nil, err
	}
	product, err := s.catalog.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return catalog.Product{}, nil, dErrors.New(dErrors.CodeNotFound, "product not found")
		}
		return catalog.Product{}, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load product")
	}
	key := id.Variant(rawVariant)
	if key.IsNone() {
		return product, nil, nil
	}
	variant, ok := product.FindVariant(key)
	if !ok {
		return catalog.Product{}, nil, dErrors.New(dErrors.CodeInvalidInput, "unknown variant")
	}
	return product, variant, nil
}
