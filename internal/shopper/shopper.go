// Package shopper is the client-side container: it owns the device cart and
// wishlist, the session state and the merge reconciler, and routes each
// operation to the device or to the account API depending on sign-in.
package shopper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	accountModel "storefront/internal/account/models"
	authModel "storefront/internal/auth/models"
	"storefront/internal/cart"
	"storefront/internal/catalog"
	"storefront/internal/localstore"
	"storefront/internal/reconcile"
	"storefront/internal/session"
	"storefront/internal/wishlist"
	id "storefront/pkg/domain"
	dErrors "storefront/pkg/domain-errors"
	"storefront/pkg/platform/sentinel"
)

const sessionKey = "session"

// API is the storefront account API as the shopper uses it.
type API interface {
	reconcile.AccountAPI
	Login(ctx context.Context, email, password string) (*authModel.AuthResult, error)
	Register(ctx context.Context, email, password, fullName string) (*authModel.AuthResult, error)
	Logout(ctx context.Context, token string) error
	Product(ctx context.Context, productID id.ProductID) (catalog.Product, error)
	RemoveFromWishlist(ctx context.Context, token string, productID id.ProductID, variant id.VariantKey) error
	ClearCart(ctx context.Context, token string) error
}

type Shopper struct {
	store       *localstore.Store
	cart        *cart.Cart
	wishlist    *wishlist.Wishlist
	tracker     *session.Tracker
	reconciler  *reconcile.Reconciler
	api         API
	logger      *slog.Logger
	unsubscribe []func()
}

type config struct {
	namespace string
	logger    *slog.Logger
	recOpts   []reconcile.Option
}

type Option func(*config)

func WithNamespace(ns string) Option {
	return func(c *config) { c.namespace = ns }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithReconcilerOptions passes options through to the merge reconciler.
func WithReconcilerOptions(opts ...reconcile.Option) Option {
	return func(c *config) { c.recOpts = append(c.recOpts, opts...) }
}

// New builds the container on kv. A session saved by an earlier run is
// restored as the initial state, so restoring never triggers a merge.
func New(kv localstore.KV, api API, opts ...Option) *Shopper {
	cfg := config{logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}
	store := localstore.New(kv, cfg.namespace, cfg.logger)
	s := &Shopper{
		store:    store,
		cart:     cart.New(store),
		wishlist: wishlist.New(store),
		api:      api,
		logger:   cfg.logger,
	}
	s.tracker = session.NewTracker(s.restoreSession())
	s.reconciler = reconcile.New(s.cart, s.wishlist, api,
		append([]reconcile.Option{reconcile.WithLogger(cfg.logger)}, cfg.recOpts...)...)

	s.unsubscribe = append(s.unsubscribe,
		s.tracker.Subscribe(s.persistSession),
		s.tracker.Subscribe(s.reconciler.OnAuthStateChanged),
	)
	return s
}

// Close detaches the listeners after any running merge has finished.
func (s *Shopper) Close() {
	s.reconciler.Wait()
	for _, u := range s.unsubscribe {
		u()
	}
	s.unsubscribe = nil
}

func (s *Shopper) Session() session.State { return s.tracker.Current() }

// WaitForMerge blocks until a merge started by sign-in has finished and
// returns its result.
func (s *Shopper) WaitForMerge() (reconcile.Result, bool) {
	s.reconciler.Wait()
	return s.reconciler.LastResult()
}

func (s *Shopper) Login(ctx context.Context, email, password string) (session.State, error) {
	res, err := s.api.Login(ctx, email, password)
	if err != nil {
		return session.State{}, err
	}
	return s.signIn(ctx, res)
}

func (s *Shopper) Register(ctx context.Context, email, password, fullName string) (session.State, error) {
	res, err := s.api.Register(ctx, email, password, fullName)
	if err != nil {
		return session.State{}, err
	}
	return s.signIn(ctx, res)
}

// Logout always ends the local session. Server-side revocation failures
// other than an already-dead token are returned.
func (s *Shopper) Logout(ctx context.Context) error {
	cur := s.tracker.Current()
	if !cur.Authenticated {
		return nil
	}
	err := s.api.Logout(ctx, cur.AccessToken)
	s.tracker.SignOut(ctx)
	if err != nil && !dErrors.HasCode(err, dErrors.CodeUnauthorized) {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

func (s *Shopper) signIn(ctx context.Context, res *authModel.AuthResult) (session.State, error) {
	userID, err := id.ParseUserID(res.User.ID)
	if err != nil {
		return session.State{}, fmt.Errorf("login response: %w", err)
	}
	role, err := id.ParseRole(res.User.Role)
	if err != nil {
		return session.State{}, fmt.Errorf("login response: %w", err)
	}
	s.tracker.SignIn(ctx, session.State{
		UserID:      userID,
		Role:        role,
		Email:       res.User.Email,
		FullName:    res.User.FullName,
		AccessToken: res.AccessToken,
	})
	return s.tracker.Current(), nil
}

// AddToCart adds quantity of a product (variant) to the account cart when
// signed in, else to the device cart.
func (s *Shopper) AddToCart(ctx context.Context, productID id.ProductID, variant id.VariantKey, quantity int) error {
	product, v, err := s.lookup(ctx, productID, variant)
	if err != nil {
		return err
	}
	if cur := s.tracker.Current(); cur.Authenticated {
		key, _ := variant.Key()
		_, err := s.api.AddToCart(ctx, cur.AccessToken, accountModel.AddToCartRequest{
			ProductID:  productID.String(),
			VariantKey: key,
			Quantity:   quantity,
		})
		return s.checkToken(ctx, err)
	}
	return s.cart.Add(product, v, quantity)
}

// RemoveFromCart and UpdateCartQuantity edit device lines. The account cart
// only supports add and clear.
func (s *Shopper) RemoveFromCart(ctx context.Context, productID id.ProductID, variant id.VariantKey) error {
	if err := s.requireAnonymous(ctx); err != nil {
		return err
	}
	return s.cart.Remove(productID, variant)
}

func (s *Shopper) UpdateCartQuantity(ctx context.Context, productID id.ProductID, variant id.VariantKey, quantity int) error {
	if err := s.requireAnonymous(ctx); err != nil {
		return err
	}
	return s.cart.UpdateQuantity(productID, variant, quantity)
}

func (s *Shopper) ClearCart(ctx context.Context) error {
	if cur := s.tracker.Current(); cur.Authenticated {
		return s.checkToken(ctx, s.api.ClearCart(ctx, cur.AccessToken))
	}
	return s.cart.Clear()
}

// Cart returns the account cart when signed in, else the device cart in
// the same shape.
func (s *Shopper) Cart(ctx context.Context) (accountModel.Cart, error) {
	if cur := s.tracker.Current(); cur.Authenticated {
		c, err := s.api.FetchCart(ctx, cur.AccessToken)
		if err != nil {
			return accountModel.Cart{}, s.checkToken(ctx, err)
		}
		return c, nil
	}
	items := s.cart.Items()
	lines := make([]accountModel.CartLine, len(items))
	for i, it := range items {
		lines[i] = accountModel.CartLine{
			ProductID:  it.ProductID,
			VariantKey: it.VariantKey,
			Quantity:   it.Quantity,
			Name:       it.Name,
			Slug:       it.Slug,
			Image:      it.Image,
			UnitPrice:  it.UnitPrice,
			Attributes: it.Attributes,
		}
	}
	return accountModel.NewCart(lines), nil
}

func (s *Shopper) AddToWishlist(ctx context.Context, productID id.ProductID, variant id.VariantKey) error {
	product, v, err := s.lookup(ctx, productID, variant)
	if err != nil {
		return err
	}
	if cur := s.tracker.Current(); cur.Authenticated {
		key, _ := variant.Key()
		_, err := s.api.AddToWishlist(ctx, cur.AccessToken, accountModel.AddToWishlistRequest{
			ProductID:  productID.String(),
			VariantKey: key,
		})
		return s.checkToken(ctx, err)
	}
	return s.wishlist.Add(product, v)
}

func (s *Shopper) RemoveFromWishlist(ctx context.Context, productID id.ProductID, variant id.VariantKey) error {
	if cur := s.tracker.Current(); cur.Authenticated {
		return s.checkToken(ctx, s.api.RemoveFromWishlist(ctx, cur.AccessToken, productID, variant))
	}
	return s.wishlist.Remove(productID, variant)
}

func (s *Shopper) Wishlist(ctx context.Context) ([]accountModel.WishlistEntry, error) {
	if cur := s.tracker.Current(); cur.Authenticated {
		entries, err := s.api.FetchWishlist(ctx, cur.AccessToken)
		if err != nil {
			return nil, s.checkToken(ctx, err)
		}
		return entries, nil
	}
	items := s.wishlist.Items()
	entries := make([]accountModel.WishlistEntry, len(items))
	for i, it := range items {
		entries[i] = accountModel.WishlistEntry{
			ProductID:  it.Product.ID,
			VariantKey: it.VariantKey,
			Name:       it.Product.Name,
			Slug:       it.Product.Slug,
			Image:      it.Product.Image,
			Price:      it.Product.Price,
			Stock:      it.Product.Stock,
		}
	}
	return entries, nil
}

func (s *Shopper) lookup(ctx context.Context, productID id.ProductID, variant id.VariantKey) (catalog.Product, *catalog.Variant, error) {
	product, err := s.api.Product(ctx, productID)
	if err != nil {
		return catalog.Product{}, nil, err
	}
	if variant.IsNone() {
		return product, nil, nil
	}
	v, ok := product.FindVariant(variant)
	if !ok {
		return catalog.Product{}, nil, dErrors.New(dErrors.CodeInvalidInput, "unknown variant "+variant.String())
	}
	return product, v, nil
}

// checkToken signs the shopper out when the server rejects their token.
func (s *Shopper) checkToken(ctx context.Context, err error) error {
	if dErrors.HasCode(err, dErrors.CodeUnauthorized) {
		s.logger.WarnContext(ctx, "session token rejected, signing out")
		s.tracker.SignOut(ctx)
	}
	return err
}

func (s *Shopper) requireAnonymous(ctx context.Context) error {
	if s.tracker.Current().Authenticated {
		return dErrors.New(dErrors.CodeBadRequest, "signed-in carts support add and clear only")
	}
	return nil
}

type savedSession struct {
	UserID      string `json:"userId"`
	Role        string `json:"role"`
	Email       string `json:"email"`
	FullName    string `json:"fullName"`
	AccessToken string `json:"accessToken"`
}

func (s *Shopper) persistSession(ctx context.Context, change session.Change) {
	var err error
	if change.Next.Authenticated {
		err = s.store.PutJSON(sessionKey, savedSession{
			UserID:      change.Next.UserID.String(),
			Role:        change.Next.Role.String(),
			Email:       change.Next.Email,
			FullName:    change.Next.FullName,
			AccessToken: change.Next.AccessToken,
		})
	} else {
		err = s.store.DeleteJSON(sessionKey)
	}
	if err != nil {
		s.logger.WarnContext(ctx, "failed to persist session", "error", err)
	}
}

func (s *Shopper) restoreSession() session.State {
	var saved savedSession
	if err := s.store.GetJSON(sessionKey, &saved); err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			s.logger.Warn("ignoring unreadable saved session", "error", err)
		}
		return session.Anonymous
	}
	userID, err := id.ParseUserID(saved.UserID)
	if err != nil {
		return session.Anonymous
	}
	role, err := id.ParseRole(saved.Role)
	if err != nil || saved.AccessToken == "" {
		return session.Anonymous
	}
	return session.State{
		Authenticated: true,
		UserID:        userID,
		Role:          role,
		Email:         saved.Email,
		FullName:      saved.FullName,
		AccessToken:   saved.AccessToken,
	}
}
