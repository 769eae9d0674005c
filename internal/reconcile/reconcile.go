// Package reconcile merges the anonymous shopper's device cart and wishlist
// into their account exactly once per sign-in.
//
// The Reconciler is the only place a merge happens: login and registration
// flows just change the session state and let the reconciler react.
package reconcile

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	accountModel "storefront/internal/account/models"
	"storefront/internal/cart"
	"storefront/internal/session"
	"storefront/internal/wishlist"
	id "storefront/pkg/domain"
)

const defaultConcurrency = 4

// Merge outcomes as reported to metrics.
const (
	OutcomeMerged    = "merged"
	OutcomePartial   = "partial"
	OutcomeFailed    = "failed"
	OutcomeCancelled = "cancelled"
	OutcomeSkipped   = "skipped"
)

// LocalCart is the device cart as the reconciler sees it. Take empties the
// store and hands over what it held; Restore puts unsent lines back.
type LocalCart interface {
	Take() ([]cart.Item, error)
	Restore(items []cart.Item) error
}

type LocalWishlist interface {
	Take() ([]wishlist.Item, error)
	Restore(items []wishlist.Item) error
}

// AccountAPI is the server side of the merge. Adding an entry that is
// already on the wishlist must not be an error.
type AccountAPI interface {
	AddToWishlist(ctx context.Context, token string, req accountModel.AddToWishlistRequest) (bool, error)
	AddToCart(ctx context.Context, token string, req accountModel.AddToCartRequest) (accountModel.CartLine, error)
	FetchWishlist(ctx context.Context, token string) ([]accountModel.WishlistEntry, error)
	FetchCart(ctx context.Context, token string) (accountModel.Cart, error)
}

type Metrics interface {
	ObserveMergeRun(outcome string, took time.Duration)
	ObserveMergeItem(kind string, ok bool)
}

// Counts tallies pushed and failed items of one kind.
type Counts struct {
	Pushed int
	Failed int
}

// Result describes one merge run.
type Result struct {
	Outcome  string
	Wishlist Counts
	Cart     Counts
	Took     time.Duration
}

type Reconciler struct {
	cart        LocalCart
	wishlist    LocalWishlist
	api         AccountAPI
	logger      *slog.Logger
	metrics     Metrics
	tracer      trace.Tracer
	concurrency int

	guard Guard
	view  View
	// generation changes on every sign-in and sign-out so a stale merge
	// cannot publish into a newer session's view.
	generation atomic.Uint64

	mu     sync.Mutex
	cancel context.CancelFunc
	// done is closed when the most recently started merge returns. Each
	// merge waits for its predecessor before touching the device stores.
	done chan struct{}
	last *Result
	wg   sync.WaitGroup
}

type Option func(*Reconciler)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Reconciler) { r.logger = logger }
}

func WithMetrics(m Metrics) Option {
	return func(r *Reconciler) { r.metrics = m }
}

// WithConcurrency bounds in-flight item requests. Values below one mean one.
func WithConcurrency(n int) Option {
	return func(r *Reconciler) { r.concurrency = max(n, 1) }
}

func WithTracer(t trace.Tracer) Option {
	return func(r *Reconciler) { r.tracer = t }
}

func New(localCart LocalCart, localWishlist LocalWishlist, api AccountAPI, opts ...Option) *Reconciler {
	r := &Reconciler{
		cart:        localCart,
		wishlist:    localWishlist,
		api:         api,
		logger:      slog.Default(),
		tracer:      otel.Tracer("storefront/reconcile"),
		concurrency: defaultConcurrency,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Guard exposes the latch for inspection.
func (r *Reconciler) Guard() *Guard { return &r.guard }

// View is the server state fetched after the last merge.
func (r *Reconciler) View() *View { return &r.view }

// LastResult returns the most recent finished merge.
func (r *Reconciler) LastResult() (Result, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.last == nil {
		return Result{}, false
	}
	return *r.last, true
}

// Wait blocks until any in-flight merge has finished.
func (r *Reconciler) Wait() {
	r.wg.Wait()
}

// OnAuthStateChanged is a session.Listener. A sign-in starts the merge in
// the background; a sign-out resets the guard and cancels a merge still
// running for the old session.
func (r *Reconciler) OnAuthStateChanged(ctx context.Context, change session.Change) {
	switch {
	case ShouldReset(change.Prev, change.Next):
		r.generation.Add(1)
		r.mu.Lock()
		if r.cancel != nil {
			r.cancel()
			r.cancel = nil
		}
		r.mu.Unlock()
		r.guard.Reset()
		r.view.reset()
		r.logger.DebugContext(ctx, "merge guard reset", "user_id", change.Prev.UserID.String())

	case ShouldMerge(change.Prev, change.Next):
		if !r.guard.TryAcquire() {
			r.logger.DebugContext(ctx, "merge already ran for this session", "user_id", change.Next.UserID.String())
			r.observeRun(OutcomeSkipped, 0)
			return
		}
		gen := r.generation.Add(1)
		mctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		done := make(chan struct{})
		r.mu.Lock()
		r.cancel = cancel
		prev := r.done
		r.done = done
		r.mu.Unlock()

		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			defer close(done)
			defer cancel()
			if prev != nil {
				<-prev
			}
			res := r.merge(mctx, change.Next, gen)
			r.mu.Lock()
			r.last = &res
			r.mu.Unlock()
		}()
	}
}

func (r *Reconciler) merge(ctx context.Context, state session.State, gen uint64) Result {
	start := time.Now()
	ctx, span := r.tracer.Start(ctx, "reconcile.merge",
		trace.WithAttributes(attribute.String("user.id", state.UserID.String())))
	defer span.End()
	logger := r.logger.With("user_id", state.UserID.String())

	var res Result
	// Signed out while an earlier merge was still running: leave the
	// device alone, it now belongs to the anonymous shopper again.
	if ctx.Err() != nil {
		res.Outcome = OutcomeCancelled
		r.finish(ctx, span, logger, &res, start)
		return res
	}

	// Taking empties the stores up front, so whatever the shopper adds from
	// here on is left for a later merge and nothing is taken twice. Failed
	// lines are dropped, not retried on the next sign-in.
	wishItems, err := r.wishlist.Take()
	if err != nil {
		logger.WarnContext(ctx, "failed to clear device wishlist", "error", err)
	}
	cartItems, err := r.cart.Take()
	if err != nil {
		logger.WarnContext(ctx, "failed to clear device cart", "error", err)
	}
	logger.InfoContext(ctx, "merging device state into account",
		"wishlist_items", len(wishItems),
		"cart_items", len(cartItems),
	)

	var unsentWish []wishlist.Item
	var unsentCart []cart.Item
	res.Wishlist, unsentWish = push(ctx, r, logger, "wishlist", wishItems, func(ctx context.Context, it wishlist.Item) error {
		key, _ := it.VariantKey.Key()
		_, err := r.api.AddToWishlist(ctx, state.AccessToken, accountModel.AddToWishlistRequest{
			ProductID:  it.Product.ID.String(),
			VariantKey: key,
		})
		return err
	})
	res.Cart, unsentCart = push(ctx, r, logger, "cart", cartItems, func(ctx context.Context, it cart.Item) error {
		key, _ := it.VariantKey.Key()
		_, err := r.api.AddToCart(ctx, state.AccessToken, accountModel.AddToCartRequest{
			ProductID:  it.ProductID.String(),
			VariantKey: key,
			Quantity:   it.Quantity,
		})
		return err
	})

	switch {
	case ctx.Err() != nil:
		res.Outcome = OutcomeCancelled
		r.restore(ctx, logger, unsentWish, unsentCart)
	case res.Wishlist.Failed+res.Cart.Failed == 0:
		res.Outcome = OutcomeMerged
	case res.Wishlist.Pushed+res.Cart.Pushed == 0:
		res.Outcome = OutcomeFailed
	default:
		res.Outcome = OutcomePartial
	}

	if res.Outcome != OutcomeCancelled {
		r.refresh(ctx, logger, state, gen)
	}
	r.finish(ctx, span, logger, &res, start)
	return res
}

// restore hands items a cancelled merge never sent back to the device.
// Sent items are not restored even when their request failed, since the
// server may have applied them.
func (r *Reconciler) restore(ctx context.Context, logger *slog.Logger, wish []wishlist.Item, lines []cart.Item) {
	if err := r.wishlist.Restore(wish); err != nil {
		logger.WarnContext(ctx, "failed to restore device wishlist", "error", err)
	}
	if err := r.cart.Restore(lines); err != nil {
		logger.WarnContext(ctx, "failed to restore device cart", "error", err)
	}
	if len(wish)+len(lines) > 0 {
		logger.InfoContext(ctx, "returned unsent items to the device",
			"wishlist_items", len(wish),
			"cart_items", len(lines),
		)
	}
}

func (r *Reconciler) finish(ctx context.Context, span trace.Span, logger *slog.Logger, res *Result, start time.Time) {
	res.Took = time.Since(start)
	span.SetAttributes(
		attribute.String("merge.outcome", res.Outcome),
		attribute.Int("merge.wishlist.failed", res.Wishlist.Failed),
		attribute.Int("merge.cart.failed", res.Cart.Failed),
	)
	r.observeRun(res.Outcome, res.Took)
	logger.InfoContext(ctx, "merge finished",
		"outcome", res.Outcome,
		"wishlist_pushed", res.Wishlist.Pushed,
		"wishlist_failed", res.Wishlist.Failed,
		"cart_pushed", res.Cart.Pushed,
		"cart_failed", res.Cart.Failed,
		"duration_ms", res.Took.Milliseconds(),
	)
}

type lineItem interface {
	Key() id.LineKey
}

// push sends every item with bounded concurrency. Failures are logged and
// counted but never stop the other items. Items skipped because ctx was
// done are returned as unsent, in their original order.
func push[T lineItem](ctx context.Context, r *Reconciler, logger *slog.Logger, kind string, items []T, send func(context.Context, T) error) (Counts, []T) {
	var (
		mu     sync.Mutex
		counts Counts
	)
	sent := make([]bool, len(items))
	g := new(errgroup.Group)
	g.SetLimit(r.concurrency)
	for i, it := range items {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			sent[i] = true
			err := send(ctx, it)
			mu.Lock()
			if err != nil {
				counts.Failed++
			} else {
				counts.Pushed++
			}
			mu.Unlock()
			if err != nil {
				logger.WarnContext(ctx, "merge item failed", "kind", kind, "item", it.Key().String(), "error", err)
			}
			if r.metrics != nil {
				r.metrics.ObserveMergeItem(kind, err == nil)
			}
			return nil
		})
	}
	_ = g.Wait()

	var unsent []T
	for i, it := range items {
		if !sent[i] {
			unsent = append(unsent, it)
		}
	}
	return counts, unsent
}

func (r *Reconciler) refresh(ctx context.Context, logger *slog.Logger, state session.State, gen uint64) {
	g := new(errgroup.Group)
	g.Go(func() error {
		entries, err := r.api.FetchWishlist(ctx, state.AccessToken)
		if err != nil {
			logger.WarnContext(ctx, "failed to refresh account wishlist", "error", err)
			return nil
		}
		if r.generation.Load() == gen {
			r.view.setWishlist(state.UserID, entries)
		}
		return nil
	})
	g.Go(func() error {
		c, err := r.api.FetchCart(ctx, state.AccessToken)
		if err != nil {
			logger.WarnContext(ctx, "failed to refresh account cart", "error", err)
			return nil
		}
		if r.generation.Load() == gen {
			r.view.setCart(state.UserID, c)
		}
		return nil
	})
	_ = g.Wait()
}

func (r *Reconciler) observeRun(outcome string, took time.Duration) {
	if r.metrics != nil {
		r.metrics.ObserveMergeRun(outcome, took)
	}
}
