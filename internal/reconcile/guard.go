package reconcile

import (
	"sync/atomic"

	"storefront/internal/session"
)

// Guard is a non-blocking latch: the first TryAcquire in a session wins and
// every later caller skips until Reset.
type Guard struct {
	set atomic.Bool
}

// TryAcquire sets the guard and reports whether this caller set it.
func (g *Guard) TryAcquire() bool {
	return g.set.CompareAndSwap(false, true)
}

func (g *Guard) Reset() {
	g.set.Store(false)
}

func (g *Guard) IsSet() bool {
	return g.set.Load()
}

// ShouldMerge reports an anonymous to authenticated transition.
func ShouldMerge(prev, next session.State) bool {
	return session.Change{Prev: prev, Next: next}.SignedIn()
}

// ShouldReset reports an authenticated to anonymous transition.
func ShouldReset(prev, next session.State) bool {
	return session.Change{Prev: prev, Next: next}.SignedOut()
}
