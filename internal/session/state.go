// Package session tracks the shopper's authentication state and publishes
// every transition to subscribers as an explicit (prev, next) change.
package session

import (
	"context"
	"sync"

	id "storefront/pkg/domain"
)

// State is a snapshot of the shopper's authentication.
// UserID, Role, Email, FullName and AccessToken are only set when Authenticated.
type State struct {
	Authenticated bool
	UserID        id.UserID
	Role          id.Role
	Email         string
	FullName      string
	AccessToken   string
}

// Anonymous is the initial, unauthenticated state.
var Anonymous = State{}

// Change is delivered to listeners after every transition.
type Change struct {
	Prev State
	Next State
}

// SignedIn reports a false→true transition.
func (c Change) SignedIn() bool { return !c.Prev.Authenticated && c.Next.Authenticated }

// SignedOut reports a true→false transition.
func (c Change) SignedOut() bool { return c.Prev.Authenticated && !c.Next.Authenticated }

// Listener is called synchronously, in subscription order, outside the
// tracker's state lock. Listeners must not call SignIn/SignOut/RefreshToken.
type Listener func(ctx context.Context, change Change)

// Tracker owns the current State. It is an explicit container handed to
// whoever needs it rather than a package-level singleton.
type Tracker struct {
	mu        sync.Mutex
	state     State
	listeners map[int]Listener
	order     []int
	nextID    int

	// notifyMu serialises delivery so listeners observe changes in order.
	notifyMu sync.Mutex
}

func NewTracker(initial State) *Tracker {
	if !initial.Authenticated {
		initial = Anonymous
	}
	return &Tracker{state: initial, listeners: make(map[int]Listener)}
}

func (t *Tracker) Current() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Subscribe registers l and returns a function that removes it.
func (t *Tracker) Subscribe(l Listener) func() {
	t.mu.Lock()
	defer t.mu.Unlock()
	lid := t.nextID
	t.nextID++
	t.listeners[lid] = l
	t.order = append(t.order, lid)
	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		delete(t.listeners, lid)
	}
}

// SignIn sets an authenticated state (login, registration, OTP verification).
func (t *Tracker) SignIn(ctx context.Context, next State) {
	next.Authenticated = true
	t.transition(ctx, func(State) State { return next })
}

// SignOut clears the state (logout, token invalidation).
func (t *Tracker) SignOut(ctx context.Context) {
	t.transition(ctx, func(State) State { return Anonymous })
}

// RefreshToken swaps the access token of an authenticated session. It is a
// no-op while anonymous.
func (t *Tracker) RefreshToken(ctx context.Context, token string) {
	t.transition(ctx, func(cur State) State {
		if cur.Authenticated {
			cur.AccessToken = token
		}
		return cur
	})
}

func (t *Tracker) transition(ctx context.Context, apply func(State) State) {
	t.notifyMu.Lock()
	defer t.notifyMu.Unlock()

	t.mu.Lock()
	prev := t.state
	t.state = apply(prev)
	change := Change{Prev: prev, Next: t.state}
	listeners := make([]Listener, 0, len(t.listeners))
	for _, lid := range t.order {
		if l, ok := t.listeners[lid]; ok {
			listeners = append(listeners, l)
		}
	}
	t.mu.Unlock()

	if change.Prev == change.Next {
		return
	}
	for _, l := range listeners {
		l(ctx, change)
	}
}
