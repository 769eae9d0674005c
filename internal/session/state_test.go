package session

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "storefront/pkg/domain"
)

func signedInState() State {
	return State{
		UserID:      id.NewUserID(),
		Role:        id.RoleUser,
		Email:       "ana@example.com",
		FullName:    "Ana Lima",
		AccessToken: "tok-1",
	}
}

func TestTracker_PublishesTransitions(t *testing.T) {
	ctx := context.Background()
	tracker := NewTracker(Anonymous)
	var changes []Change
	tracker.Subscribe(func(_ context.Context, c Change) { changes = append(changes, c) })

	tracker.SignIn(ctx, signedInState())
	tracker.RefreshToken(ctx, "tok-2")
	tracker.SignOut(ctx)

	require.Len(t, changes, 3)
	assert.True(t, changes[0].SignedIn())
	assert.False(t, changes[0].SignedOut())
	assert.False(t, changes[1].SignedIn())
	assert.Equal(t, "tok-2", changes[1].Next.AccessToken)
	assert.True(t, changes[2].SignedOut())
	assert.Equal(t, Anonymous, tracker.Current())
}

func TestTracker_NoChangeNoEvent(t *testing.T) {
	ctx := context.Background()
	tracker := NewTracker(Anonymous)
	calls := 0
	tracker.Subscribe(func(context.Context, Change) { calls++ })

	tracker.SignOut(ctx)
	tracker.RefreshToken(ctx, "ignored")

	assert.Equal(t, 0, calls)
	assert.Empty(t, tracker.Current().AccessToken)
}

func TestTracker_RestoredSessionIsNotASignIn(t *testing.T) {
	restored := signedInState()
	restored.Authenticated = true
	tracker := NewTracker(restored)

	assert.True(t, tracker.Current().Authenticated)

	var got []Change
	tracker.Subscribe(func(_ context.Context, c Change) { got = append(got, c) })
	tracker.RefreshToken(context.Background(), "tok-9")
	require.Len(t, got, 1)
	assert.False(t, got[0].SignedIn())
}

func TestTracker_InitialStateWithoutAuthIsAnonymous(t *testing.T) {
	tracker := NewTracker(State{AccessToken: "stale"})
	assert.Equal(t, Anonymous, tracker.Current())
}

func TestTracker_Unsubscribe(t *testing.T) {
	tracker := NewTracker(Anonymous)
	calls := 0
	unsubscribe := tracker.Subscribe(func(context.Context, Change) { calls++ })
	unsubscribe()

	tracker.SignIn(context.Background(), signedInState())
	assert.Equal(t, 0, calls)
}

func TestTracker_ListenersSeeOrderedChanges(t *testing.T) {
	ctx := context.Background()
	tracker := NewTracker(Anonymous)
	var mu sync.Mutex
	var seen []bool
	tracker.Subscribe(func(_ context.Context, c Change) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, c.Next.Authenticated)
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				tracker.SignIn(ctx, signedInState())
			} else {
				tracker.SignOut(ctx)
			}
		}(i)
	}
	wg.Wait()

	// Each delivered change must differ from the previous one.
	mu.Lock()
	defer mu.Unlock()
	for i := 1; i < len(seen); i++ {
		if seen[i] == seen[i-1] {
			// Two sign-ins in a row are allowed (different users), sign-outs never repeat.
			assert.True(t, seen[i], "consecutive sign-outs delivered")
		}
	}
}
