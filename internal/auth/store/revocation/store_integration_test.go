//go:build integration

package revocation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/pkg/testutil/containers"
)

type revocationList interface {
	RevokeToken(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

func exerciseTRL(t *testing.T, trl revocationList) {
	ctx := context.Background()

	revoked, err := trl.IsRevoked(ctx, "never-revoked")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, trl.RevokeToken(ctx, "jti-live", time.Hour))
	revoked, err = trl.IsRevoked(ctx, "jti-live")
	require.NoError(t, err)
	assert.True(t, revoked)

	// Revoking twice extends rather than fails.
	require.NoError(t, trl.RevokeToken(ctx, "jti-live", 2*time.Hour))
}

func TestRedisTRL(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	rc := containers.GetManager().GetRedis(t)
	require.NoError(t, rc.FlushAll(context.Background()))
	trl := NewRedisTRL(rc.Client)
	exerciseTRL(t, trl)

	t.Run("entries expire with their ttl", func(t *testing.T) {
		ctx := context.Background()
		require.NoError(t, trl.RevokeToken(ctx, "jti-short", 50*time.Millisecond))
		require.Eventually(t, func() bool {
			revoked, err := trl.IsRevoked(ctx, "jti-short")
			return err == nil && !revoked
		}, 5*time.Second, 50*time.Millisecond)
	})
}

func TestPostgresTRL(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()
	pg := containers.GetManager().GetPostgres(t)
	require.NoError(t, pg.Exec(ctx, Schema))
	require.NoError(t, pg.TruncateTables(ctx, "token_revocations"))

	now := time.Now().UTC()
	trl := NewPostgresTRL(pg.DB, func() time.Time { return now })
	exerciseTRL(t, trl)

	t.Run("expired rows read as not revoked", func(t *testing.T) {
		require.NoError(t, trl.RevokeToken(ctx, "jti-old", time.Minute))
		now = now.Add(2 * time.Minute)
		revoked, err := trl.IsRevoked(ctx, "jti-old")
		require.NoError(t, err)
		assert.False(t, revoked)
	})
}
