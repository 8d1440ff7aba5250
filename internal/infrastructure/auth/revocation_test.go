package auth

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newMemoryStoreAt(start time.Time) (*MemoryRevocationStore, *fakeClock) {
	clock := &fakeClock{t: start}
	store := NewMemoryRevocationStore()
	store.now = clock.now
	return store, clock
}

func TestMemoryRevocationStore_RevokeToken(t *testing.T) {
	ctx := context.Background()
	store, clock := newMemoryStoreAt(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	issued := clock.t.Add(-time.Minute)

	require.NoError(t, store.RevokeToken(ctx, "jti-1", 10*time.Minute))

	revoked, err := store.IsRevoked(ctx, "jti-1", "user-1", issued)
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = store.IsRevoked(ctx, "jti-2", "user-1", issued)
	require.NoError(t, err)
	assert.False(t, revoked, "other tokens of the same user stay valid")

	clock.advance(10 * time.Minute)
	revoked, err = store.IsRevoked(ctx, "jti-1", "user-1", issued)
	require.NoError(t, err)
	assert.False(t, revoked)
	assert.Empty(t, store.tokens, "expired entry is pruned")
}

func TestMemoryRevocationStore_RevokeUser(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	store, clock := newMemoryStoreAt(start)

	require.NoError(t, store.RevokeUser(ctx, "user-1", time.Hour))

	tests := []struct {
		name     string
		userID   string
		issuedAt time.Time
		want     bool
	}{
		{"issued before revocation", "user-1", start.Add(-time.Minute), true},
		{"issued in the same second", "user-1", start.Add(500 * time.Millisecond), true},
		{"issued after revocation", "user-1", start.Add(2 * time.Second), false},
		{"other user", "user-2", start.Add(-time.Minute), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			revoked, err := store.IsRevoked(ctx, "any", tt.userID, tt.issuedAt)
			require.NoError(t, err)
			assert.Equal(t, tt.want, revoked)
		})
	}

	clock.advance(time.Hour)
	revoked, err := store.IsRevoked(ctx, "any", "user-1", start.Add(-time.Minute))
	require.NoError(t, err)
	assert.False(t, revoked)
	assert.Empty(t, store.users)
}

func TestRedisRevocationStore_Unreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	store := NewRedisRevocationStore(client)
	ctx := context.Background()

	assert.Error(t, store.RevokeToken(ctx, "jti-1", time.Minute))
	assert.Error(t, store.RevokeUser(ctx, "user-1", time.Minute))

	revoked, err := store.IsRevoked(ctx, "jti-1", "user-1", time.Now())
	assert.Error(t, err)
	assert.False(t, revoked)
}

func TestRevocationKeys(t *testing.T) {
	assert.Equal(t, "shopdesk:revoked:jti:abc", tokenKey("abc"))
	assert.Equal(t, "shopdesk:revoked:user:42", userKey("42"))
}
