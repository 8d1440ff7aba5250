package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryIdempotencyStore_Claim(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()

	t.Run("claims a new key", func(t *testing.T) {
		claimed, err := store.Claim(ctx, "checkout-1", time.Hour)
		require.NoError(t, err)
		assert.True(t, claimed)
	})

	t.Run("rejects a key already claimed", func(t *testing.T) {
		claimed, err := store.Claim(ctx, "checkout-2", time.Hour)
		require.NoError(t, err)
		assert.True(t, claimed)

		claimed, err = store.Claim(ctx, "checkout-2", time.Hour)
		require.NoError(t, err)
		assert.False(t, claimed, "duplicate request must not be claimed again")
	})

	t.Run("allows a new claim after expiry", func(t *testing.T) {
		clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
		store.now = func() time.Time { return clock }
		defer func() { store.now = time.Now }()

		claimed, err := store.Claim(ctx, "checkout-3", time.Minute)
		require.NoError(t, err)
		assert.True(t, claimed)

		clock = clock.Add(time.Minute)
		claimed, err = store.Claim(ctx, "checkout-3", time.Minute)
		require.NoError(t, err)
		assert.True(t, claimed, "expired key should be claimable")
	})
}

func TestInMemoryIdempotencyStore_Release(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()

	_, err := store.Claim(ctx, "failed-request", time.Hour)
	require.NoError(t, err)
	require.NoError(t, store.Release(ctx, "failed-request"))

	claimed, err := store.Claim(ctx, "failed-request", time.Hour)
	require.NoError(t, err)
	assert.True(t, claimed, "released key can be retried")

	assert.NoError(t, store.Release(ctx, "never-claimed"))
}

func TestInMemoryIdempotencyStore_Cleanup(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()
	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return clock }

	_, _ = store.Claim(ctx, "short-lived-1", time.Second)
	_, _ = store.Claim(ctx, "short-lived-2", time.Second)
	_, _ = store.Claim(ctx, "long-lived", time.Hour)
	assert.Equal(t, 3, store.Size())

	clock = clock.Add(time.Minute)
	store.cleanup()

	assert.Equal(t, 1, store.Size())
	claimed, err := store.Claim(ctx, "long-lived", time.Hour)
	require.NoError(t, err)
	assert.False(t, claimed)
}

func TestInMemoryIdempotencyStore_ConcurrentAccess(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	ctx := context.Background()
	const numGoroutines = 100

	results := make(chan bool, numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func() {
			claimed, err := store.Claim(ctx, "concurrent-key", time.Hour)
			results <- err == nil && claimed
		}()
	}

	winners := 0
	for i := 0; i < numGoroutines; i++ {
		if <-results {
			winners++
		}
	}
	assert.Equal(t, 1, winners, "exactly one goroutine should claim the key")
}

func TestInMemoryIdempotencyStore_Close(t *testing.T) {
	store := NewInMemoryIdempotencyStore()

	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close(), "multiple closes should be safe")
}

func TestIdempotencyStoreFactory_CreateStore(t *testing.T) {
	t.Run("falls back to memory without redis", func(t *testing.T) {
		store, err := NewIdempotencyStoreFactory(nil).CreateStore()
		require.NoError(t, err)
		defer store.Close()
		assert.IsType(t, &InMemoryIdempotencyStore{}, store)
	})

	t.Run("fails without redis when fallback disabled", func(t *testing.T) {
		_, err := NewIdempotencyStoreFactory(nil, WithInMemoryFallback(false)).CreateStore()
		assert.Error(t, err)
	})
}
