//go:build integration

package sequence

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisGenerator_Next(t *testing.T) {
	client := startRedis(t)
	ctx := context.Background()
	gen := NewRedisGenerator(client, WithKeyTTL(time.Hour))
	day := time.Date(2026, 2, 3, 10, 0, 0, 0, time.UTC)

	first, err := gen.Next(ctx, shared.DocumentTypeSale, day)
	require.NoError(t, err)
	second, err := gen.Next(ctx, shared.DocumentTypeSale, day)
	require.NoError(t, err)
	assert.Equal(t, int64(1), first)
	assert.Equal(t, int64(2), second)

	other, err := gen.Next(ctx, shared.DocumentTypeRepair, day)
	require.NoError(t, err)
	assert.Equal(t, int64(1), other)

	ttl, err := client.PTTL(ctx, gen.Key(shared.DocumentTypeSale, day)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 59*time.Minute)
}

func TestRedisGenerator_ConcurrentCallersGetDistinctValues(t *testing.T) {
	client := startRedis(t)
	gen := NewRedisGenerator(client)
	day := time.Date(2026, 2, 4, 0, 0, 0, 0, time.UTC)

	const callers = 50
	values := make(chan int64, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := gen.Next(context.Background(), shared.DocumentTypeWarranty, day)
			if err == nil {
				values <- v
			}
		}()
	}
	wg.Wait()
	close(values)

	seen := make(map[int64]bool)
	for v := range values {
		assert.False(t, seen[v], "duplicate sequence value %d", v)
		seen[v] = true
	}
	assert.Len(t, seen, callers)
}
