// Package sequence provides document number generators that live outside the database.
package sequence

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopdesk/backend/internal/domain/shared"
)

const (
	defaultKeyPrefix = "seq:"
	// counters outlive their day so late retries still see the right value
	defaultKeyTTL = 72 * time.Hour
)

// incrWithExpiry increments the counter and sets its expiry on first use in one round trip
var incrWithExpiry = redis.NewScript(`
local v = redis.call("INCR", KEYS[1])
if v == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return v
`)

// RedisGenerator draws document sequence values from Redis counters.
// Values are not rolled back with a failed database transaction, so numbers may have gaps.
type RedisGenerator struct {
	client    redis.Scripter
	keyPrefix string
	ttl       time.Duration
}

// Option configures a RedisGenerator
type Option func(*RedisGenerator)

// WithKeyPrefix sets the key prefix (default "seq:")
func WithKeyPrefix(prefix string) Option {
	return func(g *RedisGenerator) {
		g.keyPrefix = prefix
	}
}

// WithKeyTTL sets how long a day's counter is kept
func WithKeyTTL(ttl time.Duration) Option {
	return func(g *RedisGenerator) {
		g.ttl = ttl
	}
}

// NewRedisGenerator creates a generator over an existing client
func NewRedisGenerator(client redis.Scripter, opts ...Option) *RedisGenerator {
	g := &RedisGenerator{
		client:    client,
		keyPrefix: defaultKeyPrefix,
		ttl:       defaultKeyTTL,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Key returns the counter key for (docType, day)
func (g *RedisGenerator) Key(docType shared.DocumentType, day time.Time) string {
	return g.keyPrefix + string(docType) + ":" + shared.SequenceDay(day)
}

// Next increments and returns the counter for (docType, day)
func (g *RedisGenerator) Next(ctx context.Context, docType shared.DocumentType, day time.Time) (int64, error) {
	key := g.Key(docType, day)
	value, err := incrWithExpiry.Run(ctx, g.client, []string{key}, g.ttl.Milliseconds()).Int64()
	if err != nil {
		return 0, fmt.Errorf("increment sequence %s: %w", key, err)
	}
	return value, nil
}

var _ shared.SequenceGenerator = (*RedisGenerator)(nil)
