package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers client-supplied idempotency keys so a retried
// mutating request (e.g. a double-submitted checkout) is not applied twice.
type IdempotencyStore interface {
	// Claim marks the key as in use for ttl.
	// Returns true if the key was newly claimed, false if it was already present.
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Release forgets a key so the request can be retried (used when the request failed)
	Release(ctx context.Context, key string) error

	// Close closes the store and releases resources
	Close() error
}

// IdempotencyConfig holds configuration for idempotency handling
type IdempotencyConfig struct {
	// TTL is how long a claimed key blocks replays. Default: 24 hours
	TTL time.Duration
	// Enabled determines whether idempotency checking is enabled
	Enabled bool
}

// DefaultIdempotencyConfig returns the default idempotency configuration
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
