package shared

import (
	"context"
	"time"

	domainshared "github.com/shopdesk/backend/internal/domain/shared"
)

// DefaultConflictRetries is how many times a transactional operation is attempted
// when it loses an optimistic-locking race
const DefaultConflictRetries = 3

// RetryOnConflict runs fn up to attempts times while it fails with CONCURRENCY_CONFLICT.
// fn must be a whole transaction so each attempt re-reads current state.
func RetryOnConflict(ctx context.Context, attempts int, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for i := 0; i < attempts; i++ {
		err = fn()
		if err == nil || !domainshared.IsConcurrencyConflict(err) {
			return err
		}
		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(i+1) * 10 * time.Millisecond):
			}
		}
	}
	return err
}
