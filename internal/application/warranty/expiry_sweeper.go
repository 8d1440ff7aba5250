package warranty

import (
	"context"
	"time"

	appshared "github.com/shopdesk/backend/internal/application/shared"
	"github.com/shopdesk/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// DefaultSweepBatchSize bounds how many warranties one sweep transaction expires
const DefaultSweepBatchSize = 200

// ExpirySweeper materializes EXPIRED on warranties past their end date.
// Reads already report them as expired; the sweep keeps stored status in line
// for status queries. Re-running it changes nothing.
type ExpirySweeper struct {
	scope     appshared.TransactionScope
	publisher shared.EventPublisher
	logger    *zap.Logger
	batchSize int
	now       func() time.Time
}

// NewExpirySweeper creates a new ExpirySweeper
func NewExpirySweeper(scope appshared.TransactionScope, publisher shared.EventPublisher, logger *zap.Logger) *ExpirySweeper {
	return &ExpirySweeper{
		scope:     scope,
		publisher: publisher,
		logger:    logger,
		batchSize: DefaultSweepBatchSize,
		now:       time.Now,
	}
}

// WithBatchSize overrides the per-transaction batch size
func (s *ExpirySweeper) WithBatchSize(n int) *ExpirySweeper {
	if n > 0 {
		s.batchSize = n
	}
	return s
}

// Sweep expires every ACTIVE or CLAIMED warranty whose end date is before now,
// one batch per transaction
func (s *ExpirySweeper) Sweep(ctx context.Context) (*SweepResult, error) {
	now := s.now()
	result := &SweepResult{RanAt: now}
	for {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		n, err := s.sweepBatch(ctx, now)
		if err != nil {
			s.logger.Error("Warranty expiry sweep failed",
				zap.Int("expired_so_far", result.Expired),
				zap.Error(err))
			return result, err
		}
		if n == 0 {
			break
		}
		result.Expired += n
		result.Batches++
		if n < s.batchSize {
			break
		}
	}
	s.logger.Info("Warranty expiry sweep finished",
		zap.Int("expired", result.Expired),
		zap.Int("batches", result.Batches))
	return result, nil
}

func (s *ExpirySweeper) sweepBatch(ctx context.Context, now time.Time) (int, error) {
	var (
		recorder appshared.EventRecorder
		expired  int
	)
	err := appshared.RetryOnConflict(ctx, appshared.DefaultConflictRetries, func() error {
		recorder.Reset()
		expired = 0
		return s.scope.Execute(ctx, func(repos appshared.Repositories) error {
			due, err := repos.Warranties().FindExpirable(ctx, now, s.batchSize)
			if err != nil {
				return err
			}
			for _, w := range due {
				if !w.Expire(now) {
					continue
				}
				if err := repos.Warranties().Save(ctx, w); err != nil {
					return err
				}
				recorder.Collect(w)
				expired++
			}
			return nil
		})
	})
	if err != nil {
		return 0, err
	}
	recorder.Publish(ctx, s.publisher, s.logger)
	return expired, nil
}
