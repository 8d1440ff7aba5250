package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	warrantyapp "github.com/shopdesk/backend/internal/application/warranty"
	"go.uber.org/zap"
)

// Sweeper expires lapsed warranties
type Sweeper interface {
	Sweep(ctx context.Context) (*warrantyapp.SweepResult, error)
}

// ExpiryTriggerConfig holds configuration for the expiry trigger
type ExpiryTriggerConfig struct {
	// Interval between sweeps
	Interval time.Duration
	// RunOnStart sweeps once immediately when the trigger starts
	RunOnStart bool
	// Timeout bounds a single sweep
	Timeout time.Duration
}

// DefaultExpiryTriggerConfig returns default trigger configuration
func DefaultExpiryTriggerConfig() ExpiryTriggerConfig {
	return ExpiryTriggerConfig{
		Interval:   time.Hour,
		RunOnStart: true,
		Timeout:    5 * time.Minute,
	}
}

// Validate checks the configuration
func (c ExpiryTriggerConfig) Validate() error {
	if c.Interval <= 0 || c.Timeout <= 0 {
		return ErrInvalidConfig
	}
	return nil
}

// ExpiryStatus describes the trigger's recent activity
type ExpiryStatus struct {
	Running     bool                     `json:"running"`
	Sweeping    bool                     `json:"sweeping"`
	Interval    string                   `json:"interval"`
	LastRunAt   *time.Time               `json:"last_run_at,omitempty"`
	NextRunAt   *time.Time               `json:"next_run_at,omitempty"`
	LastResult  *warrantyapp.SweepResult `json:"last_result,omitempty"`
	LastError   string                   `json:"last_error,omitempty"`
	TotalSwept  int                      `json:"total_swept"`
	TotalErrors int                      `json:"total_errors"`
}

// ExpiryTrigger periodically moves lapsed warranties to EXPIRED. Sweeps never
// overlap, whether started by the ticker or by RunNow.
type ExpiryTrigger struct {
	config  ExpiryTriggerConfig
	sweeper Sweeper
	logger  *zap.Logger
	now     func() time.Time

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
	sweeping  bool
	status    ExpiryStatus
}

// NewExpiryTrigger creates a new expiry trigger
func NewExpiryTrigger(config ExpiryTriggerConfig, sweeper Sweeper, logger *zap.Logger) (*ExpiryTrigger, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &ExpiryTrigger{
		config:  config,
		sweeper: sweeper,
		logger:  logger,
		now:     time.Now,
		status:  ExpiryStatus{Interval: config.Interval.String()},
	}, nil
}

// Start starts the background loop
func (t *ExpiryTrigger) Start(ctx context.Context) error {
	t.mu.Lock()
	if t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = true
	next := t.now().Add(t.config.Interval)
	t.status.NextRunAt = &next
	t.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel

	t.wg.Add(1)
	go t.runLoop(ctx)

	t.logger.Info("Warranty expiry trigger started", zap.Duration("interval", t.config.Interval))
	return nil
}

// Stop stops the loop and waits for an in-flight sweep to finish
func (t *ExpiryTrigger) Stop(ctx context.Context) error {
	t.mu.Lock()
	if !t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = false
	t.status.NextRunAt = nil
	t.mu.Unlock()

	if t.cancel != nil {
		t.cancel()
	}

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		t.logger.Info("Warranty expiry trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *ExpiryTrigger) runLoop(ctx context.Context) {
	defer t.wg.Done()

	if t.config.RunOnStart {
		t.runScheduled(ctx)
	}

	ticker := time.NewTicker(t.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.runScheduled(ctx)
		}
	}
}

func (t *ExpiryTrigger) runScheduled(ctx context.Context) {
	if _, err := t.RunNow(ctx); err != nil && !errors.Is(err, ErrSweepInProgress) {
		t.logger.Error("Scheduled warranty expiry sweep failed", zap.Error(err))
	}
	t.mu.Lock()
	if t.isRunning {
		next := t.now().Add(t.config.Interval)
		t.status.NextRunAt = &next
	}
	t.mu.Unlock()
}

// RunNow sweeps immediately. It returns ErrSweepInProgress when another
// sweep is still running.
func (t *ExpiryTrigger) RunNow(ctx context.Context) (*warrantyapp.SweepResult, error) {
	t.mu.Lock()
	if t.sweeping {
		t.mu.Unlock()
		return nil, ErrSweepInProgress
	}
	t.sweeping = true
	t.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, t.config.Timeout)
	defer cancel()
	result, err := t.sweeper.Sweep(ctx)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.sweeping = false
	ranAt := t.now()
	t.status.LastRunAt = &ranAt
	if err != nil {
		t.status.LastError = err.Error()
		t.status.TotalErrors++
		return nil, err
	}
	t.status.LastError = ""
	t.status.LastResult = result
	t.status.TotalSwept += result.Expired
	return result, nil
}

// Status returns a snapshot of the trigger's state
func (t *ExpiryTrigger) Status() ExpiryStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	status := t.status
	status.Running = t.isRunning
	status.Sweeping = t.sweeping
	return status
}
