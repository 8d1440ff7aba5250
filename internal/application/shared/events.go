package shared

import (
	"context"

	domainshared "github.com/shopdesk/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// EventRecorder gathers domain events raised inside a transaction so they can be
// published only after commit
type EventRecorder struct {
	events []domainshared.DomainEvent
}

// eventSource is implemented by aggregates embedding BaseAggregateRoot
type eventSource interface {
	PullDomainEvents() []domainshared.DomainEvent
}

// Collect drains pending events from aggregates
func (r *EventRecorder) Collect(sources ...eventSource) {
	for _, s := range sources {
		if s == nil {
			continue
		}
		r.events = append(r.events, s.PullDomainEvents()...)
	}
}

// Record appends standalone events
func (r *EventRecorder) Record(events ...domainshared.DomainEvent) {
	r.events = append(r.events, events...)
}

// Reset drops everything gathered so far; used when a transaction is retried
func (r *EventRecorder) Reset() {
	r.events = nil
}

// Events returns the gathered events
func (r *EventRecorder) Events() []domainshared.DomainEvent {
	return r.events
}

// Publish hands gathered events to the publisher. Publishing failures are logged,
// never returned, since the business transaction has already committed.
func (r *EventRecorder) Publish(ctx context.Context, publisher domainshared.EventPublisher, logger *zap.Logger) {
	if publisher == nil || len(r.events) == 0 {
		return
	}
	if err := publisher.Publish(ctx, r.events...); err != nil && logger != nil {
		logger.Warn("Failed to publish domain events", zap.Int("count", len(r.events)), zap.Error(err))
	}
	r.events = nil
}
