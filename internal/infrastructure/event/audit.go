package event

import (
	"context"
	"encoding/json"

	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/shopdesk/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// AuditLogSubscriber writes every domain event to the structured log as an
// audit trail entry. The full event is embedded as JSON under "payload".
type AuditLogSubscriber struct {
	logger *zap.Logger
}

// NewAuditLogSubscriber creates an AuditLogSubscriber
func NewAuditLogSubscriber(l *zap.Logger) *AuditLogSubscriber {
	if l == nil {
		l = zap.NewNop()
	}
	return &AuditLogSubscriber{logger: l.Named("audit")}
}

// EventTypes subscribes to everything
func (s *AuditLogSubscriber) EventTypes() []string {
	return nil
}

// Handle logs the event
func (s *AuditLogSubscriber) Handle(ctx context.Context, evt shared.DomainEvent) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	fields := []zap.Field{
		zap.String("event_type", evt.EventType()),
		zap.String("event_id", evt.EventID().String()),
		zap.String("aggregate_type", evt.AggregateType()),
		zap.String("aggregate_id", evt.AggregateID().String()),
		zap.Time("occurred_at", evt.OccurredAt()),
		zap.ByteString("payload", payload),
	}
	if userID := logger.GetUserID(ctx); userID != "" {
		fields = append(fields, zap.String("actor_id", userID))
	}
	if requestID := logger.GetRequestID(ctx); requestID != "" {
		fields = append(fields, zap.String("request_id", requestID))
	}
	s.logger.Info("Domain event", fields...)
	return nil
}

var _ shared.EventHandler = (*AuditLogSubscriber)(nil)
