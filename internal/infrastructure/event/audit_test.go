package event

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/inventory"
	"github.com/shopdesk/backend/internal/infrastructure/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestAuditLogSubscriber_Handle(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	sub := NewAuditLogSubscriber(zap.New(core))
	assert.Empty(t, sub.EventTypes())

	adj := &inventory.StockAdjustment{
		ID:               uuid.New(),
		ProductID:        uuid.New(),
		Type:             inventory.AdjustmentTypePurchase,
		Delta:            5,
		PreviousQuantity: 1,
		NewQuantity:      6,
		CreatedAt:        time.Now().UTC(),
	}
	evt := inventory.NewStockAdjustedEvent(adj)

	ctx, _ := logger.WithRequestID(context.Background(), zap.NewNop(), "req-1")
	ctx, _ = logger.WithPrincipal(ctx, zap.NewNop(), "user-1", "stocker")

	require.NoError(t, sub.Handle(ctx, evt))

	entries := recorded.FilterMessage("Domain event").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, inventory.EventTypeStockAdjusted, fields["event_type"])
	assert.Equal(t, adj.ProductID.String(), fields["aggregate_id"])
	assert.Equal(t, "user-1", fields["actor_id"])
	assert.Equal(t, "req-1", fields["request_id"])

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(fields["payload"].(string)), &payload))
	assert.Equal(t, float64(5), payload["delta"])
	assert.Equal(t, "PURCHASE", payload["adjustment_type"])
}

func TestAuditLogSubscriber_ThroughBus(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	bus := NewInMemoryEventBus(zap.NewNop())
	bus.Subscribe(NewAuditLogSubscriber(zap.New(core)))

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("A"), newTestEvent("B")))
	assert.Equal(t, 2, recorded.FilterMessage("Domain event").Len())
}
