package inventory

import (
	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/shared"
)

// AggregateTypeStockRecord names the stock record in events
const AggregateTypeStockRecord = "StockRecord"

// EventTypeStockAdjusted is raised for every committed adjustment
const EventTypeStockAdjusted = "StockAdjusted"

// StockAdjustedEvent carries one ledger movement
type StockAdjustedEvent struct {
	shared.BaseDomainEvent
	AdjustmentID     uuid.UUID      `json:"adjustment_id"`
	ProductID        uuid.UUID      `json:"product_id"`
	AdjustmentType   AdjustmentType `json:"adjustment_type"`
	Delta            int            `json:"delta"`
	PreviousQuantity int            `json:"previous_quantity"`
	NewQuantity      int            `json:"new_quantity"`
	ReferenceType    ReferenceType  `json:"reference_type"`
	ReferenceNumber  string         `json:"reference_number,omitempty"`
}

// NewStockAdjustedEvent creates a StockAdjustedEvent
func NewStockAdjustedEvent(adj *StockAdjustment) *StockAdjustedEvent {
	return &StockAdjustedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeStockAdjusted, AggregateTypeStockRecord, adj.ProductID),
		AdjustmentID:     adj.ID,
		ProductID:        adj.ProductID,
		AdjustmentType:   adj.Type,
		Delta:            adj.Delta,
		PreviousQuantity: adj.PreviousQuantity,
		NewQuantity:      adj.NewQuantity,
		ReferenceType:    adj.Reference.Type,
		ReferenceNumber:  adj.Reference.Number,
	}
}
