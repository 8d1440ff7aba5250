package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/inventory"
)

// AdjustStockInput is a manual stock movement recorded by staff
type AdjustStockInput struct {
	ProductID uuid.UUID
	Type      string
	Direction string // CORRECTION only
	Quantity  int
	Reason    string
}

// StockResponse is the current stock of one product
type StockResponse struct {
	ProductID     uuid.UUID  `json:"product_id"`
	SKU           string     `json:"sku"`
	Name          string     `json:"name"`
	Quantity      int        `json:"quantity"`
	MinStockLevel int        `json:"min_stock_level"`
	IsLow         bool       `json:"is_low"`
	LastUpdated   *time.Time `json:"last_updated,omitempty"`
}

// AdjustmentResponse represents a ledger entry in API responses
type AdjustmentResponse struct {
	ID               uuid.UUID  `json:"id"`
	ProductID        uuid.UUID  `json:"product_id"`
	Type             string     `json:"type"`
	Direction        string     `json:"direction"`
	Quantity         int        `json:"quantity"`
	Delta            int        `json:"delta"`
	PreviousQuantity int        `json:"previous_quantity"`
	NewQuantity      int        `json:"new_quantity"`
	ReferenceType    string     `json:"reference_type"`
	ReferenceID      *uuid.UUID `json:"reference_id,omitempty"`
	ReferenceNumber  string     `json:"reference_number,omitempty"`
	ActorID          uuid.UUID  `json:"actor_id"`
	Reason           string     `json:"reason,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// LowStockResponse is one line of the low-stock report
type LowStockResponse struct {
	ProductID     uuid.UUID `json:"product_id"`
	SKU           string    `json:"sku"`
	Name          string    `json:"name"`
	Quantity      int       `json:"quantity"`
	MinStockLevel int       `json:"min_stock_level"`
	Shortfall     int       `json:"shortfall"`
}

// ToAdjustmentResponse converts a ledger entry
func ToAdjustmentResponse(a *inventory.StockAdjustment) AdjustmentResponse {
	return AdjustmentResponse{
		ID:               a.ID,
		ProductID:        a.ProductID,
		Type:             string(a.Type),
		Direction:        string(a.Direction),
		Quantity:         a.Quantity,
		Delta:            a.Delta,
		PreviousQuantity: a.PreviousQuantity,
		NewQuantity:      a.NewQuantity,
		ReferenceType:    string(a.Reference.Type),
		ReferenceID:      a.Reference.ID,
		ReferenceNumber:  a.Reference.Number,
		ActorID:          a.ActorID,
		Reason:           a.Reason,
		CreatedAt:        a.CreatedAt,
	}
}

// ToAdjustmentResponses converts ledger entries
func ToAdjustmentResponses(items []*inventory.StockAdjustment) []AdjustmentResponse {
	out := make([]AdjustmentResponse, len(items))
	for i, a := range items {
		out[i] = ToAdjustmentResponse(a)
	}
	return out
}

func toLowStockResponses(items []inventory.LowStockItem) []LowStockResponse {
	out := make([]LowStockResponse, len(items))
	for i, item := range items {
		out[i] = LowStockResponse{
			ProductID:     item.ProductID,
			SKU:           item.SKU,
			Name:          item.Name,
			Quantity:      item.Quantity,
			MinStockLevel: item.MinStockLevel,
			Shortfall:     item.Shortfall,
		}
	}
	return out
}
