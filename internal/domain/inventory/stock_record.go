package inventory

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/shared"
)

// StockRecord holds the current on-hand quantity of one product.
// Quantity never goes below zero after commit. It is only changed through StockLedger.
type StockRecord struct {
	ProductID   uuid.UUID
	Quantity    int
	Version     int
	LastUpdated time.Time
	CreatedAt   time.Time
}

// NewStockRecord creates an empty record for a product
func NewStockRecord(productID uuid.UUID, now time.Time) *StockRecord {
	return &StockRecord{
		ProductID:   productID,
		Quantity:    0,
		Version:     1,
		LastUpdated: now,
		CreatedAt:   now,
	}
}

// apply moves the quantity by delta, refusing to go negative
func (r *StockRecord) apply(delta int, now time.Time) error {
	next := r.Quantity + delta
	if next < 0 {
		return shared.NewDomainError(shared.CodeInsufficientStock,
			fmt.Sprintf("Insufficient stock: available %d, requested %d", r.Quantity, -delta)).
			WithDetail("product_id", r.ProductID.String()).
			WithDetail("available", r.Quantity).
			WithDetail("requested", -delta)
	}
	r.Quantity = next
	r.Version++
	r.LastUpdated = now
	return nil
}

// HasAtLeast reports whether quantity units are on hand
func (r *StockRecord) HasAtLeast(quantity int) bool {
	return r.Quantity >= quantity
}
