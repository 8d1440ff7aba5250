package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/inventory"
)

// StockRecordModel holds the current on-hand quantity of one product.
// The product id is the primary key so there is at most one row per product.
type StockRecordModel struct {
	ProductID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Quantity    int       `gorm:"not null;default:0;check:chk_stock_records_quantity,quantity >= 0"`
	Version     int       `gorm:"not null;default:1"`
	LastUpdated time.Time `gorm:"not null"`
	CreatedAt   time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (StockRecordModel) TableName() string {
	return "stock_records"
}

// ToDomain converts the persistence model to a domain StockRecord
func (m *StockRecordModel) ToDomain() *inventory.StockRecord {
	return &inventory.StockRecord{
		ProductID:   m.ProductID,
		Quantity:    m.Quantity,
		Version:     m.Version,
		LastUpdated: m.LastUpdated,
		CreatedAt:   m.CreatedAt,
	}
}

// StockRecordModelFromDomain creates a persistence model from a domain StockRecord
func StockRecordModelFromDomain(r *inventory.StockRecord) *StockRecordModel {
	return &StockRecordModel{
		ProductID:   r.ProductID,
		Quantity:    r.Quantity,
		Version:     r.Version,
		LastUpdated: r.LastUpdated,
		CreatedAt:   r.CreatedAt,
	}
}

// StockAdjustmentModel is one immutable ledger row
type StockAdjustmentModel struct {
	ID               uuid.UUID                `gorm:"type:uuid;primary_key"`
	ProductID        uuid.UUID                `gorm:"type:uuid;not null;index:idx_stock_adj_product_created,priority:1"`
	Type             inventory.AdjustmentType `gorm:"column:adjustment_type;type:varchar(30);not null"`
	Direction        inventory.Direction      `gorm:"type:varchar(10);not null"`
	Quantity         int                      `gorm:"not null"`
	Delta            int                      `gorm:"not null"`
	PreviousQuantity int                      `gorm:"not null"`
	NewQuantity      int                      `gorm:"not null"`
	ReferenceType    inventory.ReferenceType  `gorm:"type:varchar(30);not null;index:idx_stock_adj_reference,priority:1"`
	ReferenceID      *uuid.UUID               `gorm:"type:uuid;index:idx_stock_adj_reference,priority:2"`
	ReferenceNumber  string                   `gorm:"type:varchar(50)"`
	ActorID          uuid.UUID                `gorm:"type:uuid;not null"`
	Reason           string                   `gorm:"type:varchar(500)"`
	CreatedAt        time.Time                `gorm:"not null;index:idx_stock_adj_product_created,priority:2"`
}

// TableName returns the table name for GORM
func (StockAdjustmentModel) TableName() string {
	return "stock_adjustments"
}

// ToDomain converts the persistence model to a domain StockAdjustment
func (m *StockAdjustmentModel) ToDomain() *inventory.StockAdjustment {
	return &inventory.StockAdjustment{
		ID:               m.ID,
		ProductID:        m.ProductID,
		Type:             m.Type,
		Direction:        m.Direction,
		Quantity:         m.Quantity,
		Delta:            m.Delta,
		PreviousQuantity: m.PreviousQuantity,
		NewQuantity:      m.NewQuantity,
		Reference: inventory.Reference{
			Type:   m.ReferenceType,
			ID:     m.ReferenceID,
			Number: m.ReferenceNumber,
		},
		ActorID:   m.ActorID,
		Reason:    m.Reason,
		CreatedAt: m.CreatedAt,
	}
}

// StockAdjustmentModelFromDomain creates a persistence model from a domain StockAdjustment
func StockAdjustmentModelFromDomain(a *inventory.StockAdjustment) *StockAdjustmentModel {
	return &StockAdjustmentModel{
		ID:               a.ID,
		ProductID:        a.ProductID,
		Type:             a.Type,
		Direction:        a.Direction,
		Quantity:         a.Quantity,
		Delta:            a.Delta,
		PreviousQuantity: a.PreviousQuantity,
		NewQuantity:      a.NewQuantity,
		ReferenceType:    a.Reference.Type,
		ReferenceID:      a.Reference.ID,
		ReferenceNumber:  a.Reference.Number,
		ActorID:          a.ActorID,
		Reason:           a.Reason,
		CreatedAt:        a.CreatedAt,
	}
}
