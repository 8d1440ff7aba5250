package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/shared"
)

// StockRecordRepository persists current quantities
type StockRecordRepository interface {
	// FindByProductID returns the record or a NOT_FOUND domain error
	FindByProductID(ctx context.Context, productID uuid.UUID) (*StockRecord, error)

	// FindByProductIDs returns the records that exist among productIDs
	FindByProductIDs(ctx context.Context, productIDs []uuid.UUID) ([]*StockRecord, error)

	// Insert creates the record unless one already exists for the product.
	// It reports whether a row was inserted.
	Insert(ctx context.Context, record *StockRecord) (bool, error)

	// UpdateQuantity writes quantity and version only if the stored version
	// still equals expectedVersion; otherwise it returns CONCURRENCY_CONFLICT.
	UpdateQuantity(ctx context.Context, record *StockRecord, expectedVersion int) error
}

// StockAdjustmentRepository persists the append-only adjustment history
type StockAdjustmentRepository interface {
	// Create appends an adjustment
	Create(ctx context.Context, adjustment *StockAdjustment) error

	// FindByProduct lists adjustments for a product, newest first
	FindByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]*StockAdjustment, int64, error)

	// FindByReference lists adjustments caused by one entity
	FindByReference(ctx context.Context, refType ReferenceType, refID uuid.UUID) ([]*StockAdjustment, error)
}
