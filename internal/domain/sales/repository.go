package sales

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/shared"
)

// SaleFilter narrows sale listings
type SaleFilter struct {
	shared.Filter
	Status    SaleStatus
	From      *time.Time
	To        *time.Time
	CashierID *uuid.UUID
}

// SaleRepository persists sales with their owned items and payments
type SaleRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Sale, error)
	FindByNumber(ctx context.Context, number string) (*Sale, error)
	FindAll(ctx context.Context, filter SaleFilter) ([]*Sale, int64, error)

	// Save inserts a new sale with its lines, or updates header fields with a version check
	Save(ctx context.Context, sale *Sale) error
}

// ReturnRepository persists returns with their owned items
type ReturnRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Return, error)
	FindByNumber(ctx context.Context, number string) (*Return, error)
	FindBySale(ctx context.Context, saleID uuid.UUID) ([]*Return, error)

	// ReturnedQuantities sums units already returned per sale item, warranty refunds included
	ReturnedQuantities(ctx context.Context, saleID uuid.UUID) (map[uuid.UUID]int, error)

	Create(ctx context.Context, ret *Return) error
}
