package warranty

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/shared"
)

// Filter narrows warranty listings. Status is matched against the effective
// status as of Now, so unswept expired warranties list as EXPIRED.
type Filter struct {
	shared.Filter
	Status        Status
	Now           time.Time
	CustomerPhone string
	SaleID        *uuid.UUID
	ProductID     *uuid.UUID
}

// Repository persists warranties with their owned claims
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Warranty, error)
	FindByNumber(ctx context.Context, number string) (*Warranty, error)
	FindAll(ctx context.Context, filter Filter) ([]*Warranty, int64, error)

	// FindActiveBySaleAndProduct returns ACTIVE warranties issued by a sale for one product
	FindActiveBySaleAndProduct(ctx context.Context, saleID, productID uuid.UUID) ([]*Warranty, error)

	// FindExpirable returns up to limit ACTIVE or CLAIMED warranties whose end date is before now
	FindExpirable(ctx context.Context, now time.Time, limit int) ([]*Warranty, error)

	// Save inserts a new warranty or updates it with a version check, inserting new claims
	Save(ctx context.Context, w *Warranty) error
}
