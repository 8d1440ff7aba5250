package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/shared"
)

// ProductCatalog is the read port the transactional core uses to price and validate items
type ProductCatalog interface {
	// FindByID returns the product or a NOT_FOUND domain error
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindByIDs returns the products that exist among ids
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*Product, error)

	// FindActive returns every active product
	FindActive(ctx context.Context) ([]*Product, error)
}

// ProductFilter narrows product listings
type ProductFilter struct {
	shared.Filter
	Category string
	IsActive *bool
}

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	ProductCatalog

	// FindBySKU finds a product by its SKU
	FindBySKU(ctx context.Context, sku string) (*Product, error)

	// FindAll lists products matching the filter with the total count
	FindAll(ctx context.Context, filter ProductFilter) ([]*Product, int64, error)

	// ExistsBySKU checks SKU uniqueness
	ExistsBySKU(ctx context.Context, sku string) (bool, error)

	// Save creates or updates a product with optimistic locking
	Save(ctx context.Context, product *Product) error
}
