package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// ProductInput carries the editable fields of a product
type ProductInput struct {
	Name                   string
	Description            string
	Category               string
	SellingPrice           decimal.Decimal
	CostPrice              decimal.Decimal
	TaxRate                decimal.Decimal
	WarrantyDurationMonths int
	WarrantyType           string
	MinStockLevel          int
}

// CreateProductInput is a ProductInput plus the immutable SKU
type CreateProductInput struct {
	SKU string
	ProductInput
}

// ProductListFilter narrows product listings
type ProductListFilter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
	Category string
	IsActive *bool
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID                     uuid.UUID       `json:"id"`
	SKU                    string          `json:"sku"`
	Name                   string          `json:"name"`
	Description            string          `json:"description,omitempty"`
	Category               string          `json:"category,omitempty"`
	SellingPrice           decimal.Decimal `json:"selling_price"`
	CostPrice              decimal.Decimal `json:"cost_price"`
	TaxRate                decimal.Decimal `json:"tax_rate"`
	WarrantyDurationMonths int             `json:"warranty_duration_months"`
	WarrantyType           string          `json:"warranty_type"`
	MinStockLevel          int             `json:"min_stock_level"`
	IsActive               bool            `json:"is_active"`
	Version                int             `json:"version"`
	CreatedAt              time.Time       `json:"created_at"`
	UpdatedAt              time.Time       `json:"updated_at"`
}

// ToProductResponse converts a domain product to its response
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:                     p.ID,
		SKU:                    p.SKU,
		Name:                   p.Name,
		Description:            p.Description,
		Category:               p.Category,
		SellingPrice:           p.SellingPrice,
		CostPrice:              p.CostPrice,
		TaxRate:                p.TaxRate,
		WarrantyDurationMonths: p.WarrantyDurationMonths,
		WarrantyType:           string(p.WarrantyType),
		MinStockLevel:          p.MinStockLevel,
		IsActive:               p.IsActive,
		Version:                p.GetVersion(),
		CreatedAt:              p.CreatedAt,
		UpdatedAt:              p.UpdatedAt,
	}
}

func (in ProductInput) attributes() catalog.ProductAttributes {
	return catalog.ProductAttributes{
		Name:                   in.Name,
		Description:            in.Description,
		Category:               in.Category,
		SellingPrice:           in.SellingPrice,
		CostPrice:              in.CostPrice,
		TaxRate:                in.TaxRate,
		WarrantyDurationMonths: in.WarrantyDurationMonths,
		WarrantyType:           catalog.WarrantyType(in.WarrantyType),
		MinStockLevel:          in.MinStockLevel,
	}
}
