package catalog

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// WarrantyType describes who backs the warranty issued for a product
type WarrantyType string

const (
	WarrantyTypeNone         WarrantyType = "NONE"
	WarrantyTypeShop         WarrantyType = "SHOP"
	WarrantyTypeManufacturer WarrantyType = "MANUFACTURER"
)

// IsValid checks if the warranty type is known
func (t WarrantyType) IsValid() bool {
	switch t {
	case WarrantyTypeNone, WarrantyTypeShop, WarrantyTypeManufacturer:
		return true
	}
	return false
}

var maxTaxRate = decimal.NewFromInt(100)

// Product represents a sellable item in the catalog.
// Sales, repairs and warranties snapshot its name, sku and prices at the time of use.
type Product struct {
	shared.BaseAggregateRoot
	SKU                    string
	Name                   string
	Description            string
	Category               string
	SellingPrice           decimal.Decimal
	CostPrice              decimal.Decimal
	TaxRate                decimal.Decimal // percent, e.g. 10 for 10%
	WarrantyDurationMonths int
	WarrantyType           WarrantyType
	MinStockLevel          int
	IsActive               bool
}

// ProductAttributes carries the mutable fields of a product
type ProductAttributes struct {
	Name                   string
	Description            string
	Category               string
	SellingPrice           decimal.Decimal
	CostPrice              decimal.Decimal
	TaxRate                decimal.Decimal
	WarrantyDurationMonths int
	WarrantyType           WarrantyType
	MinStockLevel          int
}

// NewProduct creates a new active product
func NewProduct(sku string, attrs ProductAttributes) (*Product, error) {
	if err := validateSKU(sku); err != nil {
		return nil, err
	}
	product := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SKU:               strings.ToUpper(strings.TrimSpace(sku)),
		IsActive:          true,
	}
	if err := product.apply(attrs); err != nil {
		return nil, err
	}
	product.AddDomainEvent(NewProductEvent(product, EventTypeProductCreated))
	return product, nil
}

// Update replaces the mutable attributes
func (p *Product) Update(attrs ProductAttributes) error {
	if err := p.apply(attrs); err != nil {
		return err
	}
	p.IncrementVersion()
	p.AddDomainEvent(NewProductEvent(p, EventTypeProductUpdated))
	return nil
}

func (p *Product) apply(attrs ProductAttributes) error {
	name := strings.TrimSpace(attrs.Name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	if attrs.SellingPrice.IsNegative() || attrs.CostPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Prices cannot be negative")
	}
	if attrs.TaxRate.IsNegative() || attrs.TaxRate.GreaterThan(maxTaxRate) {
		return shared.NewDomainError("INVALID_TAX_RATE", "Tax rate must be between 0 and 100")
	}
	if attrs.WarrantyDurationMonths < 0 {
		return shared.NewDomainError("INVALID_WARRANTY_DURATION", "Warranty duration cannot be negative")
	}
	if attrs.MinStockLevel < 0 {
		return shared.NewDomainError("INVALID_MIN_STOCK", "Minimum stock level cannot be negative")
	}
	warrantyType := attrs.WarrantyType
	if warrantyType == "" {
		warrantyType = WarrantyTypeNone
		if attrs.WarrantyDurationMonths > 0 {
			warrantyType = WarrantyTypeShop
		}
	}
	if !warrantyType.IsValid() {
		return shared.NewDomainError("INVALID_WARRANTY_TYPE", "Unknown warranty type: "+string(warrantyType))
	}

	p.Name = name
	p.Description = strings.TrimSpace(attrs.Description)
	p.Category = strings.TrimSpace(attrs.Category)
	p.SellingPrice = attrs.SellingPrice
	p.CostPrice = attrs.CostPrice
	p.TaxRate = attrs.TaxRate
	p.WarrantyDurationMonths = attrs.WarrantyDurationMonths
	p.WarrantyType = warrantyType
	p.MinStockLevel = attrs.MinStockLevel
	return nil
}

// Activate makes the product sellable again
func (p *Product) Activate() error {
	if p.IsActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Product is already active")
	}
	p.IsActive = true
	p.IncrementVersion()
	p.AddDomainEvent(NewProductEvent(p, EventTypeProductActivated))
	return nil
}

// Deactivate removes the product from sale. Existing stock and history are kept.
func (p *Product) Deactivate() error {
	if !p.IsActive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Product is already inactive")
	}
	p.IsActive = false
	p.IncrementVersion()
	p.AddDomainEvent(NewProductEvent(p, EventTypeProductDeactivated))
	return nil
}

// HasWarranty reports whether selling this product issues warranties
func (p *Product) HasWarranty() bool {
	return p.WarrantyDurationMonths > 0
}

// EnsureSellable fails when the product cannot be put on a sale or repair
func (p *Product) EnsureSellable() error {
	if !p.IsActive {
		return shared.NewDomainError("PRODUCT_INACTIVE", "Product is not active: "+p.SKU).
			WithDetail("product_id", p.ID.String())
	}
	return nil
}

func validateSKU(sku string) error {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return shared.NewDomainError("INVALID_SKU", "SKU cannot be empty")
	}
	if len(sku) > 50 {
		return shared.NewDomainError("INVALID_SKU", "SKU cannot exceed 50 characters")
	}
	for _, r := range sku {
		if !((r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-') {
			return shared.NewDomainError("INVALID_SKU", "SKU can only contain letters, numbers, underscores, and hyphens")
		}
	}
	return nil
}

// AggregateTypeProduct names the product aggregate in events
const AggregateTypeProduct = "Product"

// Event type constants
const (
	EventTypeProductCreated     = "ProductCreated"
	EventTypeProductUpdated     = "ProductUpdated"
	EventTypeProductActivated   = "ProductActivated"
	EventTypeProductDeactivated = "ProductDeactivated"
)

// ProductEvent is published on product lifecycle changes
type ProductEvent struct {
	shared.BaseDomainEvent
	ProductID uuid.UUID `json:"product_id"`
	SKU       string    `json:"sku"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
}

// NewProductEvent creates a ProductEvent of the given type
func NewProductEvent(p *Product, eventType string) *ProductEvent {
	return &ProductEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeProduct, p.ID),
		ProductID:       p.ID,
		SKU:             p.SKU,
		Name:            p.Name,
		IsActive:        p.IsActive,
	}
}
