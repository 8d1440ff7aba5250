package models

import (
	"github.com/shopdesk/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// ProductModel is the persistence model for the Product domain entity.
type ProductModel struct {
	AggregateModel
	SKU                    string               `gorm:"column:sku;type:varchar(50);not null;uniqueIndex"`
	Name                   string               `gorm:"type:varchar(200);not null"`
	Description            string               `gorm:"type:text"`
	Category               string               `gorm:"type:varchar(100);index"`
	SellingPrice           decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	CostPrice              decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	TaxRate                decimal.Decimal      `gorm:"type:decimal(7,4);not null;default:0"`
	WarrantyDurationMonths int                  `gorm:"not null;default:0"`
	WarrantyType           catalog.WarrantyType `gorm:"type:varchar(20);not null;default:'NONE'"`
	MinStockLevel          int                  `gorm:"not null;default:0"`
	IsActive               bool                 `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		BaseAggregateRoot:      m.ToDomainAggregateRoot(),
		SKU:                    m.SKU,
		Name:                   m.Name,
		Description:            m.Description,
		Category:               m.Category,
		SellingPrice:           m.SellingPrice,
		CostPrice:              m.CostPrice,
		TaxRate:                m.TaxRate,
		WarrantyDurationMonths: m.WarrantyDurationMonths,
		WarrantyType:           m.WarrantyType,
		MinStockLevel:          m.MinStockLevel,
		IsActive:               m.IsActive,
	}
}

// ProductModelFromDomain creates a persistence model from a domain Product
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{
		SKU:                    p.SKU,
		Name:                   p.Name,
		Description:            p.Description,
		Category:               p.Category,
		SellingPrice:           p.SellingPrice,
		CostPrice:              p.CostPrice,
		TaxRate:                p.TaxRate,
		WarrantyDurationMonths: p.WarrantyDurationMonths,
		WarrantyType:           p.WarrantyType,
		MinStockLevel:          p.MinStockLevel,
		IsActive:               p.IsActive,
	}
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	return m
}
