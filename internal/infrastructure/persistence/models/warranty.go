package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/warranty"
	"github.com/shopspring/decimal"
)

// WarrantyModel is the persistence model for the Warranty aggregate root.
type WarrantyModel struct {
	AggregateModel
	WarrantyNumber string              `gorm:"type:varchar(50);not null;uniqueIndex"`
	SourceType     warranty.SourceType `gorm:"type:varchar(20);not null"`
	SaleID         *uuid.UUID          `gorm:"type:uuid;index:idx_warranty_sale_product,priority:1"`
	SaleItemID     *uuid.UUID          `gorm:"type:uuid"`
	SaleNumber     string              `gorm:"type:varchar(50)"`
	RepairJobID    *uuid.UUID          `gorm:"type:uuid;index"`
	ProductID      *uuid.UUID          `gorm:"type:uuid;index:idx_warranty_sale_product,priority:2"`
	ProductName    string              `gorm:"type:varchar(200)"`
	SKU            string              `gorm:"column:sku;type:varchar(50)"`
	SerialNumber   string              `gorm:"type:varchar(100)"`
	WarrantyType   string              `gorm:"type:varchar(20)"`
	Customer       CustomerColumns     `gorm:"embedded;embeddedPrefix:customer_"`
	DurationMonths int                 `gorm:"not null"`
	StartDate      time.Time           `gorm:"not null"`
	EndDate        time.Time           `gorm:"not null;index"`
	Status         warranty.Status     `gorm:"type:varchar(20);not null;index"`
	IssuedBy       uuid.UUID           `gorm:"type:uuid;not null"`
	Terms          string              `gorm:"type:text"`
	VoidedAt       *time.Time
	VoidedBy       *uuid.UUID           `gorm:"type:uuid"`
	VoidReason     string               `gorm:"type:varchar(500)"`
	Claims         []WarrantyClaimModel `gorm:"foreignKey:WarrantyID;references:ID"`
}

// TableName returns the table name for GORM
func (WarrantyModel) TableName() string {
	return "warranties"
}

// ToDomain converts the persistence model to a domain Warranty
func (m *WarrantyModel) ToDomain() *warranty.Warranty {
	w := &warranty.Warranty{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		WarrantyNumber:    m.WarrantyNumber,
		SourceType:        m.SourceType,
		SaleID:            m.SaleID,
		SaleItemID:        m.SaleItemID,
		SaleNumber:        m.SaleNumber,
		RepairJobID:       m.RepairJobID,
		ProductID:         m.ProductID,
		ProductName:       m.ProductName,
		SKU:               m.SKU,
		SerialNumber:      m.SerialNumber,
		WarrantyType:      m.WarrantyType,
		Customer:          m.Customer.toDomain(),
		DurationMonths:    m.DurationMonths,
		StartDate:         m.StartDate,
		EndDate:           m.EndDate,
		Status:            m.Status,
		Claims:            make([]warranty.Claim, 0, len(m.Claims)),
		IssuedBy:          m.IssuedBy,
		Terms:             m.Terms,
		VoidedAt:          m.VoidedAt,
		VoidedBy:          m.VoidedBy,
		VoidReason:        m.VoidReason,
	}
	for i := range m.Claims {
		w.Claims = append(w.Claims, m.Claims[i].ToDomain())
	}
	return w
}

// WarrantyModelFromDomain creates a persistence model from a domain Warranty
func WarrantyModelFromDomain(w *warranty.Warranty) *WarrantyModel {
	m := &WarrantyModel{
		WarrantyNumber: w.WarrantyNumber,
		SourceType:     w.SourceType,
		SaleID:         w.SaleID,
		SaleItemID:     w.SaleItemID,
		SaleNumber:     w.SaleNumber,
		RepairJobID:    w.RepairJobID,
		ProductID:      w.ProductID,
		ProductName:    w.ProductName,
		SKU:            w.SKU,
		SerialNumber:   w.SerialNumber,
		WarrantyType:   w.WarrantyType,
		Customer:       customerFromDomain(w.Customer),
		DurationMonths: w.DurationMonths,
		StartDate:      w.StartDate,
		EndDate:        w.EndDate,
		Status:         w.Status,
		IssuedBy:       w.IssuedBy,
		Terms:          w.Terms,
		VoidedAt:       w.VoidedAt,
		VoidedBy:       w.VoidedBy,
		VoidReason:     w.VoidReason,
		Claims:         make([]WarrantyClaimModel, 0, len(w.Claims)),
	}
	m.FromDomainAggregateRoot(w.BaseAggregateRoot)
	for _, c := range w.Claims {
		m.Claims = append(m.Claims, WarrantyClaimModelFromDomain(c))
	}
	return m
}

// WarrantyClaimModel is one claim filed against a warranty
type WarrantyClaimModel struct {
	ID                   uuid.UUID           `gorm:"type:uuid;primary_key"`
	WarrantyID           uuid.UUID           `gorm:"type:uuid;not null;index"`
	ClaimNumber          string              `gorm:"type:varchar(50);not null;uniqueIndex"`
	Issue                string              `gorm:"type:text;not null"`
	Resolution           warranty.Resolution `gorm:"type:varchar(20);not null"`
	ClaimCost            decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	RefundAmount         decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	RepairJobID          *uuid.UUID          `gorm:"type:uuid"`
	ReplacementProductID *uuid.UUID          `gorm:"type:uuid"`
	ReturnID             *uuid.UUID          `gorm:"type:uuid"`
	Notes                string              `gorm:"type:text"`
	FiledBy              uuid.UUID           `gorm:"type:uuid;not null"`
	CreatedAt            time.Time           `gorm:"not null"`
}

// TableName returns the table name for GORM
func (WarrantyClaimModel) TableName() string {
	return "warranty_claims"
}

// ToDomain converts the persistence model to a domain Claim
func (m *WarrantyClaimModel) ToDomain() warranty.Claim {
	return warranty.Claim{
		ID:                   m.ID,
		WarrantyID:           m.WarrantyID,
		ClaimNumber:          m.ClaimNumber,
		Issue:                m.Issue,
		Resolution:           m.Resolution,
		ClaimCost:            m.ClaimCost,
		RefundAmount:         m.RefundAmount,
		RepairJobID:          m.RepairJobID,
		ReplacementProductID: m.ReplacementProductID,
		ReturnID:             m.ReturnID,
		Notes:                m.Notes,
		FiledBy:              m.FiledBy,
		CreatedAt:            m.CreatedAt,
	}
}

// WarrantyClaimModelFromDomain creates a persistence model for a claim
func WarrantyClaimModelFromDomain(c warranty.Claim) WarrantyClaimModel {
	return WarrantyClaimModel{
		ID:                   c.ID,
		WarrantyID:           c.WarrantyID,
		ClaimNumber:          c.ClaimNumber,
		Issue:                c.Issue,
		Resolution:           c.Resolution,
		ClaimCost:            c.ClaimCost,
		RefundAmount:         c.RefundAmount,
		RepairJobID:          c.RepairJobID,
		ReplacementProductID: c.ReplacementProductID,
		ReturnID:             c.ReturnID,
		Notes:                c.Notes,
		FiledBy:              c.FiledBy,
		CreatedAt:            c.CreatedAt,
	}
}
