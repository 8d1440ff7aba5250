package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/sales"
	"github.com/shopspring/decimal"
)

// SaleModel is the persistence model for the Sale aggregate root.
type SaleModel struct {
	AggregateModel
	SaleNumber       string              `gorm:"type:varchar(50);not null;uniqueIndex"`
	Subtotal         decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	DiscountType     *sales.DiscountType `gorm:"type:varchar(20)"`
	DiscountValue    decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	DiscountTotal    decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	TaxTotal         decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	GrandTotal       decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	AmountPaid       decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	ChangeDue        decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	Status           sales.SaleStatus    `gorm:"type:varchar(20);not null;index"`
	Customer         CustomerColumns     `gorm:"embedded;embeddedPrefix:customer_"`
	CashierID        uuid.UUID           `gorm:"type:uuid;not null;index"`
	Notes            string              `gorm:"type:text"`
	ExchangeReturnID *uuid.UUID          `gorm:"type:uuid"`
	CompletedAt      *time.Time          `gorm:"index"`
	VoidedAt         *time.Time
	VoidedBy         *uuid.UUID         `gorm:"type:uuid"`
	VoidReason       string             `gorm:"type:varchar(500)"`
	Items            []SaleItemModel    `gorm:"foreignKey:SaleID;references:ID"`
	Payments         []SalePaymentModel `gorm:"foreignKey:SaleID;references:ID"`
}

// TableName returns the table name for GORM
func (SaleModel) TableName() string {
	return "sales"
}

// ToDomain converts the persistence model to a domain Sale, items and payments included
func (m *SaleModel) ToDomain() *sales.Sale {
	s := &sales.Sale{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		SaleNumber:        m.SaleNumber,
		Items:             make([]sales.SaleItem, 0, len(m.Items)),
		Payments:          make([]sales.Payment, 0, len(m.Payments)),
		Subtotal:          m.Subtotal,
		DiscountTotal:     m.DiscountTotal,
		TaxTotal:          m.TaxTotal,
		GrandTotal:        m.GrandTotal,
		AmountPaid:        m.AmountPaid,
		ChangeDue:         m.ChangeDue,
		Status:            m.Status,
		Customer:          m.Customer.toDomain(),
		CashierID:         m.CashierID,
		Notes:             m.Notes,
		ExchangeReturn:    m.ExchangeReturnID,
		CompletedAt:       m.CompletedAt,
		VoidedAt:          m.VoidedAt,
		VoidedBy:          m.VoidedBy,
		VoidReason:        m.VoidReason,
	}
	if m.DiscountType != nil {
		s.Discount = &sales.SaleDiscount{Type: *m.DiscountType, Value: m.DiscountValue}
	}
	for i := range m.Items {
		s.Items = append(s.Items, m.Items[i].ToDomain())
	}
	for i := range m.Payments {
		s.Payments = append(s.Payments, m.Payments[i].ToDomain())
	}
	return s
}

// SaleModelFromDomain creates a persistence model from a domain Sale
func SaleModelFromDomain(s *sales.Sale) *SaleModel {
	m := &SaleModel{
		SaleNumber:       s.SaleNumber,
		Subtotal:         s.Subtotal,
		DiscountTotal:    s.DiscountTotal,
		TaxTotal:         s.TaxTotal,
		GrandTotal:       s.GrandTotal,
		AmountPaid:       s.AmountPaid,
		ChangeDue:        s.ChangeDue,
		Status:           s.Status,
		Customer:         customerFromDomain(s.Customer),
		CashierID:        s.CashierID,
		Notes:            s.Notes,
		ExchangeReturnID: s.ExchangeReturn,
		CompletedAt:      s.CompletedAt,
		VoidedAt:         s.VoidedAt,
		VoidedBy:         s.VoidedBy,
		VoidReason:       s.VoidReason,
		Items:            make([]SaleItemModel, 0, len(s.Items)),
		Payments:         make([]SalePaymentModel, 0, len(s.Payments)),
	}
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	if s.Discount != nil {
		dt := s.Discount.Type
		m.DiscountType = &dt
		m.DiscountValue = s.Discount.Value
	}
	for i, item := range s.Items {
		m.Items = append(m.Items, SaleItemModelFromDomain(s.ID, i, item))
	}
	for i, p := range s.Payments {
		m.Payments = append(m.Payments, SalePaymentModelFromDomain(s.ID, i, p))
	}
	return m
}

// SaleItemModel is one priced line of a sale
type SaleItemModel struct {
	ID             uuid.UUID       `gorm:"type:uuid;primary_key"`
	SaleID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	Position       int             `gorm:"not null;default:0"`
	ProductID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductName    string          `gorm:"type:varchar(200);not null"`
	SKU            string          `gorm:"column:sku;type:varchar(50);not null"`
	Quantity       int             `gorm:"not null"`
	UnitPrice      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Discount       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TaxRate        decimal.Decimal `gorm:"type:decimal(7,4);not null;default:0"`
	TaxAmount      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Total          decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	WarrantyMonths int             `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (SaleItemModel) TableName() string {
	return "sale_items"
}

// ToDomain converts the persistence model to a domain SaleItem
func (m *SaleItemModel) ToDomain() sales.SaleItem {
	return sales.SaleItem{
		ID:             m.ID,
		ProductID:      m.ProductID,
		ProductName:    m.ProductName,
		SKU:            m.SKU,
		Quantity:       m.Quantity,
		UnitPrice:      m.UnitPrice,
		Discount:       m.Discount,
		TaxRate:        m.TaxRate,
		TaxAmount:      m.TaxAmount,
		Total:          m.Total,
		WarrantyMonths: m.WarrantyMonths,
	}
}

// SaleItemModelFromDomain creates a persistence model for a sale line
func SaleItemModelFromDomain(saleID uuid.UUID, position int, item sales.SaleItem) SaleItemModel {
	return SaleItemModel{
		ID:             item.ID,
		SaleID:         saleID,
		Position:       position,
		ProductID:      item.ProductID,
		ProductName:    item.ProductName,
		SKU:            item.SKU,
		Quantity:       item.Quantity,
		UnitPrice:      item.UnitPrice,
		Discount:       item.Discount,
		TaxRate:        item.TaxRate,
		TaxAmount:      item.TaxAmount,
		Total:          item.Total,
		WarrantyMonths: item.WarrantyMonths,
	}
}

// SalePaymentModel is one tender applied to a sale
type SalePaymentModel struct {
	ID        uuid.UUID           `gorm:"type:uuid;primary_key"`
	SaleID    uuid.UUID           `gorm:"type:uuid;not null;index"`
	Position  int                 `gorm:"not null;default:0"`
	Method    sales.PaymentMethod `gorm:"type:varchar(20);not null"`
	Amount    decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	Reference string              `gorm:"type:varchar(100)"`
}

// TableName returns the table name for GORM
func (SalePaymentModel) TableName() string {
	return "sale_payments"
}

// ToDomain converts the persistence model to a domain Payment
func (m *SalePaymentModel) ToDomain() sales.Payment {
	return sales.Payment{ID: m.ID, Method: m.Method, Amount: m.Amount, Reference: m.Reference}
}

// SalePaymentModelFromDomain creates a persistence model for a payment
func SalePaymentModelFromDomain(saleID uuid.UUID, position int, p sales.Payment) SalePaymentModel {
	return SalePaymentModel{
		ID:        p.ID,
		SaleID:    saleID,
		Position:  position,
		Method:    p.Method,
		Amount:    p.Amount,
		Reference: p.Reference,
	}
}

// ReturnModel is the persistence model for the Return aggregate root.
type ReturnModel struct {
	AggregateModel
	ReturnNumber       string              `gorm:"type:varchar(50);not null;uniqueIndex"`
	OriginalSaleID     *uuid.UUID          `gorm:"type:uuid;index"`
	OriginalSaleNumber string              `gorm:"type:varchar(50)"`
	ReturnType         sales.ReturnType    `gorm:"type:varchar(20);not null"`
	Status             sales.ReturnStatus  `gorm:"type:varchar(20);not null"`
	TotalRefund        decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	RefundMethod       sales.PaymentMethod `gorm:"type:varchar(20);not null"`
	Reason             string              `gorm:"type:varchar(500)"`
	ExchangeSaleID     *uuid.UUID          `gorm:"type:uuid"`
	NewItemsTotal      decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	ExchangeAmountDue  decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	WarrantyClaimID    *uuid.UUID          `gorm:"type:uuid"`
	Customer           CustomerColumns     `gorm:"embedded;embeddedPrefix:customer_"`
	ProcessedBy        uuid.UUID           `gorm:"type:uuid;not null"`
	Items              []ReturnItemModel   `gorm:"foreignKey:ReturnID;references:ID"`
}

// TableName returns the table name for GORM
func (ReturnModel) TableName() string {
	return "returns"
}

// ToDomain converts the persistence model to a domain Return
func (m *ReturnModel) ToDomain() *sales.Return {
	r := &sales.Return{
		BaseAggregateRoot:  m.ToDomainAggregateRoot(),
		ReturnNumber:       m.ReturnNumber,
		OriginalSaleID:     m.OriginalSaleID,
		OriginalSaleNumber: m.OriginalSaleNumber,
		ReturnType:         m.ReturnType,
		Status:             m.Status,
		Items:              make([]sales.ReturnItem, 0, len(m.Items)),
		TotalRefund:        m.TotalRefund,
		RefundMethod:       m.RefundMethod,
		Reason:             m.Reason,
		ExchangeSaleID:     m.ExchangeSaleID,
		NewItemsTotal:      m.NewItemsTotal,
		ExchangeAmountDue:  m.ExchangeAmountDue,
		WarrantyClaimID:    m.WarrantyClaimID,
		Customer:           m.Customer.toDomain(),
		ProcessedBy:        m.ProcessedBy,
	}
	for i := range m.Items {
		r.Items = append(r.Items, m.Items[i].ToDomain())
	}
	return r
}

// ReturnModelFromDomain creates a persistence model from a domain Return
func ReturnModelFromDomain(r *sales.Return) *ReturnModel {
	m := &ReturnModel{
		ReturnNumber:       r.ReturnNumber,
		OriginalSaleID:     r.OriginalSaleID,
		OriginalSaleNumber: r.OriginalSaleNumber,
		ReturnType:         r.ReturnType,
		Status:             r.Status,
		TotalRefund:        r.TotalRefund,
		RefundMethod:       r.RefundMethod,
		Reason:             r.Reason,
		ExchangeSaleID:     r.ExchangeSaleID,
		NewItemsTotal:      r.NewItemsTotal,
		ExchangeAmountDue:  r.ExchangeAmountDue,
		WarrantyClaimID:    r.WarrantyClaimID,
		Customer:           customerFromDomain(r.Customer),
		ProcessedBy:        r.ProcessedBy,
		Items:              make([]ReturnItemModel, 0, len(r.Items)),
	}
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	for i, item := range r.Items {
		m.Items = append(m.Items, ReturnItemModelFromDomain(r.ID, i, item))
	}
	return m
}

// ReturnItemModel is one returned line
type ReturnItemModel struct {
	ID           uuid.UUID           `gorm:"type:uuid;primary_key"`
	ReturnID     uuid.UUID           `gorm:"type:uuid;not null;index"`
	Position     int                 `gorm:"not null;default:0"`
	SaleItemID   *uuid.UUID          `gorm:"type:uuid;index"`
	ProductID    uuid.UUID           `gorm:"type:uuid;not null"`
	ProductName  string              `gorm:"type:varchar(200);not null"`
	SKU          string              `gorm:"column:sku;type:varchar(50);not null"`
	Quantity     int                 `gorm:"not null"`
	UnitPrice    decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	RefundAmount decimal.Decimal     `gorm:"type:decimal(18,4);not null"`
	Condition    sales.ItemCondition `gorm:"column:item_condition;type:varchar(20);not null"`
	Restock      bool                `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (ReturnItemModel) TableName() string {
	return "return_items"
}

// ToDomain converts the persistence model to a domain ReturnItem
func (m *ReturnItemModel) ToDomain() sales.ReturnItem {
	return sales.ReturnItem{
		ID:           m.ID,
		SaleItemID:   m.SaleItemID,
		ProductID:    m.ProductID,
		ProductName:  m.ProductName,
		SKU:          m.SKU,
		Quantity:     m.Quantity,
		UnitPrice:    m.UnitPrice,
		RefundAmount: m.RefundAmount,
		Condition:    m.Condition,
		Restock:      m.Restock,
	}
}

// ReturnItemModelFromDomain creates a persistence model for a returned line
func ReturnItemModelFromDomain(returnID uuid.UUID, position int, item sales.ReturnItem) ReturnItemModel {
	return ReturnItemModel{
		ID:           item.ID,
		ReturnID:     returnID,
		Position:     position,
		SaleItemID:   item.SaleItemID,
		ProductID:    item.ProductID,
		ProductName:  item.ProductName,
		SKU:          item.SKU,
		Quantity:     item.Quantity,
		UnitPrice:    item.UnitPrice,
		RefundAmount: item.RefundAmount,
		Condition:    item.Condition,
		Restock:      item.Restock,
	}
}
