package sales

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/sales"
	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/shopdesk/backend/internal/domain/warranty"
	"github.com/shopspring/decimal"
)

// SaleLineInput is one requested sale line
type SaleLineInput struct {
	ProductID uuid.UUID
	Quantity  int
	UnitPrice *decimal.Decimal
	Discount  decimal.Decimal
}

// PaymentInput is one tender
type PaymentInput struct {
	Method    string
	Amount    decimal.Decimal
	Reference string
}

// DiscountInput is a sale-level discount
type DiscountInput struct {
	Type  string
	Value decimal.Decimal
}

// CreateSaleInput carries a new sale
type CreateSaleInput struct {
	Items    []SaleLineInput
	Payments []PaymentInput
	Discount *DiscountInput
	Customer shared.CustomerSnapshot
	Notes    string
}

// VoidSaleInput carries the void reason
type VoidSaleInput struct {
	Reason string
}

// ReturnLineInput asks to return units of one sale line
type ReturnLineInput struct {
	SaleItemID uuid.UUID
	Quantity   int
	Condition  string
}

// CreateReturnInput carries a refund return
type CreateReturnInput struct {
	SaleID       uuid.UUID
	Items        []ReturnLineInput
	Reason       string
	RefundMethod string
}

// CreateExchangeInput carries a return settled against a new sale
type CreateExchangeInput struct {
	SaleID      uuid.UUID
	ReturnItems []ReturnLineInput
	NewItems    []SaleLineInput
	Payments    []PaymentInput
	Reason      string
	Customer    *shared.CustomerSnapshot // defaults to the original sale's customer
}

// SaleListFilter narrows sale listings
type SaleListFilter struct {
	shared.Filter
	Status    string
	From      *time.Time
	To        *time.Time
	CashierID *uuid.UUID
}

// SaleItemResponse is a sale line
type SaleItemResponse struct {
	ID             uuid.UUID       `json:"id"`
	ProductID      uuid.UUID       `json:"product_id"`
	ProductName    string          `json:"product_name"`
	SKU            string          `json:"sku"`
	Quantity       int             `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	Discount       decimal.Decimal `json:"discount"`
	TaxRate        decimal.Decimal `json:"tax_rate"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	Total          decimal.Decimal `json:"total"`
	WarrantyMonths int             `json:"warranty_months"`
}

// PaymentResponse is a tender
type PaymentResponse struct {
	Method    string          `json:"method"`
	Amount    decimal.Decimal `json:"amount"`
	Reference string          `json:"reference,omitempty"`
}

// WarrantyRef is a warranty issued alongside a document
type WarrantyRef struct {
	ID             uuid.UUID  `json:"id"`
	WarrantyNumber string     `json:"warranty_number"`
	ProductID      *uuid.UUID `json:"product_id,omitempty"`
	ProductName    string     `json:"product_name"`
	EndDate        time.Time  `json:"end_date"`
}

// SaleResponse represents a sale in API responses
type SaleResponse struct {
	ID             uuid.UUID               `json:"id"`
	SaleNumber     string                  `json:"sale_number"`
	Status         string                  `json:"status"`
	PaymentStatus  string                  `json:"payment_status"`
	Items          []SaleItemResponse      `json:"items"`
	Payments       []PaymentResponse       `json:"payments"`
	Subtotal       decimal.Decimal         `json:"subtotal"`
	DiscountTotal  decimal.Decimal         `json:"discount_total"`
	TaxTotal       decimal.Decimal         `json:"tax_total"`
	GrandTotal     decimal.Decimal         `json:"grand_total"`
	AmountPaid     decimal.Decimal         `json:"amount_paid"`
	ChangeDue      decimal.Decimal         `json:"change_due"`
	BalanceDue     decimal.Decimal         `json:"balance_due"`
	Customer       shared.CustomerSnapshot `json:"customer"`
	CashierID      uuid.UUID               `json:"cashier_id"`
	Notes          string                  `json:"notes,omitempty"`
	ExchangeReturn *uuid.UUID              `json:"exchange_return_id,omitempty"`
	CompletedAt    *time.Time              `json:"completed_at,omitempty"`
	VoidedAt       *time.Time              `json:"voided_at,omitempty"`
	VoidedBy       *uuid.UUID              `json:"voided_by,omitempty"`
	VoidReason     string                  `json:"void_reason,omitempty"`
	Warranties     []WarrantyRef           `json:"warranties,omitempty"`
	Version        int                     `json:"version"`
	CreatedAt      time.Time               `json:"created_at"`
}

// ReturnItemResponse is a returned line
type ReturnItemResponse struct {
	ID           uuid.UUID       `json:"id"`
	SaleItemID   *uuid.UUID      `json:"sale_item_id,omitempty"`
	ProductID    uuid.UUID       `json:"product_id"`
	ProductName  string          `json:"product_name"`
	SKU          string          `json:"sku"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	RefundAmount decimal.Decimal `json:"refund_amount"`
	Condition    string          `json:"condition"`
	Restock      bool            `json:"restock"`
}

// ReturnResponse represents a return in API responses
type ReturnResponse struct {
	ID                 uuid.UUID               `json:"id"`
	ReturnNumber       string                  `json:"return_number"`
	ReturnType         string                  `json:"return_type"`
	Status             string                  `json:"status"`
	OriginalSaleID     *uuid.UUID              `json:"original_sale_id,omitempty"`
	OriginalSaleNumber string                  `json:"original_sale_number,omitempty"`
	Items              []ReturnItemResponse    `json:"items"`
	TotalRefund        decimal.Decimal         `json:"total_refund"`
	RefundMethod       string                  `json:"refund_method"`
	Reason             string                  `json:"reason,omitempty"`
	ExchangeSaleID     *uuid.UUID              `json:"exchange_sale_id,omitempty"`
	NewItemsTotal      decimal.Decimal         `json:"new_items_total"`
	ExchangeAmountDue  decimal.Decimal         `json:"exchange_amount_due"`
	WarrantyClaimID    *uuid.UUID              `json:"warranty_claim_id,omitempty"`
	Customer           shared.CustomerSnapshot `json:"customer"`
	ProcessedBy        uuid.UUID               `json:"processed_by"`
	VoidedWarranties   []string                `json:"voided_warranties,omitempty"`
	CreatedAt          time.Time               `json:"created_at"`
}

// ExchangeResponse pairs the exchange return with its replacement sale
type ExchangeResponse struct {
	Return ReturnResponse `json:"return"`
	Sale   SaleResponse   `json:"sale"`
}

// ToSaleResponse converts a domain sale
func ToSaleResponse(s *sales.Sale) SaleResponse {
	items := make([]SaleItemResponse, len(s.Items))
	for i, it := range s.Items {
		items[i] = SaleItemResponse{
			ID:             it.ID,
			ProductID:      it.ProductID,
			ProductName:    it.ProductName,
			SKU:            it.SKU,
			Quantity:       it.Quantity,
			UnitPrice:      it.UnitPrice,
			Discount:       it.Discount,
			TaxRate:        it.TaxRate,
			TaxAmount:      it.TaxAmount,
			Total:          it.Total,
			WarrantyMonths: it.WarrantyMonths,
		}
	}
	payments := make([]PaymentResponse, len(s.Payments))
	for i, p := range s.Payments {
		payments[i] = PaymentResponse{Method: string(p.Method), Amount: p.Amount, Reference: p.Reference}
	}
	return SaleResponse{
		ID:             s.ID,
		SaleNumber:     s.SaleNumber,
		Status:         string(s.Status),
		PaymentStatus:  string(s.PaymentStatus()),
		Items:          items,
		Payments:       payments,
		Subtotal:       s.Subtotal,
		DiscountTotal:  s.DiscountTotal,
		TaxTotal:       s.TaxTotal,
		GrandTotal:     s.GrandTotal,
		AmountPaid:     s.AmountPaid,
		ChangeDue:      s.ChangeDue,
		BalanceDue:     s.BalanceDue(),
		Customer:       s.Customer,
		CashierID:      s.CashierID,
		Notes:          s.Notes,
		ExchangeReturn: s.ExchangeReturn,
		CompletedAt:    s.CompletedAt,
		VoidedAt:       s.VoidedAt,
		VoidedBy:       s.VoidedBy,
		VoidReason:     s.VoidReason,
		Version:        s.GetVersion(),
		CreatedAt:      s.CreatedAt,
	}
}

// ToReturnResponse converts a domain return
func ToReturnResponse(r *sales.Return) ReturnResponse {
	items := make([]ReturnItemResponse, len(r.Items))
	for i, it := range r.Items {
		items[i] = ReturnItemResponse{
			ID:           it.ID,
			SaleItemID:   it.SaleItemID,
			ProductID:    it.ProductID,
			ProductName:  it.ProductName,
			SKU:          it.SKU,
			Quantity:     it.Quantity,
			UnitPrice:    it.UnitPrice,
			RefundAmount: it.RefundAmount,
			Condition:    string(it.Condition),
			Restock:      it.Restock,
		}
	}
	return ReturnResponse{
		ID:                 r.ID,
		ReturnNumber:       r.ReturnNumber,
		ReturnType:         string(r.ReturnType),
		Status:             string(r.Status),
		OriginalSaleID:     r.OriginalSaleID,
		OriginalSaleNumber: r.OriginalSaleNumber,
		Items:              items,
		TotalRefund:        r.TotalRefund,
		RefundMethod:       string(r.RefundMethod),
		Reason:             r.Reason,
		ExchangeSaleID:     r.ExchangeSaleID,
		NewItemsTotal:      r.NewItemsTotal,
		ExchangeAmountDue:  r.ExchangeAmountDue,
		WarrantyClaimID:    r.WarrantyClaimID,
		Customer:           r.Customer,
		ProcessedBy:        r.ProcessedBy,
		CreatedAt:          r.CreatedAt,
	}
}

func toWarrantyRefs(ws []*warranty.Warranty) []WarrantyRef {
	out := make([]WarrantyRef, len(ws))
	for i, w := range ws {
		out[i] = WarrantyRef{
			ID:             w.ID,
			WarrantyNumber: w.WarrantyNumber,
			ProductID:      w.ProductID,
			ProductName:    w.ProductName,
			EndDate:        w.EndDate,
		}
	}
	return out
}
