package sales

import (
	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constants
const (
	AggregateTypeSale   = "Sale"
	AggregateTypeReturn = "Return"
)

// Event type constants
const (
	EventTypeSaleCompleted   = "SaleCompleted"
	EventTypeSaleVoided      = "SaleVoided"
	EventTypeReturnCompleted = "ReturnCompleted"
)

// SaleCompletedEvent is raised when a sale is rung up
type SaleCompletedEvent struct {
	shared.BaseDomainEvent
	SaleID     uuid.UUID       `json:"sale_id"`
	SaleNumber string          `json:"sale_number"`
	GrandTotal decimal.Decimal `json:"grand_total"`
	ItemCount  int             `json:"item_count"`
	CashierID  uuid.UUID       `json:"cashier_id"`
}

// NewSaleCompletedEvent creates a SaleCompletedEvent
func NewSaleCompletedEvent(s *Sale) *SaleCompletedEvent {
	return &SaleCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleCompleted, AggregateTypeSale, s.ID),
		SaleID:          s.ID,
		SaleNumber:      s.SaleNumber,
		GrandTotal:      s.GrandTotal,
		ItemCount:       len(s.Items),
		CashierID:       s.CashierID,
	}
}

// SaleVoidedEvent is raised when a sale is voided
type SaleVoidedEvent struct {
	shared.BaseDomainEvent
	SaleID     uuid.UUID       `json:"sale_id"`
	SaleNumber string          `json:"sale_number"`
	GrandTotal decimal.Decimal `json:"grand_total"`
	Reason     string          `json:"reason"`
}

// NewSaleVoidedEvent creates a SaleVoidedEvent
func NewSaleVoidedEvent(s *Sale) *SaleVoidedEvent {
	return &SaleVoidedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleVoided, AggregateTypeSale, s.ID),
		SaleID:          s.ID,
		SaleNumber:      s.SaleNumber,
		GrandTotal:      s.GrandTotal,
		Reason:          s.VoidReason,
	}
}

// ReturnCompletedEvent is raised when a return, exchange or warranty refund is recorded
type ReturnCompletedEvent struct {
	shared.BaseDomainEvent
	ReturnID     uuid.UUID       `json:"return_id"`
	ReturnNumber string          `json:"return_number"`
	ReturnType   ReturnType      `json:"return_type"`
	TotalRefund  decimal.Decimal `json:"total_refund"`
}

// NewReturnCompletedEvent creates a ReturnCompletedEvent
func NewReturnCompletedEvent(r *Return) *ReturnCompletedEvent {
	return &ReturnCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReturnCompleted, AggregateTypeReturn, r.ID),
		ReturnID:        r.ID,
		ReturnNumber:    r.ReturnNumber,
		ReturnType:      r.ReturnType,
		TotalRefund:     r.TotalRefund,
	}
}
