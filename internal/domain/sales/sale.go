package sales

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// SaleStatus represents the status of a sale
type SaleStatus string

const (
	SaleStatusPending   SaleStatus = "PENDING"
	SaleStatusCompleted SaleStatus = "COMPLETED"
	SaleStatusVoided    SaleStatus = "VOIDED"
)

// IsValid checks if the status is known
func (s SaleStatus) IsValid() bool {
	return s == SaleStatusPending || s == SaleStatusCompleted || s == SaleStatusVoided
}

// PaymentStatus is derived from the amount paid against the grand total
type PaymentStatus string

const (
	PaymentStatusUnpaid  PaymentStatus = "UNPAID"
	PaymentStatusPartial PaymentStatus = "PARTIAL"
	PaymentStatusPaid    PaymentStatus = "PAID"
)

// PaymentMethod is how a payment was tendered
type PaymentMethod string

const (
	PaymentMethodCash           PaymentMethod = "CASH"
	PaymentMethodCard           PaymentMethod = "CARD"
	PaymentMethodBankTransfer   PaymentMethod = "BANK_TRANSFER"
	PaymentMethodMobile         PaymentMethod = "MOBILE"
	PaymentMethodExchangeCredit PaymentMethod = "EXCHANGE_CREDIT"
)

// IsValid checks if the method is known
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodBankTransfer,
		PaymentMethodMobile, PaymentMethodExchangeCredit:
		return true
	}
	return false
}

// SaleItem is a priced line with product snapshots
type SaleItem struct {
	ID             uuid.UUID
	ProductID      uuid.UUID
	ProductName    string
	SKU            string
	Quantity       int
	UnitPrice      decimal.Decimal
	Discount       decimal.Decimal
	TaxRate        decimal.Decimal
	TaxAmount      decimal.Decimal
	Total          decimal.Decimal
	WarrantyMonths int
}

// NetAmount is unitPrice × quantity − discount
func (i SaleItem) NetAmount() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity))).Sub(i.Discount)
}

// Payment is one tender against a sale
type Payment struct {
	ID        uuid.UUID
	Method    PaymentMethod
	Amount    decimal.Decimal
	Reference string
}

// NewPayment validates and creates a payment
func NewPayment(method PaymentMethod, amount decimal.Decimal, reference string) (Payment, error) {
	if !method.IsValid() {
		return Payment{}, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Unknown payment method: "+string(method))
	}
	if !amount.IsPositive() {
		return Payment{}, shared.NewDomainError("INVALID_PAYMENT", "Payment amount must be positive")
	}
	return Payment{
		ID:        uuid.New(),
		Method:    method,
		Amount:    shared.RoundMoney(amount),
		Reference: strings.TrimSpace(reference),
	}, nil
}

// Sale is a completed (or voided) point-of-sale transaction
type Sale struct {
	shared.BaseAggregateRoot
	SaleNumber     string
	Items          []SaleItem
	Payments       []Payment
	Subtotal       decimal.Decimal
	Discount       *SaleDiscount
	DiscountTotal  decimal.Decimal
	TaxTotal       decimal.Decimal
	GrandTotal     decimal.Decimal
	AmountPaid     decimal.Decimal
	ChangeDue      decimal.Decimal
	Status         SaleStatus
	Customer       shared.CustomerSnapshot
	CashierID      uuid.UUID
	Notes          string
	ExchangeReturn *uuid.UUID // set when the sale was created by an exchange
	CompletedAt    *time.Time
	VoidedAt       *time.Time
	VoidedBy       *uuid.UUID
	VoidReason     string
}

// NewSaleParams carries everything needed to complete a sale
type NewSaleParams struct {
	SaleNumber string
	CashierID  uuid.UUID
	Items      []SaleItem
	Discount   *SaleDiscount
	Payments   []Payment
	Customer   shared.CustomerSnapshot
	Notes      string
	Now        time.Time
}

// NewSale builds a COMPLETED sale from priced lines.
// Underpayment is allowed and shows up as PaymentStatus UNPAID or PARTIAL.
func NewSale(p NewSaleParams) (*Sale, error) {
	if p.SaleNumber == "" {
		return nil, shared.NewInvalidInputError("Sale number is required")
	}
	if len(p.Items) == 0 {
		return nil, shared.NewInvalidInputError("A sale needs at least one item")
	}
	totals, err := ComputeTotals(p.Items, p.Discount)
	if err != nil {
		return nil, err
	}

	paid := decimal.Zero
	for _, pay := range p.Payments {
		paid = paid.Add(pay.Amount)
	}

	now := p.Now
	if now.IsZero() {
		now = time.Now()
	}
	sale := &Sale{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SaleNumber:        p.SaleNumber,
		Items:             p.Items,
		Payments:          p.Payments,
		Subtotal:          totals.Subtotal,
		Discount:          p.Discount,
		DiscountTotal:     totals.DiscountTotal,
		TaxTotal:          totals.TaxTotal,
		GrandTotal:        totals.GrandTotal,
		AmountPaid:        shared.RoundMoney(paid),
		ChangeDue:         shared.RoundMoney(shared.MaxZero(paid.Sub(totals.GrandTotal))),
		Status:            SaleStatusCompleted,
		Customer:          p.Customer.Normalized(),
		CashierID:         p.CashierID,
		Notes:             strings.TrimSpace(p.Notes),
		CompletedAt:       &now,
	}
	if sale.Payments == nil {
		sale.Payments = make([]Payment, 0)
	}
	sale.CreatedAt = now
	sale.UpdatedAt = now
	sale.AddDomainEvent(NewSaleCompletedEvent(sale))
	return sale, nil
}

// PaymentStatus derives the settlement state from payments
func (s *Sale) PaymentStatus() PaymentStatus {
	if s.AmountPaid.GreaterThanOrEqual(s.GrandTotal) {
		return PaymentStatusPaid
	}
	if s.AmountPaid.IsPositive() {
		return PaymentStatusPartial
	}
	return PaymentStatusUnpaid
}

// BalanceDue is what the customer still owes
func (s *Sale) BalanceDue() decimal.Decimal {
	return shared.MaxZero(s.GrandTotal.Sub(s.AmountPaid))
}

// IsVoided returns true once the sale has been voided
func (s *Sale) IsVoided() bool {
	return s.Status == SaleStatusVoided
}

// Void marks the sale voided. It is irreversible; stock restoration is the caller's job.
func (s *Sale) Void(actorID uuid.UUID, reason string, now time.Time) error {
	if s.Status == SaleStatusVoided {
		return shared.NewInvalidStateError("Sale is already voided")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return shared.NewInvalidInputError("Void reason is required")
	}
	s.Status = SaleStatusVoided
	s.VoidedAt = &now
	s.VoidedBy = &actorID
	s.VoidReason = reason
	s.IncrementVersion()
	s.AddDomainEvent(NewSaleVoidedEvent(s))
	return nil
}

// FindItem returns the line with the given id
func (s *Sale) FindItem(itemID uuid.UUID) (SaleItem, bool) {
	for _, it := range s.Items {
		if it.ID == itemID {
			return it, true
		}
	}
	return SaleItem{}, false
}

// FindItemByProduct returns the first line selling productID
func (s *Sale) FindItemByProduct(productID uuid.UUID) (SaleItem, bool) {
	for _, it := range s.Items {
		if it.ProductID == productID {
			return it, true
		}
	}
	return SaleItem{}, false
}

// LinkExchange records the return that produced this sale
func (s *Sale) LinkExchange(returnID uuid.UUID) {
	s.ExchangeReturn = &returnID
}
