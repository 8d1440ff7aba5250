package sales

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ReturnType classifies a return
type ReturnType string

const (
	ReturnTypeRefund         ReturnType = "REFUND"
	ReturnTypeExchange       ReturnType = "EXCHANGE"
	ReturnTypeWarrantyRefund ReturnType = "WARRANTY_REFUND"
)

// ReturnStatus represents the status of a return
type ReturnStatus string

// Returns are recorded once fully processed
const ReturnStatusCompleted ReturnStatus = "COMPLETED"

// ItemCondition describes the state of a returned unit
type ItemCondition string

const (
	ConditionGood      ItemCondition = "GOOD"
	ConditionDamaged   ItemCondition = "DAMAGED"
	ConditionDefective ItemCondition = "DEFECTIVE"
)

// ReturnItem is one returned line
type ReturnItem struct {
	ID           uuid.UUID
	SaleItemID   *uuid.UUID
	ProductID    uuid.UUID
	ProductName  string
	SKU          string
	Quantity     int
	UnitPrice    decimal.Decimal
	RefundAmount decimal.Decimal
	Condition    ItemCondition
	Restock      bool
}

// Return records goods coming back from a customer
type Return struct {
	shared.BaseAggregateRoot
	ReturnNumber       string
	OriginalSaleID     *uuid.UUID
	OriginalSaleNumber string
	ReturnType         ReturnType
	Status             ReturnStatus
	Items              []ReturnItem
	TotalRefund        decimal.Decimal
	RefundMethod       PaymentMethod
	Reason             string
	ExchangeSaleID     *uuid.UUID
	NewItemsTotal      decimal.Decimal
	ExchangeAmountDue  decimal.Decimal // negative means the customer is owed money
	WarrantyClaimID    *uuid.UUID
	Customer           shared.CustomerSnapshot
	ProcessedBy        uuid.UUID
}

// ReturnLine asks to return quantity units of one sale line
type ReturnLine struct {
	SaleItemID uuid.UUID
	Quantity   int
	Condition  ItemCondition
}

// BuildReturnItems validates requested lines against the original sale and prices the refund.
// alreadyReturned maps sale item id to units returned by earlier returns.
func BuildReturnItems(sale *Sale, lines []ReturnLine, alreadyReturned map[uuid.UUID]int) ([]ReturnItem, decimal.Decimal, error) {
	if sale.IsVoided() {
		return nil, decimal.Zero, shared.NewInvalidStateError("Cannot return items from a voided sale")
	}
	if len(lines) == 0 {
		return nil, decimal.Zero, shared.NewInvalidInputError("A return needs at least one item")
	}

	requested := make(map[uuid.UUID]int, len(lines))
	items := make([]ReturnItem, 0, len(lines))
	total := decimal.Zero
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, decimal.Zero, shared.NewInvalidInputError("Return quantity must be positive")
		}
		saleItem, ok := sale.FindItem(line.SaleItemID)
		if !ok {
			return nil, decimal.Zero, shared.NewNotFoundError("Sale item").
				WithDetail("sale_item_id", line.SaleItemID.String())
		}
		requested[line.SaleItemID] += line.Quantity
		if alreadyReturned[line.SaleItemID]+requested[line.SaleItemID] > saleItem.Quantity {
			return nil, decimal.Zero, shared.NewDomainError("RETURN_QUANTITY_EXCEEDED",
				"Return quantity exceeds quantity purchased for "+saleItem.SKU).
				WithDetail("sale_item_id", saleItem.ID.String()).
				WithDetail("purchased", saleItem.Quantity).
				WithDetail("already_returned", alreadyReturned[line.SaleItemID])
		}

		condition := line.Condition
		if condition == "" {
			condition = ConditionGood
		}
		refund := RefundForLine(saleItem, line.Quantity)
		saleItemID := saleItem.ID
		items = append(items, ReturnItem{
			ID:           uuid.New(),
			SaleItemID:   &saleItemID,
			ProductID:    saleItem.ProductID,
			ProductName:  saleItem.ProductName,
			SKU:          saleItem.SKU,
			Quantity:     line.Quantity,
			UnitPrice:    saleItem.UnitPrice,
			RefundAmount: refund,
			Condition:    condition,
			Restock:      true,
		})
		total = total.Add(refund)
	}
	return items, shared.RoundMoney(total), nil
}

// NewReturnParams carries the data for a completed return
type NewReturnParams struct {
	ReturnNumber string
	Sale         *Sale // nil for warranty refunds without a sale link
	ReturnType   ReturnType
	Items        []ReturnItem
	TotalRefund  decimal.Decimal
	RefundMethod PaymentMethod
	Reason       string
	Customer     shared.CustomerSnapshot
	ProcessedBy  uuid.UUID
	Now          time.Time
}

// NewReturn creates a COMPLETED return
func NewReturn(p NewReturnParams) (*Return, error) {
	if p.ReturnNumber == "" {
		return nil, shared.NewInvalidInputError("Return number is required")
	}
	if len(p.Items) == 0 {
		return nil, shared.NewInvalidInputError("A return needs at least one item")
	}
	switch p.ReturnType {
	case ReturnTypeRefund, ReturnTypeExchange, ReturnTypeWarrantyRefund:
	default:
		return nil, shared.NewInvalidInputError("Unknown return type: " + string(p.ReturnType))
	}
	if p.RefundMethod == "" {
		p.RefundMethod = PaymentMethodCash
	}
	if !p.RefundMethod.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Unknown refund method: "+string(p.RefundMethod))
	}

	ret := &Return{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ReturnNumber:      p.ReturnNumber,
		ReturnType:        p.ReturnType,
		Status:            ReturnStatusCompleted,
		Items:             p.Items,
		TotalRefund:       shared.RoundMoney(p.TotalRefund),
		RefundMethod:      p.RefundMethod,
		Reason:            strings.TrimSpace(p.Reason),
		Customer:          p.Customer.Normalized(),
		ProcessedBy:       p.ProcessedBy,
		NewItemsTotal:     decimal.Zero,
		ExchangeAmountDue: decimal.Zero,
	}
	if p.Sale != nil {
		saleID := p.Sale.ID
		ret.OriginalSaleID = &saleID
		ret.OriginalSaleNumber = p.Sale.SaleNumber
		if !ret.Customer.IsIdentified() {
			ret.Customer = p.Sale.Customer
		}
	}
	if !p.Now.IsZero() {
		ret.CreatedAt = p.Now
		ret.UpdatedAt = p.Now
	}
	ret.AddDomainEvent(NewReturnCompletedEvent(ret))
	return ret, nil
}

// SettleExchange links the replacement sale and records the price difference.
// exchangeAmountDue = newItemsTotal − totalRefund and may be negative.
func (r *Return) SettleExchange(newSale *Sale) {
	saleID := newSale.ID
	r.ExchangeSaleID = &saleID
	r.NewItemsTotal = newSale.GrandTotal
	r.ExchangeAmountDue = ExchangeAmountDue(newSale.GrandTotal, r.TotalRefund)
}

// ExchangeAmountDue is what the customer owes for an exchange
func ExchangeAmountDue(newItemsTotal, totalRefund decimal.Decimal) decimal.Decimal {
	return shared.RoundMoney(newItemsTotal.Sub(totalRefund))
}

// LinkClaim records the warranty claim that produced this return
func (r *Return) LinkClaim(claimID uuid.UUID) {
	r.WarrantyClaimID = &claimID
}

// RestockLines lists the items that go back on the shelf
func (r *Return) RestockLines() []ReturnItem {
	out := make([]ReturnItem, 0, len(r.Items))
	for _, it := range r.Items {
		if it.Restock {
			out = append(out, it)
		}
	}
	return out
}

// NewWarrantyRefundItem is the single defective unit refunded by a warranty claim.
// It is never restocked.
func NewWarrantyRefundItem(saleItemID *uuid.UUID, productID uuid.UUID, name, sku string, refund decimal.Decimal) ReturnItem {
	return ReturnItem{
		ID:           uuid.New(),
		SaleItemID:   saleItemID,
		ProductID:    productID,
		ProductName:  name,
		SKU:          sku,
		Quantity:     1,
		UnitPrice:    refund,
		RefundAmount: refund,
		Condition:    ConditionDefective,
		Restock:      false,
	}
}
