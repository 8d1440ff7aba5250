package sales

import (
	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/catalog"
	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DiscountType selects how a sale-level discount is applied
type DiscountType string

const (
	DiscountTypePercentage DiscountType = "PERCENTAGE"
	DiscountTypeFixed      DiscountType = "FIXED"
)

// SaleDiscount is an optional discount over the whole sale
type SaleDiscount struct {
	Type  DiscountType
	Value decimal.Decimal
}

var hundred = decimal.NewFromInt(100)

// Amount returns the discount for a given subtotal
func (d SaleDiscount) Amount(subtotal decimal.Decimal) (decimal.Decimal, error) {
	if d.Value.IsNegative() {
		return decimal.Zero, shared.NewDomainError("INVALID_DISCOUNT", "Discount cannot be negative")
	}
	switch d.Type {
	case DiscountTypePercentage:
		if d.Value.GreaterThan(hundred) {
			return decimal.Zero, shared.NewDomainError("INVALID_DISCOUNT", "Percentage discount cannot exceed 100")
		}
		return shared.RoundMoney(shared.Percent(subtotal, d.Value)), nil
	case DiscountTypeFixed:
		if d.Value.GreaterThan(subtotal) {
			return decimal.Zero, shared.NewDomainError("INVALID_DISCOUNT", "Fixed discount cannot exceed the subtotal")
		}
		return shared.RoundMoney(d.Value), nil
	}
	return decimal.Zero, shared.NewDomainError("INVALID_DISCOUNT", "Unknown discount type: "+string(d.Type))
}

// LineRequest is a requested sale line before pricing
type LineRequest struct {
	ProductID uuid.UUID
	Quantity  int
	UnitPrice *decimal.Decimal // overrides the catalog price when set
	Discount  decimal.Decimal  // flat amount off this line
}

// PriceLine snapshots the product and computes the line's tax and total.
// tax = (unitPrice × qty − discount) × taxRate / 100; total = unitPrice × qty − discount + tax.
func PriceLine(product *catalog.Product, req LineRequest) (SaleItem, error) {
	if req.Quantity <= 0 {
		return SaleItem{}, shared.NewInvalidInputError("Item quantity must be positive")
	}
	unitPrice := product.SellingPrice
	if req.UnitPrice != nil {
		if req.UnitPrice.IsNegative() {
			return SaleItem{}, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
		}
		unitPrice = *req.UnitPrice
	}
	if req.Discount.IsNegative() {
		return SaleItem{}, shared.NewDomainError("INVALID_DISCOUNT", "Item discount cannot be negative")
	}

	gross := unitPrice.Mul(decimal.NewFromInt(int64(req.Quantity)))
	if req.Discount.GreaterThan(gross) {
		return SaleItem{}, shared.NewDomainError("INVALID_DISCOUNT", "Item discount cannot exceed the line amount")
	}
	net := gross.Sub(req.Discount)
	tax := shared.RoundMoney(shared.Percent(net, product.TaxRate))

	return SaleItem{
		ID:             uuid.New(),
		ProductID:      product.ID,
		ProductName:    product.Name,
		SKU:            product.SKU,
		Quantity:       req.Quantity,
		UnitPrice:      unitPrice,
		Discount:       req.Discount,
		TaxRate:        product.TaxRate,
		TaxAmount:      tax,
		Total:          shared.RoundMoney(net.Add(tax)),
		WarrantyMonths: product.WarrantyDurationMonths,
	}, nil
}

// Totals aggregates priced lines
type Totals struct {
	Subtotal      decimal.Decimal
	DiscountTotal decimal.Decimal
	TaxTotal      decimal.Decimal
	GrandTotal    decimal.Decimal
}

// ComputeTotals sums lines and applies the sale discount.
// grandTotal = round2(subtotal − discountTotal + taxTotal).
func ComputeTotals(items []SaleItem, discount *SaleDiscount) (Totals, error) {
	subtotal := decimal.Zero
	taxTotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.NetAmount())
		taxTotal = taxTotal.Add(it.TaxAmount)
	}
	discountTotal := decimal.Zero
	if discount != nil {
		amt, err := discount.Amount(subtotal)
		if err != nil {
			return Totals{}, err
		}
		discountTotal = amt
	}
	return Totals{
		Subtotal:      shared.RoundMoney(subtotal),
		DiscountTotal: discountTotal,
		TaxTotal:      shared.RoundMoney(taxTotal),
		GrandTotal:    shared.RoundMoney(subtotal.Sub(discountTotal).Add(taxTotal)),
	}, nil
}

// RefundForLine is the refund owed for returning qty units of a sale line:
// unitPrice × qty − (line discount / line quantity) × qty, tax excluded.
func RefundForLine(item SaleItem, qty int) decimal.Decimal {
	q := decimal.NewFromInt(int64(qty))
	perUnitDiscount := decimal.Zero
	if item.Quantity > 0 {
		perUnitDiscount = item.Discount.Div(decimal.NewFromInt(int64(item.Quantity)))
	}
	return shared.RoundMoney(item.UnitPrice.Mul(q).Sub(perUnitDiscount.Mul(q)))
}

// UnitLineTotal is one unit's share of the line total, tax included
func UnitLineTotal(item SaleItem) decimal.Decimal {
	if item.Quantity <= 0 {
		return decimal.Zero
	}
	return shared.RoundMoney(item.Total.Div(decimal.NewFromInt(int64(item.Quantity))))
}
