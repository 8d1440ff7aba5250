package sales

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	appshared "github.com/shopdesk/backend/internal/application/shared"
	"github.com/shopdesk/backend/internal/domain/catalog"
	"github.com/shopdesk/backend/internal/domain/inventory"
	"github.com/shopdesk/backend/internal/domain/sales"
	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/shopdesk/backend/internal/domain/warranty"
	"github.com/shopspring/decimal"
)

// priceLines loads and validates the products behind the requested lines, checks
// stock for the combined quantity per product, and prices every line
func priceLines(ctx context.Context, repos appshared.Repositories, lines []SaleLineInput) ([]sales.SaleItem, map[uuid.UUID]*catalog.Product, error) {
	if len(lines) == 0 {
		return nil, nil, shared.NewInvalidInputError("A sale needs at least one item")
	}
	ids := make([]uuid.UUID, 0, len(lines))
	wanted := make(map[uuid.UUID]int, len(lines))
	for _, l := range lines {
		if l.Quantity <= 0 {
			return nil, nil, shared.NewInvalidInputError("Item quantity must be positive")
		}
		if _, seen := wanted[l.ProductID]; !seen {
			ids = append(ids, l.ProductID)
		}
		wanted[l.ProductID] += l.Quantity
	}

	found, err := repos.Products().FindByIDs(ctx, ids)
	if err != nil {
		return nil, nil, err
	}
	products := make(map[uuid.UUID]*catalog.Product, len(found))
	for _, p := range found {
		products[p.ID] = p
	}

	ledger := appshared.Ledger(repos)
	for _, id := range ids {
		product, ok := products[id]
		if !ok {
			return nil, nil, shared.NewNotFoundError("Product").WithDetail("product_id", id.String())
		}
		if err := product.EnsureSellable(); err != nil {
			return nil, nil, err
		}
		if err := ledger.EnsureAvailable(ctx, id, wanted[id]); err != nil {
			return nil, nil, err
		}
	}

	items := make([]sales.SaleItem, 0, len(lines))
	for _, l := range lines {
		item, err := sales.PriceLine(products[l.ProductID], sales.LineRequest{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Discount:  l.Discount,
		})
		if err != nil {
			return nil, nil, err
		}
		items = append(items, item)
	}
	return items, products, nil
}

func parsePayments(input []PaymentInput) ([]sales.Payment, error) {
	out := make([]sales.Payment, 0, len(input))
	for _, p := range input {
		method := sales.PaymentMethod(strings.ToUpper(strings.TrimSpace(p.Method)))
		if method == sales.PaymentMethodExchangeCredit {
			return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Exchange credit is applied automatically")
		}
		payment, err := sales.NewPayment(method, p.Amount, p.Reference)
		if err != nil {
			return nil, err
		}
		out = append(out, payment)
	}
	return out, nil
}

func parseDiscount(input *DiscountInput) *sales.SaleDiscount {
	if input == nil {
		return nil
	}
	return &sales.SaleDiscount{
		Type:  sales.DiscountType(strings.ToUpper(strings.TrimSpace(input.Type))),
		Value: input.Value,
	}
}

func sumPayments(payments []sales.Payment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.Amount)
	}
	return total
}

// deductSaleStock takes every sold unit off the shelf
func deductSaleStock(ctx context.Context, ledger *inventory.StockLedger, sale *sales.Sale, actorID uuid.UUID, rec *appshared.EventRecorder) error {
	ref := inventory.NewReference(inventory.ReferenceTypeSale, sale.ID, sale.SaleNumber)
	for _, it := range sale.Items {
		res, err := ledger.Adjust(ctx, inventory.AdjustCommand{
			ProductID: it.ProductID,
			Type:      inventory.AdjustmentTypeSale,
			Quantity:  it.Quantity,
			ActorID:   actorID,
			Reason:    "Sale " + sale.SaleNumber,
			Reference: ref,
		})
		if err != nil {
			return err
		}
		rec.Record(res.Event())
	}
	return nil
}

// issueSaleWarranties creates one warranty per unit sold of every product that
// carries one. Sales without a customer name and phone issue none.
func issueSaleWarranties(
	ctx context.Context,
	repos appshared.Repositories,
	sale *sales.Sale,
	products map[uuid.UUID]*catalog.Product,
	actorID uuid.UUID,
	now time.Time,
	rec *appshared.EventRecorder,
) ([]*warranty.Warranty, error) {
	issued := make([]*warranty.Warranty, 0)
	if !sale.Customer.IsIdentified() {
		return issued, nil
	}
	saleID := sale.ID
	for _, it := range sale.Items {
		product := products[it.ProductID]
		if product == nil || !product.HasWarranty() {
			continue
		}
		for unit := 0; unit < it.Quantity; unit++ {
			number, err := shared.NextDocumentNumber(ctx, repos.Sequences(), shared.DocumentTypeWarranty, now)
			if err != nil {
				return nil, err
			}
			itemID := it.ID
			productID := it.ProductID
			w, err := warranty.NewWarranty(warranty.NewWarrantyParams{
				WarrantyNumber: number,
				SourceType:     warranty.SourceSale,
				SaleID:         &saleID,
				SaleItemID:     &itemID,
				SaleNumber:     sale.SaleNumber,
				ProductID:      &productID,
				ProductName:    it.ProductName,
				SKU:            it.SKU,
				WarrantyType:   string(product.WarrantyType),
				Customer:       sale.Customer,
				DurationMonths: product.WarrantyDurationMonths,
				StartDate:      now,
				IssuedBy:       actorID,
			})
			if err != nil {
				return nil, err
			}
			if err := repos.Warranties().Save(ctx, w); err != nil {
				return nil, err
			}
			rec.Collect(w)
			issued = append(issued, w)
		}
	}
	return issued, nil
}

// restockReturn puts returned units back on the shelf
func restockReturn(ctx context.Context, ledger *inventory.StockLedger, ret *sales.Return, actorID uuid.UUID, rec *appshared.EventRecorder) error {
	ref := inventory.NewReference(inventory.ReferenceTypeReturn, ret.ID, ret.ReturnNumber)
	for _, it := range ret.RestockLines() {
		res, err := ledger.Adjust(ctx, inventory.AdjustCommand{
			ProductID: it.ProductID,
			Type:      inventory.AdjustmentTypeReturn,
			Quantity:  it.Quantity,
			ActorID:   actorID,
			Reason:    "Return " + ret.ReturnNumber,
			Reference: ref,
		})
		if err != nil {
			return err
		}
		rec.Record(res.Event())
	}
	return nil
}

// voidReturnedWarranties voids every ACTIVE warranty the original sale issued for
// a returned product
func voidReturnedWarranties(
	ctx context.Context,
	repos appshared.Repositories,
	ret *sales.Return,
	actorID uuid.UUID,
	now time.Time,
	rec *appshared.EventRecorder,
) ([]string, error) {
	voided := make([]string, 0)
	if ret.OriginalSaleID == nil {
		return voided, nil
	}
	seen := make(map[uuid.UUID]bool, len(ret.Items))
	for _, it := range ret.Items {
		if seen[it.ProductID] {
			continue
		}
		seen[it.ProductID] = true
		ws, err := repos.Warranties().FindActiveBySaleAndProduct(ctx, *ret.OriginalSaleID, it.ProductID)
		if err != nil {
			return nil, err
		}
		for _, w := range ws {
			if err := w.Void(actorID, "Product returned under "+ret.ReturnNumber, now); err != nil {
				return nil, err
			}
			if err := repos.Warranties().Save(ctx, w); err != nil {
				return nil, err
			}
			rec.Collect(w)
			voided = append(voided, w.WarrantyNumber)
		}
	}
	return voided, nil
}
