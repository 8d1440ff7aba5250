package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/catalog"
	"github.com/shopdesk/backend/internal/domain/sales"
	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProduct(t *testing.T, sku string, price int64, taxRate int64, warrantyMonths int) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(sku, catalog.ProductAttributes{
		Name:                   "Product " + sku,
		SellingPrice:           decimal.NewFromInt(price),
		CostPrice:              decimal.NewFromInt(price / 2),
		TaxRate:                decimal.NewFromInt(taxRate),
		WarrantyDurationMonths: warrantyMonths,
	})
	require.NoError(t, err)
	return p
}

func testSale(t *testing.T, number string, lines map[*catalog.Product]int) *sales.Sale {
	t.Helper()
	items := make([]sales.SaleItem, 0, len(lines))
	for p, qty := range lines {
		item, err := sales.PriceLine(p, sales.LineRequest{ProductID: p.ID, Quantity: qty})
		require.NoError(t, err)
		items = append(items, item)
	}
	cash, err := sales.NewPayment(sales.PaymentMethodCash, decimal.NewFromInt(1000), "")
	require.NoError(t, err)
	sale, err := sales.NewSale(sales.NewSaleParams{
		SaleNumber: number,
		CashierID:  uuid.New(),
		Items:      items,
		Payments:   []sales.Payment{cash},
		Customer:   shared.CustomerSnapshot{Name: "Ann Lee", Phone: "555-0100"},
		Now:        time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return sale
}

func TestGormSaleRepository_SaveAndLoad(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormSaleRepository(db)
	ctx := context.Background()
	phone := testProduct(t, "PHONE-1", 150, 10, 12)

	sale := testSale(t, "SL-20260401-0001", map[*catalog.Product]int{phone: 2})
	require.NoError(t, repo.Save(ctx, sale))
	assert.False(t, sale.IsNew())

	loaded, err := repo.FindByNumber(ctx, "SL-20260401-0001")
	require.NoError(t, err)
	assert.Equal(t, sale.ID, loaded.ID)
	require.Len(t, loaded.Items, 1)
	assert.Equal(t, "PHONE-1", loaded.Items[0].SKU)
	assert.Equal(t, 2, loaded.Items[0].Quantity)
	assert.True(t, decimal.NewFromInt(330).Equal(loaded.GrandTotal), "got %s", loaded.GrandTotal)
	require.Len(t, loaded.Payments, 1)
	assert.Equal(t, sales.PaymentMethodCash, loaded.Payments[0].Method)
	assert.Equal(t, "555-0100", loaded.Customer.Phone)
	assert.Equal(t, sales.SaleStatusCompleted, loaded.Status)
}

func TestGormSaleRepository_VoidUsesVersionCheck(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormSaleRepository(db)
	ctx := context.Background()
	sale := testSale(t, "SL-20260401-0002", map[*catalog.Product]int{testProduct(t, "CASE-1", 20, 0, 0): 1})
	require.NoError(t, repo.Save(ctx, sale))

	first, err := repo.FindByID(ctx, sale.ID)
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, sale.ID)
	require.NoError(t, err)

	require.NoError(t, first.Void(uuid.New(), "customer changed mind", time.Now().UTC()))
	require.NoError(t, repo.Save(ctx, first))

	require.NoError(t, second.Void(uuid.New(), "duplicate", time.Now().UTC()))
	err = repo.Save(ctx, second)
	assert.True(t, shared.IsConcurrencyConflict(err))

	stored, err := repo.FindByID(ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, sales.SaleStatusVoided, stored.Status)
	assert.Equal(t, "customer changed mind", stored.VoidReason)
	assert.Len(t, stored.Items, 1, "lines survive header updates")
}

func TestGormSaleRepository_FindAll(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormSaleRepository(db)
	ctx := context.Background()
	p := testProduct(t, "CABLE-1", 10, 0, 0)

	for _, n := range []string{"SL-20260401-0001", "SL-20260401-0002", "SL-20260401-0003"} {
		require.NoError(t, repo.Save(ctx, testSale(t, n, map[*catalog.Product]int{p: 1})))
	}

	list, total, err := repo.FindAll(ctx, sales.SaleFilter{Filter: shared.Filter{Page: 1, PageSize: 2, Search: "0003"}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, list, 1)
	assert.Equal(t, "SL-20260401-0003", list[0].SaleNumber)

	_, err = repo.FindByNumber(ctx, "SL-19990101-0001")
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestGormReturnRepository_ReturnedQuantities(t *testing.T) {
	db := newSQLiteDB(t)
	ctx := context.Background()
	saleRepo := NewGormSaleRepository(db)
	returnRepo := NewGormReturnRepository(db)
	p := testProduct(t, "EARBUD-1", 40, 0, 0)

	sale := testSale(t, "SL-20260401-0009", map[*catalog.Product]int{p: 3})
	require.NoError(t, saleRepo.Save(ctx, sale))
	line := sale.Items[0]

	items, total, err := sales.BuildReturnItems(sale, []sales.ReturnLine{{SaleItemID: line.ID, Quantity: 2}}, nil)
	require.NoError(t, err)
	ret, err := sales.NewReturn(sales.NewReturnParams{
		ReturnNumber: "RT-20260401-0001",
		Sale:         sale,
		ReturnType:   sales.ReturnTypeRefund,
		Items:        items,
		TotalRefund:  total,
		ProcessedBy:  uuid.New(),
	})
	require.NoError(t, err)
	require.NoError(t, returnRepo.Create(ctx, ret))

	lineID := line.ID
	warrantyRefund, err := sales.NewReturn(sales.NewReturnParams{
		ReturnNumber: "RT-20260401-0002",
		Sale:         sale,
		ReturnType:   sales.ReturnTypeWarrantyRefund,
		Items:        []sales.ReturnItem{sales.NewWarrantyRefundItem(&lineID, p.ID, p.Name, p.SKU, decimal.NewFromInt(40))},
		TotalRefund:  decimal.NewFromInt(40),
		ProcessedBy:  uuid.New(),
	})
	require.NoError(t, err)
	require.NoError(t, returnRepo.Create(ctx, warrantyRefund))

	returned, err := returnRepo.ReturnedQuantities(ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, returned[line.ID], "warranty refunds count against the returnable quantity")

	bySale, err := returnRepo.FindBySale(ctx, sale.ID)
	require.NoError(t, err)
	assert.Len(t, bySale, 2)

	loaded, err := returnRepo.FindByNumber(ctx, "RT-20260401-0001")
	require.NoError(t, err)
	require.Len(t, loaded.Items, 1)
	assert.True(t, decimal.NewFromInt(80).Equal(loaded.TotalRefund))
	assert.Equal(t, sale.SaleNumber, loaded.OriginalSaleNumber)
}
