package warranty

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	appsales "github.com/shopdesk/backend/internal/application/sales"
	appshared "github.com/shopdesk/backend/internal/application/shared"
	"github.com/shopdesk/backend/internal/domain/catalog"
	"github.com/shopdesk/backend/internal/domain/inventory"
	"github.com/shopdesk/backend/internal/domain/repair"
	"github.com/shopdesk/backend/internal/domain/sales"
	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/shopdesk/backend/internal/domain/warranty"
	"github.com/shopdesk/backend/internal/infrastructure/persistence"
	"github.com/shopdesk/backend/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2026, 6, 10, 15, 0, 0, 0, time.UTC)

type warrantyFixture struct {
	db        *gorm.DB
	scope     appshared.TransactionScope
	svc       *WarrantyService
	sweeper   *ExpirySweeper
	publisher *testutil.RecordingPublisher
	clerk     uuid.UUID
}

func newWarrantyFixture(t *testing.T) *warrantyFixture {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	scope := persistence.NewGormTransactionScope(db)
	publisher := &testutil.RecordingPublisher{}
	svc := NewWarrantyService(scope, persistence.NewGormWarrantyRepository(db), publisher, zap.NewNop())
	svc.now = func() time.Time { return fixedNow }
	sweeper := NewExpirySweeper(scope, publisher, zap.NewNop()).WithBatchSize(2)
	sweeper.now = func() time.Time { return fixedNow }
	return &warrantyFixture{db: db, scope: scope, svc: svc, sweeper: sweeper, publisher: publisher, clerk: uuid.New()}
}

func (f *warrantyFixture) product(t *testing.T, sku string, price, cost, tax int64, stock int) *catalog.Product {
	t.Helper()
	ctx := context.Background()
	p, err := catalog.NewProduct(sku, catalog.ProductAttributes{
		Name:                   "Product " + sku,
		SellingPrice:           decimal.NewFromInt(price),
		CostPrice:              decimal.NewFromInt(cost),
		TaxRate:                decimal.NewFromInt(tax),
		WarrantyDurationMonths: 12,
		WarrantyType:           catalog.WarrantyTypeManufacturer,
	})
	require.NoError(t, err)
	err = f.scope.Execute(ctx, func(repos appshared.Repositories) error {
		if err := repos.Products().Save(ctx, p); err != nil {
			return err
		}
		if stock == 0 {
			return nil
		}
		_, err := appshared.Ledger(repos).Adjust(ctx, inventory.AdjustCommand{
			ProductID: p.ID,
			Type:      inventory.AdjustmentTypePurchase,
			Quantity:  stock,
			ActorID:   f.clerk,
		})
		return err
	})
	require.NoError(t, err)
	return p
}

func (f *warrantyFixture) stock(t *testing.T, productID uuid.UUID) int {
	t.Helper()
	ledger := inventory.NewStockLedger(
		persistence.NewGormStockRecordRepository(f.db),
		persistence.NewGormStockAdjustmentRepository(f.db),
	)
	qty, err := ledger.Available(context.Background(), productID)
	require.NoError(t, err)
	return qty
}

func customer() shared.CustomerSnapshot {
	return shared.CustomerSnapshot{Name: "Ana Ruiz", Phone: "555-0142"}
}

func (f *warrantyFixture) manual(t *testing.T, product *catalog.Product, start time.Time, months int) *WarrantyResponse {
	t.Helper()
	var productID *uuid.UUID
	if product != nil {
		productID = &product.ID
	}
	w, err := f.svc.Create(context.Background(), f.clerk, CreateWarrantyInput{
		ProductID:      productID,
		ProductName:    "Blender",
		Customer:       customer(),
		DurationMonths: months,
		StartDate:      &start,
	})
	require.NoError(t, err)
	return w
}

// soldWarranty records a one-line sale and the warranty issued for one of its units
func (f *warrantyFixture) soldWarranty(t *testing.T, product *catalog.Product, quantity int, discount decimal.Decimal) (*sales.Sale, *warranty.Warranty) {
	t.Helper()
	ctx := context.Background()
	item, err := sales.PriceLine(product, sales.LineRequest{ProductID: product.ID, Quantity: quantity, Discount: discount})
	require.NoError(t, err)
	sale, err := sales.NewSale(sales.NewSaleParams{
		SaleNumber: "SL-20260601-0001",
		CashierID:  f.clerk,
		Items:      []sales.SaleItem{item},
		Customer:   customer(),
		Now:        fixedNow.AddDate(0, 0, -9),
	})
	require.NoError(t, err)
	saleID, itemID, productID := sale.ID, item.ID, product.ID
	w, err := warranty.NewWarranty(warranty.NewWarrantyParams{
		WarrantyNumber: "WR-20260601-0001",
		SourceType:     warranty.SourceSale,
		SaleID:         &saleID,
		SaleItemID:     &itemID,
		SaleNumber:     sale.SaleNumber,
		ProductID:      &productID,
		ProductName:    product.Name,
		SKU:            product.SKU,
		Customer:       customer(),
		DurationMonths: 12,
		StartDate:      fixedNow.AddDate(0, 0, -9),
		IssuedBy:       f.clerk,
	})
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormSaleRepository(f.db).Save(ctx, sale))
	require.NoError(t, persistence.NewGormWarrantyRepository(f.db).Save(ctx, w))
	return sale, w
}

func TestWarrantyService_Create(t *testing.T) {
	f := newWarrantyFixture(t)
	ctx := context.Background()
	p := f.product(t, "BLEND-1", 100, 60, 0, 0)

	t.Run("manual warranty takes product defaults", func(t *testing.T) {
		w, err := f.svc.Create(ctx, f.clerk, CreateWarrantyInput{
			ProductID: &p.ID,
			Customer:  customer(),
		})
		require.NoError(t, err)
		assert.Equal(t, "WR-20260610-0001", w.WarrantyNumber)
		assert.Equal(t, "MANUAL", w.SourceType)
		assert.Equal(t, "ACTIVE", w.Status)
		assert.Equal(t, p.Name, w.ProductName)
		assert.Equal(t, 12, w.DurationMonths)
		assert.Equal(t, "MANUFACTURER", w.WarrantyType)
		assert.Equal(t, time.Date(2027, 6, 10, 15, 0, 0, 0, time.UTC), w.EndDate.UTC())
	})

	t.Run("calendar months clamp to month end", func(t *testing.T) {
		w := f.manual(t, nil, time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC), 1)
		assert.Equal(t, time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC), w.EndDate.UTC())
	})

	t.Run("customer name and phone are required", func(t *testing.T) {
		_, err := f.svc.Create(ctx, f.clerk, CreateWarrantyInput{
			ProductName:    "Blender",
			Customer:       shared.CustomerSnapshot{Name: "No Phone"},
			DurationMonths: 6,
		})
		testutil.RequireDomainCode(t, err, shared.CodeInvalidInput)
	})

	t.Run("duration must be at least one month", func(t *testing.T) {
		_, err := f.svc.Create(ctx, f.clerk, CreateWarrantyInput{
			ProductName: "Blender",
			Customer:    customer(),
		})
		testutil.RequireDomainCode(t, err, "INVALID_WARRANTY_DURATION")
	})

	t.Run("sale source is not accepted", func(t *testing.T) {
		_, err := f.svc.Create(ctx, f.clerk, CreateWarrantyInput{SourceType: "sale", ProductName: "X", Customer: customer(), DurationMonths: 1})
		testutil.RequireDomainCode(t, err, shared.CodeInvalidInput)
	})

	t.Run("repair warranty copies the job", func(t *testing.T) {
		job, err := repair.NewJob(repair.NewJobParams{
			JobNumber:          "RJ-20260601-0001",
			Customer:           shared.CustomerSnapshot{Name: "Kim Park", Phone: "555-0177"},
			Device:             repair.Device{Type: "Laptop", Brand: "Acme", Model: "Book 14", SerialNumber: "LT-9"},
			ProblemDescription: "No power",
			ReceivedBy:         f.clerk,
		})
		require.NoError(t, err)
		require.NoError(t, persistence.NewGormRepairJobRepository(f.db).Save(ctx, job))

		w, err := f.svc.Create(ctx, f.clerk, CreateWarrantyInput{
			SourceType:     "repair",
			RepairJobID:    &job.ID,
			DurationMonths: 3,
		})
		require.NoError(t, err)
		assert.Equal(t, "REPAIR", w.SourceType)
		assert.Equal(t, "Kim Park", w.Customer.Name)
		assert.Equal(t, "Acme Book 14", w.ProductName)
		assert.Equal(t, "LT-9", w.SerialNumber)
		require.NotNil(t, w.RepairJobID)
		assert.Equal(t, job.ID, *w.RepairJobID)
	})
}

func TestWarrantyService_RepairClaim(t *testing.T) {
	f := newWarrantyFixture(t)
	ctx := context.Background()
	w := f.manual(t, nil, fixedNow.AddDate(0, -1, 0), 6)

	result, err := f.svc.FileClaim(ctx, f.clerk, w.ID, FileClaimInput{Issue: "Motor stalls", Resolution: "repair"})
	require.NoError(t, err)
	assert.Equal(t, "CLM-20260610-0001", result.Claim.ClaimNumber)
	assert.Equal(t, "CLAIMED", result.Warranty.Status)
	require.NotNil(t, result.RepairJobID)
	assert.Equal(t, "RJ-20260610-0001", result.JobNumber)
	assert.True(t, result.Claim.ClaimCost.IsZero())

	job, err := persistence.NewGormRepairJobRepository(f.db).FindByID(ctx, *result.RepairJobID)
	require.NoError(t, err)
	assert.Equal(t, repair.StatusReceived, job.Status)
	assert.Equal(t, "Warranty Claim: Motor stalls", job.ProblemDescription)
	assert.Equal(t, customer(), job.Customer)
	require.NotNil(t, job.WarrantyClaimID)
	assert.Equal(t, result.Claim.ID, *job.WarrantyClaimID)

	t.Run("claimed warranties take further claims", func(t *testing.T) {
		again, err := f.svc.FileClaim(ctx, f.clerk, w.ID, FileClaimInput{Issue: "Lid cracked", Resolution: "REJECTED"})
		require.NoError(t, err)
		assert.Equal(t, "CLM-20260610-0002", again.Claim.ClaimNumber)
		assert.Equal(t, "CLAIMED", again.Warranty.Status)
		assert.Len(t, again.Warranty.Claims, 2)
	})

	t.Run("undecided claim", func(t *testing.T) {
		pending, err := f.svc.FileClaim(ctx, f.clerk, w.ID, FileClaimInput{Issue: "Noise"})
		require.NoError(t, err)
		assert.Equal(t, "PENDING", pending.Claim.Resolution)
	})

	t.Run("links an existing job", func(t *testing.T) {
		existing, err := repair.NewJob(repair.NewJobParams{
			JobNumber:          "RJ-20260609-0001",
			Customer:           customer(),
			ProblemDescription: "Booked before the claim",
			ReceivedBy:         f.clerk,
		})
		require.NoError(t, err)
		require.NoError(t, persistence.NewGormRepairJobRepository(f.db).Save(ctx, existing))

		linked, err := f.svc.FileClaim(ctx, f.clerk, w.ID, FileClaimInput{
			Issue:       "Blade loose",
			Resolution:  "REPAIR",
			RepairJobID: &existing.ID,
		})
		require.NoError(t, err)
		require.NotNil(t, linked.RepairJobID)
		assert.Equal(t, existing.ID, *linked.RepairJobID)
	})

	claims, err := f.svc.Claims(ctx, w.ID)
	require.NoError(t, err)
	assert.Len(t, claims, 4)
}

func TestWarrantyService_ReplaceClaim(t *testing.T) {
	f := newWarrantyFixture(t)
	ctx := context.Background()
	original := f.product(t, "PHONE-A", 300, 180, 0, 2)
	empty := f.product(t, "PHONE-B", 320, 200, 0, 0)
	w := f.manual(t, original, fixedNow.AddDate(0, -2, 0), 12)

	t.Run("out of stock replacement leaves no trace", func(t *testing.T) {
		_, err := f.svc.FileClaim(ctx, f.clerk, w.ID, FileClaimInput{
			Issue:                "Dead on arrival",
			Resolution:           "REPLACE",
			ReplacementProductID: &empty.ID,
		})
		testutil.RequireDomainCode(t, err, shared.CodeInsufficientStock)
		got, err := f.svc.GetByID(ctx, w.ID)
		require.NoError(t, err)
		assert.Equal(t, "ACTIVE", got.Status)
		assert.Empty(t, got.Claims)
	})

	result, err := f.svc.FileClaim(ctx, f.clerk, w.ID, FileClaimInput{Issue: "Dead on arrival", Resolution: "REPLACE"})
	require.NoError(t, err)
	assert.Equal(t, "CLAIMED", result.Warranty.Status)
	require.NotNil(t, result.Claim.ReplacementProductID)
	assert.Equal(t, original.ID, *result.Claim.ReplacementProductID)
	assert.True(t, decimal.NewFromInt(180).Equal(result.Claim.ClaimCost))
	assert.Equal(t, 1, f.stock(t, original.ID))

	adjustments, err := persistence.NewGormStockAdjustmentRepository(f.db).
		FindByReference(ctx, inventory.ReferenceTypeWarrantyClaim, result.Claim.ID)
	require.NoError(t, err)
	require.Len(t, adjustments, 1)
	assert.Equal(t, inventory.AdjustmentTypeWarrantyReplace, adjustments[0].Type)
	assert.Equal(t, 1, adjustments[0].Quantity)
}

func TestWarrantyService_RefundClaim(t *testing.T) {
	f := newWarrantyFixture(t)
	ctx := context.Background()
	p := f.product(t, "KETTLE", 100, 50, 10, 3)
	sale, w := f.soldWarranty(t, p, 1, decimal.Zero)

	result, err := f.svc.FileClaim(ctx, f.clerk, w.ID, FileClaimInput{Issue: "Leaks", Resolution: "refund"})
	require.NoError(t, err)
	assert.Equal(t, "VOID", result.Warranty.Status)
	assert.Contains(t, result.Warranty.VoidReason, result.Claim.ClaimNumber)
	assert.True(t, decimal.NewFromInt(110).Equal(result.Claim.RefundAmount), result.Claim.RefundAmount.String())
	assert.True(t, result.Claim.ClaimCost.Equal(result.Claim.RefundAmount))
	require.NotNil(t, result.ReturnID)
	assert.True(t, strings.HasPrefix(result.ReturnNo, "RT-20260610-"))

	ret, err := persistence.NewGormReturnRepository(f.db).FindByID(ctx, *result.ReturnID)
	require.NoError(t, err)
	assert.Equal(t, sales.ReturnTypeWarrantyRefund, ret.ReturnType)
	require.NotNil(t, ret.OriginalSaleID)
	assert.Equal(t, sale.ID, *ret.OriginalSaleID)
	require.NotNil(t, ret.WarrantyClaimID)
	assert.Equal(t, result.Claim.ID, *ret.WarrantyClaimID)
	require.Len(t, ret.Items, 1)
	assert.Equal(t, sales.ConditionDefective, ret.Items[0].Condition)
	assert.False(t, ret.Items[0].Restock)

	// the defective unit does not go back on the shelf
	assert.Equal(t, 3, f.stock(t, p.ID))

	_, err = f.svc.FileClaim(ctx, f.clerk, w.ID, FileClaimInput{Issue: "Again", Resolution: "REJECTED"})
	testutil.RequireDomainCode(t, err, shared.CodeInvalidState)

	t.Run("without a sale the current price is refunded", func(t *testing.T) {
		manual := f.manual(t, p, fixedNow.AddDate(0, -1, 0), 6)
		res, err := f.svc.FileClaim(ctx, f.clerk, manual.ID, FileClaimInput{Issue: "Leaks", Resolution: "REFUND"})
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(100).Equal(res.Claim.RefundAmount))
	})
}

func TestWarrantyService_RefundClaim_MultiUnitLine(t *testing.T) {
	f := newWarrantyFixture(t)
	ctx := context.Background()
	p := f.product(t, "TOASTER", 100, 50, 10, 3)
	// 3×100 − 30 + 10% tax = 297
	sale, w := f.soldWarranty(t, p, 3, decimal.NewFromInt(30))
	line := sale.Items[0]

	result, err := f.svc.FileClaim(ctx, f.clerk, w.ID, FileClaimInput{Issue: "Burns bread", Resolution: "REFUND"})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(99).Equal(result.Claim.RefundAmount), "one unit's share of the line: %s", result.Claim.RefundAmount)
	assert.True(t, result.Claim.ClaimCost.Equal(result.Claim.RefundAmount))

	returnRepo := persistence.NewGormReturnRepository(f.db)
	returned, err := returnRepo.ReturnedQuantities(ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, returned[line.ID])

	returns := appsales.NewReturnService(f.scope, returnRepo, f.publisher, zap.NewNop())

	t.Run("refunded unit cannot be returned again", func(t *testing.T) {
		_, err := returns.Create(ctx, f.clerk, appsales.CreateReturnInput{
			SaleID: sale.ID,
			Items:  []appsales.ReturnLineInput{{SaleItemID: line.ID, Quantity: 3}},
		})
		testutil.RequireDomainCode(t, err, "RETURN_QUANTITY_EXCEEDED")
		assert.Equal(t, 3, f.stock(t, p.ID))
	})

	t.Run("remaining units stay returnable", func(t *testing.T) {
		ret, err := returns.Create(ctx, f.clerk, appsales.CreateReturnInput{
			SaleID: sale.ID,
			Items:  []appsales.ReturnLineInput{{SaleItemID: line.ID, Quantity: 2}},
		})
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(180).Equal(ret.TotalRefund), ret.TotalRefund.String())
		assert.Equal(t, 5, f.stock(t, p.ID))

		_, err = returns.Create(ctx, f.clerk, appsales.CreateReturnInput{
			SaleID: sale.ID,
			Items:  []appsales.ReturnLineInput{{SaleItemID: line.ID, Quantity: 1}},
		})
		testutil.RequireDomainCode(t, err, "RETURN_QUANTITY_EXCEEDED")
		assert.Equal(t, 5, f.stock(t, p.ID))
	})
}

func TestWarrantyService_ExpiryAndVoid(t *testing.T) {
	f := newWarrantyFixture(t)
	ctx := context.Background()
	lapsed := []*WarrantyResponse{
		f.manual(t, nil, fixedNow.AddDate(-2, 0, 0), 12),
		f.manual(t, nil, fixedNow.AddDate(-1, -1, 0), 12),
		f.manual(t, nil, fixedNow.AddDate(-1, -6, 0), 6),
	}
	current := f.manual(t, nil, fixedNow.AddDate(0, -1, 0), 12)

	got, err := f.svc.GetByID(ctx, lapsed[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "EXPIRED", got.Status)

	validity, err := f.svc.CheckValidity(ctx, lapsed[0].ID)
	require.NoError(t, err)
	assert.False(t, validity.Valid)
	assert.Equal(t, "EXPIRED", validity.Status)

	validity, err = f.svc.CheckValidity(ctx, current.ID)
	require.NoError(t, err)
	assert.True(t, validity.Valid)
	assert.Positive(t, validity.DaysRemaining)

	_, err = f.svc.FileClaim(ctx, f.clerk, lapsed[0].ID, FileClaimInput{Issue: "Broken", Resolution: "REJECTED"})
	testutil.RequireDomainCode(t, err, shared.CodeInvalidState)

	expired, err := f.svc.List(ctx, ListFilter{Filter: shared.DefaultFilter(), Status: "expired"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), expired.Total)

	result, err := f.sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Expired)
	assert.Equal(t, 2, result.Batches)

	again, err := f.sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Expired)

	active, err := f.svc.List(ctx, ListFilter{Filter: shared.DefaultFilter(), Status: "ACTIVE"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), active.Total)

	t.Run("void is terminal", func(t *testing.T) {
		voided, err := f.svc.Void(ctx, f.clerk, current.ID, "Sold by mistake")
		require.NoError(t, err)
		assert.Equal(t, "VOID", voided.Status)

		_, err = f.svc.Void(ctx, f.clerk, current.ID, "again")
		testutil.RequireDomainCode(t, err, shared.CodeInvalidState)

		res, err := f.sweeper.Sweep(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, res.Expired)
	})

	t.Run("unknown status filter", func(t *testing.T) {
		_, err := f.svc.List(ctx, ListFilter{Status: "LAPSED"})
		testutil.RequireDomainCode(t, err, shared.CodeInvalidInput)
	})

	var expiredEvents int
	for _, e := range f.publisher.Events() {
		if e.EventType() == warranty.EventTypeWarrantyExpired {
			expiredEvents++
		}
	}
	assert.Equal(t, 3, expiredEvents)
}
