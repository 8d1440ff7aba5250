package inventory

import (
	"context"
	"errors"
	"math/rand"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/catalog"
	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRecords struct {
	rows      map[uuid.UUID]StockRecord
	updateErr error
}

func newMemRecords() *memRecords {
	return &memRecords{rows: make(map[uuid.UUID]StockRecord)}
}

func (m *memRecords) FindByProductID(_ context.Context, id uuid.UUID) (*StockRecord, error) {
	r, ok := m.rows[id]
	if !ok {
		return nil, shared.NewNotFoundError("Stock record")
	}
	return &r, nil
}

func (m *memRecords) FindByProductIDs(_ context.Context, ids []uuid.UUID) ([]*StockRecord, error) {
	out := make([]*StockRecord, 0)
	for _, id := range ids {
		if r, ok := m.rows[id]; ok {
			out = append(out, &r)
		}
	}
	return out, nil
}

func (m *memRecords) Insert(_ context.Context, r *StockRecord) (bool, error) {
	if _, ok := m.rows[r.ProductID]; ok {
		return false, nil
	}
	m.rows[r.ProductID] = *r
	return true, nil
}

func (m *memRecords) UpdateQuantity(_ context.Context, r *StockRecord, expected int) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	stored, ok := m.rows[r.ProductID]
	if !ok || stored.Version != expected {
		return shared.ErrConcurrencyConflict
	}
	m.rows[r.ProductID] = *r
	return nil
}

type memAdjustments struct {
	rows []*StockAdjustment
}

func (m *memAdjustments) Create(_ context.Context, a *StockAdjustment) error {
	m.rows = append(m.rows, a)
	return nil
}

func (m *memAdjustments) FindByProduct(_ context.Context, id uuid.UUID, _ shared.Filter) ([]*StockAdjustment, int64, error) {
	out := make([]*StockAdjustment, 0)
	for i := len(m.rows) - 1; i >= 0; i-- {
		if m.rows[i].ProductID == id {
			out = append(out, m.rows[i])
		}
	}
	return out, int64(len(out)), nil
}

func (m *memAdjustments) FindByReference(_ context.Context, t ReferenceType, id uuid.UUID) ([]*StockAdjustment, error) {
	out := make([]*StockAdjustment, 0)
	for _, a := range m.rows {
		if a.Reference.Type == t && a.Reference.ID != nil && *a.Reference.ID == id {
			out = append(out, a)
		}
	}
	return out, nil
}

func newTestLedger() (*StockLedger, *memRecords, *memAdjustments) {
	records := newMemRecords()
	adjustments := &memAdjustments{}
	fixed := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	return NewStockLedger(records, adjustments, WithClock(func() time.Time { return fixed })), records, adjustments
}

func TestStockLedger_GetOrCreate(t *testing.T) {
	ledger, records, _ := newTestLedger()
	ctx := context.Background()
	productID := uuid.New()

	qty, err := ledger.Available(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, 0, qty)
	assert.Empty(t, records.rows, "reading availability must not create a record")

	rec, err := ledger.GetOrCreate(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, 0, rec.Quantity)
	assert.Equal(t, 1, rec.Version)

	again, err := ledger.GetOrCreate(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, rec.CreatedAt, again.CreatedAt)
	assert.Len(t, records.rows, 1)
}

func TestStockLedger_Adjust(t *testing.T) {
	ctx := context.Background()
	actor := uuid.New()

	t.Run("addition then sale", func(t *testing.T) {
		ledger, _, adjustments := newTestLedger()
		productID := uuid.New()

		res, err := ledger.Adjust(ctx, AdjustCommand{ProductID: productID, Type: AdjustmentTypePurchase, Quantity: 5, ActorID: actor})
		require.NoError(t, err)
		assert.Equal(t, 0, res.PreviousQuantity)
		assert.Equal(t, 5, res.NewQuantity)

		saleID := uuid.New()
		res, err = ledger.Adjust(ctx, AdjustCommand{
			ProductID: productID, Type: AdjustmentTypeSale, Quantity: 2, ActorID: actor,
			Reference: NewReference(ReferenceTypeSale, saleID, "SL-20260314-0001"),
		})
		require.NoError(t, err)
		assert.Equal(t, 5, res.PreviousQuantity)
		assert.Equal(t, 3, res.NewQuantity)
		assert.Equal(t, -2, res.Adjustment.Delta)
		assert.Equal(t, DirectionDecrease, res.Adjustment.Direction)

		require.Len(t, adjustments.rows, 2)
		assert.Equal(t, ReferenceTypeManual, adjustments.rows[0].Reference.Type)
		assert.Equal(t, "SL-20260314-0001", adjustments.rows[1].Reference.Number)

		event, ok := res.Event().(*StockAdjustedEvent)
		require.True(t, ok)
		assert.Equal(t, 3, event.NewQuantity)
	})

	t.Run("reduction beyond stock fails without mutation", func(t *testing.T) {
		ledger, records, adjustments := newTestLedger()
		productID := uuid.New()
		_, err := ledger.Adjust(ctx, AdjustCommand{ProductID: productID, Type: AdjustmentTypeAddition, Quantity: 1})
		require.NoError(t, err)

		_, err = ledger.Adjust(ctx, AdjustCommand{ProductID: productID, Type: AdjustmentTypeDamage, Quantity: 2})
		require.Error(t, err)
		assert.True(t, errors.Is(err, shared.ErrInsufficientStock))

		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, 1, domainErr.Details["available"])
		assert.Equal(t, 1, records.rows[productID].Quantity)
		assert.Len(t, adjustments.rows, 1)
	})

	t.Run("correction requires explicit direction", func(t *testing.T) {
		ledger, _, _ := newTestLedger()
		productID := uuid.New()

		_, err := ledger.Adjust(ctx, AdjustCommand{ProductID: productID, Type: AdjustmentTypeCorrection, Quantity: 3})
		assert.True(t, errors.Is(err, shared.ErrInvalidAdjustmentType))

		res, err := ledger.Adjust(ctx, AdjustCommand{ProductID: productID, Type: AdjustmentTypeCorrection, Direction: DirectionIncrease, Quantity: 3})
		require.NoError(t, err)
		assert.Equal(t, 3, res.NewQuantity)

		res, err = ledger.Adjust(ctx, AdjustCommand{ProductID: productID, Type: AdjustmentTypeCorrection, Direction: DirectionDecrease, Quantity: 1})
		require.NoError(t, err)
		assert.Equal(t, 2, res.NewQuantity)
	})

	t.Run("direction is ignored for typed movements", func(t *testing.T) {
		ledger, _, _ := newTestLedger()
		productID := uuid.New()
		res, err := ledger.Adjust(ctx, AdjustCommand{ProductID: productID, Type: AdjustmentTypeReturn, Direction: DirectionDecrease, Quantity: 4})
		require.NoError(t, err)
		assert.Equal(t, 4, res.NewQuantity)
	})

	t.Run("rejects unknown type and non-positive quantity", func(t *testing.T) {
		ledger, _, _ := newTestLedger()
		_, err := ledger.Adjust(ctx, AdjustCommand{ProductID: uuid.New(), Type: "GIFT", Quantity: 1})
		assert.True(t, errors.Is(err, shared.ErrInvalidAdjustmentType))

		_, err = ledger.Adjust(ctx, AdjustCommand{ProductID: uuid.New(), Type: AdjustmentTypeAddition, Quantity: 0})
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
	})

	t.Run("version conflict surfaces and skips the adjustment", func(t *testing.T) {
		ledger, records, adjustments := newTestLedger()
		records.updateErr = shared.ErrConcurrencyConflict
		_, err := ledger.Adjust(ctx, AdjustCommand{ProductID: uuid.New(), Type: AdjustmentTypeAddition, Quantity: 1})
		assert.True(t, shared.IsConcurrencyConflict(err))
		assert.Empty(t, adjustments.rows)
	})
}

func TestStockLedger_RandomSequenceKeepsChain(t *testing.T) {
	ledger, records, adjustments := newTestLedger()
	ctx := context.Background()
	productID := uuid.New()
	rng := rand.New(rand.NewSource(42))
	types := AllAdjustmentTypes()

	for i := 0; i < 500; i++ {
		typ := types[rng.Intn(len(types))]
		dir := DirectionIncrease
		if rng.Intn(2) == 0 {
			dir = DirectionDecrease
		}
		before := 0
		if rec, ok := records.rows[productID]; ok {
			before = rec.Quantity
		}

		_, err := ledger.Adjust(ctx, AdjustCommand{ProductID: productID, Type: typ, Direction: dir, Quantity: rng.Intn(5) + 1})
		if err != nil {
			require.True(t, errors.Is(err, shared.ErrInsufficientStock), err)
			assert.Equal(t, before, records.rows[productID].Quantity)
		}
		assert.GreaterOrEqual(t, records.rows[productID].Quantity, 0)
	}

	for i, adj := range adjustments.rows {
		assert.Equal(t, adj.Delta, adj.NewQuantity-adj.PreviousQuantity)
		if i > 0 {
			assert.Equal(t, adjustments.rows[i-1].NewQuantity, adj.PreviousQuantity)
		}
	}
	last := adjustments.rows[len(adjustments.rows)-1]
	assert.Equal(t, last.NewQuantity, records.rows[productID].Quantity)
}

type stubCatalog struct {
	products []*catalog.Product
}

func (s *stubCatalog) FindByID(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	for _, p := range s.products {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, shared.NewNotFoundError("Product")
}

func (s *stubCatalog) FindByIDs(_ context.Context, _ []uuid.UUID) ([]*catalog.Product, error) {
	return s.products, nil
}

func (s *stubCatalog) FindActive(_ context.Context) ([]*catalog.Product, error) {
	out := make([]*catalog.Product, 0)
	for _, p := range s.products {
		if p.IsActive {
			out = append(out, p)
		}
	}
	return out, nil
}

func TestStockLedger_LowStock(t *testing.T) {
	ctx := context.Background()
	ledger, _, _ := newTestLedger()

	mk := func(sku string, min int, active bool) *catalog.Product {
		return &catalog.Product{
			BaseAggregateRoot: shared.NewBaseAggregateRoot(),
			SKU:               sku,
			Name:              sku,
			MinStockLevel:     min,
			IsActive:          active,
		}
	}
	plenty := mk("PLENTY", 2, true)
	short := mk("SHORT", 10, true)
	empty := mk("EMPTY", 0, true)
	edge := mk("EDGE", 4, true)
	inactive := mk("GONE", 50, false)

	for p, qty := range map[*catalog.Product]int{plenty: 20, short: 3, edge: 4} {
		_, err := ledger.Adjust(ctx, AdjustCommand{ProductID: p.ID, Type: AdjustmentTypeAddition, Quantity: qty})
		require.NoError(t, err)
	}

	items, err := ledger.LowStock(ctx, &stubCatalog{products: []*catalog.Product{plenty, short, empty, edge, inactive}})
	require.NoError(t, err)

	skus := make([]string, len(items))
	for i, it := range items {
		skus[i] = it.SKU
	}
	assert.Equal(t, []string{"SHORT", "EDGE", "EMPTY"}, skus)
	assert.Equal(t, 7, items[0].Shortfall)
	assert.True(t, sort.SliceIsSorted(items, func(i, j int) bool { return items[i].Shortfall > items[j].Shortfall }))
}
