package persistence

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/inventory"
	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestGormStockRecordRepository_Insert(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormStockRecordRepository(db)
	ctx := context.Background()
	productID := uuid.New()

	inserted, err := repo.Insert(ctx, inventory.NewStockRecord(productID, time.Now().UTC()))
	require.NoError(t, err)
	assert.True(t, inserted)

	again, err := repo.Insert(ctx, inventory.NewStockRecord(productID, time.Now().UTC()))
	require.NoError(t, err)
	assert.False(t, again, "second insert must not replace the existing record")

	record, err := repo.FindByProductID(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, 0, record.Quantity)
	assert.Equal(t, 1, record.Version)
}

func TestGormStockRecordRepository_Insert_KeepsExistingQuantity(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormStockRecordRepository(db)
	ctx := context.Background()
	productID := uuid.New()

	_, err := repo.Insert(ctx, inventory.NewStockRecord(productID, time.Now().UTC()))
	require.NoError(t, err)
	record, err := repo.FindByProductID(ctx, productID)
	require.NoError(t, err)
	record.Quantity = 9
	record.Version = 2
	require.NoError(t, repo.UpdateQuantity(ctx, record, 1))

	inserted, err := repo.Insert(ctx, inventory.NewStockRecord(productID, time.Now().UTC()))
	require.NoError(t, err)
	assert.False(t, inserted)

	var rows int64
	require.NoError(t, db.Table("stock_records").Where("product_id = ?", productID).Count(&rows).Error)
	assert.Equal(t, int64(1), rows)

	stored, err := repo.FindByProductID(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, 9, stored.Quantity)
	assert.Equal(t, 2, stored.Version)
}

func TestGormStockRecordRepository_FindByProductID_NotFound(t *testing.T) {
	repo := NewGormStockRecordRepository(newSQLiteDB(t))

	_, err := repo.FindByProductID(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestGormStockRecordRepository_UpdateQuantity(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormStockRecordRepository(db)
	ctx := context.Background()
	productID := uuid.New()
	_, err := repo.Insert(ctx, inventory.NewStockRecord(productID, time.Now().UTC()))
	require.NoError(t, err)

	t.Run("writes when version matches", func(t *testing.T) {
		record, err := repo.FindByProductID(ctx, productID)
		require.NoError(t, err)
		record.Quantity = 7
		record.Version = 2

		require.NoError(t, repo.UpdateQuantity(ctx, record, 1))

		stored, err := repo.FindByProductID(ctx, productID)
		require.NoError(t, err)
		assert.Equal(t, 7, stored.Quantity)
		assert.Equal(t, 2, stored.Version)
	})

	t.Run("stale version is a concurrency conflict", func(t *testing.T) {
		stale := &inventory.StockRecord{ProductID: productID, Quantity: 3, Version: 2, LastUpdated: time.Now().UTC()}

		err := repo.UpdateQuantity(ctx, stale, 1)
		require.Error(t, err)
		assert.True(t, shared.IsConcurrencyConflict(err))

		stored, err := repo.FindByProductID(ctx, productID)
		require.NoError(t, err)
		assert.Equal(t, 7, stored.Quantity)
	})
}

func TestGormStockRecordRepository_UpdateQuantity_SQL(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: mockDB, DriverName: "postgres"}), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	repo := NewGormStockRecordRepository(gormDB)

	productID := uuid.New()
	record := &inventory.StockRecord{ProductID: productID, Quantity: 4, Version: 6, LastUpdated: time.Now()}

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "stock_records" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.UpdateQuantity(context.Background(), record, 5)
	require.Error(t, err)
	assert.True(t, shared.IsConcurrencyConflict(err))

	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, 5, domainErr.Details["expected_version"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStockLedger_WithGormRepositories(t *testing.T) {
	db := newSQLiteDB(t)
	ctx := context.Background()
	productID := uuid.New()
	actor := uuid.New()

	clock := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	ledger := inventory.NewStockLedger(
		NewGormStockRecordRepository(db),
		NewGormStockAdjustmentRepository(db),
		inventory.WithClock(func() time.Time {
			clock = clock.Add(time.Minute)
			return clock
		}),
	)

	_, err := ledger.Adjust(ctx, inventory.AdjustCommand{
		ProductID: productID, Type: inventory.AdjustmentTypePurchase, Quantity: 5, ActorID: actor,
	})
	require.NoError(t, err)
	res, err := ledger.Adjust(ctx, inventory.AdjustCommand{
		ProductID: productID, Type: inventory.AdjustmentTypeSale, Quantity: 2, ActorID: actor,
	})
	require.NoError(t, err)
	assert.Equal(t, 5, res.PreviousQuantity)
	assert.Equal(t, 3, res.NewQuantity)

	_, err = ledger.Adjust(ctx, inventory.AdjustCommand{
		ProductID: productID, Type: inventory.AdjustmentTypeDamage, Quantity: 4, ActorID: actor,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrInsufficientStock))

	available, err := ledger.Available(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, 3, available)

	history, total, err := NewGormStockAdjustmentRepository(db).FindByProduct(ctx, productID, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, history, 2)
	assert.Equal(t, inventory.AdjustmentTypeSale, history[0].Type, "newest first")
	assert.Equal(t, -2, history[0].Delta)
	assert.Equal(t, history[1].NewQuantity, history[0].PreviousQuantity)
}

func TestGormStockAdjustmentRepository_FindByReference(t *testing.T) {
	db := newSQLiteDB(t)
	ctx := context.Background()
	ledger := inventory.NewStockLedger(NewGormStockRecordRepository(db), NewGormStockAdjustmentRepository(db))
	saleID := uuid.New()
	ref := inventory.NewReference(inventory.ReferenceTypeSale, saleID, "SL-20260301-0001")

	for i := 0; i < 2; i++ {
		productID := uuid.New()
		_, err := ledger.Adjust(ctx, inventory.AdjustCommand{
			ProductID: productID, Type: inventory.AdjustmentTypeAddition, Quantity: 3, ActorID: uuid.New(),
		})
		require.NoError(t, err)
		_, err = ledger.Adjust(ctx, inventory.AdjustCommand{
			ProductID: productID, Type: inventory.AdjustmentTypeSale, Quantity: 1, ActorID: uuid.New(), Reference: ref,
		})
		require.NoError(t, err)
	}

	adjustments, err := NewGormStockAdjustmentRepository(db).FindByReference(ctx, inventory.ReferenceTypeSale, saleID)
	require.NoError(t, err)
	require.Len(t, adjustments, 2)
	for _, adj := range adjustments {
		assert.Equal(t, "SL-20260301-0001", adj.Reference.Number)
		assert.Equal(t, inventory.AdjustmentTypeSale, adj.Type)
	}
}
