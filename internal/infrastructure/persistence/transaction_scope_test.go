package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	appshared "github.com/shopdesk/backend/internal/application/shared"
	"github.com/shopdesk/backend/internal/domain/inventory"
	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedSequence struct{ calls int }

func (f *fixedSequence) Next(context.Context, shared.DocumentType, time.Time) (int64, error) {
	f.calls++
	return 42, nil
}

func TestGormTransactionScope_CommitsEverything(t *testing.T) {
	db := newSQLiteDB(t)
	scope := NewGormTransactionScope(db)
	ctx := context.Background()
	productID := uuid.New()
	day := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)

	err := scope.Execute(ctx, func(repos appshared.Repositories) error {
		if _, err := repos.Sequences().Next(ctx, shared.DocumentTypeSale, day); err != nil {
			return err
		}
		_, err := appshared.Ledger(repos).Adjust(ctx, inventory.AdjustCommand{
			ProductID: productID, Type: inventory.AdjustmentTypePurchase, Quantity: 4, ActorID: uuid.New(),
		})
		return err
	})
	require.NoError(t, err)

	record, err := NewGormStockRecordRepository(db).FindByProductID(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, 4, record.Quantity)

	current, err := NewGormSequenceGenerator(db).Current(ctx, shared.DocumentTypeSale, day)
	require.NoError(t, err)
	assert.Equal(t, int64(1), current)
}

func TestGormTransactionScope_RollsBackOnError(t *testing.T) {
	db := newSQLiteDB(t)
	scope := NewGormTransactionScope(db)
	ctx := context.Background()
	productID := uuid.New()
	day := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)
	boom := errors.New("warranty step failed")

	err := scope.Execute(ctx, func(repos appshared.Repositories) error {
		if _, err := repos.Sequences().Next(ctx, shared.DocumentTypeSale, day); err != nil {
			return err
		}
		if _, err := appshared.Ledger(repos).Adjust(ctx, inventory.AdjustCommand{
			ProductID: productID, Type: inventory.AdjustmentTypePurchase, Quantity: 4, ActorID: uuid.New(),
		}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = NewGormStockRecordRepository(db).FindByProductID(ctx, productID)
	assert.True(t, errors.Is(err, shared.ErrNotFound), "stock record must not survive the rollback")

	_, total, err := NewGormStockAdjustmentRepository(db).FindByProduct(ctx, productID, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Zero(t, total)

	current, err := NewGormSequenceGenerator(db).Current(ctx, shared.DocumentTypeSale, day)
	require.NoError(t, err)
	assert.Zero(t, current, "sequence increment rolls back with the transaction")
}

func TestGormTransactionScope_ExternalSequenceGenerator(t *testing.T) {
	gen := &fixedSequence{}
	scope := NewGormTransactionScope(newSQLiteDB(t), WithSequenceGenerator(gen))

	err := scope.Execute(context.Background(), func(repos appshared.Repositories) error {
		v, err := repos.Sequences().Next(context.Background(), shared.DocumentTypeRepair, time.Now())
		assert.Equal(t, int64(42), v)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 1, gen.calls)
}
