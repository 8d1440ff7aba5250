package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/inventory"
	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/shopdesk/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStockRecordRepository implements inventory.StockRecordRepository using GORM
type GormStockRecordRepository struct {
	db *gorm.DB
}

// NewGormStockRecordRepository creates a new GormStockRecordRepository
func NewGormStockRecordRepository(db *gorm.DB) *GormStockRecordRepository {
	return &GormStockRecordRepository{db: db}
}

// FindByProductID returns the stock record of a product
func (r *GormStockRecordRepository) FindByProductID(ctx context.Context, productID uuid.UUID) (*inventory.StockRecord, error) {
	var model models.StockRecordModel
	if err := r.db.WithContext(ctx).First(&model, "product_id = ?", productID).Error; err != nil {
		return nil, notFound(err, "Stock record")
	}
	return model.ToDomain(), nil
}

// FindByProductIDs returns the records that exist among productIDs
func (r *GormStockRecordRepository) FindByProductIDs(ctx context.Context, productIDs []uuid.UUID) ([]*inventory.StockRecord, error) {
	if len(productIDs) == 0 {
		return []*inventory.StockRecord{}, nil
	}
	var rows []models.StockRecordModel
	if err := r.db.WithContext(ctx).Where("product_id IN ?", productIDs).Find(&rows).Error; err != nil {
		return nil, err
	}
	records := make([]*inventory.StockRecord, 0, len(rows))
	for i := range rows {
		records = append(records, rows[i].ToDomain())
	}
	return records, nil
}

// Insert creates the record unless one already exists for the product
func (r *GormStockRecordRepository) Insert(ctx context.Context, record *inventory.StockRecord) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "product_id"}}, DoNothing: true}).
		Create(models.StockRecordModelFromDomain(record))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// UpdateQuantity writes quantity and version under a compare-and-swap on version
func (r *GormStockRecordRepository) UpdateQuantity(ctx context.Context, record *inventory.StockRecord, expectedVersion int) error {
	result := r.db.WithContext(ctx).
		Model(&models.StockRecordModel{}).
		Where("product_id = ? AND version = ?", record.ProductID, expectedVersion).
		Updates(map[string]any{
			"quantity":     record.Quantity,
			"version":      record.Version,
			"last_updated": record.LastUpdated,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict.
			WithDetail("product_id", record.ProductID.String()).
			WithDetail("expected_version", expectedVersion)
	}
	return nil
}

// GormStockAdjustmentRepository implements inventory.StockAdjustmentRepository using GORM
type GormStockAdjustmentRepository struct {
	db *gorm.DB
}

// NewGormStockAdjustmentRepository creates a new GormStockAdjustmentRepository
func NewGormStockAdjustmentRepository(db *gorm.DB) *GormStockAdjustmentRepository {
	return &GormStockAdjustmentRepository{db: db}
}

// Create appends an adjustment row
func (r *GormStockAdjustmentRepository) Create(ctx context.Context, adjustment *inventory.StockAdjustment) error {
	return r.db.WithContext(ctx).Create(models.StockAdjustmentModelFromDomain(adjustment)).Error
}

// FindByProduct lists adjustments for a product, newest first by default
func (r *GormStockAdjustmentRepository) FindByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]*inventory.StockAdjustment, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.StockAdjustmentModel{}).Where("product_id = ?", productID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.StockAdjustmentModel
	if err := applyPaging(query, filter, adjustmentSort).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return toAdjustments(rows), total, nil
}

// FindByReference lists adjustments caused by one entity, oldest first
func (r *GormStockAdjustmentRepository) FindByReference(ctx context.Context, refType inventory.ReferenceType, refID uuid.UUID) ([]*inventory.StockAdjustment, error) {
	var rows []models.StockAdjustmentModel
	if err := r.db.WithContext(ctx).
		Where("reference_type = ? AND reference_id = ?", refType, refID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toAdjustments(rows), nil
}

func toAdjustments(rows []models.StockAdjustmentModel) []*inventory.StockAdjustment {
	out := make([]*inventory.StockAdjustment, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToDomain())
	}
	return out
}

var (
	_ inventory.StockRecordRepository     = (*GormStockRecordRepository)(nil)
	_ inventory.StockAdjustmentRepository = (*GormStockAdjustmentRepository)(nil)
)
