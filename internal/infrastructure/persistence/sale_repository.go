package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/sales"
	"github.com/shopdesk/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormSaleRepository implements sales.SaleRepository using GORM
type GormSaleRepository struct {
	db *gorm.DB
}

// NewGormSaleRepository creates a new GormSaleRepository
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

func (r *GormSaleRepository) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") })
}

// FindByID finds a sale with its items and payments
func (r *GormSaleRepository) FindByID(ctx context.Context, id uuid.UUID) (*sales.Sale, error) {
	var model models.SaleModel
	if err := r.preloaded(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "Sale")
	}
	return model.ToDomain(), nil
}

// FindByNumber finds a sale by its sale number
func (r *GormSaleRepository) FindByNumber(ctx context.Context, number string) (*sales.Sale, error) {
	var model models.SaleModel
	if err := r.preloaded(ctx).Where("sale_number = ?", number).First(&model).Error; err != nil {
		return nil, notFound(err, "Sale")
	}
	return model.ToDomain(), nil
}

// FindAll lists sales matching the filter
func (r *GormSaleRepository) FindAll(ctx context.Context, filter sales.SaleFilter) ([]*sales.Sale, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.SaleModel{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at < ?", *filter.To)
	}
	if filter.CashierID != nil {
		query = query.Where("cashier_id = ?", *filter.CashierID)
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("LOWER(sale_number) LIKE ? OR LOWER(customer_name) LIKE ? OR customer_phone LIKE ?", pattern, pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.SaleModel
	paged := applyPaging(query, filter.Filter, saleSort).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") })
	if err := paged.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]*sales.Sale, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToDomain())
	}
	return out, total, nil
}

// Save inserts a new sale with its lines, or updates the header with a version check.
// Lines and payments are immutable once the sale exists.
func (r *GormSaleRepository) Save(ctx context.Context, sale *sales.Sale) error {
	model := models.SaleModelFromDomain(sale)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		isNew := sale.IsNew()
		if err := saveAggregateHeader(tx, model, &sale.BaseAggregateRoot); err != nil {
			return err
		}
		if !isNew {
			return nil
		}
		if len(model.Items) > 0 {
			if err := tx.Create(&model.Items).Error; err != nil {
				return err
			}
		}
		if len(model.Payments) > 0 {
			if err := tx.Create(&model.Payments).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	sale.MarkPersisted()
	return nil
}

// GormReturnRepository implements sales.ReturnRepository using GORM
type GormReturnRepository struct {
	db *gorm.DB
}

// NewGormReturnRepository creates a new GormReturnRepository
func NewGormReturnRepository(db *gorm.DB) *GormReturnRepository {
	return &GormReturnRepository{db: db}
}

func (r *GormReturnRepository) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") })
}

// FindByID finds a return with its items
func (r *GormReturnRepository) FindByID(ctx context.Context, id uuid.UUID) (*sales.Return, error) {
	var model models.ReturnModel
	if err := r.preloaded(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "Return")
	}
	return model.ToDomain(), nil
}

// FindByNumber finds a return by its return number
func (r *GormReturnRepository) FindByNumber(ctx context.Context, number string) (*sales.Return, error) {
	var model models.ReturnModel
	if err := r.preloaded(ctx).Where("return_number = ?", number).First(&model).Error; err != nil {
		return nil, notFound(err, "Return")
	}
	return model.ToDomain(), nil
}

// FindBySale lists returns against a sale, oldest first
func (r *GormReturnRepository) FindBySale(ctx context.Context, saleID uuid.UUID) ([]*sales.Return, error) {
	var rows []models.ReturnModel
	if err := r.preloaded(ctx).
		Where("original_sale_id = ?", saleID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*sales.Return, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToDomain())
	}
	return out, nil
}

// ReturnedQuantities sums units already returned per sale item, warranty refunds included
func (r *GormReturnRepository) ReturnedQuantities(ctx context.Context, saleID uuid.UUID) (map[uuid.UUID]int, error) {
	type row struct {
		SaleItemID uuid.UUID
		Quantity   int
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Table("return_items AS ri").
		Select("ri.sale_item_id AS sale_item_id, SUM(ri.quantity) AS quantity").
		Joins("JOIN returns AS rt ON rt.id = ri.return_id").
		Where("rt.original_sale_id = ? AND ri.sale_item_id IS NOT NULL", saleID).
		Group("ri.sale_item_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]int, len(rows))
	for _, rw := range rows {
		out[rw.SaleItemID] = rw.Quantity
	}
	return out, nil
}

// Create inserts a return with its items
func (r *GormReturnRepository) Create(ctx context.Context, ret *sales.Return) error {
	model := models.ReturnModelFromDomain(ret)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := saveAggregateHeader(tx, model, &ret.BaseAggregateRoot); err != nil {
			return err
		}
		if len(model.Items) == 0 {
			return nil
		}
		return tx.Create(&model.Items).Error
	})
	if err != nil {
		return err
	}
	ret.MarkPersisted()
	return nil
}

var (
	_ sales.SaleRepository   = (*GormSaleRepository)(nil)
	_ sales.ReturnRepository = (*GormReturnRepository)(nil)
)
