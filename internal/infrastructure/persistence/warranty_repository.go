package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/warranty"
	"github.com/shopdesk/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormWarrantyRepository implements warranty.Repository using GORM
type GormWarrantyRepository struct {
	db *gorm.DB
}

// NewGormWarrantyRepository creates a new GormWarrantyRepository
func NewGormWarrantyRepository(db *gorm.DB) *GormWarrantyRepository {
	return &GormWarrantyRepository{db: db}
}

func orderedClaims(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC, claim_number ASC")
}

// FindByID finds a warranty with its claims
func (r *GormWarrantyRepository) FindByID(ctx context.Context, id uuid.UUID) (*warranty.Warranty, error) {
	var model models.WarrantyModel
	if err := r.db.WithContext(ctx).Preload("Claims", orderedClaims).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "Warranty")
	}
	return model.ToDomain(), nil
}

// FindByNumber finds a warranty by its warranty number
func (r *GormWarrantyRepository) FindByNumber(ctx context.Context, number string) (*warranty.Warranty, error) {
	var model models.WarrantyModel
	if err := r.db.WithContext(ctx).
		Preload("Claims", orderedClaims).
		Where("warranty_number = ?", number).
		First(&model).Error; err != nil {
		return nil, notFound(err, "Warranty")
	}
	return model.ToDomain(), nil
}

// FindAll lists warranties matching the filter. The status filter applies to
// the effective status at filter.Now.
func (r *GormWarrantyRepository) FindAll(ctx context.Context, filter warranty.Filter) ([]*warranty.Warranty, int64, error) {
	now := filter.Now
	if now.IsZero() {
		now = time.Now()
	}
	query := r.db.WithContext(ctx).Model(&models.WarrantyModel{})
	switch filter.Status {
	case "":
	case warranty.StatusExpired:
		query = query.Where("status = ? OR (status <> ? AND end_date < ?)", warranty.StatusExpired, warranty.StatusVoid, now)
	case warranty.StatusVoid:
		query = query.Where("status = ?", warranty.StatusVoid)
	default:
		query = query.Where("status = ? AND end_date >= ?", filter.Status, now)
	}
	if filter.CustomerPhone != "" {
		query = query.Where("customer_phone = ?", filter.CustomerPhone)
	}
	if filter.SaleID != nil {
		query = query.Where("sale_id = ?", *filter.SaleID)
	}
	if filter.ProductID != nil {
		query = query.Where("product_id = ?", *filter.ProductID)
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where(
			"LOWER(warranty_number) LIKE ? OR LOWER(customer_name) LIKE ? OR LOWER(serial_number) LIKE ?",
			pattern, pattern, pattern,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.WarrantyModel
	if err := applyPaging(query, filter.Filter, warrantySort).
		Preload("Claims", orderedClaims).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return toWarranties(rows), total, nil
}

// FindActiveBySaleAndProduct returns ACTIVE warranties issued by a sale for one product
func (r *GormWarrantyRepository) FindActiveBySaleAndProduct(ctx context.Context, saleID, productID uuid.UUID) ([]*warranty.Warranty, error) {
	var rows []models.WarrantyModel
	if err := r.db.WithContext(ctx).
		Preload("Claims", orderedClaims).
		Where("sale_id = ? AND product_id = ? AND status = ?", saleID, productID, warranty.StatusActive).
		Order("warranty_number ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toWarranties(rows), nil
}

// FindExpirable returns up to limit ACTIVE or CLAIMED warranties whose end date is before now
func (r *GormWarrantyRepository) FindExpirable(ctx context.Context, now time.Time, limit int) ([]*warranty.Warranty, error) {
	var rows []models.WarrantyModel
	query := r.db.WithContext(ctx).
		Preload("Claims", orderedClaims).
		Where("status IN ? AND end_date < ?", []warranty.Status{warranty.StatusActive, warranty.StatusClaimed}, now).
		Order("end_date ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toWarranties(rows), nil
}

// Save inserts or updates the warranty and appends claims not yet stored.
// Claims are immutable, so existing rows are left untouched.
func (r *GormWarrantyRepository) Save(ctx context.Context, w *warranty.Warranty) error {
	model := models.WarrantyModelFromDomain(w)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := saveAggregateHeader(tx, model, &w.BaseAggregateRoot); err != nil {
			return err
		}
		if len(model.Claims) == 0 {
			return nil
		}
		return tx.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
			Create(&model.Claims).Error
	})
	if err != nil {
		return err
	}
	w.MarkPersisted()
	return nil
}

func toWarranties(rows []models.WarrantyModel) []*warranty.Warranty {
	out := make([]*warranty.Warranty, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToDomain())
	}
	return out
}

var _ warranty.Repository = (*GormWarrantyRepository)(nil)
