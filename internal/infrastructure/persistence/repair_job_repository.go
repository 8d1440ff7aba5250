package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/repair"
	"github.com/shopdesk/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormRepairJobRepository implements repair.JobRepository using GORM
type GormRepairJobRepository struct {
	db *gorm.DB
}

// NewGormRepairJobRepository creates a new GormRepairJobRepository
func NewGormRepairJobRepository(db *gorm.DB) *GormRepairJobRepository {
	return &GormRepairJobRepository{db: db}
}

func orderedParts(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// FindByID finds a job with its parts
func (r *GormRepairJobRepository) FindByID(ctx context.Context, id uuid.UUID) (*repair.Job, error) {
	var model models.RepairJobModel
	if err := r.db.WithContext(ctx).Preload("Parts", orderedParts).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "Repair job")
	}
	return model.ToDomain(), nil
}

// FindByNumber finds a job by its job number
func (r *GormRepairJobRepository) FindByNumber(ctx context.Context, number string) (*repair.Job, error) {
	var model models.RepairJobModel
	if err := r.db.WithContext(ctx).
		Preload("Parts", orderedParts).
		Where("job_number = ?", number).
		First(&model).Error; err != nil {
		return nil, notFound(err, "Repair job")
	}
	return model.ToDomain(), nil
}

// FindAll lists jobs matching the filter
func (r *GormRepairJobRepository) FindAll(ctx context.Context, filter repair.JobFilter) ([]*repair.Job, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.RepairJobModel{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.AssignedTo != nil {
		query = query.Where("assigned_to = ?", *filter.AssignedTo)
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where(
			"LOWER(job_number) LIKE ? OR LOWER(customer_name) LIKE ? OR customer_phone LIKE ? OR LOWER(device_serial_number) LIKE ?",
			pattern, pattern, pattern, pattern,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.RepairJobModel
	if err := applyPaging(query, filter.Filter, repairJobSort).
		Preload("Parts", orderedParts).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]*repair.Job, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToDomain())
	}
	return out, total, nil
}

// Save inserts or updates the job and replaces its part lines
func (r *GormRepairJobRepository) Save(ctx context.Context, job *repair.Job) error {
	model := models.RepairJobModelFromDomain(job)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := saveAggregateHeader(tx, model, &job.BaseAggregateRoot); err != nil {
			return err
		}
		if err := tx.Where("job_id = ?", job.ID).Delete(&models.RepairPartModel{}).Error; err != nil {
			return err
		}
		if len(model.Parts) == 0 {
			return nil
		}
		return tx.Create(&model.Parts).Error
	})
	if err != nil {
		return err
	}
	job.MarkPersisted()
	return nil
}

var _ repair.JobRepository = (*GormRepairJobRepository)(nil)
