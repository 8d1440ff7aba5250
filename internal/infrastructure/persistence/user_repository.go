package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/identity"
	"github.com/shopdesk/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormUserRepository implements identity.UserRepository using GORM
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// FindByID finds a user by ID with role assignments and overrides
func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	var model models.UserModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "User")
	}
	return r.hydrate(ctx, &model)
}

// FindByUsername finds a user by username (case-insensitive)
func (r *GormUserRepository) FindByUsername(ctx context.Context, username string) (*identity.User, error) {
	var model models.UserModel
	if err := r.db.WithContext(ctx).
		Where("username = ?", identity.NormalizeUsername(username)).
		First(&model).Error; err != nil {
		return nil, notFound(err, "User")
	}
	return r.hydrate(ctx, &model)
}

// FindAll lists users matching the filter
func (r *GormUserRepository) FindAll(ctx context.Context, filter identity.UserFilter) ([]*identity.User, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.UserModel{})
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.RoleID != nil {
		query = query.Where("id IN (?)", r.db.Model(&models.UserRoleModel{}).Select("user_id").Where("role_id = ?", *filter.RoleID))
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("LOWER(username) LIKE ? OR LOWER(display_name) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.UserModel
	if err := applyPaging(query, filter.Filter, userSort).Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	users := make([]*identity.User, 0, len(rows))
	for i := range rows {
		u, err := r.hydrate(ctx, &rows[i])
		if err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	return users, total, nil
}

// ExistsByUsername checks username uniqueness
func (r *GormUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.UserModel{}).
		Where("username = ?", identity.NormalizeUsername(username)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountByRole counts users assigned to a role
func (r *GormUserRepository) CountByRole(ctx context.Context, roleID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.UserRoleModel{}).
		Where("role_id = ?", roleID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save inserts or updates the user and replaces its role assignments and overrides
func (r *GormUserRepository) Save(ctx context.Context, user *identity.User) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := saveAggregateHeader(tx, models.UserModelFromDomain(user), &user.BaseAggregateRoot); err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.UserRoleModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", user.ID).Delete(&models.UserPermissionOverrideModel{}).Error; err != nil {
			return err
		}

		now := time.Now()
		if len(user.RoleIDs) > 0 {
			rows := make([]models.UserRoleModel, 0, len(user.RoleIDs))
			for _, roleID := range user.RoleIDs {
				rows = append(rows, models.UserRoleModel{UserID: user.ID, RoleID: roleID, CreatedAt: now})
			}
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}
		if len(user.Overrides) > 0 {
			rows := make([]models.UserPermissionOverrideModel, 0, len(user.Overrides))
			for _, o := range user.Overrides {
				rows = append(rows, models.UserPermissionOverrideModel{UserID: user.ID, Code: o.Code, Effect: o.Effect, CreatedAt: now})
			}
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	user.MarkPersisted()
	return nil
}

func (r *GormUserRepository) hydrate(ctx context.Context, model *models.UserModel) (*identity.User, error) {
	user := model.ToDomain()

	var roles []models.UserRoleModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", user.ID).
		Order("created_at ASC, role_id ASC").
		Find(&roles).Error; err != nil {
		return nil, err
	}
	for _, ur := range roles {
		user.RoleIDs = append(user.RoleIDs, ur.RoleID)
	}

	var overrides []models.UserPermissionOverrideModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", user.ID).
		Order("code ASC").
		Find(&overrides).Error; err != nil {
		return nil, err
	}
	for _, o := range overrides {
		user.Overrides = append(user.Overrides, identity.PermissionOverride{Code: o.Code, Effect: o.Effect})
	}
	return user, nil
}

var _ identity.UserRepository = (*GormUserRepository)(nil)
