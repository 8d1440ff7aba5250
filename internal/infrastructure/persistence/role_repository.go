package persistence

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/identity"
	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/shopdesk/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormRoleRepository implements identity.RoleRepository using GORM
type GormRoleRepository struct {
	db *gorm.DB
}

// NewGormRoleRepository creates a new GormRoleRepository
func NewGormRoleRepository(db *gorm.DB) *GormRoleRepository {
	return &GormRoleRepository{db: db}
}

// FindByID finds a role by ID
func (r *GormRoleRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Role, error) {
	var model models.RoleModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "Role")
	}
	roles, err := r.withPermissions(ctx, []models.RoleModel{model})
	if err != nil {
		return nil, err
	}
	return roles[0], nil
}

// FindByName finds a role by its uppercase name
func (r *GormRoleRepository) FindByName(ctx context.Context, name string) (*identity.Role, error) {
	var model models.RoleModel
	if err := r.db.WithContext(ctx).
		Where("name = ?", strings.ToUpper(strings.TrimSpace(name))).
		First(&model).Error; err != nil {
		return nil, notFound(err, "Role")
	}
	roles, err := r.withPermissions(ctx, []models.RoleModel{model})
	if err != nil {
		return nil, err
	}
	return roles[0], nil
}

// FindByIDs finds multiple roles by IDs; missing ids are skipped
func (r *GormRoleRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*identity.Role, error) {
	if len(ids) == 0 {
		return []*identity.Role{}, nil
	}
	var rows []models.RoleModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return r.withPermissions(ctx, rows)
}

// FindAll returns every role ordered by name
func (r *GormRoleRepository) FindAll(ctx context.Context) ([]*identity.Role, error) {
	var rows []models.RoleModel
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return r.withPermissions(ctx, rows)
}

// ExistsByName checks role name uniqueness
func (r *GormRoleRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.RoleModel{}).
		Where("name = ?", strings.ToUpper(strings.TrimSpace(name))).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save inserts or updates the role and replaces its permission codes
func (r *GormRoleRepository) Save(ctx context.Context, role *identity.Role) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := saveAggregateHeader(tx, models.RoleModelFromDomain(role), &role.BaseAggregateRoot); err != nil {
			return err
		}
		if err := tx.Where("role_id = ?", role.ID).Delete(&models.RolePermissionModel{}).Error; err != nil {
			return err
		}
		if len(role.Permissions) == 0 {
			return nil
		}
		now := time.Now()
		rows := make([]models.RolePermissionModel, 0, len(role.Permissions))
		for i, code := range role.Permissions {
			rows = append(rows, models.RolePermissionModel{RoleID: role.ID, Code: code, Position: i, CreatedAt: now})
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return err
	}
	role.MarkPersisted()
	return nil
}

// Delete deletes a role with its permissions and user assignments
func (r *GormRoleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", id).Delete(&models.RolePermissionModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("role_id = ?", id).Delete(&models.UserRoleModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.RoleModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewNotFoundError("Role")
		}
		return nil
	})
}

// withPermissions loads permission codes for a batch of roles in one query
func (r *GormRoleRepository) withPermissions(ctx context.Context, rows []models.RoleModel) ([]*identity.Role, error) {
	roles := make([]*identity.Role, 0, len(rows))
	if len(rows) == 0 {
		return roles, nil
	}
	ids := make([]uuid.UUID, 0, len(rows))
	byID := make(map[uuid.UUID]*identity.Role, len(rows))
	for i := range rows {
		role := rows[i].ToDomain()
		roles = append(roles, role)
		ids = append(ids, role.ID)
		byID[role.ID] = role
	}

	var perms []models.RolePermissionModel
	if err := r.db.WithContext(ctx).
		Where("role_id IN ?", ids).
		Order("position ASC").
		Find(&perms).Error; err != nil {
		return nil, err
	}
	for _, p := range perms {
		if role, ok := byID[p.RoleID]; ok {
			role.Permissions = append(role.Permissions, p.Code)
		}
	}
	return roles, nil
}

var _ identity.RoleRepository = (*GormRoleRepository)(nil)
