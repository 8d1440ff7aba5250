package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/shared"
)

// BaseModel provides common persistence fields for all models.
// It maps to the domain's BaseEntity.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// ToDomain converts BaseModel to domain BaseEntity
func (m *BaseModel) ToDomain() shared.BaseEntity {
	return shared.BaseEntity{
		ID:        m.ID,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// FromDomainBaseEntity populates BaseModel from domain BaseEntity
func (m *BaseModel) FromDomainBaseEntity(e shared.BaseEntity) {
	m.ID = e.ID
	m.CreatedAt = e.CreatedAt
	m.UpdatedAt = e.UpdatedAt
}

// AggregateModel provides common persistence fields for aggregate roots.
// It extends BaseModel with version for optimistic locking.
type AggregateModel struct {
	BaseModel
	Version int `gorm:"not null;default:1"`
}

// FromDomainAggregateRoot populates AggregateModel from domain BaseAggregateRoot
func (m *AggregateModel) FromDomainAggregateRoot(a shared.BaseAggregateRoot) {
	m.FromDomainBaseEntity(a.BaseEntity)
	m.Version = a.Version
}

// ToDomainAggregateRoot rebuilds the aggregate base, remembering the stored version
func (m *AggregateModel) ToDomainAggregateRoot() shared.BaseAggregateRoot {
	return shared.RestoreAggregateRoot(m.BaseModel.ToDomain(), m.Version)
}

// CustomerColumns stores a customer snapshot inline with a customer_ prefix
type CustomerColumns struct {
	Name    string `gorm:"type:varchar(200)"`
	Phone   string `gorm:"type:varchar(50);index"`
	Email   string `gorm:"type:varchar(200)"`
	Address string `gorm:"type:varchar(500)"`
}

func customerFromDomain(c shared.CustomerSnapshot) CustomerColumns {
	return CustomerColumns{Name: c.Name, Phone: c.Phone, Email: c.Email, Address: c.Address}
}

func (c CustomerColumns) toDomain() shared.CustomerSnapshot {
	return shared.CustomerSnapshot{Name: c.Name, Phone: c.Phone, Email: c.Email, Address: c.Address}
}

// AllModels lists every model for AutoMigrate in tests and local sqlite runs
func AllModels() []any {
	return []any{
		&UserModel{}, &UserRoleModel{}, &UserPermissionOverrideModel{},
		&RoleModel{}, &RolePermissionModel{},
		&ProductModel{},
		&StockRecordModel{}, &StockAdjustmentModel{},
		&SaleModel{}, &SaleItemModel{}, &SalePaymentModel{},
		&ReturnModel{}, &ReturnItemModel{},
		&RepairJobModel{}, &RepairPartModel{},
		&WarrantyModel{}, &WarrantyClaimModel{},
		&DocumentSequenceModel{},
	}
}
