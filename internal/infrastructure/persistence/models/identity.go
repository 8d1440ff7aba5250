package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/identity"
)

// UserModel is the persistence model for the User domain entity.
type UserModel struct {
	AggregateModel
	Username      string              `gorm:"type:varchar(50);not null;uniqueIndex"`
	DisplayName   string              `gorm:"type:varchar(200)"`
	PasswordHash  string              `gorm:"type:varchar(255);not null"`
	Status        identity.UserStatus `gorm:"type:varchar(20);not null;default:'active'"`
	IsSuperAdmin  bool                `gorm:"not null;default:false"`
	LastLoginAt   *time.Time
	DeactivatedAt *time.Time
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User entity.
// Note: RoleIDs and Overrides must be loaded separately by the repository.
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Username:          m.Username,
		DisplayName:       m.DisplayName,
		PasswordHash:      m.PasswordHash,
		Status:            m.Status,
		IsSuperAdmin:      m.IsSuperAdmin,
		RoleIDs:           make([]uuid.UUID, 0),
		Overrides:         make([]identity.PermissionOverride, 0),
		LastLoginAt:       m.LastLoginAt,
		DeactivatedAt:     m.DeactivatedAt,
	}
}

// FromDomain populates the persistence model from a domain User entity.
func (m *UserModel) FromDomain(u *identity.User) {
	m.FromDomainAggregateRoot(u.BaseAggregateRoot)
	m.Username = u.Username
	m.DisplayName = u.DisplayName
	m.PasswordHash = u.PasswordHash
	m.Status = u.Status
	m.IsSuperAdmin = u.IsSuperAdmin
	m.LastLoginAt = u.LastLoginAt
	m.DeactivatedAt = u.DeactivatedAt
}

// UserModelFromDomain creates a new persistence model from a domain User entity.
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{}
	m.FromDomain(u)
	return m
}

// UserRoleModel is the join table between users and roles
type UserRoleModel struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	RoleID    uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (UserRoleModel) TableName() string {
	return "user_roles"
}

// UserPermissionOverrideModel stores a direct ALLOW or DENY for one code
type UserPermissionOverrideModel struct {
	UserID    uuid.UUID               `gorm:"type:uuid;primaryKey"`
	Code      identity.PermissionCode `gorm:"type:varchar(50);primaryKey"`
	Effect    identity.OverrideEffect `gorm:"type:varchar(10);primaryKey"`
	CreatedAt time.Time               `gorm:"not null"`
}

// TableName returns the table name for GORM
func (UserPermissionOverrideModel) TableName() string {
	return "user_permission_overrides"
}

// RoleModel is the persistence model for the Role domain entity.
type RoleModel struct {
	AggregateModel
	Name        string `gorm:"type:varchar(50);not null;uniqueIndex"`
	Description string `gorm:"type:varchar(500)"`
	IsDefault   bool   `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (RoleModel) TableName() string {
	return "roles"
}

// ToDomain converts the persistence model to a domain Role.
// Permissions are loaded separately.
func (m *RoleModel) ToDomain() *identity.Role {
	return &identity.Role{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		Description:       m.Description,
		IsDefault:         m.IsDefault,
		Permissions:       make([]identity.PermissionCode, 0),
	}
}

// RoleModelFromDomain creates a persistence model from a domain Role
func RoleModelFromDomain(r *identity.Role) *RoleModel {
	m := &RoleModel{
		Name:        r.Name,
		Description: r.Description,
		IsDefault:   r.IsDefault,
	}
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	return m
}

// RolePermissionModel grants one permission code to a role
type RolePermissionModel struct {
	RoleID    uuid.UUID               `gorm:"type:uuid;primaryKey"`
	Code      identity.PermissionCode `gorm:"type:varchar(50);primaryKey"`
	Position  int                     `gorm:"not null;default:0"`
	CreatedAt time.Time               `gorm:"not null"`
}

// TableName returns the table name for GORM
func (RolePermissionModel) TableName() string {
	return "role_permissions"
}
