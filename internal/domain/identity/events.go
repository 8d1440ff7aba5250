package identity

import "github.com/shopdesk/backend/internal/domain/shared"

const (
	AggregateTypeRole = "Role"
	AggregateTypeUser = "User"

	RoleCreatedEventType            = "RoleCreated"
	RolePermissionsChangedEventType = "RolePermissionsChanged"
	UserDeactivatedEventType        = "UserDeactivated"
)

// RoleChangedEvent is raised when a role is created or its permissions change
type RoleChangedEvent struct {
	shared.BaseDomainEvent
	Name        string           `json:"name"`
	Permissions []PermissionCode `json:"permissions"`
}

// NewRoleChangedEvent creates a role event of the given type
func NewRoleChangedEvent(role *Role, eventType string) *RoleChangedEvent {
	perms := make([]PermissionCode, len(role.Permissions))
	copy(perms, role.Permissions)
	return &RoleChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeRole, role.ID),
		Name:            role.Name,
		Permissions:     perms,
	}
}

// UserDeactivatedEvent is raised when a user is deactivated
type UserDeactivatedEvent struct {
	shared.BaseDomainEvent
	Username string `json:"username"`
}

// NewUserDeactivatedEvent creates a UserDeactivatedEvent
func NewUserDeactivatedEvent(u *User) *UserDeactivatedEvent {
	return &UserDeactivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(UserDeactivatedEventType, AggregateTypeUser, u.ID),
		Username:        u.Username,
	}
}
