package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/shared"
)

// UserFilter defines the filter criteria for user queries
type UserFilter struct {
	shared.Filter
	Status *UserStatus
	RoleID *uuid.UUID
}

// UserRepository defines persistence for users, their role assignments and overrides
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindAll(ctx context.Context, filter UserFilter) ([]*User, int64, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	// Save inserts or updates the user together with role assignments and overrides
	Save(ctx context.Context, user *User) error
	CountByRole(ctx context.Context, roleID uuid.UUID) (int64, error)
}

// RoleRepository defines persistence for roles and their permission codes
type RoleRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Role, error)
	FindByName(ctx context.Context, name string) (*Role, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*Role, error)
	FindAll(ctx context.Context) ([]*Role, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	// Save inserts or updates the role together with its permission codes
	Save(ctx context.Context, role *Role) error
	Delete(ctx context.Context, id uuid.UUID) error
}
