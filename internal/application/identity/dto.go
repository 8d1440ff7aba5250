package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/identity"
)

// LoginInput contains the input for user login
type LoginInput struct {
	Username string
	Password string
	IP       string // Client IP for login tracking
}

// LoginResult contains the result of a successful login
type LoginResult struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresAt   time.Time    `json:"expires_at"`
	Principal   PrincipalDTO `json:"principal"`
}

// PrincipalDTO is the authenticated user with the permissions resolved for this request
type PrincipalDTO struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	DisplayName  string    `json:"display_name"`
	IsSuperAdmin bool      `json:"is_super_admin"`
	Roles        []string  `json:"roles"`
	Permissions  []string  `json:"permissions"`
}

// Principal is the authenticated actor attached to a request
type Principal struct {
	User        *identity.User
	Roles       []*identity.Role
	Permissions identity.EffectivePermissions
	TokenID     string
	TokenExpiry time.Time
}

// ID returns the principal's user id
func (p *Principal) ID() uuid.UUID {
	return p.User.ID
}

// PermissionDTO describes one entry of the permission catalog
type PermissionDTO struct {
	Code        string `json:"code"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

// RoleDTO represents role data transfer object
type RoleDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	IsDefault   bool      `json:"is_default"`
	Permissions []string  `json:"permissions"`
	UserCount   int64     `json:"user_count"`
	Version     int       `json:"version"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateRoleInput contains input for creating a role
type CreateRoleInput struct {
	Name        string
	Description string
	Permissions []string
}

// UpdateRoleInput contains input for updating a role. Nil fields are left unchanged.
type UpdateRoleInput struct {
	Name        *string
	Description *string
	Permissions []string // replaces the whole set when non-nil
}

// OverrideDTO is a direct permission override on a user
type OverrideDTO struct {
	Code   string `json:"code"`
	Effect string `json:"effect"`
}

// UserDTO represents user data transfer object
type UserDTO struct {
	ID            uuid.UUID     `json:"id"`
	Username      string        `json:"username"`
	DisplayName   string        `json:"display_name"`
	Status        string        `json:"status"`
	IsSuperAdmin  bool          `json:"is_super_admin"`
	RoleIDs       []uuid.UUID   `json:"role_ids"`
	Overrides     []OverrideDTO `json:"overrides"`
	LastLoginAt   *time.Time    `json:"last_login_at,omitempty"`
	DeactivatedAt *time.Time    `json:"deactivated_at,omitempty"`
	Version       int           `json:"version"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// CreateUserInput contains input for creating a user
type CreateUserInput struct {
	Username     string
	DisplayName  string
	Password     string
	RoleIDs      []uuid.UUID
	Overrides    []OverrideDTO
	IsSuperAdmin bool
}

// ToRoleDTO converts a role to its DTO
func ToRoleDTO(role *identity.Role) RoleDTO {
	perms := make([]string, len(role.Permissions))
	for i, p := range role.Permissions {
		perms[i] = p.String()
	}
	return RoleDTO{
		ID:          role.ID,
		Name:        role.Name,
		Description: role.Description,
		IsDefault:   role.IsDefault,
		Permissions: perms,
		Version:     role.GetVersion(),
		CreatedAt:   role.CreatedAt,
		UpdatedAt:   role.UpdatedAt,
	}
}

// ToUserDTO converts a user to its DTO
func ToUserDTO(user *identity.User) UserDTO {
	overrides := make([]OverrideDTO, len(user.Overrides))
	for i, o := range user.Overrides {
		overrides[i] = OverrideDTO{Code: o.Code.String(), Effect: string(o.Effect)}
	}
	roleIDs := make([]uuid.UUID, len(user.RoleIDs))
	copy(roleIDs, user.RoleIDs)
	return UserDTO{
		ID:            user.ID,
		Username:      user.Username,
		DisplayName:   user.DisplayName,
		Status:        string(user.Status),
		IsSuperAdmin:  user.IsSuperAdmin,
		RoleIDs:       roleIDs,
		Overrides:     overrides,
		LastLoginAt:   user.LastLoginAt,
		DeactivatedAt: user.DeactivatedAt,
		Version:       user.GetVersion(),
		CreatedAt:     user.CreatedAt,
		UpdatedAt:     user.UpdatedAt,
	}
}

// ToPrincipalDTO converts a resolved principal to its DTO
func ToPrincipalDTO(p *Principal) PrincipalDTO {
	roles := make([]string, 0, len(p.Roles))
	for _, r := range p.Roles {
		roles = append(roles, r.Name)
	}
	return PrincipalDTO{
		ID:           p.User.ID,
		Username:     p.User.Username,
		DisplayName:  p.User.DisplayName,
		IsSuperAdmin: p.User.IsSuperAdmin,
		Roles:        roles,
		Permissions:  p.Permissions.Allowed.Strings(),
	}
}

func toPermissionDTOs(perms []identity.Permission) []PermissionDTO {
	out := make([]PermissionDTO, len(perms))
	for i, p := range perms {
		out[i] = PermissionDTO{Code: p.Code.String(), Category: string(p.Category), Description: p.Description}
	}
	return out
}
