package identity

import (
	"regexp"
	"strings"

	"github.com/shopdesk/backend/internal/domain/shared"
)

var roleNamePattern = regexp.MustCompile(`^[A-Z][A-Z0-9_]{1,49}$`)

// Role is a named bundle of permission codes
type Role struct {
	shared.BaseAggregateRoot
	Name        string
	Description string
	// IsDefault marks roles seeded at bootstrap; they cannot be renamed or deleted
	IsDefault   bool
	Permissions []PermissionCode
}

// NewRole creates a new custom role
func NewRole(name, description string) (*Role, error) {
	normalized, err := normalizeRoleName(name)
	if err != nil {
		return nil, err
	}

	role := &Role{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              normalized,
		Description:       strings.TrimSpace(description),
		Permissions:       make([]PermissionCode, 0),
	}
	role.AddDomainEvent(NewRoleChangedEvent(role, RoleCreatedEventType))
	return role, nil
}

// NewDefaultRole creates a protected bootstrap role with its permission set
func NewDefaultRole(name, description string, codes []PermissionCode) (*Role, error) {
	role, err := NewRole(name, description)
	if err != nil {
		return nil, err
	}
	perms, err := dedupePermissions(codes)
	if err != nil {
		return nil, err
	}
	role.IsDefault = true
	role.Permissions = perms
	return role, nil
}

// Rename changes the role name. Default roles keep their name.
func (r *Role) Rename(name string) error {
	if r.IsDefault {
		return shared.NewDomainError("DEFAULT_ROLE_PROTECTED", "Default roles cannot be renamed")
	}
	normalized, err := normalizeRoleName(name)
	if err != nil {
		return err
	}
	r.Name = normalized
	r.IncrementVersion()
	return nil
}

// SetDescription updates the description
func (r *Role) SetDescription(description string) {
	r.Description = strings.TrimSpace(description)
	r.IncrementVersion()
}

// GrantPermission adds a code to the role
func (r *Role) GrantPermission(code PermissionCode) error {
	if !code.IsValid() {
		return shared.NewDomainError("INVALID_PERMISSION_CODE", "Unknown permission code: "+string(code))
	}
	if r.HasPermission(code) {
		return shared.NewDomainError("PERMISSION_ALREADY_GRANTED", "Role already has this permission")
	}
	r.Permissions = append(r.Permissions, code)
	r.IncrementVersion()
	r.AddDomainEvent(NewRoleChangedEvent(r, RolePermissionsChangedEventType))
	return nil
}

// RevokePermission removes a code from the role
func (r *Role) RevokePermission(code PermissionCode) error {
	kept := make([]PermissionCode, 0, len(r.Permissions))
	found := false
	for _, p := range r.Permissions {
		if p == code {
			found = true
			continue
		}
		kept = append(kept, p)
	}
	if !found {
		return shared.NewDomainError("PERMISSION_NOT_FOUND", "Role does not have this permission")
	}
	r.Permissions = kept
	r.IncrementVersion()
	r.AddDomainEvent(NewRoleChangedEvent(r, RolePermissionsChangedEventType))
	return nil
}

// SetPermissions replaces the permission list, removing duplicates
func (r *Role) SetPermissions(codes []PermissionCode) error {
	unique, err := dedupePermissions(codes)
	if err != nil {
		return err
	}
	r.Permissions = unique
	r.IncrementVersion()
	r.AddDomainEvent(NewRoleChangedEvent(r, RolePermissionsChangedEventType))
	return nil
}

// HasPermission checks whether the role grants a code
func (r *Role) HasPermission(code PermissionCode) bool {
	for _, p := range r.Permissions {
		if p == code {
			return true
		}
	}
	return false
}

// CanDelete reports whether the role may be deleted
func (r *Role) CanDelete() bool {
	return !r.IsDefault
}

func dedupePermissions(codes []PermissionCode) ([]PermissionCode, error) {
	seen := make(map[PermissionCode]bool, len(codes))
	unique := make([]PermissionCode, 0, len(codes))
	for _, c := range codes {
		if !c.IsValid() {
			return nil, shared.NewDomainError("INVALID_PERMISSION_CODE", "Unknown permission code: "+string(c))
		}
		if seen[c] {
			continue
		}
		seen[c] = true
		unique = append(unique, c)
	}
	return unique, nil
}

func normalizeRoleName(name string) (string, error) {
	normalized := strings.ToUpper(strings.TrimSpace(name))
	if normalized == "" {
		return "", shared.NewDomainError("INVALID_ROLE_NAME", "Role name cannot be empty")
	}
	if !roleNamePattern.MatchString(normalized) {
		return "", shared.NewDomainError("INVALID_ROLE_NAME",
			"Role name must start with a letter and contain only letters, digits and underscores (2-50 characters)")
	}
	return normalized, nil
}

// Names of the roles seeded at bootstrap
const (
	RoleAdmin      = "ADMIN"
	RoleManager    = "MANAGER"
	RoleCashier    = "CASHIER"
	RoleTechnician = "TECHNICIAN"
)

// DefaultRoleDefinition describes a bootstrap role
type DefaultRoleDefinition struct {
	Name        string
	Description string
	Permissions []PermissionCode
}

// DefaultRoles returns the bootstrap role set
func DefaultRoles() []DefaultRoleDefinition {
	managerPerms := make([]PermissionCode, 0, len(permissionCatalog))
	for _, p := range permissionCatalog {
		if p.Code == PermUserManage || p.Code == PermRoleManage {
			continue
		}
		managerPerms = append(managerPerms, p.Code)
	}

	return []DefaultRoleDefinition{
		{
			Name:        RoleAdmin,
			Description: "Full access to the back office",
			Permissions: AllPermissionCodes(),
		},
		{
			Name:        RoleManager,
			Description: "Store manager: everything except user and role administration",
			Permissions: managerPerms,
		},
		{
			Name:        RoleCashier,
			Description: "Front counter: sales, returns, repair intake and payment, warranty claims",
			Permissions: []PermissionCode{
				PermProductView, PermInventoryView,
				PermSaleView, PermSaleCreate, PermReturnCreate,
				PermRepairView, PermRepairCreate, PermRepairPayment,
				PermWarrantyView, PermWarrantyClaim,
			},
		},
		{
			Name:        RoleTechnician,
			Description: "Bench technician: works assigned repair jobs",
			Permissions: []PermissionCode{
				PermProductView, PermInventoryView,
				PermRepairView, PermRepairUpdate,
				PermWarrantyView,
			},
		},
	}
}
