package identity

import "github.com/google/uuid"

// CheckMode selects how a list of required codes is evaluated
type CheckMode string

const (
	// CheckAny passes when at least one required code is allowed
	CheckAny CheckMode = "ANY"
	// CheckAll passes only when every required code is allowed
	CheckAll CheckMode = "ALL"
)

// EffectivePermissions is the resolved capability set of a principal
type EffectivePermissions struct {
	UserID     uuid.UUID
	SuperAdmin bool
	Allowed    PermissionSet
}

// Has reports whether a single code is allowed
func (e EffectivePermissions) Has(code PermissionCode) bool {
	if e.SuperAdmin {
		return true
	}
	return e.Allowed.Has(code)
}

// Decision is the outcome of a capability check.
// Missing lists required codes that were not allowed; it is informational.
type Decision struct {
	Allowed bool
	Missing []PermissionCode
}

// PermissionResolver combines role-derived permissions with direct overrides.
// It is stateless; callers resolve per request because roles and overrides
// can change between requests.
type PermissionResolver struct{}

// NewPermissionResolver creates a PermissionResolver
func NewPermissionResolver() *PermissionResolver {
	return &PermissionResolver{}
}

// Resolve computes the effective permission set.
// Super admins get every code. Otherwise role permissions (only for roles the
// user is actually assigned) are unioned, ALLOW overrides are added, then DENY
// overrides are removed, so DENY wins when both exist for one code.
func (r *PermissionResolver) Resolve(user *User, roles []*Role) EffectivePermissions {
	if user.IsSuperAdmin {
		return EffectivePermissions{
			UserID:     user.ID,
			SuperAdmin: true,
			Allowed:    NewPermissionSet(AllPermissionCodes()...),
		}
	}

	allowed := make(PermissionSet)
	for _, role := range roles {
		if role == nil || !user.HasRole(role.ID) {
			continue
		}
		for _, code := range role.Permissions {
			allowed.Add(code)
		}
	}

	for _, o := range user.Overrides {
		if o.Effect == EffectAllow {
			allowed.Add(o.Code)
		}
	}
	for _, o := range user.Overrides {
		if o.Effect == EffectDeny {
			allowed.Remove(o.Code)
		}
	}

	return EffectivePermissions{
		UserID:  user.ID,
		Allowed: allowed,
	}
}

// Check evaluates required codes against a resolved set.
// An empty requirement list always passes.
func (r *PermissionResolver) Check(effective EffectivePermissions, required []PermissionCode, mode CheckMode) Decision {
	if len(required) == 0 || effective.SuperAdmin {
		return Decision{Allowed: true}
	}

	missing := make([]PermissionCode, 0)
	for _, code := range required {
		if !effective.Allowed.Has(code) {
			missing = append(missing, code)
		}
	}

	if mode == CheckAll {
		return Decision{Allowed: len(missing) == 0, Missing: missing}
	}
	if len(missing) < len(required) {
		return Decision{Allowed: true}
	}
	return Decision{Allowed: false, Missing: missing}
}
