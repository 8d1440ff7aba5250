package identity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// UserStatus represents the status of a user
type UserStatus string

const (
	UserStatusActive      UserStatus = "active"
	UserStatusDeactivated UserStatus = "deactivated"
)

const (
	bcryptCost        = 12
	minPasswordLength = 8
)

// OverrideEffect is the outcome a direct permission override forces
type OverrideEffect string

const (
	EffectAllow OverrideEffect = "ALLOW"
	EffectDeny  OverrideEffect = "DENY"
)

// IsValid checks if the effect is known
func (e OverrideEffect) IsValid() bool {
	return e == EffectAllow || e == EffectDeny
}

// PermissionOverride grants or removes a single code for one user regardless of roles
type PermissionOverride struct {
	Code   PermissionCode
	Effect OverrideEffect
}

// User is the principal whose permissions gate every operation.
// Users are never deleted; they are deactivated.
type User struct {
	shared.BaseAggregateRoot
	Username      string
	DisplayName   string
	PasswordHash  string
	Status        UserStatus
	IsSuperAdmin  bool
	RoleIDs       []uuid.UUID
	Overrides     []PermissionOverride
	LastLoginAt   *time.Time
	DeactivatedAt *time.Time
}

// NormalizeUsername lowercases and trims a username for storage and lookup
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// NewUser creates an active user with a hashed password
func NewUser(username, displayName, password string) (*User, error) {
	username = NormalizeUsername(username)
	if len(username) < 3 || len(username) > 50 {
		return nil, shared.NewDomainError("INVALID_USERNAME", "Username must be 3-50 characters")
	}

	user := &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Username:          username,
		DisplayName:       strings.TrimSpace(displayName),
		Status:            UserStatusActive,
		RoleIDs:           make([]uuid.UUID, 0),
		Overrides:         make([]PermissionOverride, 0),
	}
	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = hash
	return user, nil
}

// SetPassword hashes and stores a new password
func (u *User) SetPassword(password string) error {
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	u.IncrementVersion()
	return nil
}

func hashPassword(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", shared.NewDomainError("PASSWORD_HASH_FAILED", "Failed to hash password")
	}
	return string(hash), nil
}

// VerifyPassword checks a plaintext password against the stored hash
func (u *User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// SetRoles replaces assigned roles, removing duplicates
func (u *User) SetRoles(roleIDs []uuid.UUID) {
	seen := make(map[uuid.UUID]bool, len(roleIDs))
	unique := make([]uuid.UUID, 0, len(roleIDs))
	for _, id := range roleIDs {
		if id == uuid.Nil || seen[id] {
			continue
		}
		seen[id] = true
		unique = append(unique, id)
	}
	u.RoleIDs = unique
	u.IncrementVersion()
}

// HasRole checks role assignment
func (u *User) HasRole(roleID uuid.UUID) bool {
	for _, id := range u.RoleIDs {
		if id == roleID {
			return true
		}
	}
	return false
}

// SetOverrides replaces the direct permission overrides.
// The same code may appear with both effects; resolution lets DENY win.
func (u *User) SetOverrides(overrides []PermissionOverride) error {
	type key struct {
		code   PermissionCode
		effect OverrideEffect
	}
	seen := make(map[key]bool, len(overrides))
	unique := make([]PermissionOverride, 0, len(overrides))
	for _, o := range overrides {
		if !o.Code.IsValid() {
			return shared.NewDomainError("INVALID_PERMISSION_CODE", "Unknown permission code: "+string(o.Code))
		}
		if !o.Effect.IsValid() {
			return shared.NewDomainError("INVALID_OVERRIDE_EFFECT", "Override effect must be ALLOW or DENY")
		}
		k := key{o.Code, o.Effect}
		if seen[k] {
			continue
		}
		seen[k] = true
		unique = append(unique, o)
	}
	u.Overrides = unique
	u.IncrementVersion()
	return nil
}

// SetSuperAdmin toggles the super admin flag
func (u *User) SetSuperAdmin(flag bool) {
	u.IsSuperAdmin = flag
	u.IncrementVersion()
}

// Deactivate soft-disables the user
func (u *User) Deactivate() error {
	if u.Status == UserStatusDeactivated {
		return shared.NewInvalidStateError("User is already deactivated")
	}
	now := time.Now()
	u.Status = UserStatusDeactivated
	u.DeactivatedAt = &now
	u.IncrementVersion()
	u.AddDomainEvent(NewUserDeactivatedEvent(u))
	return nil
}

// Activate re-enables a deactivated user
func (u *User) Activate() error {
	if u.Status == UserStatusActive {
		return shared.NewInvalidStateError("User is already active")
	}
	u.Status = UserStatusActive
	u.DeactivatedAt = nil
	u.IncrementVersion()
	return nil
}

// RecordLogin stamps the last successful login
func (u *User) RecordLogin(at time.Time) {
	u.LastLoginAt = &at
	u.Touch()
}

// IsActive returns true if the user may authenticate
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}
