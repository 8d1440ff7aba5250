package identity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUser(roleIDs ...uuid.UUID) *User {
	return &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Username:          "tester",
		Status:            UserStatusActive,
		RoleIDs:           roleIDs,
	}
}

func newTestRole(t *testing.T, name string, codes ...PermissionCode) *Role {
	t.Helper()
	role, err := NewRole(name, "")
	require.NoError(t, err)
	require.NoError(t, role.SetPermissions(codes))
	return role
}

func TestPermissionResolver_Resolve(t *testing.T) {
	resolver := NewPermissionResolver()
	cashier := newTestRole(t, "CASHIER", PermSaleCreate, PermSaleView)
	tech := newTestRole(t, "TECH", PermRepairUpdate, PermSaleView)

	t.Run("unions permissions of assigned roles", func(t *testing.T) {
		user := newTestUser(cashier.ID, tech.ID)
		eff := resolver.Resolve(user, []*Role{cashier, tech})
		assert.ElementsMatch(t, []PermissionCode{PermSaleCreate, PermSaleView, PermRepairUpdate}, eff.Allowed.Codes())
	})

	t.Run("ignores roles the user is not assigned", func(t *testing.T) {
		user := newTestUser(cashier.ID)
		eff := resolver.Resolve(user, []*Role{cashier, tech})
		assert.False(t, eff.Has(PermRepairUpdate))
	})

	t.Run("deny override suppresses a role-granted permission", func(t *testing.T) {
		user := newTestUser(cashier.ID)
		user.Overrides = []PermissionOverride{{Code: PermSaleCreate, Effect: EffectDeny}}
		eff := resolver.Resolve(user, []*Role{cashier})
		assert.False(t, eff.Has(PermSaleCreate))
		assert.True(t, eff.Has(PermSaleView))
	})

	t.Run("allow override grants a permission absent from all roles", func(t *testing.T) {
		user := newTestUser(cashier.ID)
		user.Overrides = []PermissionOverride{{Code: PermSaleVoid, Effect: EffectAllow}}
		eff := resolver.Resolve(user, []*Role{cashier})
		assert.True(t, eff.Has(PermSaleVoid))
	})

	t.Run("deny wins when both effects target one code", func(t *testing.T) {
		user := newTestUser()
		user.Overrides = []PermissionOverride{
			{Code: PermSaleVoid, Effect: EffectDeny},
			{Code: PermSaleVoid, Effect: EffectAllow},
		}
		eff := resolver.Resolve(user, nil)
		assert.False(t, eff.Has(PermSaleVoid))
	})

	t.Run("super admin gets everything regardless of overrides", func(t *testing.T) {
		user := newTestUser()
		user.IsSuperAdmin = true
		user.Overrides = []PermissionOverride{{Code: PermUserManage, Effect: EffectDeny}}
		eff := resolver.Resolve(user, nil)
		assert.True(t, eff.SuperAdmin)
		for _, code := range AllPermissionCodes() {
			assert.True(t, eff.Has(code), code)
		}
	})

	t.Run("user without roles or overrides has nothing", func(t *testing.T) {
		eff := resolver.Resolve(newTestUser(), nil)
		assert.Empty(t, eff.Allowed)
	})
}

func TestPermissionResolver_Check(t *testing.T) {
	resolver := NewPermissionResolver()
	eff := EffectivePermissions{Allowed: NewPermissionSet(PermSaleView, PermSaleCreate)}

	t.Run("any passes with one match", func(t *testing.T) {
		d := resolver.Check(eff, []PermissionCode{PermSaleVoid, PermSaleView}, CheckAny)
		assert.True(t, d.Allowed)
		assert.Empty(t, d.Missing)
	})

	t.Run("any fails listing all missing codes", func(t *testing.T) {
		d := resolver.Check(eff, []PermissionCode{PermSaleVoid, PermUserManage}, CheckAny)
		assert.False(t, d.Allowed)
		assert.Equal(t, []PermissionCode{PermSaleVoid, PermUserManage}, d.Missing)
	})

	t.Run("all requires every code", func(t *testing.T) {
		d := resolver.Check(eff, []PermissionCode{PermSaleView, PermSaleVoid}, CheckAll)
		assert.False(t, d.Allowed)
		assert.Equal(t, []PermissionCode{PermSaleVoid}, d.Missing)

		d = resolver.Check(eff, []PermissionCode{PermSaleView, PermSaleCreate}, CheckAll)
		assert.True(t, d.Allowed)
	})

	t.Run("empty requirement passes", func(t *testing.T) {
		assert.True(t, resolver.Check(EffectivePermissions{}, nil, CheckAll).Allowed)
	})

	t.Run("super admin passes everything", func(t *testing.T) {
		d := resolver.Check(EffectivePermissions{SuperAdmin: true}, []PermissionCode{PermUserManage}, CheckAll)
		assert.True(t, d.Allowed)
	})
}
