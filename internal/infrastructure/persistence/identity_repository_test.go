package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/identity"
	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormRoleRepository_SaveAndLoad(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormRoleRepository(db)
	ctx := context.Background()

	role, err := identity.NewRole("FLOOR_LEAD", "Runs the shop floor")
	require.NoError(t, err)
	require.NoError(t, role.GrantPermission(identity.PermSaleCreate))
	require.NoError(t, role.GrantPermission(identity.PermSaleVoid))
	require.NoError(t, repo.Save(ctx, role))

	loaded, err := repo.FindByName(ctx, "FLOOR_LEAD")
	require.NoError(t, err)
	assert.Equal(t, []identity.PermissionCode{identity.PermSaleCreate, identity.PermSaleVoid}, loaded.Permissions)

	require.NoError(t, loaded.RevokePermission(identity.PermSaleVoid))
	require.NoError(t, repo.Save(ctx, loaded))

	reloaded, err := repo.FindByID(ctx, role.ID)
	require.NoError(t, err)
	assert.Equal(t, []identity.PermissionCode{identity.PermSaleCreate}, reloaded.Permissions)

	exists, err := repo.ExistsByName(ctx, "FLOOR_LEAD")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, repo.Delete(ctx, role.ID))
	_, err = repo.FindByID(ctx, role.ID)
	assert.True(t, errors.Is(err, shared.ErrNotFound))
	assert.True(t, errors.Is(repo.Delete(ctx, role.ID), shared.ErrNotFound))
}

func TestGormUserRepository_SaveAndLoad(t *testing.T) {
	db := newSQLiteDB(t)
	users := NewGormUserRepository(db)
	roles := NewGormRoleRepository(db)
	ctx := context.Background()

	cashier, err := identity.NewRole("CASHIER", "")
	require.NoError(t, err)
	require.NoError(t, roles.Save(ctx, cashier))

	user, err := identity.NewUser("  Maria ", "Maria Diaz", "correct-horse")
	require.NoError(t, err)
	user.SetRoles([]uuid.UUID{cashier.ID, cashier.ID})
	require.NoError(t, user.SetOverrides([]identity.PermissionOverride{
		{Code: identity.PermSaleVoid, Effect: identity.EffectAllow},
		{Code: identity.PermReturnCreate, Effect: identity.EffectDeny},
	}))
	require.NoError(t, users.Save(ctx, user))

	loaded, err := users.FindByUsername(ctx, "MARIA")
	require.NoError(t, err)
	assert.Equal(t, "maria", loaded.Username)
	assert.True(t, loaded.VerifyPassword("correct-horse"))
	assert.Equal(t, []uuid.UUID{cashier.ID}, loaded.RoleIDs)
	assert.Len(t, loaded.Overrides, 2)

	count, err := users.CountByRole(ctx, cashier.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	require.NoError(t, loaded.Deactivate())
	require.NoError(t, users.Save(ctx, loaded))

	status := identity.UserStatusDeactivated
	list, total, err := users.FindAll(ctx, identity.UserFilter{Filter: shared.DefaultFilter(), Status: &status})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, list, 1)
	assert.False(t, list[0].IsActive())
}
