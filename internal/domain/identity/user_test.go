package identity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Run("creates active user with hashed password", func(t *testing.T) {
		user, err := NewUser("  Alice ", "Alice A.", "s3cretpass")
		require.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
		assert.True(t, user.IsActive())
		assert.NotEqual(t, "s3cretpass", user.PasswordHash)
		assert.True(t, user.VerifyPassword("s3cretpass"))
		assert.False(t, user.VerifyPassword("wrong-pass"))
		assert.Equal(t, 1, user.Version)
	})

	t.Run("rejects short password", func(t *testing.T) {
		_, err := NewUser("bob", "", "short")
		assert.Error(t, err)
	})

	t.Run("rejects short username", func(t *testing.T) {
		_, err := NewUser("ab", "", "longenough")
		assert.Error(t, err)
	})
}

func TestUser_SetRolesAndOverrides(t *testing.T) {
	user, err := NewUser("carol", "", "longenough")
	require.NoError(t, err)

	r1, r2 := uuid.New(), uuid.New()
	user.SetRoles([]uuid.UUID{r1, r2, r1, uuid.Nil})
	assert.Equal(t, []uuid.UUID{r1, r2}, user.RoleIDs)
	assert.True(t, user.HasRole(r2))

	err = user.SetOverrides([]PermissionOverride{
		{Code: PermSaleVoid, Effect: EffectAllow},
		{Code: PermSaleVoid, Effect: EffectAllow},
		{Code: PermSaleVoid, Effect: EffectDeny},
	})
	require.NoError(t, err)
	assert.Len(t, user.Overrides, 2)

	assert.Error(t, user.SetOverrides([]PermissionOverride{{Code: "NOPE", Effect: EffectAllow}}))
	assert.Error(t, user.SetOverrides([]PermissionOverride{{Code: PermSaleVoid, Effect: "MAYBE"}}))
}

func TestUser_Deactivate(t *testing.T) {
	user, err := NewUser("dave", "", "longenough")
	require.NoError(t, err)

	require.NoError(t, user.Deactivate())
	assert.False(t, user.IsActive())
	assert.NotNil(t, user.DeactivatedAt)
	assert.Error(t, user.Deactivate())

	require.NoError(t, user.Activate())
	assert.True(t, user.IsActive())
	assert.Nil(t, user.DeactivatedAt)
}
