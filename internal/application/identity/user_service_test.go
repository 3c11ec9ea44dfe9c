package identity

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/formhub/backend/internal/domain/identity"
	"github.com/formhub/backend/internal/domain/shared"
)

func TestUserServiceUpdate(t *testing.T) {
	user := testUser(t, "jane", "passw0rd123", identity.RoleUser)
	svc := NewUserService(newMockUserRepository(user), zap.NewNop())

	t.Run("promotes to admin and deactivates", func(t *testing.T) {
		role := "admin"
		active := false
		resp, err := svc.Update(context.Background(), user.ID, UpdateUserRequest{Role: &role, Active: &active})
		require.NoError(t, err)
		assert.Equal(t, "admin", resp.Role)
		assert.False(t, resp.Active)
	})

	t.Run("rejects an unknown role", func(t *testing.T) {
		role := "superuser"
		_, err := svc.Update(context.Background(), user.ID, UpdateUserRequest{Role: &role})
		assert.Error(t, err)
	})

	t.Run("unknown user", func(t *testing.T) {
		active := true
		_, err := svc.Update(context.Background(), uuid.New(), UpdateUserRequest{Active: &active})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestUserServiceListAndDelete(t *testing.T) {
	a := testUser(t, "alpha", "passw0rd123", identity.RoleUser)
	b := testUser(t, "beta", "passw0rd123", identity.RoleAdmin)
	svc := NewUserService(newMockUserRepository(a, b), zap.NewNop())

	users, err := svc.List(context.Background(), UserListFilter{})
	require.NoError(t, err)
	assert.Len(t, users, 2)

	require.NoError(t, svc.Delete(context.Background(), a.ID))
	assert.ErrorIs(t, svc.Delete(context.Background(), a.ID), shared.ErrNotFound)
}
