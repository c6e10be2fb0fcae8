package identity

import (
	"context"
	"testing"

	"github.com/fixmarket/backend/internal/application/keylock"
	"github.com/fixmarket/backend/internal/domain/identity"
	"github.com/fixmarket/backend/internal/domain/shared"
	"github.com/fixmarket/backend/internal/infrastructure/auth"
	"github.com/fixmarket/backend/internal/infrastructure/persistence/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIdentityService(allowed ...string) *Service {
	return NewService(
		memory.NewParticipantRepository(),
		auth.NewAllowList(allowed),
		keylock.New(),
		nil,
	)
}

func TestService_Ensure(t *testing.T) {
	ctx := context.Background()

	t.Run("creates on first contact", func(t *testing.T) {
		svc := newIdentityService()

		resp, err := svc.Ensure(ctx, "u1", "alice", "Alice")
		require.NoError(t, err)
		assert.Equal(t, "u1", resp.ID)
		assert.Equal(t, string(identity.RoleUnset), resp.Role)
	})

	t.Run("refreshes the profile on a later contact", func(t *testing.T) {
		svc := newIdentityService()
		_, err := svc.Ensure(ctx, "u1", "alice", "Alice")
		require.NoError(t, err)

		resp, err := svc.Ensure(ctx, "u1", "alice_new", "Alice Smith")
		require.NoError(t, err)
		assert.Equal(t, "alice_new", resp.Handle)
		assert.Equal(t, "Alice Smith", resp.DisplayName)
	})

	t.Run("degrades a delisted operator", func(t *testing.T) {
		withOp := newIdentityService("op1")
		_, err := withOp.Ensure(ctx, "op1", "olga", "Olga")
		require.NoError(t, err)
		resp, err := withOp.SwitchRole(ctx, "op1", identity.RoleOperator)
		require.NoError(t, err)
		require.Equal(t, string(identity.RoleOperator), resp.Role)

		// Same store, emptied allow-list: the next contact drops the role
		delisted := NewService(withOp.participants, auth.NewAllowList(nil), keylock.New(), nil)
		resp, err = delisted.Ensure(ctx, "op1", "olga", "Olga")
		require.NoError(t, err)
		assert.Equal(t, string(identity.RoleUnset), resp.Role)
	})
}

func TestService_SwitchRole(t *testing.T) {
	ctx := context.Background()
	svc := newIdentityService("op1")

	_, err := svc.Ensure(ctx, "u1", "alice", "Alice")
	require.NoError(t, err)

	resp, err := svc.SwitchRole(ctx, "u1", identity.RoleExecutor)
	require.NoError(t, err)
	assert.Equal(t, string(identity.RoleExecutor), resp.Role)

	_, err = svc.SwitchRole(ctx, "u1", identity.RoleOperator)
	assert.ErrorIs(t, err, shared.ErrForbidden)

	_, err = svc.SwitchRole(ctx, "unknown", identity.RoleCustomer)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestService_SetAvailability(t *testing.T) {
	ctx := context.Background()
	svc := newIdentityService()

	_, err := svc.Ensure(ctx, "u1", "bob", "Bob")
	require.NoError(t, err)

	resp, err := svc.SetAvailability(ctx, "u1", "weekdays after 18:00")
	require.NoError(t, err)
	assert.Equal(t, "weekdays after 18:00", resp.Availability)
}

func TestService_RequireOperator(t *testing.T) {
	svc := newIdentityService("op1")

	assert.NoError(t, svc.RequireOperator(context.Background(), "op1"))
	assert.ErrorIs(t, svc.RequireOperator(context.Background(), "u1"), shared.ErrForbidden)
}

func TestService_Operators(t *testing.T) {
	ctx := context.Background()
	svc := newIdentityService("op1", "op2")

	// op1 registered but never switched role; op2 was never seen at
	// all; u1 is a registered non-operator.
	_, err := svc.Ensure(ctx, "op1", "olga", "Olga")
	require.NoError(t, err)
	_, err = svc.Ensure(ctx, "u1", "alice", "Alice")
	require.NoError(t, err)

	ops, err := svc.Operators(ctx)
	require.NoError(t, err)
	require.Len(t, ops, 2)

	byID := make(map[string]identity.Participant, len(ops))
	for _, op := range ops {
		byID[op.ID] = op
	}
	assert.Equal(t, "Olga", byID["op1"].DisplayName)
	assert.Contains(t, byID, "op2")
	assert.NotContains(t, byID, "u1")
}
