package lock

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vantage-systems/bytevm/internal/vmtype"
)

func TestAddLockFromNone(t *testing.T) {
	var v Value
	require.NoError(t, v.AddLock(1, vmtype.Ref))
	require.True(t, v.IsRef())
	c, ok := v.Cycle()
	require.True(t, ok)
	require.Equal(t, 1, c)
}

func TestAddRefLockIsIdempotent(t *testing.T) {
	var v Value
	require.NoError(t, v.AddLock(1, vmtype.Ref))
	require.NoError(t, v.AddLock(1, vmtype.Ref))
	require.True(t, v.IsRef())
}

func TestMutExcludesRef(t *testing.T) {
	var v Value
	require.NoError(t, v.AddLock(1, vmtype.Ref))
	require.ErrorIs(t, v.AddLock(1, vmtype.Mut), ErrMutButRefLocked)
}

func TestRefExcludesMut(t *testing.T) {
	var v Value
	require.NoError(t, v.AddLock(1, vmtype.Mut))
	require.ErrorIs(t, v.AddLock(1, vmtype.Ref), ErrRefButMutLocked)
}

// Scenario C: two mut locks on the same value conflict.
func TestAliasingMutRejected(t *testing.T) {
	var v Value
	require.NoError(t, v.AddLock(1, vmtype.Mut))
	require.ErrorIs(t, v.AddLock(1, vmtype.Mut), ErrMutButMutLocked)
}

func TestPartialRefLocksCompose(t *testing.T) {
	var v Value
	require.NoError(t, v.AddLockPartial(1, vmtype.Ref))
	require.NoError(t, v.AddLockPartial(1, vmtype.Ref))
	require.True(t, v.IsRef())
}

func TestPartialMutIsSingleWriter(t *testing.T) {
	var v Value
	require.NoError(t, v.AddLockPartial(1, vmtype.Mut))
	require.NoError(t, v.AddLockPartial(1, vmtype.Mut))
	require.ErrorIs(t, v.AddLock(1, vmtype.Mut), ErrMutButMutLocked)
}

func TestFullRefThenPartialRefConflicts(t *testing.T) {
	var v Value
	require.NoError(t, v.AddLock(1, vmtype.Ref))
	require.ErrorIs(t, v.AddLockPartial(1, vmtype.Ref), ErrRefPartialButRefFull)
}

func TestReleaseOnlyClearsSameCycle(t *testing.T) {
	var v Value
	require.NoError(t, v.AddLock(1, vmtype.Ref))
	v.Release(2)
	require.True(t, v.IsLocked(), "lock from an enclosing scope must survive a pop at a different cycle")
	v.Release(1)
	require.False(t, v.IsLocked())
}

func TestDerefKindFromRefKind(t *testing.T) {
	require.Equal(t, DerefRef, FromRefKind(vmtype.Ref))
	require.Equal(t, DerefMut, FromRefKind(vmtype.Mut))
}
