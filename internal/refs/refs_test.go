package refs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocationConstructors(t *testing.T) {
	s := StackLocation(3)
	require.False(t, s.OnHeap)
	require.Equal(t, 3, s.Index)

	h := HeapLocation(7)
	require.True(t, h.OnHeap)
	require.Equal(t, 7, h.Index)
}

func TestLocatedConstructors(t *testing.T) {
	l := LocatedStack(2)
	require.False(t, l.IsTransient)
	require.Equal(t, 2, l.StackIndex)

	tl := LocatedTransient(StackLocation(5))
	require.True(t, tl.IsTransient)
	require.Equal(t, 5, tl.Transient.Index)
}

func TestStackRefStringer(t *testing.T) {
	require.Equal(t, "s(4)", StackRef(4).String())
	require.Equal(t, "p(1)", PoolRef(1).String())
}
