package vmtype

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPrimitiveSize(t *testing.T) {
	cases := []struct {
		p    Primitive
		size int
	}{
		{U8, 1}, {U64, 1}, {I64, 1}, {F64, 1}, {Bool, 1}, {Char, 1}, {Unit, 1},
		{Never, 0},
		{SStr, 2},
	}
	for _, c := range cases {
		require.Equal(t, c.size, c.p.Size(), c.p.String())
	}
}

func TestPrimitiveClassification(t *testing.T) {
	require.True(t, I8.IsSigned())
	require.False(t, U8.IsSigned())
	require.True(t, U8.IsUnsigned())
	require.True(t, F32.IsFloat())
	require.True(t, I32.IsInteger())
	require.True(t, U32.IsInteger())
	require.False(t, F32.IsInteger())
	require.True(t, Bool.IsSingle())
	require.False(t, Never.IsSingle())
}

func TestArraySize(t *testing.T) {
	arr := Arr(P(U64), 10)
	require.Equal(t, 10, arr.Size())

	nested := Arr(Arr(P(U8), 4), 3)
	require.Equal(t, 12, nested.Size())
}

func TestRefSizeAndCopy(t *testing.T) {
	ref := MakeRef(P(U64), Ref, Stack)
	require.Equal(t, 1, ref.Size())
	require.True(t, ref.IsCopy())

	mutRef := MakeRef(P(U64), Mut, Stack)
	require.Equal(t, 1, mutRef.Size())
	require.False(t, mutRef.IsCopy())
}

func TestBoxedSizeAndCopy(t *testing.T) {
	boxed := Box(P(U64))
	require.Equal(t, 1, boxed.Size())
	require.False(t, boxed.IsCopy())
}

func TestArrayInheritsElementCopy(t *testing.T) {
	copyArr := Arr(P(U64), 3)
	require.True(t, copyArr.IsCopy())

	nonCopyArr := Arr(MakeRef(P(U64), Mut, Stack), 3)
	require.False(t, nonCopyArr.IsCopy())
}

func TestTypeEqual(t *testing.T) {
	require.True(t, P(U64).Equal(P(U64)))
	require.False(t, P(U64).Equal(P(U32)))

	a := Arr(P(U64), 4)
	b := Arr(P(U64), 4)
	c := Arr(P(U64), 5)
	require.True(t, a.Equal(b))
	require.False(t, a.Equal(c))

	r1 := MakeRef(P(U64), Ref, Stack)
	r2 := MakeRef(P(U64), Ref, Stack)
	r3 := MakeRef(P(U64), Mut, Stack)
	require.True(t, r1.Equal(r2))
	require.False(t, r1.Equal(r3))
}

func TestTypeAccessors(t *testing.T) {
	_, ok := P(U64).AsPrimitive()
	require.True(t, ok)

	ref := MakeRef(P(U64), Ref, Stack)
	_, ok = ref.AsPrimitive()
	require.False(t, ok)

	rt, ok := ref.AsRef()
	require.True(t, ok)
	require.Equal(t, Ref, rt.Kind)

	arr := Arr(P(U64), 2)
	at, ok := arr.AsSArr()
	require.True(t, ok)
	require.Equal(t, 2, at.Len)

	boxed := Box(P(U64))
	bt, ok := boxed.AsBoxed()
	require.True(t, ok)
	require.True(t, bt.Inner.Equal(P(U64)))
}
