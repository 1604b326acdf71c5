package typecheck

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vantage-systems/bytevm/internal/vmtype"
)

func TestPrimitiveEqualsPasses(t *testing.T) {
	ctx := NewCtx()
	u64 := vmtype.P(vmtype.U64)
	p, ok := Check(ctx, Op, &u64).Primitive().Equals(vmtype.U64).Get()
	require.True(t, ok)
	require.Equal(t, vmtype.U64, p)
	require.False(t, ctx.HasErrors())
}

func TestPrimitiveEqualsFails(t *testing.T) {
	ctx := NewCtx()
	u32 := vmtype.P(vmtype.U32)
	_, ok := Check(ctx, Op, &u32).Primitive().Equals(vmtype.U64).Get()
	require.False(t, ok)
	errs := ctx.Errors()
	require.Len(t, errs, 1)
	require.Equal(t, NotEquals, errs[0].Kind)
}

func TestNotPrimitiveReported(t *testing.T) {
	ctx := NewCtx()
	ref := vmtype.MakeRef(vmtype.P(vmtype.U64), vmtype.Ref, vmtype.Stack)
	_, ok := Check(ctx, Op, &ref).Primitive().Get()
	require.False(t, ok)
	errs := ctx.Errors()
	require.Len(t, errs, 1)
	require.Equal(t, NotPrimitive, errs[0].Kind)
}

func TestPoisonedChainDoesNotCascade(t *testing.T) {
	ctx := NewCtx()
	ref := vmtype.MakeRef(vmtype.P(vmtype.U64), vmtype.Ref, vmtype.Stack)
	// Primitive() fails first (NotPrimitive); every subsequent predicate
	// on the poisoned PrimitiveChecker must be a no-op, not a second error.
	_, ok := Check(ctx, Op, &ref).Primitive().Integer().Unsigned().Equals(vmtype.U64).Get()
	require.False(t, ok)
	require.Len(t, ctx.Errors(), 1)
}

func TestThreeAllPrimitivesAllSame(t *testing.T) {
	ctx := NewCtx()
	u64 := vmtype.P(vmtype.U64)
	three := Three{Result: &u64, Op1: &u64, Op2: &u64, Ctx: ctx}
	p, ok := three.AllPrimitives().AllSame()
	require.True(t, ok)
	require.Equal(t, vmtype.U64, p)
	require.False(t, ctx.HasErrors())
}

func TestThreeAllSameMismatch(t *testing.T) {
	ctx := NewCtx()
	u64 := vmtype.P(vmtype.U64)
	u32 := vmtype.P(vmtype.U32)
	three := Three{Result: &u64, Op1: &u64, Op2: &u32, Ctx: ctx}
	_, ok := three.AllPrimitives().AllSame()
	require.False(t, ok)
	errs := ctx.Errors()
	require.Len(t, errs, 1)
	require.Equal(t, ThreeNotEqual, errs[0].Kind)
}

func TestThreeIndependentNotPrimitiveErrors(t *testing.T) {
	ctx := NewCtx()
	u64 := vmtype.P(vmtype.U64)
	ref := vmtype.MakeRef(vmtype.P(vmtype.U64), vmtype.Ref, vmtype.Stack)
	three := Three{Result: &ref, Op1: &u64, Op2: &ref, Ctx: ctx}
	_, ok := three.AllPrimitives().AllSame()
	require.False(t, ok)
	// Both result and op2 independently report NotPrimitive.
	require.Len(t, ctx.Errors(), 2)
}

func TestRefNavigationToPointee(t *testing.T) {
	ctx := NewCtx()
	ref := vmtype.MakeRef(vmtype.P(vmtype.U64), vmtype.Mut, vmtype.Stack)
	p, ok := Check(ctx, Op, &ref).MutRef().To().Primitive().Equals(vmtype.U64).Get()
	require.True(t, ok)
	require.Equal(t, vmtype.U64, p)
}

func TestRefNavigationWrongKind(t *testing.T) {
	ctx := NewCtx()
	ref := vmtype.MakeRef(vmtype.P(vmtype.U64), vmtype.Ref, vmtype.Stack)
	_, ok := Check(ctx, Op, &ref).MutRef().To().Primitive().Get()
	require.False(t, ok)
	errs := ctx.Errors()
	require.Len(t, errs, 1)
	require.Equal(t, NotMutReference, errs[0].Kind)
}

func TestArrNavigationToElement(t *testing.T) {
	ctx := NewCtx()
	arr := vmtype.Arr(vmtype.P(vmtype.U64), 4)
	p, ok := Check(ctx, Arr, &arr).SArr().Element().Primitive().Equals(vmtype.U64).Get()
	require.True(t, ok)
	require.Equal(t, vmtype.U64, p)
}

func TestEitherReportsOnlyCombinedFailure(t *testing.T) {
	ctx := NewCtx()
	u8 := vmtype.P(vmtype.U8)
	ok := Either(ctx, Op2, &u8, "must be u16 or u32",
		func(t vmtype.Type) bool { p, _ := t.AsPrimitive(); return p == vmtype.U16 },
		func(t vmtype.Type) bool { p, _ := t.AsPrimitive(); return p == vmtype.U32 },
	)
	require.False(t, ok)
	require.Len(t, ctx.Errors(), 1)
}

func TestEitherPassesWhenOneArmHolds(t *testing.T) {
	ctx := NewCtx()
	u16 := vmtype.P(vmtype.U16)
	ok := Either(ctx, Op2, &u16, "must be u16 or u32",
		func(t vmtype.Type) bool { p, _ := t.AsPrimitive(); return p == vmtype.U16 },
		func(t vmtype.Type) bool { p, _ := t.AsPrimitive(); return p == vmtype.U32 },
	)
	require.True(t, ok)
	require.False(t, ctx.HasErrors())
}
