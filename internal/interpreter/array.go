package interpreter

import (
	"github.com/vantage-systems/bytevm/internal/code"
	"github.com/vantage-systems/bytevm/internal/refs"
	"github.com/vantage-systems/bytevm/internal/typecheck"
	"github.com/vantage-systems/bytevm/internal/vm"
	"github.com/vantage-systems/bytevm/internal/vmtype"
)

// SArrCreate0 pushes a zero-valued, fixed-length array whose element
// type comes from the constant pool — the supplemented array-creation
// primitive original_source's assembler emits as `SArrCreate0(len, t)`.
func handleSArrCreate0(c *code.Chunk, v *vm.Vm) (int, error) {
	length, ok := c.ReadOffset()
	if !ok {
		return 0, &vm.InvalidBytecodeError{Msg: "SArrCreate0: truncated length operand"}
	}
	elemRef, ok := c.ReadRefWithOffset(0)
	if !ok {
		return 0, &vm.InvalidBytecodeError{Msg: "SArrCreate0: truncated element-type operand"}
	}
	if length < 0 {
		return 0, &vm.InvalidBytecodeError{Msg: "SArrCreate0: negative length"}
	}
	elemPrim, ok := v.Pool.Type(elemRef)
	if !ok {
		return 0, &vm.ConstantPoolError{Ref: refs.PoolRef(elemRef), Msg: "not a type constant"}
	}
	v.PushZero(vmtype.Arr(vmtype.P(elemPrim), length))
	return 1 + 2*vmtype.WordSize, nil
}

// sarrElementRef resolves a {arr, idx} stack pair into the transient
// location and element type SArrGet/SArrMut operate on, checking that
// arr is a reference (Mut for SArrMut) to an array, idx an unsigned
// integer, and the arr reference was not created in the current, not
// yet closed cycle. Only stack-located array references are resolved;
// an array reached through a transient reference is rejected with a
// BadVmStateError. The cycle check is the same same-cycle rule
// TakeRef/TakeMut enforce via takeLock, since an element reference is
// no less a borrow of arr than a direct TakeRef/TakeMut would be.
func sarrElementRef(c *code.Chunk, v *vm.Vm, kind vmtype.RefKind) (refs.Location, vmtype.Type, error) {
	arrRef, ok := c.ReadRefStack(0)
	if !ok {
		return refs.Location{}, vmtype.Type{}, &vm.InvalidBytecodeError{Msg: "truncated array operand"}
	}
	idxRef, ok := c.ReadRefStack(1)
	if !ok {
		return refs.Location{}, vmtype.Type{}, &vm.InvalidBytecodeError{Msg: "truncated index operand"}
	}
	arrT, err := loadType(v, arrRef)
	if err != nil {
		return refs.Location{}, vmtype.Type{}, err
	}
	idxT, err := loadType(v, idxRef)
	if err != nil {
		return refs.Location{}, vmtype.Type{}, err
	}
	ctx := typecheck.NewCtx()
	refCond := typecheck.AnyRefKind
	if kind == vmtype.Mut {
		refCond = typecheck.MutOnly
	}
	typecheck.Check(ctx, typecheck.Arr, &arrT).Ref(refCond).To().SArr()
	typecheck.Check(ctx, typecheck.Idx, &idxT).Primitive().Unsigned()
	if ctx.HasErrors() {
		return refs.Location{}, vmtype.Type{}, &vm.TypeCheckError{Errors: ctx.Errors()}
	}
	arrMeta, err := v.Meta(arrRef)
	if err != nil {
		return refs.Location{}, vmtype.Type{}, err
	}
	if v.Cycle <= arrMeta.Cycle {
		return refs.Location{}, vmtype.Type{}, &vm.SameCycleRefError{Kind: kind, Ref: arrRef}
	}
	if arrRt, _ := arrT.AsRef(); arrRt.PointsTo != vmtype.Stack {
		return refs.Location{}, vmtype.Type{}, &vm.BadVmStateError{Msg: "unsupported array reference location " + arrRt.PointsTo.String()}
	}
	ptrBytes, _, err := v.ReadValue(arrRef)
	if err != nil {
		return refs.Location{}, vmtype.Type{}, err
	}
	idxBytes, idxPrim, err := v.ReadValue(idxRef)
	if err != nil {
		return refs.Location{}, vmtype.Type{}, err
	}
	idxPrimitive, _ := idxPrim.AsPrimitive()
	idx := int(asUint64(idxPrimitive, idxBytes))
	loc, elemType, err := v.ArrayElementLocation(refs.StackRef(wordBits(ptrBytes)), idx)
	if err != nil {
		return refs.Location{}, vmtype.Type{}, err
	}
	return loc, elemType, nil
}

// sarrBorrow is SArrGet/SArrMut's shared body: acquire a partial lock on
// the element's transient location (DESIGN.md, Open Question decision 1 —
// SArrGet takes a shared partial lock, SArrMut an exclusive one) and
// push a reference to it.
func sarrBorrow(kind vmtype.RefKind) Handler {
	return func(c *code.Chunk, v *vm.Vm) (int, error) {
		loc, elemType, err := sarrElementRef(c, v, kind)
		if err != nil {
			return 0, err
		}
		tm := v.EnsureTransient(loc, refs.TransientMeta{ValueType: elemType})
		if err := tm.Lock.AddLockPartial(v.Cycle, kind); err != nil {
			return 0, &vm.LockViolationError{Err: err, Location: loc}
		}
		v.PushTransientRef(loc, elemType, kind)
		return 1 + 2*vmtype.WordSize, nil
	}
}

// SArrXcg (element swap/exchange) has no resolved semantics in either
// spec.md or original_source/; its slot is left unregistered and falls
// through to the dispatch table's default noop handler.
func registerArray(h *[256]Handler) {
	h[OpSArrCreate0] = handleSArrCreate0
	h[OpSArrGet] = sarrBorrow(vmtype.Ref)
	h[OpSArrMut] = sarrBorrow(vmtype.Mut)
}
