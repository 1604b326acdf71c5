package interpreter

import (
	"github.com/vantage-systems/bytevm/internal/refs"
	"github.com/vantage-systems/bytevm/internal/typecheck"
	"github.com/vantage-systems/bytevm/internal/vm"
	"github.com/vantage-systems/bytevm/internal/vmtype"
)

// loadType is a small convenience over vm.ValueType that keeps arithmetic
// handlers from repeating the nil-on-error dance three times each.
func loadType(v *vm.Vm, ref refs.StackRef) (vmtype.Type, error) {
	return v.ValueType(ref)
}

// checkThreeSame type-checks a {result, op1, op2} triple: all three must
// be the same bare primitive, and cond additionally constrains each
// operand independently (e.g. Unsigned(), Float()). Every failure is
// reported; the caller gets one combined TypeCheckError if any fired.
func checkThreeSame(v *vm.Vm, rs refs.ThreeStackRefs, cond func(*typecheck.PrimitiveChecker) *typecheck.PrimitiveChecker) (vmtype.Primitive, error) {
	resT, err := loadType(v, rs.Result)
	if err != nil {
		return 0, err
	}
	op1T, err := loadType(v, rs.Op1)
	if err != nil {
		return 0, err
	}
	op2T, err := loadType(v, rs.Op2)
	if err != nil {
		return 0, err
	}

	ctx := typecheck.NewCtx()
	cond(typecheck.Check(ctx, typecheck.Result, &resT).Primitive())
	cond(typecheck.Check(ctx, typecheck.Op1, &op1T).Primitive())
	cond(typecheck.Check(ctx, typecheck.Op2, &op2T).Primitive())

	three := typecheck.Three{Result: &resT, Op1: &op1T, Op2: &op2T, Ctx: ctx}
	p, ok := three.AllPrimitives().AllSame()
	if !ok || ctx.HasErrors() {
		return 0, &vm.TypeCheckError{Errors: ctx.Errors()}
	}
	return p, nil
}

// checkTwoSame is checkThreeSame's unary counterpart, for {result, op}.
func checkTwoSame(v *vm.Vm, rs refs.TwoStackRefs, cond func(*typecheck.PrimitiveChecker) *typecheck.PrimitiveChecker) (vmtype.Primitive, error) {
	resT, err := loadType(v, rs.Result)
	if err != nil {
		return 0, err
	}
	opT, err := loadType(v, rs.Op)
	if err != nil {
		return 0, err
	}

	ctx := typecheck.NewCtx()
	cond(typecheck.Check(ctx, typecheck.Result, &resT).Primitive())
	cond(typecheck.Check(ctx, typecheck.Op, &opT).Primitive())

	two := typecheck.Two{Result: &resT, Op: &opT, Ctx: ctx}
	p, ok := two.AllPrimitives().AllSame()
	if !ok || ctx.HasErrors() {
		return 0, &vm.TypeCheckError{Errors: ctx.Errors()}
	}
	return p, nil
}

func unsigned(c *typecheck.PrimitiveChecker) *typecheck.PrimitiveChecker { return c.Unsigned() }
func signed(c *typecheck.PrimitiveChecker) *typecheck.PrimitiveChecker   { return c.Signed() }
func float(c *typecheck.PrimitiveChecker) *typecheck.PrimitiveChecker    { return c.Float() }
func integer(c *typecheck.PrimitiveChecker) *typecheck.PrimitiveChecker  { return c.Integer() }
func boolean(c *typecheck.PrimitiveChecker) *typecheck.PrimitiveChecker  { return c.Bool() }
func integerOrBool(c *typecheck.PrimitiveChecker) *typecheck.PrimitiveChecker {
	return c.IntegerOrBool()
}
func anyPrimitive(c *typecheck.PrimitiveChecker) *typecheck.PrimitiveChecker { return c }

// asUint64 decodes an integer-or-bool primitive's bytes into a plain
// uint64 count/index, independent of its own width or signedness. Used
// for shift amounts and array indices.
func asUint64(p vmtype.Primitive, b []byte) uint64 {
	switch p {
	case vmtype.U8:
		return uint64(decodeU8(b))
	case vmtype.U16:
		return uint64(decodeU16(b))
	case vmtype.U32:
		return uint64(decodeU32(b))
	case vmtype.U64:
		return decodeU64(b)
	case vmtype.I8:
		return uint64(decodeI8(b))
	case vmtype.I16:
		return uint64(decodeI16(b))
	case vmtype.I32:
		return uint64(decodeI32(b))
	case vmtype.I64:
		return uint64(decodeI64(b))
	default:
		return wordBits(b)
	}
}
