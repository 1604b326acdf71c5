package interpreter

import (
	"math"

	"github.com/vantage-systems/bytevm/internal/code"
	"github.com/vantage-systems/bytevm/internal/refs"
	"github.com/vantage-systems/bytevm/internal/typecheck"
	"github.com/vantage-systems/bytevm/internal/vm"
	"github.com/vantage-systems/bytevm/internal/vmtype"
)

// cmpResult is the outcome of comparing two same-typed operands: either
// an ordering (-1/0/1 for less/equal/greater) or, for floats, Unordered
// when either operand is NaN — Rust's partial_cmp returning None, which
// an ordering opcode must surface as an error rather than silently
// treating NaN as equal to everything (spec.md §8 scenario F).
type cmpResult struct {
	cmp       int
	unordered bool
}

// compare decodes both operands as p and compares them.
func compare(p vmtype.Primitive, a, b []byte) cmpResult {
	switch {
	case p.IsUnsigned():
		return cmpResult{cmp: cmpOrdered(asUint64(p, a), asUint64(p, b))}
	case p.IsSigned():
		x, y := int64(asUint64(p, a)), int64(asUint64(p, b))
		return cmpResult{cmp: cmpOrdered(x, y)}
	case p == vmtype.F32:
		x, y := decodeF32(a), decodeF32(b)
		if math.IsNaN(float64(x)) || math.IsNaN(float64(y)) {
			return cmpResult{unordered: true}
		}
		return cmpResult{cmp: cmpOrdered(x, y)}
	case p == vmtype.F64:
		x, y := decodeF64(a), decodeF64(b)
		if math.IsNaN(x) || math.IsNaN(y) {
			return cmpResult{unordered: true}
		}
		return cmpResult{cmp: cmpOrdered(x, y)}
	case p == vmtype.Bool:
		return cmpResult{cmp: cmpOrdered(boolToInt(decodeBool(a)), boolToInt(decodeBool(b)))}
	case p == vmtype.Char:
		return cmpResult{cmp: cmpOrdered(uint64(decodeU32(a)), uint64(decodeU32(b)))}
	default:
		if wordBits(a) == wordBits(b) {
			return cmpResult{cmp: 0}
		}
		return cmpResult{cmp: 1}
	}
}

func cmpOrdered[T interface {
	~int64 | ~uint64 | ~float32 | ~float64
}](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// checkCmp validates a comparison's {result(Bool), op1, op2} triple.
// cond additionally restricts op1/op2 (Equal accepts anything; ordering
// restricts to numbers).
func checkCmp(v *vm.Vm, rs refs.ThreeStackRefs, cond func(*typecheck.PrimitiveChecker) *typecheck.PrimitiveChecker) (vmtype.Primitive, error) {
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
	typecheck.Check(ctx, typecheck.Result, &resT).Primitive().Bool()
	cond(typecheck.Check(ctx, typecheck.Op1, &op1T).Primitive())
	cond(typecheck.Check(ctx, typecheck.Op2, &op2T).Primitive())

	// Result is Bool, which generally differs from the operands' type, so
	// only op1 and op2 are required to match: they are routed through Two
	// (op1 in its Result slot) and result is checked on its own above.
	two := typecheck.Two{Result: &op1T, Op: &op2T, Ctx: ctx}
	p, ok := two.AllPrimitives().AllSame()
	if ctx.HasErrors() || !ok {
		return 0, &vm.TypeCheckError{Errors: ctx.Errors()}
	}
	return p, nil
}

// handleCmp builds a Handler for one comparison opcode. ordering opcodes
// (Ge/Gt/Le/Lt) fail with a BiOpError on an unordered (NaN) pair rather
// than reporting a result; Eq/Ne instead resolve unordered directly to
// their own fixed answer (NaN is never equal to anything, even itself).
func handleCmp(cond func(*typecheck.PrimitiveChecker) *typecheck.PrimitiveChecker, accept func(cmp int) bool, unorderedResult func() (bool, bool)) Handler {
	return func(c *code.Chunk, v *vm.Vm) (int, error) {
		rs, ok := c.ReadThree()
		if !ok {
			return 0, &vm.InvalidBytecodeError{Msg: "truncated operand triple"}
		}
		p, err := checkCmp(v, rs, cond)
		if err != nil {
			return 0, err
		}
		aBytes, _, err := v.ReadValue(rs.Op1)
		if err != nil {
			return 0, err
		}
		bBytes, _, err := v.ReadValue(rs.Op2)
		if err != nil {
			return 0, err
		}
		cr := compare(p, aBytes, bBytes)
		var result bool
		if cr.unordered {
			r, ok := unorderedResult()
			if !ok {
				return 0, &vm.BiOpError{Msg: "comparison is unordered (NaN operand)"}
			}
			result = r
		} else {
			result = accept(cr.cmp)
		}
		if err := v.WriteValue(rs.Result, encodeBool(result)); err != nil {
			return 0, err
		}
		return 1 + 3*vmtype.WordSize, nil
	}
}

// errOnUnordered is used by the ordering opcodes: NaN makes the
// comparison itself fail.
func errOnUnordered() (bool, bool) { return false, false }

func registerCmp(h *[256]Handler) {
	h[OpGe] = handleCmp(numberOnly, func(c int) bool { return c >= 0 }, errOnUnordered)
	h[OpGt] = handleCmp(numberOnly, func(c int) bool { return c > 0 }, errOnUnordered)
	h[OpLe] = handleCmp(numberOnly, func(c int) bool { return c <= 0 }, errOnUnordered)
	h[OpLt] = handleCmp(numberOnly, func(c int) bool { return c < 0 }, errOnUnordered)
	h[OpEq] = handleCmp(anyPrimitive, func(c int) bool { return c == 0 }, func() (bool, bool) { return false, true })
	h[OpNe] = handleCmp(anyPrimitive, func(c int) bool { return c != 0 }, func() (bool, bool) { return true, true })
}

func numberOnly(c *typecheck.PrimitiveChecker) *typecheck.PrimitiveChecker { return c.Number() }
