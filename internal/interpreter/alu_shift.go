package interpreter

import (
	"math/bits"

	"github.com/vantage-systems/bytevm/internal/code"
	"github.com/vantage-systems/bytevm/internal/refs"
	"github.com/vantage-systems/bytevm/internal/typecheck"
	"github.com/vantage-systems/bytevm/internal/vm"
	"github.com/vantage-systems/bytevm/internal/vmtype"
)

// checkShift validates a shift/rotate's {result, value, amount} triple:
// result and value must be the identical integer primitive; amount only
// needs to be some integer (its own width is independent — a u64 count
// can shift a u8 value).
func checkShift(v *vm.Vm, rs refs.ThreeStackRefs) (vmtype.Primitive, vmtype.Primitive, error) {
	resT, err := loadType(v, rs.Result)
	if err != nil {
		return 0, 0, err
	}
	valT, err := loadType(v, rs.Op1)
	if err != nil {
		return 0, 0, err
	}
	amtT, err := loadType(v, rs.Op2)
	if err != nil {
		return 0, 0, err
	}

	ctx := typecheck.NewCtx()
	typecheck.Check(ctx, typecheck.Result, &resT).Primitive().Integer()
	typecheck.Check(ctx, typecheck.Op1, &valT).Primitive().Integer()
	amtPrim, amtOK := typecheck.Check(ctx, typecheck.Op2, &amtT).Primitive().Integer().Get()

	two := typecheck.Two{Result: &resT, Op: &valT, Ctx: ctx}
	valPrim, sameOK := two.AllPrimitives().AllSame()
	if ctx.HasErrors() || !sameOK || !amtOK {
		return 0, 0, &vm.TypeCheckError{Errors: ctx.Errors()}
	}
	return valPrim, amtPrim, nil
}

// shiftOperands reads and type-checks a shift/rotate's {value, amount}
// operands, shared by the checked-shift and rotate handler builders.
func shiftOperands(c *code.Chunk, v *vm.Vm) (refs.ThreeStackRefs, vmtype.Primitive, uint64, uint64, error) {
	rs, ok := c.ReadThree()
	if !ok {
		return refs.ThreeStackRefs{}, 0, 0, 0, &vm.InvalidBytecodeError{Msg: "truncated operand triple"}
	}
	valPrim, amtPrim, err := checkShift(v, rs)
	if err != nil {
		return refs.ThreeStackRefs{}, 0, 0, 0, err
	}
	valBytes, _, err := v.ReadValue(rs.Op1)
	if err != nil {
		return refs.ThreeStackRefs{}, 0, 0, 0, err
	}
	amtBytes, _, err := v.ReadValue(rs.Op2)
	if err != nil {
		return refs.ThreeStackRefs{}, 0, 0, 0, err
	}
	return rs, valPrim, wordBits(valBytes), asUint64(amtPrim, amtBytes), nil
}

// handleCheckedShift builds Shl/Shr: `checked_shl`/`checked_shr` fail
// (BiOpError) when the amount is >= the operand's own bit width, rather
// than silently masking it — unlike rotation, a shift by the full width
// is not well-defined.
func handleCheckedShift(f func(p vmtype.Primitive, v uint64, amount uint) uint64) Handler {
	return func(c *code.Chunk, v *vm.Vm) (int, error) {
		rs, valPrim, valBits, amount, err := shiftOperands(c, v)
		if err != nil {
			return 0, err
		}
		width := valPrim.BitWidth()
		if amount >= uint64(width) {
			return 0, &vm.BiOpError{Msg: "shift amount out of range"}
		}
		result := normalize(valPrim, f(valPrim, valBits, uint(amount)))
		if err := v.WriteValue(rs.Result, bitsWord(result)); err != nil {
			return 0, err
		}
		return 1 + 3*vmtype.WordSize, nil
	}
}

// handleRotate builds RotL/RotR: rotation is defined for any amount, so
// the count is simply reduced modulo the operand's bit width rather than
// rejected.
func handleRotate(f func(p vmtype.Primitive, v uint64, amount uint) uint64) Handler {
	return func(c *code.Chunk, v *vm.Vm) (int, error) {
		rs, valPrim, valBits, amount, err := shiftOperands(c, v)
		if err != nil {
			return 0, err
		}
		width := uint(valPrim.BitWidth())
		result := normalize(valPrim, f(valPrim, valBits, uint(amount)%width))
		if err := v.WriteValue(rs.Result, bitsWord(result)); err != nil {
			return 0, err
		}
		return 1 + 3*vmtype.WordSize, nil
	}
}

func registerShift(h *[256]Handler) {
	h[OpShl] = handleCheckedShift(func(p vmtype.Primitive, v uint64, n uint) uint64 { return v << n })
	h[OpShr] = handleCheckedShift(func(p vmtype.Primitive, v uint64, n uint) uint64 {
		if p.IsSigned() {
			return uint64(int64(v) >> n)
		}
		return v >> n
	})
	h[OpRotL] = handleRotate(func(p vmtype.Primitive, v uint64, n uint) uint64 {
		return rotateWidth(v, int(n), p.BitWidth())
	})
	h[OpRotR] = handleRotate(func(p vmtype.Primitive, v uint64, n uint) uint64 {
		return rotateWidth(v, -int(n), p.BitWidth())
	})
}

// rotateWidth rotates the low `width` bits of v (the rest is discarded
// by the caller's subsequent normalize).
func rotateWidth(v uint64, shift, width int) uint64 {
	masked := zeroExtend(v, width)
	switch width {
	case 8:
		return uint64(bits.RotateLeft8(uint8(masked), shift))
	case 16:
		return uint64(bits.RotateLeft16(uint16(masked), shift))
	case 32:
		return uint64(bits.RotateLeft32(uint32(masked), shift))
	default:
		return bits.RotateLeft64(masked, shift)
	}
}
