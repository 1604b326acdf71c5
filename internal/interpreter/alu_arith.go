package interpreter

import (
	"math"

	"golang.org/x/exp/constraints"

	"github.com/vantage-systems/bytevm/internal/code"
	"github.com/vantage-systems/bytevm/internal/typecheck"
	"github.com/vantage-systems/bytevm/internal/vm"
	"github.com/vantage-systems/bytevm/internal/vmtype"
)

// intArith evaluates one of the five integer arithmetic opcodes for an
// already width/signedness-matched Go integer type. Which concrete T a
// given instruction runs through is chosen at the call site below by a
// switch on vmtype.Primitive — this is the "generic-over-type" pattern
// standing in for a source-level code generator.
func intArith[T constraints.Integer](op Op, a, b T) (T, error) {
	switch op {
	case OpUAdd, OpIAdd:
		r, ok := checkedAddG(a, b)
		if !ok {
			return 0, &vm.BiOpError{Msg: "integer overflow"}
		}
		return r, nil
	case OpUSub, OpISub:
		r, ok := checkedSubG(a, b)
		if !ok {
			return 0, &vm.BiOpError{Msg: "integer overflow"}
		}
		return r, nil
	case OpUMul, OpIMul:
		r, ok := checkedMulG(a, b)
		if !ok {
			return 0, &vm.BiOpError{Msg: "integer overflow"}
		}
		return r, nil
	case OpUDiv, OpIDiv:
		return divG(a, b)
	case OpURem, OpIRem:
		return remG(a, b)
	}
	panic("interpreter: unreachable integer arith op")
}

// floatArith is intArith's floating-point counterpart; Rem is fmod, not
// Go's %.
func floatArith[T constraints.Float](op Op, a, b T) (T, error) {
	switch op {
	case OpFAdd:
		return addG(a, b), nil
	case OpFSub:
		return subG(a, b), nil
	case OpFMul:
		return mulG(a, b), nil
	case OpFDiv:
		return divG(a, b)
	case OpFRem:
		return T(math.Mod(float64(a), float64(b))), nil
	}
	panic("interpreter: unreachable float arith op")
}

// evalUnsigned dispatches an unsigned-family arithmetic opcode to the
// right width, returning the encoded result word bytes.
func evalUnsigned(op Op, p vmtype.Primitive, a, b []byte) ([]byte, error) {
	switch p {
	case vmtype.U8:
		r, err := intArith(op, decodeU8(a), decodeU8(b))
		return encodeU8(r), err
	case vmtype.U16:
		r, err := intArith(op, decodeU16(a), decodeU16(b))
		return encodeU16(r), err
	case vmtype.U32:
		r, err := intArith(op, decodeU32(a), decodeU32(b))
		return encodeU32(r), err
	default: // U64, checked by the caller's type check
		r, err := intArith(op, decodeU64(a), decodeU64(b))
		return encodeU64(r), err
	}
}

// evalSigned is evalUnsigned's signed counterpart.
func evalSigned(op Op, p vmtype.Primitive, a, b []byte) ([]byte, error) {
	switch p {
	case vmtype.I8:
		r, err := intArith(op, decodeI8(a), decodeI8(b))
		return encodeI8(r), err
	case vmtype.I16:
		r, err := intArith(op, decodeI16(a), decodeI16(b))
		return encodeI16(r), err
	case vmtype.I32:
		r, err := intArith(op, decodeI32(a), decodeI32(b))
		return encodeI32(r), err
	default: // I64
		r, err := intArith(op, decodeI64(a), decodeI64(b))
		return encodeI64(r), err
	}
}

// evalFloat is evalUnsigned's floating-point counterpart.
func evalFloat(op Op, p vmtype.Primitive, a, b []byte) ([]byte, error) {
	if p == vmtype.F32 {
		r, err := floatArith(op, decodeF32(a), decodeF32(b))
		return encodeF32(r), err
	}
	r, err := floatArith(op, decodeF64(a), decodeF64(b))
	return encodeF64(r), err
}

// arithHandler builds a Handler for one three-operand arithmetic opcode.
// eval decodes/computes/encodes once the operand triple has been
// confirmed to be the same, correctly-signed primitive.
func arithHandler(op Op, cond func(*typecheck.PrimitiveChecker) *typecheck.PrimitiveChecker, eval func(Op, vmtype.Primitive, []byte, []byte) ([]byte, error)) Handler {
	return func(c *code.Chunk, v *vm.Vm) (int, error) {
		rs, ok := c.ReadThree()
		if !ok {
			return 0, &vm.InvalidBytecodeError{Msg: "truncated operand triple"}
		}
		p, err := checkThreeSame(v, rs, cond)
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
		result, err := eval(op, p, aBytes, bBytes)
		if err != nil {
			return 0, err
		}
		if err := v.WriteValue(rs.Result, result); err != nil {
			return 0, err
		}
		return 1 + 3*vmtype.WordSize, nil
	}
}

// unaryArithHandler is arithHandler's {result, op} counterpart, used by
// INeg/FNeg.
func unaryArithHandler(cond func(*typecheck.PrimitiveChecker) *typecheck.PrimitiveChecker, eval func(vmtype.Primitive, []byte) ([]byte, error)) Handler {
	return func(c *code.Chunk, v *vm.Vm) (int, error) {
		rs, ok := c.ReadTwo()
		if !ok {
			return 0, &vm.InvalidBytecodeError{Msg: "truncated operand pair"}
		}
		p, err := checkTwoSame(v, rs, cond)
		if err != nil {
			return 0, err
		}
		opBytes, _, err := v.ReadValue(rs.Op)
		if err != nil {
			return 0, err
		}
		result, err := eval(p, opBytes)
		if err != nil {
			return 0, err
		}
		if err := v.WriteValue(rs.Result, result); err != nil {
			return 0, err
		}
		return 1 + 2*vmtype.WordSize, nil
	}
}

func evalINeg(p vmtype.Primitive, a []byte) ([]byte, error) {
	switch p {
	case vmtype.I8:
		r, ok := checkedNegG(decodeI8(a))
		if !ok {
			return nil, &vm.UOpError{Msg: "integer overflow"}
		}
		return encodeI8(r), nil
	case vmtype.I16:
		r, ok := checkedNegG(decodeI16(a))
		if !ok {
			return nil, &vm.UOpError{Msg: "integer overflow"}
		}
		return encodeI16(r), nil
	case vmtype.I32:
		r, ok := checkedNegG(decodeI32(a))
		if !ok {
			return nil, &vm.UOpError{Msg: "integer overflow"}
		}
		return encodeI32(r), nil
	default:
		r, ok := checkedNegG(decodeI64(a))
		if !ok {
			return nil, &vm.UOpError{Msg: "integer overflow"}
		}
		return encodeI64(r), nil
	}
}

func evalFNeg(p vmtype.Primitive, a []byte) ([]byte, error) {
	if p == vmtype.F32 {
		return encodeF32(negG(decodeF32(a))), nil
	}
	return encodeF64(negG(decodeF64(a))), nil
}

func registerArith(h *[256]Handler) {
	for _, o := range []Op{OpUAdd, OpUSub, OpUMul, OpUDiv, OpURem} {
		h[o] = arithHandler(o, unsigned, evalUnsigned)
	}
	for _, o := range []Op{OpIAdd, OpISub, OpIMul, OpIDiv, OpIRem} {
		h[o] = arithHandler(o, signed, evalSigned)
	}
	for _, o := range []Op{OpFAdd, OpFSub, OpFMul, OpFDiv, OpFRem} {
		h[o] = arithHandler(o, float, evalFloat)
	}
	h[OpINeg] = unaryArithHandler(signed, evalINeg)
	h[OpFNeg] = unaryArithHandler(float, evalFNeg)
}
