package interpreter

import (
	"github.com/vantage-systems/bytevm/internal/code"
	"github.com/vantage-systems/bytevm/internal/typecheck"
	"github.com/vantage-systems/bytevm/internal/vm"
	"github.com/vantage-systems/bytevm/internal/vmtype"
)

// The bitwise family (BAnd/BOr/BXor/BNot) operates word-at-a-time on the
// raw zero/sign-extended bit pattern rather than per-width Go types:
// AND/OR/XOR of two same-width zero- or sign-extended patterns reproduce
// the correctly-extended truncated result bit-for-bit (replicate(x) ⊕
// replicate(y) == replicate(x ⊕ y) for ⊕ ∈ {AND,OR,XOR}), so there is no
// need for intArith's per-width switch here. normalize still has to run
// after BNot, since flipping every bit of a zero-extended pattern does
// not itself produce a valid zero-extended result.
func handleBitwise(opWord func(a, b uint64) uint64) Handler {
	return func(c *code.Chunk, v *vm.Vm) (int, error) {
		rs, ok := c.ReadThree()
		if !ok {
			return 0, &vm.InvalidBytecodeError{Msg: "truncated operand triple"}
		}
		p, err := checkThreeSame(v, rs, integerOrBool)
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
		result := normalize(p, opWord(wordBits(aBytes), wordBits(bBytes)))
		if err := v.WriteValue(rs.Result, bitsWord(result)); err != nil {
			return 0, err
		}
		return 1 + 3*vmtype.WordSize, nil
	}
}

func handleBNot(c *code.Chunk, v *vm.Vm) (int, error) {
	rs, ok := c.ReadTwo()
	if !ok {
		return 0, &vm.InvalidBytecodeError{Msg: "truncated operand pair"}
	}
	p, err := checkTwoSame(v, rs, integerOrBool)
	if err != nil {
		return 0, err
	}
	opBytes, _, err := v.ReadValue(rs.Op)
	if err != nil {
		return 0, err
	}
	result := normalize(p, ^wordBits(opBytes))
	if err := v.WriteValue(rs.Result, bitsWord(result)); err != nil {
		return 0, err
	}
	return 1 + 2*vmtype.WordSize, nil
}

// handleBBe implements the table's "BBe" slot as a bits-to-bool test:
// result (Bool) is true iff the integer-or-bool operand's bit pattern is
// nonzero. No opcode of this name survives in original_source/ to pin
// down an exact meaning; this is the most defensible reading of a
// unary, bitwise-family, boolean-producing instruction given its slot
// between BNot and the logical family.
func handleBBe(c *code.Chunk, v *vm.Vm) (int, error) {
	rs, ok := c.ReadTwo()
	if !ok {
		return 0, &vm.InvalidBytecodeError{Msg: "truncated operand pair"}
	}
	opT, err := loadType(v, rs.Op)
	if err != nil {
		return 0, err
	}
	resT, err := loadType(v, rs.Result)
	if err != nil {
		return 0, err
	}
	ctx := typecheck.NewCtx()
	typecheck.Check(ctx, typecheck.Result, &resT).Primitive().Bool()
	typecheck.Check(ctx, typecheck.Op, &opT).Primitive().IntegerOrBool()
	if ctx.HasErrors() {
		return 0, &vm.TypeCheckError{Errors: ctx.Errors()}
	}
	opBytes, _, err := v.ReadValue(rs.Op)
	if err != nil {
		return 0, err
	}
	nonzero := wordBits(opBytes) != 0
	if err := v.WriteValue(rs.Result, encodeBool(nonzero)); err != nil {
		return 0, err
	}
	return 1 + 2*vmtype.WordSize, nil
}

func registerBitwise(h *[256]Handler) {
	h[OpBAnd] = handleBitwise(func(a, b uint64) uint64 { return a & b })
	h[OpBOr] = handleBitwise(func(a, b uint64) uint64 { return a | b })
	h[OpBXor] = handleBitwise(func(a, b uint64) uint64 { return a ^ b })
	h[OpBNot] = handleBNot
	h[OpBBe] = handleBBe
}
