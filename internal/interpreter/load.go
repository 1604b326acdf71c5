package interpreter

import (
	"github.com/vantage-systems/bytevm/internal/code"
	"github.com/vantage-systems/bytevm/internal/vm"
	"github.com/vantage-systems/bytevm/internal/vmtype"
)

// ldZero builds a Handler for the zero-operand, zero-valued literal
// opcodes: push a zeroed value of the fixed primitive t.
func ldZero(t vmtype.Primitive) Handler {
	return func(c *code.Chunk, v *vm.Vm) (int, error) {
		v.PushZero(vmtype.P(t))
		return 1, nil
	}
}

// ldFixed builds a Handler for the zero-operand literal opcodes whose
// value isn't simply zero (LdTrue/LdFalse): push a value of the fixed
// primitive t built from the already word-sized bytes b.
func ldFixed(t vmtype.Primitive, b []byte) Handler {
	return func(c *code.Chunk, v *vm.Vm) (int, error) {
		v.Push(vmtype.P(t), b)
		return 1, nil
	}
}

// LdTyped0 looks up a PrimitiveType constant at the pool index operand
// and pushes a zero value of that type.
func handleLdTyped0(c *code.Chunk, v *vm.Vm) (int, error) {
	tRef, ok := c.ReadRefPool(0)
	if !ok {
		return 0, &vm.InvalidBytecodeError{Msg: "LdTyped0: truncated type operand"}
	}
	p, ok := v.Pool.Type(int(tRef))
	if !ok {
		return 0, &vm.ConstantPoolError{Ref: tRef, Msg: "not a type constant"}
	}
	v.PushZero(vmtype.P(p))
	return 1 + vmtype.WordSize, nil
}

// LdType looks up a PrimitiveType constant and a single-word value
// constant and pushes the value typed accordingly.
func handleLdType(c *code.Chunk, v *vm.Vm) (int, error) {
	tRef, ok := c.ReadRefPool(0)
	if !ok {
		return 0, &vm.InvalidBytecodeError{Msg: "LdType: truncated type operand"}
	}
	vRef, ok := c.ReadRefPool(1)
	if !ok {
		return 0, &vm.InvalidBytecodeError{Msg: "LdType: truncated value operand"}
	}
	p, ok := v.Pool.Type(int(tRef))
	if !ok {
		return 0, &vm.ConstantPoolError{Ref: tRef, Msg: "not a type constant"}
	}
	word, ok := v.Pool.Single(int(vRef))
	if !ok {
		return 0, &vm.ConstantPoolError{Ref: vRef, Msg: "not a value constant"}
	}
	v.Push(vmtype.P(p), word[:])
	return 1 + 2*vmtype.WordSize, nil
}

// ldString builds the shared body of LdSS/LdDS: look up a string
// constant, push it as an SStr {pool-index, length} word pair (there is
// no heap in this core to hold the bytes themselves).
func ldString() Handler {
	return func(c *code.Chunk, v *vm.Vm) (int, error) {
		sRef, ok := c.ReadRefPool(0)
		if !ok {
			return 0, &vm.InvalidBytecodeError{Msg: "LdSS/LdDS: truncated string operand"}
		}
		s, ok := v.Pool.String(int(sRef))
		if !ok {
			return 0, &vm.ConstantPoolError{Ref: sRef, Msg: "not a string constant"}
		}
		b := append(encodeU64(uint64(sRef)), encodeU64(uint64(len(s)))...)
		v.Push(vmtype.P(vmtype.SStr), b)
		return 1 + vmtype.WordSize, nil
	}
}

func registerLoad(h *[256]Handler) {
	h[OpU64Ld0] = ldZero(vmtype.U64)
	h[OpI64Ld0] = ldZero(vmtype.I64)
	h[OpLdUnit] = ldZero(vmtype.Unit)
	h[OpLdTrue] = ldFixed(vmtype.Bool, encodeBool(true))
	h[OpLdFalse] = ldFixed(vmtype.Bool, encodeBool(false))
	h[OpLdTyped0] = handleLdTyped0
	h[OpLdType] = handleLdType
	h[OpLdSS] = ldString()
	h[OpLdDS] = ldString()
}
