package interpreter

import (
	"github.com/vantage-systems/bytevm/internal/code"
	"github.com/vantage-systems/bytevm/internal/refs"
	"github.com/vantage-systems/bytevm/internal/typecheck"
	"github.com/vantage-systems/bytevm/internal/vm"
	"github.com/vantage-systems/bytevm/internal/vmtype"
)

// jumped is the sentinel a handler returns in place of a byte count when
// it has already repositioned the chunk's cursor itself (J/JC) — the
// interpreter loop must not additionally Advance after seeing it.
const jumped = -1

func handleJ(c *code.Chunk, v *vm.Vm) (int, error) {
	target, ok := c.ReadOffset()
	if !ok {
		return 0, &vm.InvalidBytecodeError{Msg: "J: truncated branch target"}
	}
	c.SetOffset(target)
	return jumped, nil
}

func handleJC(c *code.Chunk, v *vm.Vm) (int, error) {
	target, ok := c.ReadOffset()
	if !ok {
		return 0, &vm.InvalidBytecodeError{Msg: "JC: truncated branch target"}
	}
	condRef, ok := c.ReadRefWithOffset(0)
	if !ok {
		return 0, &vm.InvalidBytecodeError{Msg: "JC: truncated condition operand"}
	}
	ref := refs.StackRef(condRef)
	condT, err := loadType(v, ref)
	if err != nil {
		return 0, err
	}
	ctx := typecheck.NewCtx()
	typecheck.Check(ctx, typecheck.Op, &condT).Primitive().Bool()
	if ctx.HasErrors() {
		return 0, &vm.TypeCheckError{Errors: ctx.Errors()}
	}
	condBytes, _, err := v.ReadValue(ref)
	if err != nil {
		return 0, err
	}
	if decodeBool(condBytes) {
		c.SetOffset(target)
		return jumped, nil
	}
	return 1 + 2*vmtype.WordSize, nil
}

func registerJumps(h *[256]Handler) {
	h[OpJ] = handleJ
	h[OpJC] = handleJC
}
