package interpreter

import (
	"github.com/vantage-systems/bytevm/internal/code"
	"github.com/vantage-systems/bytevm/internal/refs"
	"github.com/vantage-systems/bytevm/internal/typecheck"
	"github.com/vantage-systems/bytevm/internal/vm"
	"github.com/vantage-systems/bytevm/internal/vmtype"
)

// Mv moves op into result: for a Copy type this is indistinguishable
// from a plain copy, but for a non-Copy type (Mut reference, non-Copy
// array) op becomes unreadable afterward.
func handleMv(c *code.Chunk, v *vm.Vm) (int, error) {
	rs, ok := c.ReadTwo()
	if !ok {
		return 0, &vm.InvalidBytecodeError{Msg: "Mv: truncated operands"}
	}
	resT, err := loadType(v, rs.Result)
	if err != nil {
		return 0, err
	}
	opT, err := loadType(v, rs.Op)
	if err != nil {
		return 0, err
	}
	ctx := typecheck.NewCtx()
	if !resT.Equal(opT) {
		typecheck.Check(ctx, typecheck.Result, &resT).Cond("must match the type of the moved operand", func(vmtype.Type) bool { return false })
	}
	if err := checkRefMoveRules(v, rs.Op, opT, ctx); err != nil {
		return 0, err
	}
	if ctx.HasErrors() {
		return 0, &vm.TypeCheckError{Errors: ctx.Errors()}
	}
	if opT.IsCopy() {
		b, _, err := v.ReadValue(rs.Op)
		if err != nil {
			return 0, err
		}
		if err := v.WriteValue(rs.Result, b); err != nil {
			return 0, err
		}
	} else if err := v.Move(rs.Result, rs.Op); err != nil {
		return 0, err
	}
	return 1 + 2*vmtype.WordSize, nil
}

// checkRefMoveRules forbids moving a Mut reference whose referent still
// carries a lock taken at or below the current cycle: that exclusive
// borrow belongs to a scope that is still live, and moving the reference
// would carry it away from that scope. Shared (Ref) references are Copy
// and are not restricted here.
func checkRefMoveRules(v *vm.Vm, op refs.StackRef, opT vmtype.Type, ctx *typecheck.Ctx) error {
	rt, ok := opT.AsRef()
	if !ok || rt.Kind != vmtype.Mut {
		return nil
	}
	cycle, locked, err := v.ReferentLock(op, rt)
	if err != nil {
		return err
	}
	if locked && cycle <= v.Cycle {
		typecheck.Check(ctx, typecheck.Op, &opT).Cond(
			"cannot move a reference while its referent is still locked; take a new reference instead",
			func(vmtype.Type) bool { return false },
		)
	}
	return nil
}

func registerMv(h *[256]Handler) {
	h[OpMv] = handleMv
}
