package interpreter

import (
	"github.com/vantage-systems/bytevm/internal/code"
	"github.com/vantage-systems/bytevm/internal/vm"
)

// Handler executes one instruction at the chunk's current cursor and
// returns the number of bytes it consumed (opcode byte included), or the
// jumped sentinel if it already repositioned the cursor itself (J/JC).
type Handler func(c *code.Chunk, v *vm.Vm) (int, error)

// noop is the default entry for any byte the table below doesn't
// register — it exists so every slot in the array is a callable Handler
// rather than requiring a nil check on every dispatch.
func noop(c *code.Chunk, v *vm.Vm) (int, error) {
	op, _ := c.FullOpcode()
	return 0, &vm.InvalidBytecodeError{Msg: "unassigned opcode " + Op(op).String()}
}

// handlers is built once and shared by every Interpret call; no handler
// closes over per-run state.
var handlers = buildHandlers()

func buildHandlers() [256]Handler {
	var h [256]Handler
	for i := range h {
		h[i] = noop
	}
	registerLoad(&h)
	registerArith(&h)
	registerBitwise(&h)
	registerLogic(&h)
	registerShift(&h)
	registerCmp(&h)
	registerJumps(&h)
	registerScope(&h)
	registerRefs(&h)
	registerDerefs(&h)
	registerArray(&h)
	registerMv(&h)
	registerTrace(&h)
	return h
}
