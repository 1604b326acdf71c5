package interpreter

import (
	"github.com/vantage-systems/bytevm/internal/code"
	"github.com/vantage-systems/bytevm/internal/vm"
	"github.com/vantage-systems/bytevm/internal/vmtype"
)

// TraceStackValue writes a diagnostic snapshot of one stack value to the
// Vm's attached tracer, if any. With no tracer attached this is a no-op
// rather than an error, so bytecode with trace points runs unmodified
// whether or not a run cares to collect them.
func handleTraceStackValue(c *code.Chunk, v *vm.Vm) (int, error) {
	ref, ok := c.ReadRefStack(0)
	if !ok {
		return 0, &vm.InvalidBytecodeError{Msg: "TraceStackValue: truncated operand"}
	}
	if v.Trace == nil {
		return 1 + vmtype.WordSize, nil
	}
	snap, err := v.Snapshot(ref)
	if err != nil {
		return 0, err
	}
	if err := v.Trace.Emit(snap); err != nil {
		return 0, &vm.BadVmStateError{Msg: "TraceStackValue: " + err.Error()}
	}
	return 1 + vmtype.WordSize, nil
}

func registerTrace(h *[256]Handler) {
	h[OpTraceStackValue] = handleTraceStackValue
}
