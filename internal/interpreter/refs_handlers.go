package interpreter

import (
	"github.com/vantage-systems/bytevm/internal/code"
	"github.com/vantage-systems/bytevm/internal/vm"
	"github.com/vantage-systems/bytevm/internal/vmtype"
)

func handleTakeRef(c *code.Chunk, v *vm.Vm) (int, error) {
	ref, ok := c.ReadRefStack(0)
	if !ok {
		return 0, &vm.InvalidBytecodeError{Msg: "TakeRef: truncated operand"}
	}
	if err := v.TakeRef(ref); err != nil {
		return 0, err
	}
	return 1 + vmtype.WordSize, nil
}

func handleTakeMut(c *code.Chunk, v *vm.Vm) (int, error) {
	ref, ok := c.ReadRefStack(0)
	if !ok {
		return 0, &vm.InvalidBytecodeError{Msg: "TakeMut: truncated operand"}
	}
	if err := v.TakeMut(ref); err != nil {
		return 0, err
	}
	return 1 + vmtype.WordSize, nil
}

func registerRefs(h *[256]Handler) {
	h[OpTakeRef] = handleTakeRef
	h[OpTakeMut] = handleTakeMut
}
