package interpreter

import (
	"github.com/vantage-systems/bytevm/internal/code"
	"github.com/vantage-systems/bytevm/internal/vm"
	"github.com/vantage-systems/bytevm/internal/vmtype"
)

func handleStartDeref(c *code.Chunk, v *vm.Vm) (int, error) {
	ref, ok := c.ReadRefStack(0)
	if !ok {
		return 0, &vm.InvalidBytecodeError{Msg: "StartDeref: truncated operand"}
	}
	if _, _, err := v.StartDeref(ref); err != nil {
		return 0, err
	}
	return 1 + vmtype.WordSize, nil
}

func handleEndDeref(c *code.Chunk, v *vm.Vm) (int, error) {
	if err := v.EndDeref(); err != nil {
		return 0, err
	}
	return 1, nil
}

func registerDerefs(h *[256]Handler) {
	h[OpStartDeref] = handleStartDeref
	h[OpEndDeref] = handleEndDeref
}
