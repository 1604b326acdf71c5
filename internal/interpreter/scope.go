package interpreter

import (
	"github.com/vantage-systems/bytevm/internal/code"
	"github.com/vantage-systems/bytevm/internal/vm"
)

func handleStartScope(c *code.Chunk, v *vm.Vm) (int, error) {
	v.StartScope()
	return 1, nil
}

func handleEndScope(c *code.Chunk, v *vm.Vm) (int, error) {
	if err := v.EndScope(); err != nil {
		return 0, err
	}
	return 1, nil
}

func registerScope(h *[256]Handler) {
	h[OpStartScope] = handleStartScope
	h[OpEndScope] = handleEndScope
}
