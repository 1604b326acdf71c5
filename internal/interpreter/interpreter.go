package interpreter

import (
	"github.com/vantage-systems/bytevm/internal/code"
	"github.com/vantage-systems/bytevm/internal/vm"
)

// Interpret runs c to completion against v, fetching one instruction at a
// time from the handler table, or until a handler returns an error. The
// error (if any) is always a *vm.ContextError, wrapping the underlying
// vm.Error with the offset and opcode byte that raised it.
func Interpret(c *code.Chunk, v *vm.Vm) error {
	for {
		offset := c.Offset()
		opByte, ok := c.FullOpcode()
		if !ok {
			return nil
		}
		handler := handlers[opByte]
		consumed, err := handler(c, v)
		if err != nil {
			vmErr, ok := err.(vm.Error)
			if !ok {
				return err
			}
			return &vm.ContextError{Err: vmErr, Offset: offset, Opcode: opByte}
		}
		if consumed == jumped {
			continue
		}
		c.Advance(consumed)
	}
}
