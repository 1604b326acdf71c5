package interpreter

import (
	"github.com/vantage-systems/bytevm/internal/code"
	"github.com/vantage-systems/bytevm/internal/vm"
	"github.com/vantage-systems/bytevm/internal/vmtype"
)

// The logical family (LAnd/LOr/LXor/LNot) is Bool-only, unlike the
// bitwise family which also accepts integers — spec.md §3 keeps the two
// separate even though both lower to the same hardware instructions.
func handleLogic(f func(a, b bool) bool) Handler {
	return func(c *code.Chunk, v *vm.Vm) (int, error) {
		rs, ok := c.ReadThree()
		if !ok {
			return 0, &vm.InvalidBytecodeError{Msg: "truncated operand triple"}
		}
		if _, err := checkThreeSame(v, rs, boolean); err != nil {
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
		result := f(decodeBool(aBytes), decodeBool(bBytes))
		if err := v.WriteValue(rs.Result, encodeBool(result)); err != nil {
			return 0, err
		}
		return 1 + 3*vmtype.WordSize, nil
	}
}

func handleLNot(c *code.Chunk, v *vm.Vm) (int, error) {
	rs, ok := c.ReadTwo()
	if !ok {
		return 0, &vm.InvalidBytecodeError{Msg: "truncated operand pair"}
	}
	if _, err := checkTwoSame(v, rs, boolean); err != nil {
		return 0, err
	}
	opBytes, _, err := v.ReadValue(rs.Op)
	if err != nil {
		return 0, err
	}
	if err := v.WriteValue(rs.Result, encodeBool(!decodeBool(opBytes))); err != nil {
		return 0, err
	}
	return 1 + 2*vmtype.WordSize, nil
}

func registerLogic(h *[256]Handler) {
	h[OpLAnd] = handleLogic(func(a, b bool) bool { return a && b })
	h[OpLOr] = handleLogic(func(a, b bool) bool { return a || b })
	h[OpLXor] = handleLogic(func(a, b bool) bool { return a != b })
	h[OpLNot] = handleLNot
}
