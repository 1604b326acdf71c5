package fixture

import (
	"testing"

	"github.com/stretchr/testify/require"

	vmcode "github.com/vantage-systems/bytevm/internal/code"
	"github.com/vantage-systems/bytevm/internal/interpreter"
	"github.com/vantage-systems/bytevm/internal/vm"
)

const fibonacciYAML = `
constants:
  - kind: type
    type: u64
  - kind: value
    value: 10
  - kind: value
    value: 1
instructions:
  - op: U64Ld0
  - op: U64Ld0
  - op: LdType
    operands: [0, 1]
  - op: LdType
    operands: [0, 2]
  - op: LdFalse
  - op: UAdd
    operands: [0, 0, 3]
  - op: UAdd
    operands: [1, 1, 3]
  - op: Le
    operands: [4, 1, 2]
  - op: JC
    operands: [37, 4]
`

func TestLoadAndRunFibonacciFixture(t *testing.T) {
	c, pool, err := Load([]byte(fibonacciYAML))
	require.NoError(t, err)
	require.Equal(t, 3, pool.Len())

	v := vm.New(pool)
	err = interpreter.Interpret(vmcode.FromCode(c), v)
	require.NoError(t, err)
}

func TestLoadRejectsUnknownOpcode(t *testing.T) {
	_, _, err := Load([]byte(`
constants: []
instructions:
  - op: NotARealOpcode
`))
	require.Error(t, err)
}

func TestLoadRejectsUnknownType(t *testing.T) {
	_, _, err := Load([]byte(`
constants:
  - kind: type
    type: not_a_type
instructions: []
`))
	require.Error(t, err)
}

func TestLoadRejectsUnknownConstantKind(t *testing.T) {
	_, _, err := Load([]byte(`
constants:
  - kind: mystery
instructions: []
`))
	require.Error(t, err)
}
