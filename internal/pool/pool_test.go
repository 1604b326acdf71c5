package pool

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vantage-systems/bytevm/internal/vmtype"
)

func u64Bytes(v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return b
}

func TestConstantPoolLookups(t *testing.T) {
	p := New([]Constant{
		TypeConstant(vmtype.U64),
		ValueConstant(u64Bytes(10)),
		StringConstant("hello"),
	})
	require.Equal(t, 3, p.Len())

	typ, ok := p.Type(0)
	require.True(t, ok)
	require.Equal(t, vmtype.U64, typ)

	v, ok := p.Single(1)
	require.True(t, ok)
	require.Equal(t, uint64(10), binary.LittleEndian.Uint64(v[:]))

	s, ok := p.String(2)
	require.True(t, ok)
	require.Equal(t, "hello", s)
}

func TestConstantPoolWrongVariant(t *testing.T) {
	p := New([]Constant{TypeConstant(vmtype.U64)})

	_, ok := p.String(0)
	require.False(t, ok)

	_, ok = p.Single(0)
	require.False(t, ok)
}

func TestConstantPoolOutOfRange(t *testing.T) {
	p := New([]Constant{TypeConstant(vmtype.U64)})

	_, ok := p.Type(5)
	require.False(t, ok)

	_, ok = p.Type(-1)
	require.False(t, ok)
}
