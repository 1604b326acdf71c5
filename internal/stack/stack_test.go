package stack

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vantage-systems/bytevm/internal/vmtype"
)

func TestPushZeroAndIndexInvariant(t *testing.T) {
	s := New()
	s.PushZero(vmtype.P(vmtype.U64), 1)
	s.PushZero(vmtype.Arr(vmtype.P(vmtype.U8), 3), 1)
	s.PushZero(vmtype.P(vmtype.Bool), 1)

	require.Equal(t, 3, s.Len())
	require.Equal(t, 5, s.WordLen()) // 1 + 3 + 1
	require.True(t, s.CheckIndexInvariant())
}

func TestValueBytesRoundTrip(t *testing.T) {
	s := New()
	s.PushZero(vmtype.P(vmtype.U64), 1)

	ok := s.SetValueBytes(0, []byte{1, 0, 0, 0, 0, 0, 0, 0})
	require.True(t, ok)

	b, ok := s.ValueBytes(0)
	require.True(t, ok)
	require.Equal(t, []byte{1, 0, 0, 0, 0, 0, 0, 0}, b)
}

func TestTruncateTo(t *testing.T) {
	s := New()
	s.PushZero(vmtype.P(vmtype.U64), 1)
	s.PushZero(vmtype.P(vmtype.U64), 2)
	s.PushZero(vmtype.P(vmtype.U64), 2)

	s.TruncateTo(1)
	require.Equal(t, 1, s.Len())
	require.Equal(t, 1, s.WordLen())
	require.True(t, s.CheckIndexInvariant())
}

func TestMetaAtOutOfRange(t *testing.T) {
	s := New()
	_, ok := s.MetaAt(0)
	require.False(t, ok)
}
