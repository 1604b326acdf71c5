package code

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func wordsOf(vals ...uint64) []byte {
	out := make([]byte, 0, 8*len(vals))
	for _, v := range vals {
		b := make([]byte, 8)
		binary.LittleEndian.PutUint64(b, v)
		out = append(out, b...)
	}
	return out
}

func TestReadRefAndThree(t *testing.T) {
	// opcode byte + 3 word operands.
	bytes := append([]byte{42}, wordsOf(1, 2, 3)...)
	c := FromCode(FromBytes(bytes))

	r, ok := c.ReadRef(0)
	require.True(t, ok)
	require.Equal(t, 1, r)

	three, ok := c.ReadThree()
	require.True(t, ok)
	require.Equal(t, 1, int(three.Result))
	require.Equal(t, 2, int(three.Op1))
	require.Equal(t, 3, int(three.Op2))
}

func TestReadOffsetAndRefWithOffset(t *testing.T) {
	// opcode + jump-target word + one stack ref.
	bytes := append([]byte{1}, wordsOf(99, 7)...)
	c := FromCode(FromBytes(bytes))

	off, ok := c.ReadOffset()
	require.True(t, ok)
	require.Equal(t, 99, off)

	ref, ok := c.ReadRefWithOffset(0)
	require.True(t, ok)
	require.Equal(t, 7, ref)
}

func TestReadByteOutOfRange(t *testing.T) {
	c := FromCode(FromBytes([]byte{1, 2}))
	_, ok := c.ReadByte(5)
	require.False(t, ok)
}

func TestAdvanceAndSetOffset(t *testing.T) {
	bytes := append([]byte{1}, wordsOf(5)...)
	bytes = append(bytes, append([]byte{2}, wordsOf(6)...)...)
	c := FromCode(FromBytes(bytes))

	c.Advance(9)
	b, ok := c.ReadByte(0)
	require.True(t, ok)
	require.Equal(t, byte(2), b)

	c.SetOffset(0)
	b, ok = c.ReadByte(0)
	require.True(t, ok)
	require.Equal(t, byte(1), b)
}
