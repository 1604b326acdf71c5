// Package code owns the immutable bytecode byte sequence and the Chunk
// cursor handlers use to read typed operands out of it.
package code

// Code is an immutable byte-addressable instruction stream.
type Code struct {
	bytes []byte
}

// FromBytes copies b into a new Code.
func FromBytes(b []byte) *Code {
	cp := make([]byte, len(b))
	copy(cp, b)
	return &Code{bytes: cp}
}

// Len returns the number of bytes in the stream.
func (c *Code) Len() int { return len(c.bytes) }
