package code

import (
	"encoding/binary"

	"github.com/vantage-systems/bytevm/internal/refs"
	"github.com/vantage-systems/bytevm/internal/vmtype"
)

// Chunk is a non-owning cursor over a Code's bytes, positioned at the
// start of the instruction currently being interpreted.
type Chunk struct {
	bytes  []byte
	offset int
}

// FromCode returns a Chunk positioned at the start of c.
func FromCode(c *Code) *Chunk {
	return &Chunk{bytes: c.bytes}
}

// Offset returns the cursor's current byte offset.
func (c *Chunk) Offset() int { return c.offset }

// Advance moves the cursor forward by by bytes.
func (c *Chunk) Advance(by int) { c.offset += by }

// SetOffset moves the cursor to an absolute byte offset (used for jumps;
// never use Advance for those, the target is not necessarily ip+delta).
func (c *Chunk) SetOffset(n int) { c.offset = n }

// ReadByte returns the byte at offset+i, and whether it was in range.
func (c *Chunk) ReadByte(i int) (byte, bool) {
	pos := c.offset + i
	if pos < 0 || pos >= len(c.bytes) {
		return 0, false
	}
	return c.bytes[pos], true
}

// FullOpcode returns the opcode byte at the cursor's current position.
func (c *Chunk) FullOpcode() (byte, bool) { return c.ReadByte(0) }

func (c *Chunk) readWordAt(byteOffset int) (int, bool) {
	end := byteOffset + vmtype.WordSize
	if byteOffset < 0 || end > len(c.bytes) {
		return 0, false
	}
	return int(binary.LittleEndian.Uint64(c.bytes[byteOffset:end])), true
}

// ReadRef reads the i-th word-sized operand, located right after the
// opcode byte.
func (c *Chunk) ReadRef(i int) (int, bool) {
	return c.readWordAt(c.offset + 1 + i*vmtype.WordSize)
}

// ReadRefWithOffset reads the i-th word-sized operand in an instruction
// whose first operand is a jump offset — i.e. it skips one extra word
// after the opcode before counting operands.
func (c *Chunk) ReadRefWithOffset(i int) (int, bool) {
	return c.readWordAt(c.offset + 1 + vmtype.WordSize + i*vmtype.WordSize)
}

// ReadOffset reads the first word after the opcode as an absolute branch
// target.
func (c *Chunk) ReadOffset() (int, bool) {
	return c.readWordAt(c.offset + 1)
}

// ReadRefStack reads the i-th operand as a StackRef.
func (c *Chunk) ReadRefStack(i int) (refs.StackRef, bool) {
	v, ok := c.ReadRef(i)
	return refs.StackRef(v), ok
}

// ReadRefPool reads the i-th operand as a PoolRef.
func (c *Chunk) ReadRefPool(i int) (refs.PoolRef, bool) {
	v, ok := c.ReadRef(i)
	return refs.PoolRef(v), ok
}

// ReadTwo reads a {result, op} StackRef pair.
func (c *Chunk) ReadTwo() (refs.TwoStackRefs, bool) {
	result, ok := c.ReadRefStack(0)
	if !ok {
		return refs.TwoStackRefs{}, false
	}
	op, ok := c.ReadRefStack(1)
	if !ok {
		return refs.TwoStackRefs{}, false
	}
	return refs.TwoStackRefs{Result: result, Op: op}, true
}

// ReadThree reads a {result, op1, op2} StackRef triple.
func (c *Chunk) ReadThree() (refs.ThreeStackRefs, bool) {
	result, ok := c.ReadRefStack(0)
	if !ok {
		return refs.ThreeStackRefs{}, false
	}
	op1, ok := c.ReadRefStack(1)
	if !ok {
		return refs.ThreeStackRefs{}, false
	}
	op2, ok := c.ReadRefStack(2)
	if !ok {
		return refs.ThreeStackRefs{}, false
	}
	return refs.ThreeStackRefs{Result: result, Op1: op1, Op2: op2}, true
}
