// Package pool implements the module-scoped constant pool: a read-only,
// ordered sequence of values, strings, and types referenced from bytecode
// by PoolRef. Construction happens once, up front; nothing in this
// package mutates a ConstantPool after New returns.
package pool

import (
	"errors"

	"github.com/vantage-systems/bytevm/internal/vmtype"
)

// ErrWrongVariant describes the case where the constant at the requested
// index exists but is not of the requested kind. The typed accessors do
// not return it; they report that case only as a false ok result.
var ErrWrongVariant = errors.New("pool: constant is not the requested variant")

// kind discriminates the payload carried by a Constant.
type kind uint8

const (
	kindValue kind = iota
	kindString
	kindType
)

// Constant is one entry of the pool: a raw value (up to 16 bytes, holding
// anything from a u8 to an i128-worth of bits, low bytes used for
// narrower types), an interned string, or a primitive type descriptor.
type Constant struct {
	kind  kind
	value [16]byte
	str   string
	typ   vmtype.Primitive
}

// ValueConstant builds a raw-value Constant from any of the supported
// fixed-width encodings, little-endian, zero-extended into 16 bytes.
func ValueConstant(bytes []byte) Constant {
	var c Constant
	c.kind = kindValue
	copy(c.value[:], bytes)
	return c
}

// StringConstant builds a string Constant.
func StringConstant(s string) Constant {
	return Constant{kind: kindString, str: s}
}

// TypeConstant builds a primitive-type Constant.
func TypeConstant(t vmtype.Primitive) Constant {
	return Constant{kind: kindType, typ: t}
}

// ConstantPool is a read-only, ordered sequence of Constants, indexed by
// PoolRef (see package refs). It is immutable once built.
type ConstantPool struct {
	constants []Constant
}

// New builds a ConstantPool from the given constants, in order.
func New(constants []Constant) *ConstantPool {
	cp := &ConstantPool{constants: make([]Constant, len(constants))}
	copy(cp.constants, constants)
	return cp
}

// Len returns the number of constants in the pool.
func (p *ConstantPool) Len() int { return len(p.constants) }

func (p *ConstantPool) get(index int) (Constant, bool) {
	if index < 0 || index >= len(p.constants) {
		return Constant{}, false
	}
	return p.constants[index], true
}

// Type returns the primitive type at index, or false if out of range or
// not a type constant.
func (p *ConstantPool) Type(index int) (vmtype.Primitive, bool) {
	c, ok := p.get(index)
	if !ok || c.kind != kindType {
		return 0, false
	}
	return c.typ, true
}

// String returns the interned string at index, or false if out of range
// or not a string constant.
func (p *ConstantPool) String(index int) (string, bool) {
	c, ok := p.get(index)
	if !ok || c.kind != kindString {
		return "", false
	}
	return c.str, true
}

// Single returns the low 8 bytes of the value at index, or false if out
// of range or not a value constant.
func (p *ConstantPool) Single(index int) ([8]byte, bool) {
	c, ok := p.get(index)
	if !ok || c.kind != kindValue {
		return [8]byte{}, false
	}
	var out [8]byte
	copy(out[:], c.value[:8])
	return out, true
}

// Wide returns the full 16-byte value at index, or false if out of range
// or not a value constant.
func (p *ConstantPool) Wide(index int) ([16]byte, bool) {
	c, ok := p.get(index)
	if !ok || c.kind != kindValue {
		return [16]byte{}, false
	}
	return c.value, true
}
