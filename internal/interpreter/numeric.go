package interpreter

import (
	"encoding/binary"
	"math"

	"golang.org/x/exp/constraints"

	"github.com/vantage-systems/bytevm/internal/vm"
	"github.com/vantage-systems/bytevm/internal/vmtype"
)

// Every single-word primitive lives in a full 8-byte stack word,
// zero/sign-extended (integers) or low-order-packed (floats, bool, char)
// out to WordSize. wordBits/bitsWord convert between that 8-byte
// representation and its raw uint64 bit pattern; decode*/encode*
// convert between the bit pattern and a primitive's own Go type.

func wordBits(b []byte) uint64 { return binary.LittleEndian.Uint64(b[:8]) }

func bitsWord(v uint64) []byte {
	b := make([]byte, vmtype.WordSize)
	binary.LittleEndian.PutUint64(b, v)
	return b
}

// signExtend sign-extends the low `width` bits of v to a full 64-bit
// pattern.
func signExtend(v uint64, width int) uint64 {
	if width >= 64 {
		return v
	}
	shift := uint(64 - width)
	return uint64(int64(v<<shift) >> shift)
}

// zeroExtend masks v down to its low `width` bits.
func zeroExtend(v uint64, width int) uint64 {
	if width >= 64 {
		return v
	}
	return v & ((uint64(1) << uint(width)) - 1)
}

// normalize re-derives the canonical word-level bit pattern for a value
// of primitive type p from a raw (possibly over-wide, e.g. post-NOT)
// 64-bit pattern — truncating to p's own width, then sign- or
// zero-extending back out per p's signedness.
func normalize(p vmtype.Primitive, v uint64) uint64 {
	width := p.BitWidth()
	if p.IsSigned() {
		return signExtend(v, width)
	}
	return zeroExtend(v, width)
}

func decodeU8(b []byte) uint8   { return b[0] }
func decodeI8(b []byte) int8    { return int8(b[0]) }
func decodeU16(b []byte) uint16 { return binary.LittleEndian.Uint16(b[:2]) }
func decodeI16(b []byte) int16  { return int16(binary.LittleEndian.Uint16(b[:2])) }
func decodeU32(b []byte) uint32 { return binary.LittleEndian.Uint32(b[:4]) }
func decodeI32(b []byte) int32  { return int32(binary.LittleEndian.Uint32(b[:4])) }
func decodeU64(b []byte) uint64 { return binary.LittleEndian.Uint64(b[:8]) }
func decodeI64(b []byte) int64  { return int64(binary.LittleEndian.Uint64(b[:8])) }
func decodeF32(b []byte) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(b[:4])) }
func decodeF64(b []byte) float64 { return math.Float64frombits(binary.LittleEndian.Uint64(b[:8])) }
func decodeBool(b []byte) bool  { return b[0] != 0 }

func encodeU8(v uint8) []byte   { b := make([]byte, vmtype.WordSize); b[0] = v; return b }
func encodeI8(v int8) []byte    { return encodeI64(int64(v)) }
func encodeU16(v uint16) []byte { b := make([]byte, vmtype.WordSize); binary.LittleEndian.PutUint16(b, v); return b }
func encodeI16(v int16) []byte  { return encodeI64(int64(v)) }
func encodeU32(v uint32) []byte { b := make([]byte, vmtype.WordSize); binary.LittleEndian.PutUint32(b, v); return b }
func encodeI32(v int32) []byte  { return encodeI64(int64(v)) }
func encodeU64(v uint64) []byte { b := make([]byte, vmtype.WordSize); binary.LittleEndian.PutUint64(b, v); return b }
func encodeI64(v int64) []byte  { return encodeU64(uint64(v)) }
func encodeF32(v float32) []byte {
	b := make([]byte, vmtype.WordSize)
	binary.LittleEndian.PutUint32(b, math.Float32bits(v))
	return b
}
func encodeF64(v float64) []byte {
	b := make([]byte, vmtype.WordSize)
	binary.LittleEndian.PutUint64(b, math.Float64bits(v))
	return b
}
func encodeBool(v bool) []byte {
	b := make([]byte, vmtype.WordSize)
	if v {
		b[0] = 1
	}
	return b
}

// numeric is the type-parameter bound shared by every generic ALU
// helper: anything a result of UAdd/IAdd/FAdd etc. could be.
type numeric interface {
	constraints.Integer | constraints.Float
}

// addG/subG/mulG/negG back the float arithmetic opcodes, which have no
// checked_add/checked_sub/checked_mul/checked_neg impl in the ground
// truth (num_traits' Checked* traits are integer-only) — IEEE-754 float
// arithmetic over/underflows to +-Inf rather than failing.
func addG[T numeric](a, b T) T { return a + b }
func subG[T numeric](a, b T) T { return a - b }
func mulG[T numeric](a, b T) T { return a * b }
func negG[T numeric](a T) T    { return -a }

// isSigned reports whether T's zero value wraps -1 below zero, i.e.
// whether T is one of the signed integer types. Works for any integer
// width without needing to name it.
func isSigned[T constraints.Integer]() bool { return T(-1) < 0 }

// isMinValue reports whether v is T's most negative representable
// value — the one integer whose negation overflows back to itself in
// two's complement. Always false for unsigned T.
func isMinValue[T constraints.Integer](v T) bool { return v < 0 && -v == v }

// checkedAddG mirrors checked_add: wraparound detection that works for
// any integer width, signed or unsigned, without needing to know the
// type's bit count.
func checkedAddG[T constraints.Integer](a, b T) (T, bool) {
	sum := a + b
	if isSigned[T]() {
		overflow := (b > 0 && sum < a) || (b < 0 && sum > a)
		return sum, !overflow
	}
	return sum, sum >= a
}

// checkedSubG mirrors checked_sub.
func checkedSubG[T constraints.Integer](a, b T) (T, bool) {
	diff := a - b
	if isSigned[T]() {
		overflow := (b < 0 && diff < a) || (b > 0 && diff > a)
		return diff, !overflow
	}
	return diff, b <= a
}

// checkedMulG mirrors checked_mul. The round-trip division test is
// sound for any width except the one two's-complement corner case
// (MinValue * -1), which is special-cased directly.
func checkedMulG[T constraints.Integer](a, b T) (T, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	p := a * b
	if isSigned[T]() {
		negOne := T(-1)
		if (a == negOne && isMinValue(b)) || (b == negOne && isMinValue(a)) {
			return p, false
		}
	}
	return p, p/b == a
}

// checkedNegG mirrors checked_neg: the only integer negation that
// overflows is negating a signed type's minimum value.
func checkedNegG[T constraints.Integer](a T) (T, bool) {
	if isMinValue(a) {
		return a, false
	}
	return -a, true
}

func divG[T numeric](a, b T) (T, error) {
	if b == 0 {
		return 0, &vm.BiOpError{Msg: "division by zero"}
	}
	return a / b, nil
}

// remG is only ever instantiated with integer T; FRem does not use it
// (floatArith in alu_arith.go computes it with math.Mod).
func remG[T constraints.Integer](a, b T) (T, error) {
	if b == 0 {
		return 0, &vm.BiOpError{Msg: "division by zero"}
	}
	return a % b, nil
}
