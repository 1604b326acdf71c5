package vm

import (
	"encoding/binary"

	"github.com/vantage-systems/bytevm/internal/stack"
	"github.com/vantage-systems/bytevm/internal/vmtype"
)

// wordsFromBytes chunks b into WordSize-sized Data words, zero-padding
// the final word if b's length isn't a multiple of WordSize.
func wordsFromBytes(b []byte) []stack.Data {
	n := (len(b) + vmtype.WordSize - 1) / vmtype.WordSize
	out := make([]stack.Data, n)
	for i := 0; i < n; i++ {
		start := i * vmtype.WordSize
		end := start + vmtype.WordSize
		if end > len(b) {
			end = len(b)
		}
		copy(out[i][:], b[start:end])
	}
	return out
}

// encodeWordUint stores v as a single little-endian stack word — the
// representation used for a reference's pointer payload.
func encodeWordUint(v uint64) stack.Data {
	var d stack.Data
	binary.LittleEndian.PutUint64(d[:], v)
	return d
}

// decodeWordUint reads a single stack word as a little-endian uint64.
func decodeWordUint(d stack.Data) uint64 {
	return binary.LittleEndian.Uint64(d[:])
}
