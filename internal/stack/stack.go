// Package stack is the VM's dual-container typed stack: a flat sequence
// of raw 8-byte words (the data the bytecode actually reads/writes) and a
// parallel sequence of per-logical-value metadata (type, creation cycle,
// lock state, move/deref markers). Multi-word values occupy contiguous
// words but get exactly one metadata entry, pointing at their first word
// — see spec.md §3, invariant S-index.
package stack

import (
	"github.com/vantage-systems/bytevm/internal/lock"
	"github.com/vantage-systems/bytevm/internal/vmtype"
)

// Data is a single stack word.
type Data [vmtype.WordSize]byte

// Meta is the metadata entry for one logical value.
type Meta struct {
	Type     vmtype.Type
	Index    int // start word index into Stack.Words
	Cycle    int // scope cycle this value was created in
	Lock     lock.Value
	WasMoved bool
	Deref    lock.DerefKind
}

// Stack is the dual raw-bytes/metadata container.
type Stack struct {
	Words []Data
	Meta  []Meta
}

// New returns an empty Stack.
func New() *Stack {
	return &Stack{}
}

// Len returns the number of logical values (metadata entries), not the
// number of words.
func (s *Stack) Len() int { return len(s.Meta) }

// WordLen returns the number of raw words currently on the stack.
func (s *Stack) WordLen() int { return len(s.Words) }

// Push appends a new logical value of type t, created at cycle, with the
// given raw words (len(words) must equal t.Size()).
func (s *Stack) Push(t vmtype.Type, cycle int, words []Data) {
	idx := len(s.Words)
	s.Words = append(s.Words, words...)
	s.Meta = append(s.Meta, Meta{Type: t, Index: idx, Cycle: cycle})
}

// PushZero appends a new zero-valued logical value of type t.
func (s *Stack) PushZero(t vmtype.Type, cycle int) {
	words := make([]Data, t.Size())
	s.Push(t, cycle, words)
}

// MetaAt returns the metadata entry at logical index i.
func (s *Stack) MetaAt(i int) (*Meta, bool) {
	if i < 0 || i >= len(s.Meta) {
		return nil, false
	}
	return &s.Meta[i], true
}

// ValueWords returns the raw word slice backing logical value i.
func (s *Stack) ValueWords(i int) ([]Data, bool) {
	m, ok := s.MetaAt(i)
	if !ok {
		return nil, false
	}
	size := m.Type.Size()
	return s.Words[m.Index : m.Index+size], true
}

// ValueBytes flattens the words of logical value i into a contiguous byte
// slice (a copy, safe for the caller to retain).
func (s *Stack) ValueBytes(i int) ([]byte, bool) {
	words, ok := s.ValueWords(i)
	if !ok {
		return nil, false
	}
	out := make([]byte, 0, len(words)*vmtype.WordSize)
	for _, w := range words {
		out = append(out, w[:]...)
	}
	return out, true
}

// SetValueBytes overwrites the words of logical value i in place. b must
// be exactly len(words)*WordSize bytes.
func (s *Stack) SetValueBytes(i int, b []byte) bool {
	words, ok := s.ValueWords(i)
	if !ok || len(b) != len(words)*vmtype.WordSize {
		return false
	}
	for wi := range words {
		copy(words[wi][:], b[wi*vmtype.WordSize:(wi+1)*vmtype.WordSize])
	}
	return true
}

// WordAt returns a mutable pointer to the word at absolute word index wi.
func (s *Stack) WordAt(wi int) (*Data, bool) {
	if wi < 0 || wi >= len(s.Words) {
		return nil, false
	}
	return &s.Words[wi], true
}

// BytesAt flattens count words starting at absolute word index wi into a
// contiguous byte copy. Used to read values that have no metadata entry
// of their own (array elements addressed through a transient location).
func (s *Stack) BytesAt(wi, count int) ([]byte, bool) {
	if wi < 0 || count < 0 || wi+count > len(s.Words) {
		return nil, false
	}
	out := make([]byte, 0, count*vmtype.WordSize)
	for _, w := range s.Words[wi : wi+count] {
		out = append(out, w[:]...)
	}
	return out, true
}

// SetBytesAt overwrites count words starting at absolute word index wi. b
// must be exactly count*WordSize bytes.
func (s *Stack) SetBytesAt(wi, count int, b []byte) bool {
	if wi < 0 || count < 0 || wi+count > len(s.Words) || len(b) != count*vmtype.WordSize {
		return false
	}
	for i := 0; i < count; i++ {
		copy(s.Words[wi+i][:], b[i*vmtype.WordSize:(i+1)*vmtype.WordSize])
	}
	return true
}

// TruncateTo drops every logical value and its words at or above metaLen
// logical entries. It is the primitive EndScope pops onto: compute
// metaLen by scanning backward while Meta[i].Cycle >= poppedCycle.
func (s *Stack) TruncateTo(metaLen int) {
	if metaLen >= len(s.Meta) {
		return
	}
	wordLen := s.Meta[metaLen].Index
	s.Meta = s.Meta[:metaLen]
	s.Words = s.Words[:wordLen]
}

// CheckIndexInvariant verifies spec.md §3's S-index invariant: each
// metadata entry's Index plus its type's size equals the next entry's
// Index (or the total word length, for the last entry). Exposed for
// tests; the interpreter never calls this on the hot path.
func (s *Stack) CheckIndexInvariant() bool {
	for i, m := range s.Meta {
		end := m.Index + m.Type.Size()
		if i+1 < len(s.Meta) {
			if end != s.Meta[i+1].Index {
				return false
			}
		} else if end != len(s.Words) {
			return false
		}
	}
	return true
}
