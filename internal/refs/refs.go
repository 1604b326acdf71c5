// Package refs defines the index types used to address bytecode operands
// (StackRef, PoolRef), the runtime locations a reference can resolve to,
// and the bookkeeping for transient (synthetic) references that don't
// have their own stack metadata entry.
package refs

import (
	"fmt"

	"github.com/vantage-systems/bytevm/internal/lock"
	"github.com/vantage-systems/bytevm/internal/vmtype"
)

// StackRef names a logical value by its index into stack metadata.
type StackRef int

func (r StackRef) String() string { return fmt.Sprintf("s(%d)", int(r)) }

// PoolRef names a constant by its index into a module's constant pool.
type PoolRef int

func (r PoolRef) String() string { return fmt.Sprintf("p(%d)", int(r)) }

// ThreeStackRefs is the {result, op1, op2} operand triple most ALU/
// comparison opcodes decode.
type ThreeStackRefs struct {
	Result, Op1, Op2 StackRef
}

// TwoStackRefs is the {result, op} operand pair unary/move opcodes
// decode.
type TwoStackRefs struct {
	Result, Op StackRef
}

// Location names where a value — owning or transient — physically lives.
type Location struct {
	OnHeap bool
	Index  int // word index on stack, or opaque heap key
}

func StackLocation(index int) Location { return Location{Index: index} }
func HeapLocation(index int) Location  { return Location{OnHeap: true, Index: index} }

func (l Location) String() string {
	if l.OnHeap {
		return fmt.Sprintf("heap(%d)", l.Index)
	}
	return fmt.Sprintf("stack(%d)", l.Index)
}

// Located is the result of resolving a reference's pointer word through
// its RefLocation discriminator: either a plain stack slot, or a
// transient location that must be looked up in the VM's transient table.
type Located struct {
	IsTransient bool
	StackIndex  int      // valid when !IsTransient
	Transient   Location // valid when IsTransient
}

func LocatedStack(index int) Located      { return Located{StackIndex: index} }
func LocatedTransient(l Location) Located { return Located{IsTransient: true, Transient: l} }

// TransientMeta is the bookkeeping kept for a reference whose referent is
// a synthetic location (e.g. an array element) rather than an owning
// stack slot of its own.
type TransientMeta struct {
	ValueType  vmtype.Type
	RootObject Located
	Lock       lock.Value
	WasMoved   bool
}

// DerefEntry is one frame of the dereference stack: the reference that
// was dereferenced, and the stack slot holding the pushed copy.
type DerefEntry struct {
	Ref   StackRef
	Deref StackRef
}
