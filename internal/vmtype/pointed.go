package vmtype

import "fmt"

// RefKind distinguishes a shared, Copy reference from an exclusive,
// non-Copy one.
type RefKind uint8

const (
	// Ref is a shared reference: Copy, many may coexist.
	Ref RefKind = iota
	// Mut is an exclusive reference: non-Copy, at most one may exist.
	Mut
)

func (k RefKind) String() string {
	if k == Mut {
		return "&mut"
	}
	return "&"
}

// RefLocation says how the pointer word of a reference is interpreted
// when resolving its referent.
type RefLocation uint8

const (
	// Stack: the pointer word is the referent's StackRef (its index into
	// the stack's per-value metadata), not a word index.
	Stack RefLocation = iota
	// Heap: the pointer word is a heap address. The heap allocator is out
	// of scope for this core; this tag exists so the type grammar is
	// complete and the checker can reject it explicitly rather than
	// silently misinterpreting the pointer word.
	Heap
	// TransientOnStack: the pointer word is a key into the VM's
	// transient-reference table, itself rooted on the stack.
	TransientOnStack
	// TransientOnHeap: as TransientOnStack, but rooted on the heap.
	TransientOnHeap
)

func (l RefLocation) String() string {
	switch l {
	case Stack:
		return "stack"
	case Heap:
		return "heap"
	case TransientOnStack:
		return "transient_on_stack"
	case TransientOnHeap:
		return "transient_on_heap"
	default:
		return "invalid_location"
	}
}

// Kind discriminates the three composite (pointed) type shapes.
type Kind uint8

const (
	KindSArr Kind = iota
	KindRef
	KindBoxed
)

// SArrType is a fixed-length, statically-sized array type.
type SArrType struct {
	Len     int
	Element Type
}

func (a SArrType) Size() int { return a.Len * a.Element.Size() }

// RefType is a reference to some other VmType, located somewhere the
// RefLocation can reach.
type RefType struct {
	Kind      RefKind
	PointsTo  RefLocation
	Pointee   Type
}

func (RefType) Size() int { return 1 }

// IsCopy reports whether the reference itself is Copy: shared references
// are, exclusive (Mut) references are not.
func (r RefType) IsCopy() bool { return r.Kind == Ref }

// BoxedType is a heap-boxed value. The heap allocator is out of scope for
// this core (see spec.md §1); the type tag and its size/copy contract are
// kept, but no opcode constructs one and internal/typecheck has no
// Boxed-specific step (see SPEC_FULL.md §C.2).
type BoxedType struct {
	Inner Type
}

func (BoxedType) Size() int { return 1 }

// Pointed is the composite-type payload of a Type whose Kind is not a
// primitive.
type Pointed struct {
	Kind  Kind
	SArr  SArrType
	Ref   RefType
	Boxed BoxedType
}

func (p Pointed) Size() int {
	switch p.Kind {
	case KindSArr:
		return p.SArr.Size()
	case KindRef:
		return p.Ref.Size()
	case KindBoxed:
		return p.Boxed.Size()
	default:
		panic("vmtype: invalid pointed kind")
	}
}

func (p Pointed) String() string {
	switch p.Kind {
	case KindSArr:
		return fmt.Sprintf("[%s;%d]", p.SArr.Element, p.SArr.Len)
	case KindRef:
		return fmt.Sprintf("%s%s", p.Ref.Kind, p.Ref.Pointee)
	case KindBoxed:
		return fmt.Sprintf("box(%s)", p.Boxed.Inner)
	default:
		return "invalid_pointed"
	}
}

// Type is a VmType: either a bare Primitive or a boxed Pointed composite.
type Type struct {
	IsPointed bool
	Primitive Primitive
	Pointed   Pointed
}

// P builds a primitive Type.
func P(p Primitive) Type { return Type{Primitive: p} }

// Arr builds a statically-sized array Type.
func Arr(elem Type, length int) Type {
	return Type{IsPointed: true, Pointed: Pointed{Kind: KindSArr, SArr: SArrType{Len: length, Element: elem}}}
}

// MakeRef builds a reference Type of the given kind/location to pointee.
func MakeRef(pointee Type, kind RefKind, loc RefLocation) Type {
	return Type{IsPointed: true, Pointed: Pointed{Kind: KindRef, Ref: RefType{Kind: kind, PointsTo: loc, Pointee: pointee}}}
}

// Box builds a boxed Type.
func Box(inner Type) Type {
	return Type{IsPointed: true, Pointed: Pointed{Kind: KindBoxed, Boxed: BoxedType{Inner: inner}}}
}

// IsPrimitive reports whether t is a bare primitive type.
func (t Type) IsPrimitive() bool { return !t.IsPointed }

// AsPrimitive returns the primitive type and true if t is primitive.
func (t Type) AsPrimitive() (Primitive, bool) {
	if t.IsPointed {
		return 0, false
	}
	return t.Primitive, true
}

// AsRef returns the reference payload and true if t is a reference type.
func (t Type) AsRef() (RefType, bool) {
	if t.IsPointed && t.Pointed.Kind == KindRef {
		return t.Pointed.Ref, true
	}
	return RefType{}, false
}

// AsSArr returns the array payload and true if t is a static-array type.
func (t Type) AsSArr() (SArrType, bool) {
	if t.IsPointed && t.Pointed.Kind == KindSArr {
		return t.Pointed.SArr, true
	}
	return SArrType{}, false
}

// AsBoxed returns the boxed payload and true if t is a boxed type.
func (t Type) AsBoxed() (BoxedType, bool) {
	if t.IsPointed && t.Pointed.Kind == KindBoxed {
		return t.Pointed.Boxed, true
	}
	return BoxedType{}, false
}

// Size returns the size, in stack words, of t.
func (t Type) Size() int {
	if t.IsPointed {
		return t.Pointed.Size()
	}
	return t.Primitive.Size()
}

// IsCopy reports whether a value of type t may be bitwise-duplicated
// without invalidating the source.
func (t Type) IsCopy() bool {
	if !t.IsPointed {
		return t.Primitive.IsCopy()
	}
	switch t.Pointed.Kind {
	case KindRef:
		return t.Pointed.Ref.IsCopy()
	default:
		// Arrays inherit copy-ness from their element.
		if t.Pointed.Kind == KindSArr {
			return t.Pointed.SArr.Element.IsCopy()
		}
		return false
	}
}

// Equal reports structural equality between two VmTypes.
func (t Type) Equal(other Type) bool {
	if t.IsPointed != other.IsPointed {
		return false
	}
	if !t.IsPointed {
		return t.Primitive == other.Primitive
	}
	if t.Pointed.Kind != other.Pointed.Kind {
		return false
	}
	switch t.Pointed.Kind {
	case KindSArr:
		return t.Pointed.SArr.Len == other.Pointed.SArr.Len &&
			t.Pointed.SArr.Element.Equal(other.Pointed.SArr.Element)
	case KindRef:
		return t.Pointed.Ref.Kind == other.Pointed.Ref.Kind &&
			t.Pointed.Ref.PointsTo == other.Pointed.Ref.PointsTo &&
			t.Pointed.Ref.Pointee.Equal(other.Pointed.Ref.Pointee)
	case KindBoxed:
		return t.Pointed.Boxed.Inner.Equal(other.Pointed.Boxed.Inner)
	default:
		return false
	}
}

func (t Type) String() string {
	if t.IsPointed {
		return t.Pointed.String()
	}
	return t.Primitive.String()
}
