// Package vm is the orchestration layer: it owns the stack, the scope
// cycle counter, the transient-reference table, and the dereference
// stack, and exposes the primitives every interpreter handler is built
// from (push/pop, scope enter/exit, borrow acquisition, dereference
// commit). It does not decode bytecode or dispatch opcodes — that is
// internal/interpreter's job, one layer up.
package vm

import (
	"github.com/vantage-systems/bytevm/internal/lock"
	"github.com/vantage-systems/bytevm/internal/pool"
	"github.com/vantage-systems/bytevm/internal/refs"
	"github.com/vantage-systems/bytevm/internal/stack"
	"github.com/vantage-systems/bytevm/internal/trace"
	"github.com/vantage-systems/bytevm/internal/vmtype"
)

// Vm holds all of the machine's runtime state. Bytecode and its cursor
// live one layer up, in internal/interpreter, since a Vm has no opinion
// about where its instructions come from.
type Vm struct {
	Stack     *stack.Stack
	Pool      *pool.ConstantPool
	Cycle     int
	Transient map[refs.Location]*refs.TransientMeta
	Derefs    []refs.DerefEntry

	// Trace is the optional diagnostics sink TraceStackValue writes to.
	// A nil Trace makes TraceStackValue a no-op rather than an error, so
	// tracing is opt-in per run.
	Trace *trace.Tracer
}

// Snapshot builds a trace.Snapshot of the value at ref, independent of
// whether a Trace sink is attached.
func (vm *Vm) Snapshot(ref refs.StackRef) (trace.Snapshot, error) {
	m, err := vm.Meta(ref)
	if err != nil {
		return trace.Snapshot{}, err
	}
	b, _ := vm.Stack.ValueBytes(int(ref))
	return trace.Snapshot{
		Index:    int(ref),
		Type:     m.Type.String(),
		Cycle:    m.Cycle,
		Bytes:    b,
		Locked:   m.Lock.IsLocked(),
		WasMoved: m.WasMoved,
	}, nil
}

// New returns a freshly initialized Vm over the given constant pool, one
// scope cycle deep (cycle 1 is the root scope and is never ended).
func New(p *pool.ConstantPool) *Vm {
	return &Vm{
		Stack:     stack.New(),
		Pool:      p,
		Cycle:     1,
		Transient: make(map[refs.Location]*refs.TransientMeta),
	}
}

// Meta returns the metadata entry for ref, or BadVmStateError if ref is
// out of range.
func (vm *Vm) Meta(ref refs.StackRef) (*stack.Meta, error) {
	m, ok := vm.Stack.MetaAt(int(ref))
	if !ok {
		return nil, &BadVmStateError{Msg: "stack ref " + ref.String() + " out of range"}
	}
	return m, nil
}

// ValueType returns the type of the value at ref.
func (vm *Vm) ValueType(ref refs.StackRef) (vmtype.Type, error) {
	m, err := vm.Meta(ref)
	if err != nil {
		return vmtype.Type{}, err
	}
	return m.Type, nil
}

// ReadValue returns the raw bytes and type of the value at ref, failing
// if it has already been moved out of.
func (vm *Vm) ReadValue(ref refs.StackRef) ([]byte, vmtype.Type, error) {
	m, err := vm.Meta(ref)
	if err != nil {
		return nil, vmtype.Type{}, err
	}
	if m.WasMoved {
		return nil, vmtype.Type{}, &UseOfMovedValueError{Ref: ref}
	}
	b, _ := vm.Stack.ValueBytes(int(ref))
	return b, m.Type, nil
}

// WriteValue overwrites the bytes of the value at ref in place. The
// caller is responsible for having already type-checked that b's length
// matches the destination's size.
func (vm *Vm) WriteValue(ref refs.StackRef, b []byte) error {
	if !vm.Stack.SetValueBytes(int(ref), b) {
		return &BadVmStateError{Msg: "WriteValue: size mismatch or out-of-range ref " + ref.String()}
	}
	return nil
}

// Push appends a new value of type t at the current cycle, built from b
// (zero-padded/chunked into stack words).
func (vm *Vm) Push(t vmtype.Type, b []byte) {
	vm.Stack.Push(t, vm.Cycle, wordsFromBytes(b))
}

// PushZero appends a new zero-valued value of type t at the current
// cycle.
func (vm *Vm) PushZero(t vmtype.Type) {
	vm.Stack.PushZero(t, vm.Cycle)
}

// Len returns the number of logical values currently on the stack.
func (vm *Vm) Len() int { return vm.Stack.Len() }

// StartScope enters a new, nested scope cycle.
func (vm *Vm) StartScope() {
	vm.Cycle++
}

// EndScope closes the current scope cycle: every value created during it
// is popped, every lock acquired during it (on values that outlive it)
// is released, and the cycle counter is decremented. It is an error to
// end the root scope (cycle 1).
func (vm *Vm) EndScope() error {
	if vm.Cycle <= 1 {
		return &BadVmStateError{Msg: "cannot end the root scope"}
	}
	closing := vm.Cycle

	metaLen := len(vm.Stack.Meta)
	for metaLen > 0 && vm.Stack.Meta[metaLen-1].Cycle >= closing {
		metaLen--
	}
	vm.Stack.TruncateTo(metaLen)

	for i := range vm.Stack.Meta[:metaLen] {
		vm.Stack.Meta[i].Lock.Release(closing)
	}
	for k, tm := range vm.Transient {
		if !tm.RootObject.IsTransient && tm.RootObject.StackIndex >= metaLen {
			delete(vm.Transient, k)
		}
	}

	vm.Cycle--
	return nil
}

// takeLock is the shared body of TakeRef/TakeMut: validate ref is
// borrowable at all (not a dereferenced temporary, not from the current
// cycle), then attempt the lock transition.
func (vm *Vm) takeLock(ref refs.StackRef, kind vmtype.RefKind) (vmtype.Type, error) {
	m, err := vm.Meta(ref)
	if err != nil {
		return vmtype.Type{}, err
	}
	if m.Deref != lock.DerefNone {
		return vmtype.Type{}, &RefToTempError{Kind: kind, Ref: ref}
	}
	if vm.Cycle <= m.Cycle {
		return vmtype.Type{}, &SameCycleRefError{Kind: kind, Ref: ref}
	}
	if err := m.Lock.AddLock(vm.Cycle, kind); err != nil {
		return vmtype.Type{}, &LockViolationError{Err: err, Location: refs.StackLocation(int(ref))}
	}
	return m.Type, nil
}

// TakeRef acquires a shared lock on ref and pushes a Ref value pointing
// at it.
func (vm *Vm) TakeRef(ref refs.StackRef) error {
	pointee, err := vm.takeLock(ref, vmtype.Ref)
	if err != nil {
		return err
	}
	vm.Stack.Push(vmtype.MakeRef(pointee, vmtype.Ref, vmtype.Stack), vm.Cycle, []stack.Data{encodeWordUint(uint64(ref))})
	return nil
}

// TakeMut acquires an exclusive lock on ref and pushes a Mut value
// pointing at it.
func (vm *Vm) TakeMut(ref refs.StackRef) error {
	pointee, err := vm.takeLock(ref, vmtype.Mut)
	if err != nil {
		return err
	}
	vm.Stack.Push(vmtype.MakeRef(pointee, vmtype.Mut, vmtype.Stack), vm.Cycle, []stack.Data{encodeWordUint(uint64(ref))})
	return nil
}

// PushTransientRef pushes a reference of the given kind to a transient
// location (e.g. an array element) — the TransientOnStack counterpart of
// TakeRef/TakeMut, which only handle references to owning stack slots.
// The caller is responsible for having already acquired the appropriate
// lock on loc's transient metadata.
func (vm *Vm) PushTransientRef(loc refs.Location, pointee vmtype.Type, kind vmtype.RefKind) {
	vm.Stack.Push(vmtype.MakeRef(pointee, kind, vmtype.TransientOnStack), vm.Cycle, []stack.Data{encodeWordUint(uint64(loc.Index))})
}

// Move copies the bytes of op into result and marks op as moved,
// forbidding any further read of it.
func (vm *Vm) Move(result, op refs.StackRef) error {
	b, _, err := vm.ReadValue(op)
	if err != nil {
		return err
	}
	if err := vm.WriteValue(result, b); err != nil {
		return err
	}
	opMeta, _ := vm.Meta(op)
	opMeta.WasMoved = true
	return nil
}

// RegisterTransient records the bookkeeping for a reference whose
// referent has no metadata entry of its own (an array element).
func (vm *Vm) RegisterTransient(loc refs.Location, meta refs.TransientMeta) {
	vm.Transient[loc] = &meta
}

// TransientAt looks up a previously registered transient location.
func (vm *Vm) TransientAt(loc refs.Location) (*refs.TransientMeta, bool) {
	tm, ok := vm.Transient[loc]
	return tm, ok
}

// EnsureTransient returns the existing bookkeeping entry for loc, or
// registers and returns a fresh one built from def if none exists yet.
func (vm *Vm) EnsureTransient(loc refs.Location, def refs.TransientMeta) *refs.TransientMeta {
	if tm, ok := vm.Transient[loc]; ok {
		return tm
	}
	vm.RegisterTransient(loc, def)
	return vm.Transient[loc]
}

// ArrayElementLocation validates that arrRef names a static array and
// idx is in bounds, and returns the transient stack location and type of
// that element.
func (vm *Vm) ArrayElementLocation(arrRef refs.StackRef, idx int) (refs.Location, vmtype.Type, error) {
	m, err := vm.Meta(arrRef)
	if err != nil {
		return refs.Location{}, vmtype.Type{}, err
	}
	at, ok := m.Type.AsSArr()
	if !ok {
		return refs.Location{}, vmtype.Type{}, &BadVmStateError{Msg: "ArrayElementLocation: " + arrRef.String() + " is not an array"}
	}
	if idx < 0 || idx >= at.Len {
		return refs.Location{}, vmtype.Type{}, &BadVmStateError{Msg: "ArrayElementLocation: index out of bounds"}
	}
	elemSize := at.Element.Size()
	wordIdx := m.Index + idx*elemSize
	return refs.StackLocation(wordIdx), at.Element, nil
}

// StartDeref resolves ref's pointer, pushes a fresh copy of its referent
// marked as a dereference temporary, and — for a Mut reference — locks
// ref itself so it cannot be re-borrowed until EndDeref. It returns the
// pushed value's type and the reference kind that produced it.
func (vm *Vm) StartDeref(ref refs.StackRef) (vmtype.Type, vmtype.RefKind, error) {
	t, err := vm.ValueType(ref)
	if err != nil {
		return vmtype.Type{}, 0, err
	}
	rt, ok := t.AsRef()
	if !ok {
		return vmtype.Type{}, 0, &BadVmStateError{Msg: "StartDeref: " + ref.String() + " is not a reference"}
	}

	refMeta, _ := vm.Meta(ref)
	if rt.Kind == vmtype.Mut {
		if err := refMeta.Lock.AddLock(vm.Cycle, vmtype.Mut); err != nil {
			return vmtype.Type{}, 0, &LockViolationError{Err: err, Location: refs.StackLocation(int(ref))}
		}
	}

	words, _ := vm.Stack.ValueWords(int(ref))
	ptr := int(decodeWordUint(words[0]))

	var valueBytes []byte
	var valueType vmtype.Type
	switch rt.PointsTo {
	case vmtype.Stack:
		pm, ok := vm.Stack.MetaAt(ptr)
		if !ok {
			return vmtype.Type{}, 0, &BadVmStateError{Msg: "StartDeref: dangling stack pointer"}
		}
		valueType = pm.Type
		valueBytes, _ = vm.Stack.ValueBytes(ptr)
	case vmtype.TransientOnStack:
		loc := refs.StackLocation(ptr)
		tm, ok := vm.Transient[loc]
		if !ok {
			return vmtype.Type{}, 0, &BadVmStateError{Msg: "StartDeref: missing transient metadata at " + loc.String()}
		}
		valueType = tm.ValueType
		valueBytes, ok = vm.Stack.BytesAt(ptr, valueType.Size())
		if !ok {
			return vmtype.Type{}, 0, &BadVmStateError{Msg: "StartDeref: transient location out of range"}
		}
	default:
		return vmtype.Type{}, 0, &BadVmStateError{Msg: "StartDeref: unsupported reference location " + rt.PointsTo.String()}
	}

	vm.Stack.Push(valueType, vm.Cycle, wordsFromBytes(valueBytes))
	newRef := refs.StackRef(vm.Stack.Len() - 1)
	newMeta, _ := vm.Stack.MetaAt(int(newRef))
	newMeta.Deref = lock.FromRefKind(rt.Kind)

	vm.Derefs = append(vm.Derefs, refs.DerefEntry{Ref: ref, Deref: newRef})
	return valueType, rt.Kind, nil
}

// ReferentLock resolves ref's pointer (ref must hold a value of type rt,
// a RefType) and reports the lock currently held on whatever it points
// to, without pushing a dereference temporary or acquiring anything
// itself — used by Mv to check whether the referent of a moved
// reference still carries an outstanding lock.
func (vm *Vm) ReferentLock(ref refs.StackRef, rt vmtype.RefType) (int, bool, error) {
	words, ok := vm.Stack.ValueWords(int(ref))
	if !ok {
		return 0, false, &BadVmStateError{Msg: "ReferentLock: " + ref.String() + " out of range"}
	}
	ptr := int(decodeWordUint(words[0]))

	switch rt.PointsTo {
	case vmtype.Stack:
		pm, ok := vm.Stack.MetaAt(ptr)
		if !ok {
			return 0, false, &BadVmStateError{Msg: "ReferentLock: dangling stack pointer"}
		}
		cycle, held := pm.Lock.Cycle()
		return cycle, held, nil
	case vmtype.TransientOnStack:
		loc := refs.StackLocation(ptr)
		tm, ok := vm.Transient[loc]
		if !ok {
			return 0, false, nil
		}
		cycle, held := tm.Lock.Cycle()
		return cycle, held, nil
	default:
		return 0, false, &BadVmStateError{Msg: "ReferentLock: unsupported reference location " + rt.PointsTo.String()}
	}
}

// EndDeref pops the dereference temporary pushed by the matching
// StartDeref, committing its (possibly mutated) bytes back through the
// reference if it was Mut, and releases the lock StartDeref took on the
// reference itself.
func (vm *Vm) EndDeref() error {
	if len(vm.Derefs) == 0 {
		return &BadVmStateError{Msg: "EndDeref: dereference stack is empty"}
	}
	top := vm.Derefs[len(vm.Derefs)-1]

	if int(top.Deref) != vm.Stack.Len()-1 {
		return &BadVmStateError{Msg: "EndDeref: dereference temporary is not on top of the stack"}
	}

	derefMeta, err := vm.Meta(top.Deref)
	if err != nil {
		return err
	}
	refMeta, err := vm.Meta(top.Ref)
	if err != nil {
		return err
	}
	rt, ok := refMeta.Type.AsRef()
	if !ok {
		return &BadVmStateError{Msg: "EndDeref: " + top.Ref.String() + " is no longer a reference"}
	}

	if derefMeta.Deref == lock.DerefMut {
		b, _ := vm.Stack.ValueBytes(int(top.Deref))
		words, _ := vm.Stack.ValueWords(int(top.Ref))
		ptr := int(decodeWordUint(words[0]))
		switch rt.PointsTo {
		case vmtype.Stack:
			if !vm.Stack.SetValueBytes(ptr, b) {
				return &BadVmStateError{Msg: "EndDeref: failed to commit stack mutation"}
			}
		case vmtype.TransientOnStack:
			if !vm.Stack.SetBytesAt(ptr, derefMeta.Type.Size(), b) {
				return &BadVmStateError{Msg: "EndDeref: failed to commit transient mutation"}
			}
		}
	}

	if rt.Kind == vmtype.Mut {
		refMeta.Lock.Release(vm.Cycle)
	}

	vm.Derefs = vm.Derefs[:len(vm.Derefs)-1]
	vm.Stack.TruncateTo(int(top.Deref))
	return nil
}
