// Package lock implements the per-value lock state machine that backs
// the VM's runtime borrow checker: shared (Ref) vs exclusive (Mut) locks,
// full vs partial, each stamped with the cycle it was taken in.
package lock

import (
	"errors"

	"github.com/vantage-systems/bytevm/internal/vmtype"
)

// Error values for every transition spec.md §4.9's table forbids. Wrapped
// by the caller into a location-bearing error at the Vm layer.
var (
	ErrMutButRefLocked        = errors.New("lock: cannot take a mut lock, value is already locked as ref")
	ErrMutButMutLocked        = errors.New("lock: cannot take a mut lock, value is already locked as mut")
	ErrRefButMutLocked        = errors.New("lock: cannot take a ref lock, value is already locked as mut")
	ErrRefPartialButRefFull   = errors.New("lock: cannot take a partial ref lock, value already has a full ref lock")
)

// state discriminates the three lock states a value may be in.
type state uint8

const (
	stateNone state = iota
	stateRef
	stateMut
)

// Data is the cycle+partial payload of a Ref or Mut lock.
type Data struct {
	Cycle   int
	Partial bool
}

// Value is the lock held on one stack (or transient) value: None, or a
// Ref/Mut lock carrying the cycle it was acquired in and whether it is
// partial (composable) or full (exclusive of further locks).
type Value struct {
	state state
	data  Data
}

// None is the zero value: no lock held.
var None = Value{}

// IsLocked reports whether any lock (Ref or Mut) is currently held.
func (v Value) IsLocked() bool { return v.state != stateNone }

// Cycle returns the cycle the lock was taken in, and whether a lock is
// held at all.
func (v Value) Cycle() (int, bool) {
	if v.state == stateNone {
		return 0, false
	}
	return v.data.Cycle, true
}

// IsMut reports whether the held lock (if any) is Mut.
func (v Value) IsMut() bool { return v.state == stateMut }

// IsRef reports whether the held lock (if any) is Ref.
func (v Value) IsRef() bool { return v.state == stateRef }

// CanBeRefLocked reports whether a further Ref lock may be added without
// inspecting cycles (None or existing Ref can; Mut cannot).
func (v Value) CanBeRefLocked() bool { return v.state != stateMut }

// CanBeMutLocked reports whether a Mut lock may be added (only from None).
func (v Value) CanBeMutLocked() bool { return v.state == stateNone }

// CanBeLocked reports whether kind may be newly acquired given the
// current state, without mutating v.
func (v Value) CanBeLocked(kind vmtype.RefKind) bool {
	if kind == vmtype.Mut {
		return v.CanBeMutLocked()
	}
	return v.CanBeRefLocked()
}

// AddLock attempts to acquire a full lock of the given kind at
// currentCycle. See spec.md §4.9's transition table.
func (v *Value) AddLock(currentCycle int, kind vmtype.RefKind) error {
	if kind == vmtype.Mut {
		return v.addMut(currentCycle, false)
	}
	return v.addRef(currentCycle, false)
}

// AddLockPartial attempts to acquire a partial lock of the given kind.
// Partial locks of the same kind compose; partial Mut is single-writer.
func (v *Value) AddLockPartial(currentCycle int, kind vmtype.RefKind) error {
	if kind == vmtype.Mut {
		return v.addMut(currentCycle, true)
	}
	return v.addRef(currentCycle, true)
}

func (v *Value) addMut(currentCycle int, partial bool) error {
	switch v.state {
	case stateNone:
		v.state = stateMut
		v.data = Data{Cycle: currentCycle, Partial: partial}
		return nil
	case stateMut:
		if partial && v.data.Partial {
			return nil
		}
		return ErrMutButMutLocked
	case stateRef:
		return ErrMutButRefLocked
	default:
		panic("lock: invalid state")
	}
}

func (v *Value) addRef(currentCycle int, partial bool) error {
	switch v.state {
	case stateNone:
		v.state = stateRef
		v.data = Data{Cycle: currentCycle, Partial: partial}
		return nil
	case stateRef:
		if !partial {
			// Idempotent: the source already permits multiple shared
			// full-ref holders to compose into one Ref state.
			return nil
		}
		if v.data.Partial {
			return nil
		}
		return ErrRefPartialButRefFull
	case stateMut:
		return ErrRefButMutLocked
	default:
		panic("lock: invalid state")
	}
}

// Release clears the lock iff it was taken at exactly currentCycle — a
// lock belonging to an enclosing, still-live scope survives (spec.md
// §4.9: "preserved... belongs to an enclosing scope that still outlives
// us").
func (v *Value) Release(currentCycle int) {
	if v.state != stateNone && v.data.Cycle == currentCycle {
		*v = None
	}
}

// DerefKind marks a stack value as the dereferenced copy of a reference,
// preventing it from itself being re-borrowed by TakeRef/TakeMut.
type DerefKind uint8

const (
	DerefNone DerefKind = iota
	DerefRef
	DerefMut
)

// FromRefKind converts a reference kind into the matching deref marker.
func FromRefKind(k vmtype.RefKind) DerefKind {
	if k == vmtype.Mut {
		return DerefMut
	}
	return DerefRef
}
