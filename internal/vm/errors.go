package vm

import (
	"fmt"

	"github.com/vantage-systems/bytevm/internal/refs"
	"github.com/vantage-systems/bytevm/internal/typecheck"
	"github.com/vantage-systems/bytevm/internal/vmtype"
)

// Error is the interface every orchestration-layer failure implements. A
// concrete Error is always wrapped by the interpreter into a
// ContextError carrying the instruction offset and opcode before it
// reaches a caller.
type Error interface {
	error
	vmError()
}

// base gives every concrete error type its marker method for free.
type base struct{}

func (base) vmError() {}

// InvalidBytecodeError reports a decode-time failure: an operand ran off
// the end of the code buffer, or an opcode byte has no handler.
type InvalidBytecodeError struct {
	base
	Msg string
}

func (e *InvalidBytecodeError) Error() string { return "invalid bytecode: " + e.Msg }

// BadVmStateError reports a VM state the requested operation cannot run
// against: a stack ref out of range, ending the root scope, an array
// index out of bounds, or a dangling or unsupported reference. Bytecode
// can trigger these.
type BadVmStateError struct {
	base
	Msg string
}

func (e *BadVmStateError) Error() string { return "bad vm state: " + e.Msg }

// ConstantPoolError reports an out-of-range or wrong-kind constant pool
// lookup.
type ConstantPoolError struct {
	base
	Ref refs.PoolRef
	Msg string
}

func (e *ConstantPoolError) Error() string {
	return fmt.Sprintf("constant pool error at %s: %s", e.Ref, e.Msg)
}

// TypeCheckError wraps one or more accumulated typecheck.TypeError values
// reported by a single instruction's type-checking pass.
type TypeCheckError struct {
	base
	Errors []typecheck.TypeError
}

func (e *TypeCheckError) Error() string {
	if len(e.Errors) == 1 {
		return "type error: " + e.Errors[0].Error()
	}
	return fmt.Sprintf("%d type errors, first: %s", len(e.Errors), e.Errors[0].Error())
}

// LockViolationError reports a borrow-checker rejection: attempting to
// acquire a lock in a way the transition table forbids.
type LockViolationError struct {
	base
	Err      error
	Location refs.Location
}

func (e *LockViolationError) Error() string {
	return fmt.Sprintf("lock violation at %s: %s", e.Location, e.Err)
}

func (e *LockViolationError) Unwrap() error { return e.Err }

// SameCycleRefError reports TakeRef/TakeMut targeting a value created in
// the current (not yet closed) scope cycle.
type SameCycleRefError struct {
	base
	Kind vmtype.RefKind
	Ref  refs.StackRef
}

func (e *SameCycleRefError) Error() string {
	return fmt.Sprintf("cannot take a %s to %s: value was created in the current cycle", e.Kind, e.Ref)
}

// RefToTempError reports TakeRef/TakeMut targeting a dereferenced
// temporary, which has no stable location to borrow.
type RefToTempError struct {
	base
	Kind vmtype.RefKind
	Ref  refs.StackRef
}

func (e *RefToTempError) Error() string {
	return fmt.Sprintf("cannot take %s of %s: value is a dereferenced temporary", e.Kind, e.Ref)
}

// UseOfMovedValueError reports any read of a stack value after Mv (or an
// equivalent move) has consumed it.
type UseOfMovedValueError struct {
	base
	Ref refs.StackRef
}

func (e *UseOfMovedValueError) Error() string {
	return fmt.Sprintf("use of moved value %s", e.Ref)
}

// BiOpError reports an ALU binary-opcode failure beyond type checking:
// integer overflow, division by zero, an out-of-range shift amount, or
// an ordering comparison with a NaN operand.
type BiOpError struct {
	base
	Msg string
}

func (e *BiOpError) Error() string { return "binary operator error: " + e.Msg }

// UOpError is the unary-opcode counterpart of BiOpError.
type UOpError struct {
	base
	Msg string
}

func (e *UOpError) Error() string { return "unary operator error: " + e.Msg }

// ContextError wraps any Error with the instruction pointer offset and
// opcode byte active when it was raised, so a caller can locate the
// failing instruction without every handler threading that context
// through by hand.
type ContextError struct {
	Err    Error
	Offset int
	Opcode byte
}

func (e *ContextError) Error() string {
	return fmt.Sprintf("at offset %d (opcode 0x%02x): %s", e.Offset, e.Opcode, e.Err)
}

func (e *ContextError) Unwrap() error { return e.Err }
