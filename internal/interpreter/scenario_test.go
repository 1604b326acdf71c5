package interpreter

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vantage-systems/bytevm/internal/code"
	"github.com/vantage-systems/bytevm/internal/pool"
	"github.com/vantage-systems/bytevm/internal/refs"
	"github.com/vantage-systems/bytevm/internal/vm"
	"github.com/vantage-systems/bytevm/internal/vmtype"
)

// asm is a tiny instruction-stream builder for scenario tests: each
// method appends one opcode plus its word-sized operands, little-endian,
// mirroring the byte layout internal/code.Chunk decodes.
type asm struct{ bytes []byte }

func (a *asm) word(v int) *asm {
	b := make([]byte, vmtype.WordSize)
	binary.LittleEndian.PutUint64(b, uint64(v))
	a.bytes = append(a.bytes, b...)
	return a
}

func (a *asm) op(o Op, operands ...int) *asm {
	a.bytes = append(a.bytes, byte(o))
	for _, w := range operands {
		a.word(w)
	}
	return a
}

func (a *asm) code() *code.Code { return code.FromBytes(a.bytes) }

func u64Word(v uint64) [8]byte {
	var out [8]byte
	binary.LittleEndian.PutUint64(out[:], v)
	return out
}

func run(t *testing.T, c *code.Code, p *pool.ConstantPool) (*vm.Vm, error) {
	t.Helper()
	if p == nil {
		p = pool.New(nil)
	}
	v := vm.New(p)
	err := Interpret(code.FromCode(c), v)
	return v, err
}

// Scenario A — a fibonacci-style counting loop terminates cleanly once
// the counter exceeds the bound, with no lock or type error along the
// way.
func TestScenarioA_FibonacciUpToBound(t *testing.T) {
	cp := pool.New([]pool.Constant{
		pool.TypeConstant(vmtype.U64), // p(0): type tag
		pool.ValueConstant(u64Word(10)[:]), // p(1): bound
		pool.ValueConstant(u64Word(1)[:]),  // p(2): step
	})

	a := &asm{}
	// s(0), s(1): two accumulators, both zero.
	a.op(OpU64Ld0)
	a.op(OpU64Ld0)
	// s(2): counter, starts at 0.
	a.op(OpU64Ld0)
	// s(3): bound = 10.
	a.op(OpLdType, 0, 1)
	// s(4): step = 1.
	a.op(OpLdType, 0, 2)
	// s(5): loop condition scratch (Bool).
	a.op(OpLdFalse)

	loopStart := len(a.bytes)
	// No fibonacci shift (s(1) <- s(0)) for simplicity; this is a plain
	// counting loop: s(0) = s(0) + s(4), counter s(2) += step.
	a.op(OpUAdd, 0, 0, 4)
	a.op(OpUAdd, 2, 2, 4)
	a.op(OpLe, 5, 2, 3)
	a.op(OpJC, loopStart, 5)

	_, err := run(t, a.code(), cp)
	require.NoError(t, err)
}

// Scenario B — taking a Mut reference to a value born in the same,
// not-yet-closed cycle is rejected; wrapping the push in its own scope
// first makes it succeed.
func TestScenarioB_BorrowSameCycleRejected(t *testing.T) {
	a := &asm{}
	a.op(OpU64Ld0)
	a.op(OpTakeMut, 0)

	v, err := run(t, a.code(), nil)
	require.Error(t, err)
	var ctxErr *vm.ContextError
	require.ErrorAs(t, err, &ctxErr)
	var sameCycle *vm.SameCycleRefError
	require.ErrorAs(t, ctxErr.Err, &sameCycle)
	require.Equal(t, vmtype.Mut, sameCycle.Kind)
	require.Equal(t, refs.StackRef(0), sameCycle.Ref)
	_ = v
}

func TestScenarioB_BorrowInNestedScopeSucceeds(t *testing.T) {
	// Same s(0) birth as the rejected case, but TakeMut now runs one
	// cycle deeper than s(0)'s own cycle instead of sharing it.
	a := &asm{}
	a.op(OpU64Ld0)
	a.op(OpStartScope)
	a.op(OpTakeMut, 0)
	a.op(OpEndScope)

	_, err := run(t, a.code(), nil)
	require.NoError(t, err)
}

// Scenario C — a second TakeMut on a value already exclusively locked
// fails with a LockViolationError.
func TestScenarioC_AliasingMutRejected(t *testing.T) {
	a := &asm{}
	a.op(OpU64Ld0)
	a.op(OpStartScope)
	a.op(OpTakeMut, 0)
	a.op(OpTakeMut, 0)
	a.op(OpEndScope)

	_, err := run(t, a.code(), nil)
	require.Error(t, err)
	var ctxErr *vm.ContextError
	require.ErrorAs(t, err, &ctxErr)
	var lockErr *vm.LockViolationError
	require.ErrorAs(t, ctxErr.Err, &lockErr)
}

// Scenario D — mutating through a dereferenced Mut reference commits the
// new bytes back to the referent once EndDeref runs.
func TestScenarioD_DerefCommit(t *testing.T) {
	cp := pool.New([]pool.Constant{
		pool.TypeConstant(vmtype.U64),
		pool.ValueConstant(u64Word(10)[:]),
	})

	a := &asm{}
	a.op(OpU64Ld0)       // s(0): 0
	a.op(OpStartScope)   // cycle 2
	a.op(OpTakeMut, 0)   // s(1): Mut -> s(0)
	a.op(OpLdType, 0, 1) // s(2): 10
	a.op(OpStartDeref, 1) // s(3): deref temporary of s(1), = s(0)'s current value (0)
	a.op(OpUAdd, 3, 3, 2) // s(3) = s(3) + s(2) = 10
	a.op(OpEndDeref)
	a.op(OpEndScope)
	a.op(OpTraceStackValue, 0)

	v, err := run(t, a.code(), cp)
	require.NoError(t, err)
	b, typ, err := v.ReadValue(refs.StackRef(0))
	require.NoError(t, err)
	require.Equal(t, vmtype.P(vmtype.U64), typ)
	require.Equal(t, uint64(10), binary.LittleEndian.Uint64(b))
}

// Scenario E — mutating an array element through SArrMut's transient
// reference commits back into the array's backing words, leaving the
// array's own size/type unchanged.
func TestScenarioE_ArraySetViaTransientMut(t *testing.T) {
	cp := pool.New([]pool.Constant{
		pool.TypeConstant(vmtype.U64), // p(0): element type for SArrCreate0 / LdType
		pool.ValueConstant(u64Word(1)[:]), // p(1): value 1
	})

	a := &asm{}
	a.op(OpSArrCreate0, 10, 0) // s(0): [u64; 10], zeroed
	a.op(OpStartScope)         // cycle 2
	a.op(OpTakeMut, 0)         // s(1): Mut -> s(0)
	a.op(OpU64Ld0)             // s(2): index 0
	a.op(OpStartScope)         // cycle 3
	a.op(OpSArrMut, 1, 2)      // s(3): Mut -> element 0 of s(0), via s(1)/s(2)
	a.op(OpLdType, 0, 1)       // s(4): 1
	a.op(OpStartDeref, 3)      // s(5): deref temporary, current element value (0)
	a.op(OpUAdd, 5, 5, 4)      // s(5) = 0 + 1 = 1
	a.op(OpEndDeref)
	a.op(OpEndScope)
	a.op(OpEndScope)
	a.op(OpTraceStackValue, 0)

	v, err := run(t, a.code(), cp)
	require.NoError(t, err)

	m, err := v.Meta(refs.StackRef(0))
	require.NoError(t, err)
	at, ok := m.Type.AsSArr()
	require.True(t, ok)
	require.Equal(t, 10, at.Len)

	elemBytes, ok := v.Stack.BytesAt(m.Index, at.Element.Size())
	require.True(t, ok)
	require.Equal(t, uint64(1), binary.LittleEndian.Uint64(elemBytes))

	secondElem, ok := v.Stack.BytesAt(m.Index+at.Element.Size(), at.Element.Size())
	require.True(t, ok)
	require.Equal(t, uint64(0), binary.LittleEndian.Uint64(secondElem))
}

// Scenario F — comparing NaN with Lt fails with a BiOpError rather than
// silently reporting false (or true).
func TestScenarioF_NaNOrderingErrors(t *testing.T) {
	nan := u64Word(0x7ff8000000000000) // a quiet f64 NaN bit pattern
	one := u64Word(0x3ff0000000000000) // f64 1.0

	cp := pool.New([]pool.Constant{
		pool.TypeConstant(vmtype.F64),
		pool.ValueConstant(nan[:]),
		pool.ValueConstant(one[:]),
	})

	a := &asm{}
	a.op(OpLdType, 0, 1) // s(0): NaN
	a.op(OpLdType, 0, 2) // s(1): 1.0
	a.op(OpLdFalse)      // s(2): Bool scratch for the result
	a.op(OpLt, 2, 0, 1)

	_, err := run(t, a.code(), cp)
	require.Error(t, err)
	var ctxErr *vm.ContextError
	require.ErrorAs(t, err, &ctxErr)
	var biOp *vm.BiOpError
	require.ErrorAs(t, ctxErr.Err, &biOp)
}

// NaN equality, by contrast, resolves instead of erroring: Eq is false,
// Ne is true, matching IEEE-754 (never reaching the ordering-only
// BiOpError path).
func TestNaNEqualityResolvesWithoutError(t *testing.T) {
	nan := u64Word(0x7ff8000000000000)

	cp := pool.New([]pool.Constant{
		pool.TypeConstant(vmtype.F64),
		pool.ValueConstant(nan[:]),
	})

	a := &asm{}
	a.op(OpLdType, 0, 1) // s(0): NaN
	a.op(OpLdType, 0, 1) // s(1): NaN (same bits, still compares unordered)
	a.op(OpLdFalse)      // s(2): Bool scratch
	a.op(OpEq, 2, 0, 1)
	a.op(OpLdFalse)      // s(3): Bool scratch
	a.op(OpNe, 3, 0, 1)

	v, err := run(t, a.code(), cp)
	require.NoError(t, err)

	eqBytes, _, err := v.ReadValue(refs.StackRef(2))
	require.NoError(t, err)
	require.False(t, decodeBool(eqBytes))

	neBytes, _, err := v.ReadValue(refs.StackRef(3))
	require.NoError(t, err)
	require.True(t, decodeBool(neBytes))
}
