// Package bytevm is the public entry point: load a Program (instruction
// stream plus constant pool) and run it against a fresh Vm.
package bytevm

import (
	"io"

	"github.com/google/uuid"

	"github.com/vantage-systems/bytevm/internal/code"
	"github.com/vantage-systems/bytevm/internal/interpreter"
	"github.com/vantage-systems/bytevm/internal/pool"
	"github.com/vantage-systems/bytevm/internal/trace"
	"github.com/vantage-systems/bytevm/internal/vm"
)

// Program is an immutable, loadable unit: a byte-addressable instruction
// stream paired with the constant pool its LdType/LdTyped0/LdSS/LdDS/
// SArrCreate0 operands index into. ID distinguishes one loaded Program
// from another for host-side correlation (e.g. in a log line), the way
// wazero's wasm.ModuleID distinguishes loaded modules — this core has no
// module-linking system to otherwise name one.
type Program struct {
	ID   uuid.UUID
	Code *code.Code
	Pool *pool.ConstantPool
}

// NewProgram builds a Program from raw instruction bytes and a constant
// pool, stamping it with a fresh random ID.
func NewProgram(instructions []byte, constants *pool.ConstantPool) *Program {
	return &Program{
		ID:   uuid.New(),
		Code: code.FromBytes(instructions),
		Pool: constants,
	}
}

// runConfig holds Run's optional behavior. The zero value runs untraced;
// WithTrace attaches a diagnostics sink for any TraceStackValue points
// the program hits.
type runConfig struct {
	traceWriter io.Writer
}

// RunOption configures a single Run call.
type RunOption func(*runConfig)

// WithTrace attaches w as the destination for TraceStackValue snapshots,
// zstd-compressed, one JSON line per trace point.
func WithTrace(w io.Writer) RunOption {
	return func(c *runConfig) { c.traceWriter = w }
}

// Run interprets p to completion against a freshly constructed Vm and
// returns it so the caller can inspect final stack state (tests do this
// routinely; a host embedding this VM would too). Any interpretation
// failure is returned as a *vm.ContextError.
func Run(p *Program, opts ...RunOption) (*vm.Vm, error) {
	cfg := runConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	v := vm.New(p.Pool)
	if cfg.traceWriter != nil {
		tr, err := trace.NewTracer(cfg.traceWriter)
		if err != nil {
			return nil, err
		}
		v.Trace = tr
	}

	chunk := code.FromCode(p.Code)
	if err := interpreter.Interpret(chunk, v); err != nil {
		return v, err
	}
	return v, nil
}
