// Package trace is the postmortem diagnostics writer TraceStackValue
// emits through: a plain, dependency-free snapshot of one stack value
// plus a zstd-compressed sink to write it to. It deliberately knows
// nothing about internal/vm's types so internal/vm can depend on it
// (not the other way around) — the orchestration layer builds a
// Snapshot from its own state and hands it here.
package trace

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

// Snapshot is one traced stack value, independent of any live Vm state.
type Snapshot struct {
	Index    int    `json:"index"`
	Type     string `json:"type"`
	Cycle    int    `json:"cycle"`
	Bytes    []byte `json:"bytes"`
	Locked   bool   `json:"locked"`
	WasMoved bool   `json:"was_moved"`
}

func (s Snapshot) String() string {
	return fmt.Sprintf("s(%d): %s @cycle %d = %x (locked=%v moved=%v)", s.Index, s.Type, s.Cycle, s.Bytes, s.Locked, s.WasMoved)
}

// Tracer is a zstd-compressed sink for a running interpretation's trace
// points. Every Emit call writes one JSON line and flushes it as a block
// of a single ongoing zstd stream, so a streaming reader can process the
// log without buffering the whole run; the stream's frame ends only at
// Close.
type Tracer struct {
	enc *zstd.Encoder
}

// NewTracer wraps w in a zstd encoder; every Emit call is flushed
// immediately so a reader tailing the output sees each frame promptly.
func NewTracer(w io.Writer) (*Tracer, error) {
	enc, err := zstd.NewWriter(w)
	if err != nil {
		return nil, fmt.Errorf("trace: new zstd writer: %w", err)
	}
	return &Tracer{enc: enc}, nil
}

// Emit serializes s as JSON and writes it, zstd-compressed, to the
// underlying writer.
func (t *Tracer) Emit(s Snapshot) error {
	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("trace: marshal snapshot: %w", err)
	}
	b = append(b, '\n')
	if _, err := t.enc.Write(b); err != nil {
		return fmt.Errorf("trace: write snapshot: %w", err)
	}
	return t.enc.Flush()
}

// Close flushes and releases the underlying zstd encoder. Callers own
// the wrapped io.Writer and close it themselves if needed.
func (t *Tracer) Close() error {
	return t.enc.Close()
}
