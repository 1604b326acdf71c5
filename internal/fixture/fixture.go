// Package fixture loads a constant pool and an instruction list from
// YAML into the real internal/pool and internal/code types, so a program
// can be expressed as data instead of hand-encoded byte slices. It is
// exercised by its own tests; internal/interpreter's scenario tests
// assemble their programs with an in-test builder instead.
package fixture

import (
	"encoding/binary"
	"fmt"

	"sigs.k8s.io/yaml"

	"github.com/vantage-systems/bytevm/internal/code"
	"github.com/vantage-systems/bytevm/internal/interpreter"
	"github.com/vantage-systems/bytevm/internal/pool"
	"github.com/vantage-systems/bytevm/internal/vmtype"
)

// ConstantSpec is one constant pool entry: exactly one of Type, Value, or
// Str is set, matching Kind.
type ConstantSpec struct {
	Kind  string `json:"kind"` // "type", "value", or "string"
	Type  string `json:"type,omitempty"`
	Value uint64 `json:"value,omitempty"`
	Str   string `json:"string,omitempty"`
}

// InstructionSpec is one bytecode instruction: a mnemonic (as printed by
// interpreter.Op.String) plus its word-sized operands in order.
type InstructionSpec struct {
	Op       string   `json:"op"`
	Operands []uint64 `json:"operands,omitempty"`
}

// Program is the YAML document shape: a constant pool plus an
// instruction list.
type Program struct {
	Constants    []ConstantSpec     `json:"constants"`
	Instructions []InstructionSpec `json:"instructions"`
}

// Load parses YAML-encoded source into a ready-to-run constant pool and
// instruction stream.
func Load(source []byte) (*code.Code, *pool.ConstantPool, error) {
	var p Program
	if err := yaml.Unmarshal(source, &p); err != nil {
		return nil, nil, fmt.Errorf("fixture: parse yaml: %w", err)
	}
	return build(p)
}

func build(p Program) (*code.Code, *pool.ConstantPool, error) {
	constants := make([]pool.Constant, len(p.Constants))
	for i, cs := range p.Constants {
		switch cs.Kind {
		case "type":
			prim, ok := vmtype.ParsePrimitive(cs.Type)
			if !ok {
				return nil, nil, fmt.Errorf("fixture: constant %d: unknown type %q", i, cs.Type)
			}
			constants[i] = pool.TypeConstant(prim)
		case "value":
			b := make([]byte, 8)
			binary.LittleEndian.PutUint64(b, cs.Value)
			constants[i] = pool.ValueConstant(b)
		case "string":
			constants[i] = pool.StringConstant(cs.Str)
		default:
			return nil, nil, fmt.Errorf("fixture: constant %d: unknown kind %q", i, cs.Kind)
		}
	}
	cp := pool.New(constants)

	var bytes []byte
	for i, is := range p.Instructions {
		op, ok := interpreter.OpByName(is.Op)
		if !ok {
			return nil, nil, fmt.Errorf("fixture: instruction %d: unknown opcode %q", i, is.Op)
		}
		bytes = append(bytes, byte(op))
		for _, operand := range is.Operands {
			word := make([]byte, vmtype.WordSize)
			binary.LittleEndian.PutUint64(word, operand)
			bytes = append(bytes, word...)
		}
	}
	return code.FromBytes(bytes), cp, nil
}
