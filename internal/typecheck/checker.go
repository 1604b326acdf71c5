// Package typecheck is the fluent, error-accumulating type checker
// combinators instruction handlers use to validate operand types before
// touching the stack. Independent chains never short-circuit each other:
// every chain runs, and all reported errors are returned together (spec.md
// §4.8) — an instruction like "result must be Bool AND operands must
// match" should report both failures, not just the first. Within one
// chain, the first failed step poisons it and every later step is a
// no-op, so a chain reports at most one error.
package typecheck

import (
	"fmt"

	"github.com/vantage-systems/bytevm/internal/vmtype"
)

// TaggedType pairs a reported type with the operand tag it came from, so
// a TypeError can say which operand of an instruction is at fault.
type TaggedType struct {
	Tag  Tag
	Type vmtype.Type
}

func tagged(tag Tag, t vmtype.Type) TaggedType { return TaggedType{Tag: tag, Type: t} }

// ErrorKind discriminates the shape of a reported TypeError.
type ErrorKind int

const (
	NotPrimitive ErrorKind = iota
	NotEquals
	NotOneOf
	Condition
	TwoNotEqual
	ThreeNotEqual
	AllNotEqual
	NotReference
	NotMutReference
	From
)

// TypeError is one structured, operand-tagged type-check failure.
type TypeError struct {
	Kind     ErrorKind
	Tagged   TaggedType
	Other    vmtype.Type
	OneOf    []vmtype.Type
	Msg      string
	Pair     [2]TaggedType
	Triple   [3]TaggedType
	All      []TaggedType
	Inner    *TypeError
}

func (e *TypeError) Error() string {
	switch e.Kind {
	case NotPrimitive:
		return fmt.Sprintf("%s: expected a primitive type, got %s", e.Tagged.Tag, e.Tagged.Type)
	case NotEquals:
		return fmt.Sprintf("%s: expected type %s, got %s", e.Tagged.Tag, e.Other, e.Tagged.Type)
	case NotOneOf:
		return fmt.Sprintf("%s: type %s is not one of %v", e.Tagged.Tag, e.Tagged.Type, e.OneOf)
	case Condition:
		return fmt.Sprintf("%s: %s (got %s)", e.Tagged.Tag, e.Msg, e.Tagged.Type)
	case TwoNotEqual:
		return fmt.Sprintf("%s (%s) and %s (%s) must be the same type", e.Pair[0].Tag, e.Pair[0].Type, e.Pair[1].Tag, e.Pair[1].Type)
	case ThreeNotEqual:
		return fmt.Sprintf("%s (%s), %s (%s), and %s (%s) must be the same type",
			e.Triple[0].Tag, e.Triple[0].Type, e.Triple[1].Tag, e.Triple[1].Type, e.Triple[2].Tag, e.Triple[2].Type)
	case AllNotEqual:
		return fmt.Sprintf("operands must all be the same type: %v", e.All)
	case NotReference:
		return fmt.Sprintf("%s: expected a reference, got %s", e.Tagged.Tag, e.Tagged.Type)
	case NotMutReference:
		return fmt.Sprintf("%s: expected a mut reference, got %s", e.Tagged.Tag, e.Tagged.Type)
	case From:
		return fmt.Sprintf("%s: %s", e.Msg, e.Inner.Error())
	default:
		return "invalid type error"
	}
}

// Ctx accumulates TypeErrors across an instruction's worth of
// constraints.
type Ctx struct {
	errors []TypeError
}

// NewCtx returns an empty error-accumulating context.
func NewCtx() *Ctx { return &Ctx{} }

func (c *Ctx) report(e TypeError) { c.errors = append(c.errors, e) }

// HasErrors reports whether any constraint has failed so far.
func (c *Ctx) HasErrors() bool { return len(c.errors) > 0 }

// Errors returns the accumulated errors as a VmError-shaped slice (nil if
// none were reported). Callers turn this into a VmError at the Vm layer.
func (c *Ctx) Errors() []TypeError {
	if len(c.errors) == 0 {
		return nil
	}
	out := make([]TypeError, len(c.errors))
	copy(out, c.errors)
	return out
}

// Checker is the entry point into the fluent DSL: a single operand's
// type (possibly nil if an earlier stage already failed to produce one,
// in which case every downstream constraint silently no-ops so the first
// failure remains the one reported — spec.md §4.8).
type Checker struct {
	tag Tag
	t   *vmtype.Type
	ctx *Ctx
}

// Check starts a checker chain for operand tag carrying type t (which
// may be nil to propagate an already-failed upstream lookup).
func Check(ctx *Ctx, tag Tag, t *vmtype.Type) *Checker {
	return &Checker{tag: tag, t: t, ctx: ctx}
}

// Primitive requires the operand to be a bare primitive type.
func (c *Checker) Primitive() *PrimitiveChecker {
	if c.t == nil {
		return &PrimitiveChecker{tag: c.tag, ctx: c.ctx}
	}
	if p, ok := c.t.AsPrimitive(); ok {
		return &PrimitiveChecker{tag: c.tag, p: &p, ctx: c.ctx}
	}
	c.ctx.report(TypeError{Kind: NotPrimitive, Tagged: tagged(c.tag, *c.t)})
	return &PrimitiveChecker{tag: c.tag, ctx: c.ctx}
}

// RefCondition constrains which RefKind Checker.Ref will accept.
type RefCondition int

const (
	AnyRefKind RefCondition = iota
	RefOnly
	MutOnly
)

// Ref requires the operand to be a reference, optionally constrained to
// RefOnly (shared) or MutOnly (exclusive).
func (c *Checker) Ref(cond RefCondition) *RefChecker {
	if c.t == nil {
		return &RefChecker{tag: c.tag, ctx: c.ctx}
	}
	rt, ok := c.t.AsRef()
	if !ok {
		c.ctx.report(TypeError{Kind: NotReference, Tagged: tagged(c.tag, *c.t)})
		return &RefChecker{tag: c.tag, ctx: c.ctx}
	}
	switch cond {
	case RefOnly:
		if rt.Kind != vmtype.Ref {
			c.ctx.report(TypeError{Kind: NotReference, Tagged: tagged(c.tag, *c.t)})
			return &RefChecker{tag: c.tag, ctx: c.ctx}
		}
	case MutOnly:
		if rt.Kind != vmtype.Mut {
			c.ctx.report(TypeError{Kind: NotMutReference, Tagged: tagged(c.tag, *c.t)})
			return &RefChecker{tag: c.tag, ctx: c.ctx}
		}
	}
	return &RefChecker{tag: c.tag, r: &rt, ctx: c.ctx}
}

// AnyRef requires a reference of either kind.
func (c *Checker) AnyRef() *RefChecker { return c.Ref(AnyRefKind) }

// RefRef requires a shared reference.
func (c *Checker) RefRef() *RefChecker { return c.Ref(RefOnly) }

// MutRef requires an exclusive reference.
func (c *Checker) MutRef() *RefChecker { return c.Ref(MutOnly) }

// SArr requires the operand to be a statically-sized array.
func (c *Checker) SArr() *ArrChecker {
	if c.t == nil {
		return &ArrChecker{tag: c.tag, ctx: c.ctx}
	}
	at, ok := c.t.AsSArr()
	if !ok {
		c.ctx.report(TypeError{Kind: NotPrimitive, Tagged: tagged(c.tag, *c.t)})
		return &ArrChecker{tag: c.tag, ctx: c.ctx}
	}
	return &ArrChecker{tag: c.tag, a: &at, ctx: c.ctx}
}

// Cond reports a Condition error tagged with a human description unless
// t is nil (already poisoned) or pred(t) holds.
func (c *Checker) Cond(msg string, pred func(vmtype.Type) bool) *Checker {
	if c.t == nil {
		return c
	}
	if !pred(*c.t) {
		c.ctx.report(TypeError{Kind: Condition, Tagged: tagged(c.tag, *c.t), Msg: msg})
	}
	return c
}

// Get returns the checked type and whether it is still usable (non-nil
// and no upstream failure poisoned it).
func (c *Checker) Get() (vmtype.Type, bool) {
	if c.t == nil {
		return vmtype.Type{}, false
	}
	return *c.t, true
}
