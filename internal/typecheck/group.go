package typecheck

import "github.com/vantage-systems/bytevm/internal/vmtype"

// Three holds the {result, op1, op2} type triple most ALU/comparison
// opcodes validate. Each field is nil if the VM failed to fetch the
// corresponding operand's metadata (caller poisons before calling in).
type Three struct {
	Result, Op1, Op2 *vmtype.Type
	Ctx              *Ctx
}

// ThreePrimitives is the primitive-extracted counterpart of Three.
type ThreePrimitives struct {
	Result, Op1, Op2 *vmtype.Primitive
	ctx              *Ctx
}

// AllPrimitives requires all three operands to be bare primitives,
// reporting NotPrimitive per-operand independently (so e.g. a bad op2
// doesn't suppress a simultaneously bad result).
func (t Three) AllPrimitives() *ThreePrimitives {
	extract := func(tag Tag, vt *vmtype.Type) *vmtype.Primitive {
		if vt == nil {
			return nil
		}
		if p, ok := vt.AsPrimitive(); ok {
			return &p
		}
		t.Ctx.report(TypeError{Kind: NotPrimitive, Tagged: tagged(tag, *vt)})
		return nil
	}
	return &ThreePrimitives{
		Result: extract(Result, t.Result),
		Op1:    extract(Op1, t.Op1),
		Op2:    extract(Op2, t.Op2),
		ctx:    t.Ctx,
	}
}

// AllSame requires all three (successfully extracted) primitives to be
// identical, and returns the shared type on success.
func (p *ThreePrimitives) AllSame() (vmtype.Primitive, bool) {
	if p.Result == nil || p.Op1 == nil || p.Op2 == nil {
		return 0, false
	}
	if *p.Result != *p.Op1 || *p.Op1 != *p.Op2 {
		p.ctx.report(TypeError{
			Kind: ThreeNotEqual,
			Triple: [3]TaggedType{
				tagged(Result, vmtype.P(*p.Result)),
				tagged(Op1, vmtype.P(*p.Op1)),
				tagged(Op2, vmtype.P(*p.Op2)),
			},
		})
		return 0, false
	}
	return *p.Result, true
}

// Two holds the {result, op} type pair unary opcodes validate.
type Two struct {
	Result, Op *vmtype.Type
	Ctx        *Ctx
}

// TwoPrimitives is the primitive-extracted counterpart of Two.
type TwoPrimitives struct {
	Result, Op *vmtype.Primitive
	ctx        *Ctx
}

// AllPrimitives requires both operands to be bare primitives.
func (t Two) AllPrimitives() *TwoPrimitives {
	extract := func(tag Tag, vt *vmtype.Type) *vmtype.Primitive {
		if vt == nil {
			return nil
		}
		if p, ok := vt.AsPrimitive(); ok {
			return &p
		}
		t.Ctx.report(TypeError{Kind: NotPrimitive, Tagged: tagged(tag, *vt)})
		return nil
	}
	return &TwoPrimitives{Result: extract(Result, t.Result), Op: extract(Op, t.Op), ctx: t.Ctx}
}

// AllSame requires both (successfully extracted) primitives to be
// identical, and returns the shared type on success.
func (p *TwoPrimitives) AllSame() (vmtype.Primitive, bool) {
	if p.Result == nil || p.Op == nil {
		return 0, false
	}
	if *p.Result != *p.Op {
		p.ctx.report(TypeError{
			Kind: TwoNotEqual,
			Pair: [2]TaggedType{tagged(Result, vmtype.P(*p.Result)), tagged(Op, vmtype.P(*p.Op))},
		})
		return 0, false
	}
	return *p.Result, true
}

// Either reports a single Condition error tagged on t/tag if none of the
// predicates hold — spec.md §4.8's ".either().or().and()": run every arm,
// only the combined failure is reported, not one per arm.
func Either(ctx *Ctx, tag Tag, t *vmtype.Type, msg string, preds ...func(vmtype.Type) bool) bool {
	if t == nil {
		return false
	}
	for _, p := range preds {
		if p(*t) {
			return true
		}
	}
	ctx.report(TypeError{Kind: Condition, Tagged: tagged(tag, *t), Msg: msg})
	return false
}
