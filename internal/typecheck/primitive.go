package typecheck

import "github.com/vantage-systems/bytevm/internal/vmtype"

// PrimitiveChecker refines a Checker once the operand has been confirmed
// to be (or assumed to be, if poisoned) a bare Primitive.
type PrimitiveChecker struct {
	tag Tag
	p   *vmtype.Primitive
	ctx *Ctx
}

func (c *PrimitiveChecker) poisoned() bool { return c.p == nil }

func (c *PrimitiveChecker) reportCond(msg string) {
	if c.poisoned() {
		return
	}
	c.ctx.report(TypeError{Kind: Condition, Tagged: tagged(c.tag, vmtype.P(*c.p)), Msg: msg})
	c.p = nil
}

// Equals requires the primitive to equal want.
func (c *PrimitiveChecker) Equals(want vmtype.Primitive) *PrimitiveChecker {
	if c.poisoned() {
		return c
	}
	if *c.p != want {
		c.ctx.report(TypeError{Kind: NotEquals, Tagged: tagged(c.tag, vmtype.P(*c.p)), Other: vmtype.P(want)})
		c.p = nil
	}
	return c
}

// OneOf requires the primitive to be one of the given set.
func (c *PrimitiveChecker) OneOf(set ...vmtype.Primitive) *PrimitiveChecker {
	if c.poisoned() {
		return c
	}
	for _, s := range set {
		if *c.p == s {
			return c
		}
	}
	opts := make([]vmtype.Type, len(set))
	for i, s := range set {
		opts[i] = vmtype.P(s)
	}
	c.ctx.report(TypeError{Kind: NotOneOf, Tagged: tagged(c.tag, vmtype.P(*c.p)), OneOf: opts})
	c.p = nil
	return c
}

// Integer requires an integer (signed or unsigned) primitive.
func (c *PrimitiveChecker) Integer() *PrimitiveChecker {
	if c.poisoned() {
		return c
	}
	if !c.p.IsInteger() {
		c.reportCond("expected an integer type")
	}
	return c
}

// Unsigned requires an unsigned-integer primitive.
func (c *PrimitiveChecker) Unsigned() *PrimitiveChecker {
	if c.poisoned() {
		return c
	}
	if !c.p.IsUnsigned() {
		c.reportCond("expected an unsigned integer type")
	}
	return c
}

// Signed requires a signed-integer primitive.
func (c *PrimitiveChecker) Signed() *PrimitiveChecker {
	if c.poisoned() {
		return c
	}
	if !c.p.IsSigned() {
		c.reportCond("expected a signed integer type")
	}
	return c
}

// Float requires a floating-point primitive.
func (c *PrimitiveChecker) Float() *PrimitiveChecker {
	if c.poisoned() {
		return c
	}
	if !c.p.IsFloat() {
		c.reportCond("expected a float type")
	}
	return c
}

// Number requires an integer or float primitive.
func (c *PrimitiveChecker) Number() *PrimitiveChecker {
	if c.poisoned() {
		return c
	}
	if !c.p.IsNumber() {
		c.reportCond("expected a numeric type")
	}
	return c
}

// Bool requires the primitive to be Bool.
func (c *PrimitiveChecker) Bool() *PrimitiveChecker {
	return c.Equals(vmtype.Bool)
}

// IntegerOrBool requires an integer or Bool primitive (used by the
// logical-bitwise family, which operates on either).
func (c *PrimitiveChecker) IntegerOrBool() *PrimitiveChecker {
	if c.poisoned() {
		return c
	}
	if !c.p.IsInteger() && !c.p.IsBool() {
		c.reportCond("expected an integer or bool type")
	}
	return c
}

// User requires a primitive valid in user-visible positions (anything
// single-word-sized, plus Never).
func (c *PrimitiveChecker) User() *PrimitiveChecker {
	if c.poisoned() {
		return c
	}
	if !c.p.IsSingle() && *c.p != vmtype.Never {
		c.reportCond("expected a user-visible type")
	}
	return c
}

// Get returns the checked primitive and whether it survived the chain.
func (c *PrimitiveChecker) Get() (vmtype.Primitive, bool) {
	if c.poisoned() {
		return 0, false
	}
	return *c.p, true
}

// RefChecker refines a Checker once the operand has been confirmed to be
// (or assumed to be) a reference of the required kind.
type RefChecker struct {
	tag Tag
	r   *vmtype.RefType
	ctx *Ctx
}

// To continues the chain on the reference's pointee type.
func (c *RefChecker) To() *Checker {
	if c.r == nil {
		return &Checker{tag: c.tag, ctx: c.ctx}
	}
	t := c.r.Pointee
	return &Checker{tag: c.tag, t: &t, ctx: c.ctx}
}

// Get returns the checked reference payload and whether it survived.
func (c *RefChecker) Get() (vmtype.RefType, bool) {
	if c.r == nil {
		return vmtype.RefType{}, false
	}
	return *c.r, true
}

// ArrChecker refines a Checker once the operand has been confirmed to be
// (or assumed to be) a statically-sized array.
type ArrChecker struct {
	tag Tag
	a   *vmtype.SArrType
	ctx *Ctx
}

// Element continues the chain on the array's element type.
func (c *ArrChecker) Element() *Checker {
	if c.a == nil {
		return &Checker{tag: c.tag, ctx: c.ctx}
	}
	t := c.a.Element
	return &Checker{tag: c.tag, t: &t, ctx: c.ctx}
}

// Get returns the checked array payload and whether it survived.
func (c *ArrChecker) Get() (vmtype.SArrType, bool) {
	if c.a == nil {
		return vmtype.SArrType{}, false
	}
	return *c.a, true
}
