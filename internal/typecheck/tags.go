package typecheck

// Tag names an operand position so a reported TypeError pinpoints which
// operand of which instruction failed.
type Tag string

const (
	Result Tag = "result"
	Op     Tag = "op"
	Op1    Tag = "op1"
	Op2    Tag = "op2"
	Arr    Tag = "arr"
	Idx    Tag = "idx"
	Elem   Tag = "elem"
)
