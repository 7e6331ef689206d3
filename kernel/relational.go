package kernel

// RelOp is the comparison operator carried by a Relational node.
type RelOp int

const (
	RelEq RelOp = iota
	RelNe
	RelLt
	RelLe
	RelGt
	RelGe
)

func (op RelOp) String() string {
	switch op {
	case RelEq:
		return "=="
	case RelNe:
		return "!="
	case RelLt:
		return "<"
	case RelLe:
		return "<="
	case RelGt:
		return ">"
	case RelGe:
		return ">="
	}
	return "?"
}

func (op RelOp) latex() string {
	switch op {
	case RelEq:
		return "="
	case RelNe:
		return "\\neq"
	case RelLt:
		return "<"
	case RelLe:
		return "\\leq"
	case RelGt:
		return ">"
	case RelGe:
		return "\\geq"
	}
	return "?"
}

func (op RelOp) flip() RelOp {
	switch op {
	case RelLt:
		return RelGt
	case RelLe:
		return RelGe
	case RelGt:
		return RelLt
	case RelGe:
		return RelLe
	}
	return op
}

// ParseRelOp inverts RelOp.String, for callers (archive, exprjson) that
// round-trip a Relational's operator through text.
func ParseRelOp(s string) (RelOp, bool) {
	switch s {
	case "==":
		return RelEq, true
	case "!=":
		return RelNe, true
	case "<":
		return RelLt, true
	case "<=":
		return RelLe, true
	case ">":
		return RelGt, true
	case ">=":
		return RelGe, true
	}
	return 0, false
}

// Relational is lhs op rhs, e.g. an equation (spec.md §3's Equation, widened
// to the full comparison set the way the teacher's Equation is a single-
// purpose special case of this more general node).
type Relational struct {
	envelope
	lhs, rhs Expr
	op       RelOp
}

// RelOf builds a Relational node, canonicalizing x==y and x!=y so the
// numerically smaller (by Compare) side is on the left — order carries no
// meaning for those two operators, so fixing it lets Equal be a structural
// comparison instead of needing to try both orders.
func RelOf(lhs, rhs Expr, op RelOp) *Relational {
	if (op == RelEq || op == RelNe) && Compare(lhs, rhs) > 0 {
		lhs, rhs = rhs, lhs
	}
	r := &Relational{lhs: lhs, rhs: rhs, op: op}
	r.kind = KindRelational
	r.hash = hashFold(fnv1a64("relational"), fnv1a64(op.String()), lhs.Hash(), rhs.Hash())
	r.setEvaluated()
	return r
}

func (r *Relational) LHS() Expr        { return r.lhs }
func (r *Relational) RHS() Expr        { return r.rhs }
func (r *Relational) Operator() RelOp  { return r.op }

func (r *Relational) Nops() int { return 2 }
func (r *Relational) Op(i int) Expr {
	switch i {
	case 0:
		return r.lhs
	case 1:
		return r.rhs
	}
	panic(WrapRange("Op(%d): relational has 2 children", i))
}

func (r *Relational) Has(sub Expr) bool { return hasDefault(r, sub) }
func (r *Relational) Info(Predicate) bool { return false }

func (r *Relational) Equal(other Expr) bool {
	o, ok := other.(*Relational)
	return ok && r.op == o.op && r.lhs.Equal(o.lhs) && r.rhs.Equal(o.rhs)
}

func (r *Relational) String() string { return r.lhs.String() + " " + r.op.String() + " " + r.rhs.String() }
func (r *Relational) LaTeX() string  { return r.lhs.LaTeX() + " " + r.op.latex() + " " + r.rhs.LaTeX() }
