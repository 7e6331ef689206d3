package kernel

import "github.com/loveq369/symkernel/numeric"

// Num wraps a numeric.Numeric as a leaf node (spec.md §3 kind "numeric").
// Its Kind reflects which of the four numeric.Tag values it carries, so
// integer/rational/complex/float are genuinely distinct node kinds as
// spec.md §3 requires, even though they share one Go type.
type Num struct {
	envelope
	val *numeric.Numeric
}

func tagToKind(t numeric.Tag) Kind {
	switch t {
	case numeric.TagInteger:
		return KindInteger
	case numeric.TagRational:
		return KindRational
	case numeric.TagComplex:
		return KindComplex
	case numeric.TagFloat:
		return KindFloat
	}
	return KindInteger
}

// NewNum builds a Num node from a numeric.Numeric value.
func NewNum(v *numeric.Numeric) *Num {
	n := &Num{val: v}
	n.kind = tagToKind(v.Tag())
	n.hash = hashFold(fnv1a64(n.kind.String()), fnv1a64(v.String()))
	n.setEvaluated()
	return n
}

// Int constructs an integer leaf from a machine integer.
func Int(v int64) *Num { return NewNum(numeric.NewInt(v)) }

// Frac constructs a rational leaf p/q.
func Frac(p, q int64) *Num { return NewNum(numeric.NewFrac(p, q)) }

// Flt constructs a float leaf.
func Flt(v float64) *Num { return NewNum(numeric.NewFloat(v)) }

// Process-wide numeric singletons (spec.md §4.3), never dropped to a zero
// refcount because Go's GC keeps package-level vars alive for the process
// lifetime.
var (
	NumZero      = Int(0)
	NumOne       = Int(1)
	NumMinusOne  = Int(-1)
	NumTwo       = Int(2)
	NumThree     = Int(3)
	NumHalf      = Frac(1, 2)
	NumMinusHalf = Frac(-1, 2)
)

func (n *Num) Value() *numeric.Numeric { return n.val }

func (n *Num) String() string { return n.val.String() }
func (n *Num) LaTeX() string  { return n.val.LaTeX() }

func (n *Num) Equal(other Expr) bool {
	o, ok := other.(*Num)
	return ok && n.val.Equal(o.val)
}

func (n *Num) Has(sub Expr) bool { return hasDefault(n, sub) }

func (n *Num) Info(p Predicate) bool {
	switch p {
	case PredNumeric:
		return true
	case PredInteger:
		return n.val.IsInteger()
	case PredPosInt:
		return n.val.IsPosInt()
	case PredRational:
		return n.val.IsRational()
	case PredReal:
		return n.val.IsReal()
	case PredComplex:
		return n.val.IsComplex()
	case PredPositive:
		return n.val.IsReal() && n.val.IsPositive()
	case PredNegative:
		return n.val.IsReal() && n.val.IsNegative()
	case PredZero:
		return n.val.IsZero()
	case PredPolynomial:
		return true
	}
	return false
}

// IsZero, IsOne, IsMinusOne are convenience predicates used throughout the
// canonicalization pipeline.
func (n *Num) IsZero() bool     { return n.val.IsZero() }
func (n *Num) IsOne() bool      { return n.val.IsOne() }
func (n *Num) IsMinusOne() bool { return n.val.IsMinusOne() }

func asNum(e Expr) (*Num, bool) {
	n, ok := e.(*Num)
	return n, ok
}
