package kernel

import (
	"fmt"
	"strings"

	"github.com/loveq369/symkernel/numeric"
)

// Series is a truncated power series expansion of some expression about a
// point, in the variable var: sum(coeffs[i] * (var-point)^i) + O((var-
// point)^order). It is a supplement to the distilled spec.md (which only
// hints at series through BigO/TaylorSeries convenience wrappers in the
// teacher): promoting it to a first-class node lets Series results be
// substituted into and differentiated term-by-term instead of being a
// one-shot value (there is no series-aware addition or multiplication;
// AddOf/MulOf treat a Series as an opaque operand), matching how a from-scratch CAS kernel
// the size of this one would represent them (GiNaC's original series class,
// see original_source/, does the same).
type Series struct {
	envelope
	variable Expr
	point    Expr
	coeffs   []Expr // coeffs[i] multiplies (variable-point)^i
	order    int    // truncation order; remainder is O((variable-point)^order)
}

// SeriesOf builds a Series node. coeffs may be shorter than order (trailing
// zero coefficients are implicit).
func SeriesOf(variable, point Expr, coeffs []Expr, order int) *Series {
	s := &Series{variable: variable, point: point, coeffs: append([]Expr(nil), coeffs...), order: order}
	s.kind = KindSeries
	hashes := make([]uint64, len(coeffs))
	for i, c := range coeffs {
		hashes[i] = c.Hash()
	}
	s.hash = hashFold(fnv1a64("series"), variable.Hash(), point.Hash(), uint64(order), hashFold(0, hashes...))
	s.setEvaluated()
	return s
}

func (s *Series) Variable() Expr  { return s.variable }
func (s *Series) Point() Expr     { return s.point }
func (s *Series) Coeffs() []Expr  { return s.coeffs }
func (s *Series) Order() int      { return s.order }

// Coeff returns the coefficient of (variable-point)^i, or NumZero if i is
// beyond the computed terms.
func (s *Series) Coeff(i int) Expr {
	if i < 0 || i >= len(s.coeffs) {
		return NumZero
	}
	return s.coeffs[i]
}

// ToExpr expands the series into an ordinary Sum, dropping the O(...)
// remainder — used when a caller wants a polynomial approximation rather
// than a series value (e.g. plotting, or handing the result to Normal).
func (s *Series) ToExpr() Expr {
	terms := make([]Expr, 0, len(s.coeffs))
	shifted := s.variable
	if !s.point.Equal(NumZero) {
		shifted = AddOf(s.variable, MulOf(NumMinusOne, s.point))
	}
	for i, c := range s.coeffs {
		if c.Equal(NumZero) {
			continue
		}
		terms = append(terms, MulOf(c, PowOf(shifted, Int(int64(i)))))
	}
	return AddOf(terms...)
}

// TaylorSeries expands e about wrt=point up to (but not including) order,
// by repeated differentiation and substitution: coeffs[k] is the k-th
// derivative of e with respect to wrt, evaluated at point, divided by k!.
// It returns an error immediately if any intermediate Diff or Subs fails,
// rather than truncating the series early.
func TaylorSeries(e Expr, wrt *Symbol, point Expr, order int) (*Series, error) {
	if order < 0 {
		return nil, WrapInvalidArg("TaylorSeries: order must be >= 0, got %d", order)
	}
	coeffs := make([]Expr, 0, order)
	cur := e
	fact := int64(1)
	for k := 0; k < order; k++ {
		val, err := Subs(cur, wrt, point)
		if err != nil {
			return nil, err
		}
		coeff := Expr(val)
		if fact != 1 {
			coeff = MulOf(val, NewNum(numeric.NewFrac(1, fact)))
		}
		coeffs = append(coeffs, coeff)

		if k+1 < order {
			cur, err = Diff(cur, wrt)
			if err != nil {
				return nil, err
			}
			fact *= int64(k + 1)
		}
	}
	return SeriesOf(wrt, point, coeffs, order), nil
}

func (s *Series) Nops() int { return len(s.coeffs) }
func (s *Series) Op(i int) Expr {
	if i < 0 || i >= len(s.coeffs) {
		panic(WrapRange("Op(%d): series has %d coefficients", i, len(s.coeffs)))
	}
	return s.coeffs[i]
}

func (s *Series) Has(sub Expr) bool { return hasDefault(s, sub) }

func (s *Series) Info(p Predicate) bool { return false }

func (s *Series) Equal(other Expr) bool {
	o, ok := other.(*Series)
	if !ok || s.order != o.order || len(s.coeffs) != len(o.coeffs) {
		return false
	}
	if !s.variable.Equal(o.variable) || !s.point.Equal(o.point) {
		return false
	}
	for i := range s.coeffs {
		if !s.coeffs[i].Equal(o.coeffs[i]) {
			return false
		}
	}
	return true
}

func (s *Series) String() string {
	shifted := s.variable.String()
	if !s.point.Equal(NumZero) {
		shifted = "(" + s.variable.String() + " - " + s.point.String() + ")"
	}
	var parts []string
	for i, c := range s.coeffs {
		if c.Equal(NumZero) {
			continue
		}
		switch i {
		case 0:
			parts = append(parts, c.String())
		case 1:
			parts = append(parts, c.String()+"*"+shifted)
		default:
			parts = append(parts, fmt.Sprintf("%s*%s^%d", c.String(), shifted, i))
		}
	}
	parts = append(parts, fmt.Sprintf("O(%s^%d)", shifted, s.order))
	return strings.Join(parts, " + ")
}

func (s *Series) LaTeX() string {
	shifted := s.variable.LaTeX()
	if !s.point.Equal(NumZero) {
		shifted = "\\left(" + s.variable.LaTeX() + " - " + s.point.LaTeX() + "\\right)"
	}
	var parts []string
	for i, c := range s.coeffs {
		if c.Equal(NumZero) {
			continue
		}
		switch i {
		case 0:
			parts = append(parts, c.LaTeX())
		case 1:
			parts = append(parts, c.LaTeX()+" "+shifted)
		default:
			parts = append(parts, fmt.Sprintf("%s {%s}^{%d}", c.LaTeX(), shifted, i))
		}
	}
	parts = append(parts, fmt.Sprintf("O\\left(%s^{%d}\\right)", shifted, s.order))
	return strings.Join(parts, " + ")
}
