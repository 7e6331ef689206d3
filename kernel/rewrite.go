package kernel

import (
	"golang.org/x/exp/slices"

	"github.com/loveq369/symkernel/numeric"
)

// This file holds the rewrite pipeline as free functions with type
// switches over concrete node types, rather than as virtual methods on
// Expr: spec.md's own DESIGN NOTES describe the class-hierarchy-to-tagged-
// union mapping as turning "dispatch on class" into "a match on the tag",
// and Eval/Expand/Subs/Diff/Collect/degree queries are exactly the
// operations that mapping was written for. Every recursive call threads a
// *Guard so a pathological input hits ErrRecursionLimit instead of
// overflowing the Go call stack (spec.md §5).

func recoverRuntimeError(err *error) {
	if r := recover(); r != nil {
		if e, ok := r.(error); ok {
			*err = e
			return
		}
		panic(r)
	}
}

// Eval returns e as-is: every canonicalizing constructor in this package
// already leaves its result fully simplified at level 1 (the "Evaluation
// flag" invariant, spec.md §3), so unlike the teacher's Simplify() methods
// there is no separate evaluation pass to run after construction. Eval
// exists as a named entry point because callers coming from spec.md expect
// one, and because a future multi-level evaluation policy (partial
// evaluation under a hold flag) would hang off this function without
// disturbing callers.
func Eval(e Expr) Expr { return e }

// Evalf forces every subexpression to a floating approximation, invoking
// registered numeric evaluators (builtins.go) for functions along the way.
// Exact integers/rationals become TagFloat Nums; already-exact results that
// have no floating evaluator (an unregistered function, a free symbol) are
// left as-is.
func Evalf(e Expr) Expr {
	switch t := e.(type) {
	case *Num:
		return NewNum(floatify(t.val))
	case *Constant:
		if v, ok := t.NumericValue(); ok {
			return NewNum(floatify(v.val))
		}
		return e
	case *Sum:
		terms := t.Terms()
		out := make([]Expr, len(terms))
		for i, term := range terms {
			out[i] = Evalf(term)
		}
		return AddOf(out...)
	case *Product:
		factors := t.Factors()
		out := make([]Expr, len(factors))
		for i, f := range factors {
			out[i] = Evalf(f)
		}
		return MulOf(out...)
	case *Power:
		return PowOf(Evalf(t.base), Evalf(t.exp))
	case *Function:
		args := make([]Expr, len(t.args))
		for i, a := range t.args {
			args[i] = Evalf(a)
		}
		if rec, ok := LookupFunction(t.name); ok && rec.Eval != nil && allNumeric(args) {
			nums := make([]*Num, len(args))
			for i, a := range args {
				nums[i] = a.(*Num)
			}
			if v, ok := rec.Eval(nums); ok {
				return v
			}
		}
		return FuncOf(t.name, args...)
	case *Matrix:
		data := make([]Expr, len(t.data))
		for i, v := range t.data {
			data[i] = Evalf(v)
		}
		return MatrixOf(t.rows, t.cols, data)
	case *List:
		items := make([]Expr, len(t.items))
		for i, v := range t.items {
			items[i] = Evalf(v)
		}
		return ListOf(items...)
	case *Tuple:
		items := make([]Expr, len(t.items))
		for i, v := range t.items {
			items[i] = Evalf(v)
		}
		return TupleOf(items...)
	default:
		return e
	}
}

func floatify(n *numeric.Numeric) *numeric.Numeric {
	if n.IsFloat() || n.IsComplex() {
		return n
	}
	return numeric.NewFloat(n.Float64())
}

// Diff returns d(e)/d(wrt), threading a fresh recursion guard. A function
// application whose registry record carries no derivative rule becomes a
// symbolic Derivative placeholder rather than an error (spec.md §7).
func Diff(e Expr, wrt *Symbol) (result Expr, err error) {
	defer recoverRuntimeError(&err)
	g := NewGuard(DefaultRecursionLimit)
	return diffRec(e, wrt, g), nil
}

func diffRec(e Expr, wrt *Symbol, g *Guard) Expr {
	g = g.Enter()
	switch t := e.(type) {
	case *Num:
		return NumZero
	case *Symbol:
		if t.serial == wrt.serial {
			return NumOne
		}
		return NumZero
	case *Constant:
		return NumZero
	case *Sum:
		terms := t.Terms()
		out := make([]Expr, len(terms))
		for i, term := range terms {
			out[i] = diffRec(term, wrt, g)
		}
		return AddOf(out...)
	case *Product:
		factors := t.Factors()
		out := make([]Expr, len(factors))
		for i := range factors {
			parts := append([]Expr(nil), factors...)
			parts[i] = diffRec(factors[i], wrt, g)
			out[i] = MulOf(parts...)
		}
		return AddOf(out...)
	case *NCProduct:
		out := make([]Expr, len(t.factors))
		for i := range t.factors {
			parts := append([]Expr(nil), t.factors...)
			parts[i] = diffRec(t.factors[i], wrt, g)
			out[i] = NCMulOf(parts...)
		}
		return AddOf(out...)
	case *Power:
		return diffPower(t, wrt, g)
	case *Function:
		return diffFunction(t, wrt, g)
	case *DerivativeOf:
		return NewDerivativeOf(t, wrt)
	case *Matrix:
		data := make([]Expr, len(t.data))
		for i, v := range t.data {
			data[i] = diffRec(v, wrt, g)
		}
		return MatrixOf(t.rows, t.cols, data)
	case *List:
		items := make([]Expr, len(t.items))
		for i, v := range t.items {
			items[i] = diffRec(v, wrt, g)
		}
		return ListOf(items...)
	case *Tuple:
		items := make([]Expr, len(t.items))
		for i, v := range t.items {
			items[i] = diffRec(v, wrt, g)
		}
		return TupleOf(items...)
	case *Relational:
		return RelOf(diffRec(t.lhs, wrt, g), diffRec(t.rhs, wrt, g), t.op)
	case *Series:
		return diffSeries(t, wrt, g)
	}
	panic(WrapDomain("Diff: unsupported node kind %s", e.Kind()))
}

func diffPower(p *Power, wrt *Symbol, g *Guard) Expr {
	db := diffRec(p.base, wrt, g)
	de := diffRec(p.exp, wrt, g)
	expIsConst := de.Equal(NumZero)
	baseIsConst := db.Equal(NumZero)
	switch {
	case expIsConst && baseIsConst:
		return NumZero
	case expIsConst:
		return MulOf(p.exp, PowOf(p.base, AddOf(p.exp, NumMinusOne)), db)
	case baseIsConst:
		return MulOf(p, FuncOf("ln", p.base), de)
	default:
		return MulOf(p, AddOf(MulOf(de, FuncOf("ln", p.base)), MulOf(p.exp, db, PowOf(p.base, NumMinusOne))))
	}
}

func diffFunction(f *Function, wrt *Symbol, g *Guard) Expr {
	if len(f.args) != 1 {
		return NewDerivativeOf(f, wrt)
	}
	rec, ok := LookupFunction(f.name)
	if !ok || rec.Derivative == nil {
		return NewDerivativeOf(f, wrt)
	}
	inner := diffRec(f.args[0], wrt, g)
	outer := rec.Derivative(f.args)
	return MulOf(outer, inner)
}

func diffSeries(s *Series, wrt *Symbol, g *Guard) Expr {
	if vs, ok := s.variable.(*Symbol); ok && vs.serial == wrt.serial {
		var next []Expr
		for i := 1; i < len(s.coeffs); i++ {
			next = append(next, MulOf(Int(int64(i)), s.coeffs[i]))
		}
		return SeriesOf(s.variable, s.point, next, s.order-1)
	}
	next := make([]Expr, len(s.coeffs))
	for i, c := range s.coeffs {
		next[i] = diffRec(c, wrt, g)
	}
	return SeriesOf(s.variable, s.point, next, s.order)
}

// Subs replaces every occurrence of from with to, rebuilding bottom-up
// through the canonicalizing constructors so the result is itself
// canonical (spec.md §4.6's substitution semantics).
func Subs(e Expr, from, to Expr) (result Expr, err error) {
	defer recoverRuntimeError(&err)
	g := NewGuard(DefaultRecursionLimit)
	return substRec(e, from, to, g), nil
}

func substRec(e Expr, from, to Expr, g *Guard) Expr {
	g = g.Enter()
	if e.Equal(from) {
		return to
	}
	switch t := e.(type) {
	case *Num, *Symbol, *Constant:
		return e
	case *Sum:
		terms := t.Terms()
		out := make([]Expr, len(terms))
		for i, term := range terms {
			out[i] = substRec(term, from, to, g)
		}
		return AddOf(out...)
	case *Product:
		factors := t.Factors()
		out := make([]Expr, len(factors))
		for i, f := range factors {
			out[i] = substRec(f, from, to, g)
		}
		return MulOf(out...)
	case *NCProduct:
		out := make([]Expr, len(t.factors))
		for i, f := range t.factors {
			out[i] = substRec(f, from, to, g)
		}
		return NCMulOf(out...)
	case *Power:
		return PowOf(substRec(t.base, from, to, g), substRec(t.exp, from, to, g))
	case *Function:
		args := make([]Expr, len(t.args))
		for i, a := range t.args {
			args[i] = substRec(a, from, to, g)
		}
		return FuncOf(t.name, args...)
	case *DerivativeOf:
		return NewDerivativeOf(substRec(t.fn, from, to, g), substRec(t.wrt, from, to, g))
	case *Matrix:
		data := make([]Expr, len(t.data))
		for i, v := range t.data {
			data[i] = substRec(v, from, to, g)
		}
		return MatrixOf(t.rows, t.cols, data)
	case *List:
		items := make([]Expr, len(t.items))
		for i, v := range t.items {
			items[i] = substRec(v, from, to, g)
		}
		return ListOf(items...)
	case *Tuple:
		items := make([]Expr, len(t.items))
		for i, v := range t.items {
			items[i] = substRec(v, from, to, g)
		}
		return TupleOf(items...)
	case *Relational:
		return RelOf(substRec(t.lhs, from, to, g), substRec(t.rhs, from, to, g), t.op)
	case *Series:
		point := substRec(t.point, from, to, g)
		coeffs := make([]Expr, len(t.coeffs))
		for i, c := range t.coeffs {
			coeffs[i] = substRec(c, from, to, g)
		}
		variable := t.variable
		if v := substRec(t.variable, from, to, g); !v.Equal(t.variable) {
			variable = v
		}
		return SeriesOf(variable, point, coeffs, t.order)
	}
	return e
}

// SubsAll applies a batch of (from,to) substitutions in a single bottom-up
// pass, so `Subs({x:y, y:x})` swaps rather than chaining (spec.md §4.6's
// simultaneous-substitution semantics).
func SubsAll(e Expr, pairs map[Expr]Expr) (result Expr, err error) {
	defer recoverRuntimeError(&err)
	g := NewGuard(DefaultRecursionLimit)
	return substAllRec(e, pairs, g), nil
}

func substAllRec(e Expr, pairs map[Expr]Expr, g *Guard) Expr {
	g = g.Enter()
	for from, to := range pairs {
		if e.Equal(from) {
			return to
		}
	}
	switch t := e.(type) {
	case *Num, *Symbol, *Constant:
		return e
	case *Sum:
		terms := t.Terms()
		out := make([]Expr, len(terms))
		for i, term := range terms {
			out[i] = substAllRec(term, pairs, g)
		}
		return AddOf(out...)
	case *Product:
		factors := t.Factors()
		out := make([]Expr, len(factors))
		for i, f := range factors {
			out[i] = substAllRec(f, pairs, g)
		}
		return MulOf(out...)
	case *NCProduct:
		out := make([]Expr, len(t.factors))
		for i, f := range t.factors {
			out[i] = substAllRec(f, pairs, g)
		}
		return NCMulOf(out...)
	case *Power:
		return PowOf(substAllRec(t.base, pairs, g), substAllRec(t.exp, pairs, g))
	case *Function:
		args := make([]Expr, len(t.args))
		for i, a := range t.args {
			args[i] = substAllRec(a, pairs, g)
		}
		return FuncOf(t.name, args...)
	case *DerivativeOf:
		return NewDerivativeOf(substAllRec(t.fn, pairs, g), substAllRec(t.wrt, pairs, g))
	case *Matrix:
		data := make([]Expr, len(t.data))
		for i, v := range t.data {
			data[i] = substAllRec(v, pairs, g)
		}
		return MatrixOf(t.rows, t.cols, data)
	case *List:
		items := make([]Expr, len(t.items))
		for i, v := range t.items {
			items[i] = substAllRec(v, pairs, g)
		}
		return ListOf(items...)
	case *Tuple:
		items := make([]Expr, len(t.items))
		for i, v := range t.items {
			items[i] = substAllRec(v, pairs, g)
		}
		return TupleOf(items...)
	case *Relational:
		return RelOf(substAllRec(t.lhs, pairs, g), substAllRec(t.rhs, pairs, g), t.op)
	case *Series:
		point := substAllRec(t.point, pairs, g)
		coeffs := make([]Expr, len(t.coeffs))
		for i, c := range t.coeffs {
			coeffs[i] = substAllRec(c, pairs, g)
		}
		variable := t.variable
		if v := substAllRec(t.variable, pairs, g); !v.Equal(t.variable) {
			variable = v
		}
		return SeriesOf(variable, point, coeffs, t.order)
	}
	return e
}

// Expand distributes products over sums and expands positive-integer
// powers of sums, recursively (spec.md's Explicit non-goals scope this to
// "no canonical form guarantee beyond univariate polynomials", so Expand
// makes no claim to fully normalize multivariate results — see Normal in
// normal.go for that).
func Expand(e Expr) (result Expr, err error) {
	defer recoverRuntimeError(&err)
	g := NewGuard(DefaultRecursionLimit)
	return expandRec(e, g), nil
}

// maxExpandDistribution bounds how large a power-of-sum expansion this
// kernel will perform; beyond it the Power is left unexpanded rather than
// building an expression with an unreasonable number of terms.
const maxExpandDistribution = 64

func expandRec(e Expr, g *Guard) Expr {
	g = g.Enter()
	switch t := e.(type) {
	case *Sum:
		terms := t.Terms()
		out := make([]Expr, len(terms))
		for i, term := range terms {
			out[i] = expandRec(term, g)
		}
		return AddOf(out...)
	case *Product:
		factors := t.Factors()
		acc := []Expr{NumOne}
		for _, f := range factors {
			fe := expandRec(f, g)
			var addends []Expr
			if s, ok := fe.(*Sum); ok {
				addends = s.Terms()
			} else {
				addends = []Expr{fe}
			}
			next := make([]Expr, 0, len(acc)*len(addends))
			for _, a := range acc {
				for _, b := range addends {
					next = append(next, MulOf(a, b))
				}
			}
			acc = next
		}
		return AddOf(acc...)
	case *Power:
		base := expandRec(t.base, g)
		if n, ok := asNum(t.exp); ok && n.val.IsPosInt() {
			if k, ok := numeric.AsInt64(n.val); ok && k >= 2 && k <= maxExpandDistribution {
				if _, isSum := base.(*Sum); isSum {
					return expandRec(distributePower(base, k), g)
				}
			}
		}
		return PowOf(base, expandRec(t.exp, g))
	case *Function:
		args := make([]Expr, len(t.args))
		for i, a := range t.args {
			args[i] = expandRec(a, g)
		}
		return FuncOf(t.name, args...)
	case *Matrix:
		data := make([]Expr, len(t.data))
		for i, v := range t.data {
			data[i] = expandRec(v, g)
		}
		return MatrixOf(t.rows, t.cols, data)
	case *List:
		items := make([]Expr, len(t.items))
		for i, v := range t.items {
			items[i] = expandRec(v, g)
		}
		return ListOf(items...)
	default:
		return e
	}
}

func distributePower(base Expr, k int64) Expr {
	sum, ok := base.(*Sum)
	if !ok {
		return PowOf(base, Int(k))
	}
	addends := sum.Terms()
	terms := []Expr{NumOne}
	for i := int64(0); i < k; i++ {
		next := make([]Expr, 0, len(terms)*len(addends))
		for _, t := range terms {
			for _, a := range addends {
				next = append(next, MulOf(t, a))
			}
		}
		terms = next
	}
	return AddOf(terms...)
}

// splitByPower returns (deg, rest) for a single term such that term ==
// rest*wrt^deg with rest free of wrt at the top level; used by Collect,
// CoeffOf and DegreeOf.
func splitByPower(term Expr, wrt *Symbol) (int64, Expr) {
	if s, ok := term.(*Symbol); ok && s.serial == wrt.serial {
		return 1, NumOne
	}
	if p, ok := term.(*Power); ok {
		if base, ok := p.base.(*Symbol); ok && base.serial == wrt.serial {
			if n, ok := asNum(p.exp); ok {
				if k, ok := numeric.AsInt64(n.val); ok {
					return k, NumOne
				}
			}
		}
	}
	if pr, ok := term.(*Product); ok {
		for idx, pp := range pr.pairs {
			if s, ok := pp.rest.(*Symbol); ok && s.serial == wrt.serial {
				if k, ok := numeric.AsInt64(pp.coeff); ok {
					rest := make([]pair, 0, len(pr.pairs)-1)
					for j, other := range pr.pairs {
						if j != idx {
							rest = append(rest, other)
						}
					}
					restExpr := recombineProductPairsOnly(rest)
					if !pr.overall.IsOne() {
						restExpr = MulOf(NewNum(pr.overall), restExpr)
					}
					return k, restExpr
				}
			}
		}
	}
	return 0, term
}

// Collect groups a sum's terms by power of wrt, e.g. `2x + 3 + x` collects
// to `3*x + 3` (grounded on the teacher's Collect/PolyCoeffsResult
// grouping).
func Collect(e Expr, wrt *Symbol) Expr {
	var terms []Expr
	if s, ok := e.(*Sum); ok {
		terms = s.Terms()
	} else {
		terms = []Expr{e}
	}
	groups := map[int64][]Expr{}
	var degrees []int64
	for _, term := range terms {
		deg, rest := splitByPower(term, wrt)
		if _, seen := groups[deg]; !seen {
			degrees = append(degrees, deg)
		}
		groups[deg] = append(groups[deg], rest)
	}
	slices.Sort(degrees)
	parts := make([]Expr, 0, len(degrees))
	for _, deg := range degrees {
		coeff := AddOf(groups[deg]...)
		if deg == 0 {
			parts = append(parts, coeff)
			continue
		}
		parts = append(parts, MulOf(coeff, PowOf(wrt, Int(deg))))
	}
	return AddOf(parts...)
}

// CoeffOf returns the coefficient of wrt^n in e.
func CoeffOf(e Expr, wrt *Symbol, n int64) Expr {
	var terms []Expr
	if s, ok := e.(*Sum); ok {
		terms = s.Terms()
	} else {
		terms = []Expr{e}
	}
	var matches []Expr
	for _, term := range terms {
		deg, rest := splitByPower(term, wrt)
		if deg == n {
			matches = append(matches, rest)
		}
	}
	if len(matches) == 0 {
		return NumZero
	}
	return AddOf(matches...)
}

// DegreeOf returns the highest power of wrt occurring in e.
func DegreeOf(e Expr, wrt *Symbol) int64 {
	switch t := e.(type) {
	case *Sum:
		var max int64
		first := true
		for _, term := range t.Terms() {
			d := DegreeOf(term, wrt)
			if first || d > max {
				max, first = d, false
			}
		}
		return max
	case *Product:
		var total int64
		for _, f := range t.Factors() {
			total += DegreeOf(f, wrt)
		}
		return total
	default:
		deg, _ := splitByPower(e, wrt)
		return deg
	}
}

// LDegreeOf returns the lowest power of wrt occurring in e (the sum case;
// otherwise identical to DegreeOf).
func LDegreeOf(e Expr, wrt *Symbol) int64 {
	s, ok := e.(*Sum)
	if !ok {
		return DegreeOf(e, wrt)
	}
	var min int64
	first := true
	for _, term := range s.Terms() {
		d := DegreeOf(term, wrt)
		if first || d < min {
			min, first = d, false
		}
	}
	return min
}
