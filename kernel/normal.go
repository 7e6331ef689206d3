package kernel

import (
	"math/big"
	"sort"

	"github.com/loveq369/symkernel/numeric"
	"github.com/loveq369/symkernel/poly"
)

// Normal puts e over a common denominator and cancels the GCD of numerator
// and denominator (spec.md §4.4). Full multivariate cancellation would need
// a multivariate polynomial representation this kernel doesn't have; per
// spec.md's explicit non-goal ("no canonical form guarantee beyond
// univariate polynomials"), Normal runs the exact poly.GCD reduction when
// the fraction has exactly one free symbol, and otherwise falls back to
// cancelling syntactically identical factors between numerator and
// denominator without a GCD computation.
func Normal(e Expr) (result Expr, err error) {
	defer recoverRuntimeError(&err)
	g := NewGuard(DefaultRecursionLimit)
	num, den := toFraction(e, g)
	num = expandRec(num, g)
	den = expandRec(den, g)

	if sym, ok := soleFreeSymbol(num, den); ok {
		if pn, pd := toUnivariatePoly(num, sym), toUnivariatePoly(den, sym); pn != nil && pd != nil && !pd.IsZero() {
			gcd := poly.GCD(pn, pd)
			if gcd.Degree() > 0 {
				if qn, _, err := poly.QuoRem(pn, gcd); err == nil {
					if qd, _, err := poly.QuoRem(pd, gcd); err == nil {
						num = fromUnivariatePoly(qn, sym)
						den = fromUnivariatePoly(qd, sym)
					}
				}
			}
		}
	} else {
		num, den = cancelCommonFactors(num, den)
	}

	if den.Equal(NumOne) {
		return num, nil
	}
	if n, ok := asNum(den); ok && n.IsMinusOne() {
		return MulOf(NumMinusOne, num), nil
	}
	return MulOf(num, PowOf(den, NumMinusOne)), nil
}

// toFraction rewrites e as a single (numerator, denominator) pair, pulling
// negative-integer-exponent powers out as denominator factors the way the
// teacher's Cancel/Apart do.
func toFraction(e Expr, g *Guard) (Expr, Expr) {
	g = g.Enter()
	switch t := e.(type) {
	case *Sum:
		num, den := Expr(NumZero), Expr(NumOne)
		for _, term := range t.Terms() {
			n, d := toFraction(term, g)
			num = AddOf(MulOf(num, d), MulOf(n, den))
			den = MulOf(den, d)
		}
		return num, den
	case *Product:
		num, den := Expr(NumOne), Expr(NumOne)
		for _, f := range t.Factors() {
			n, d := toFraction(f, g)
			num = MulOf(num, n)
			den = MulOf(den, d)
		}
		return num, den
	case *Power:
		if n, ok := asNum(t.exp); ok && n.val.IsInteger() {
			if k, ok := numeric.AsInt64(n.val); ok && k < 0 {
				bn, bd := toFraction(t.base, g)
				return PowOf(bd, Int(-k)), PowOf(bn, Int(-k))
			}
		}
		return e, NumOne
	default:
		return e, NumOne
	}
}

// freeSymbolsOf walks e collecting every distinct Symbol leaf, sorted by
// serial (spec.md §4.4's generator bookkeeping: distinct symbols are the
// simplest case of "opaque generator").
func freeSymbolsOf(e Expr) []*Symbol {
	var out []*Symbol
	var walk func(Expr)
	walk = func(x Expr) {
		if s, ok := x.(*Symbol); ok {
			out = append(out, s)
			return
		}
		for i := 0; i < x.Nops(); i++ {
			walk(x.Op(i))
		}
	}
	walk(e)
	if len(out) == 0 {
		return out
	}
	sort.Sort(bySerial(out))
	n := 0
	for i, s := range out {
		if i == 0 || out[i-1].serial != s.serial {
			out[n] = s
			n++
		}
	}
	return out[:n]
}

type bySerial []*Symbol

func (b bySerial) Len() int      { return len(b) }
func (b bySerial) Swap(i, j int) { b[i], b[j] = b[j], b[i] }
func (b bySerial) Less(i, j int) bool {
	return b[i].serial < b[j].serial
}

func soleFreeSymbol(exprs ...Expr) (*Symbol, bool) {
	seen := map[uint64]*Symbol{}
	for _, e := range exprs {
		for _, s := range freeSymbolsOf(e) {
			seen[s.serial] = s
		}
	}
	if len(seen) != 1 {
		return nil, false
	}
	for _, s := range seen {
		return s, true
	}
	return nil, false
}

// toUnivariatePoly expresses e as a poly.Poly in sym with rational
// coefficients, returning nil if e contains anything that isn't a
// rational-coefficient polynomial in sym (another free symbol, a negative
// or symbolic exponent, a function application).
func toUnivariatePoly(e Expr, sym *Symbol) *poly.Poly {
	switch t := e.(type) {
	case *Num:
		if !t.val.IsRational() {
			return nil
		}
		return poly.New(t.val.Rat())
	case *Symbol:
		if t.serial == sym.serial {
			return poly.New(big.NewRat(0, 1), big.NewRat(1, 1))
		}
		return nil
	case *Sum:
		acc := poly.Zero()
		for _, term := range t.Terms() {
			p := toUnivariatePoly(term, sym)
			if p == nil {
				return nil
			}
			acc = poly.Add(acc, p)
		}
		return acc
	case *Product:
		acc := poly.New(big.NewRat(1, 1))
		for _, f := range t.Factors() {
			p := toUnivariatePoly(f, sym)
			if p == nil {
				return nil
			}
			acc = poly.Mul(acc, p)
		}
		return acc
	case *Power:
		n, ok := asNum(t.exp)
		if !ok || !n.val.IsInteger() {
			return nil
		}
		k, ok := numeric.AsInt64(n.val)
		if !ok || k < 0 {
			return nil
		}
		base := toUnivariatePoly(t.base, sym)
		if base == nil {
			return nil
		}
		result := poly.New(big.NewRat(1, 1))
		for i := int64(0); i < k; i++ {
			result = poly.Mul(result, base)
		}
		return result
	default:
		return nil
	}
}

func fromUnivariatePoly(p *poly.Poly, sym *Symbol) Expr {
	var terms []Expr
	for i, c := range p.Coeffs {
		if c.Sign() == 0 {
			continue
		}
		coeffExpr := NewNum(numeric.NewRat(c))
		if i == 0 {
			terms = append(terms, coeffExpr)
			continue
		}
		terms = append(terms, MulOf(coeffExpr, PowOf(sym, Int(int64(i)))))
	}
	return AddOf(terms...)
}

// factorWithExp is one (base, integer exponent) entry extracted from a
// product for best-effort multivariate cancellation.
type factorWithExp struct {
	base Expr
	exp  int64
}

func factorsWithExp(e Expr) ([]factorWithExp, bool) {
	if pr, ok := e.(*Product); ok {
		out := make([]factorWithExp, 0, len(pr.pairs))
		for _, p := range pr.pairs {
			k, ok := numeric.AsInt64(p.coeff)
			if !ok || k < 0 {
				return nil, false
			}
			out = append(out, factorWithExp{base: p.rest, exp: k})
		}
		return out, true
	}
	if p, ok := e.(*Power); ok {
		if n, ok := asNum(p.exp); ok && n.val.IsInteger() {
			if k, ok := numeric.AsInt64(n.val); ok && k >= 0 {
				return []factorWithExp{{base: p.base, exp: k}}, true
			}
		}
		return nil, false
	}
	if _, ok := asNum(e); ok {
		return []factorWithExp{}, true
	}
	return []factorWithExp{{base: e, exp: 1}}, true
}

func rebuildFactors(factors []factorWithExp, overall Expr) Expr {
	terms := []Expr{overall}
	for _, f := range factors {
		if f.exp == 0 {
			continue
		}
		terms = append(terms, PowOf(f.base, Int(f.exp)))
	}
	return MulOf(terms...)
}

// cancelCommonFactors removes factors syntactically shared between num and
// den (the best-effort path used when more than one free symbol is
// present, so a full poly.GCD can't be computed — see Normal's doc
// comment).
func cancelCommonFactors(num, den Expr) (Expr, Expr) {
	numFactors, ok1 := factorsWithExp(num)
	denFactors, ok2 := factorsWithExp(den)
	if !ok1 || !ok2 {
		return num, den
	}
	for i := range numFactors {
		for j := range denFactors {
			if numFactors[i].exp == 0 || denFactors[j].exp == 0 {
				continue
			}
			if numFactors[i].base.Equal(denFactors[j].base) {
				m := numFactors[i].exp
				if denFactors[j].exp < m {
					m = denFactors[j].exp
				}
				numFactors[i].exp -= m
				denFactors[j].exp -= m
			}
		}
	}
	numOverall := Expr(NumOne)
	if n, ok := asNum(num); ok {
		numOverall = n
	} else if pr, ok := num.(*Product); ok {
		numOverall = NewNum(pr.overall)
	}
	denOverall := Expr(NumOne)
	if n, ok := asNum(den); ok {
		denOverall = n
	} else if pr, ok := den.(*Product); ok {
		denOverall = NewNum(pr.overall)
	}
	return rebuildFactors(numFactors, numOverall), rebuildFactors(denFactors, denOverall)
}
