package kernel

import (
	"github.com/loveq369/symkernel/numeric"
)

// Power is base^exp (spec.md §3, §4.2). A numeric exponent collapses a
// numeric base immediately (exact integer powers, exact inverses); a
// symbolic base or non-integer symbolic exponent stays as a node.
type Power struct {
	envelope
	base Expr
	exp  Expr
}

// PowOf is the canonicalizing constructor for Power, grounded on the
// teacher's Pow.Simplify (numeric folding, nested-power collapsing,
// exponent-1/0 elision).
func PowOf(base, exp Expr) Expr {
	if n, ok := asNum(exp); ok {
		if n.IsZero() {
			return NumOne
		}
		if n.IsOne() {
			return base
		}
		if bn, ok := asNum(base); ok {
			if folded, ok := foldNumericPower(bn.val, n.val); ok {
				return NewNum(folded)
			}
		}
		if inner, ok := base.(*Power); ok {
			if innerExp, ok := asNum(inner.exp); ok {
				return PowOf(inner.base, NewNum(numeric.Mul(innerExp.val, n.val)))
			}
		}
	}
	if base.Equal(NumZero) {
		return NumZero
	}
	if base.Equal(NumOne) {
		return NumOne
	}
	return newPowerRaw(base, exp)
}

// newPowerRaw builds a Power node without re-running PowOf's collapsing
// rules, for callers (expairseq.recombine) that already know the result is
// canonical.
func newPowerRaw(base, exp Expr) Expr {
	p := &Power{base: base, exp: exp}
	p.kind = KindPower
	p.hash = hashFold(fnv1a64("power"), base.Hash(), exp.Hash())
	p.setEvaluated()
	return global.Intern(p)
}

// foldNumericPower computes base^exp exactly when exp is an integer,
// including negative integers (via Inv), and when exp is a rational p/q and
// base is an exact rational whose numerator and denominator are perfect
// q-th powers (e.g. 4^(1/2) == 2); any
// other combination (irrational result, non-perfect root) is left unfolded
// so the caller keeps the symbolic Power node rather than lose exactness.
func foldNumericPower(base, exp *numeric.Numeric) (*numeric.Numeric, bool) {
	if exp.IsInteger() {
		k, ok := numeric.AsInt64(exp)
		if !ok {
			return nil, false // exponent too large to be a sane exact power
		}
		return intPower(base, k), true
	}
	if !exp.IsRational() || !base.IsRational() {
		return nil, false
	}
	num, den, ok := ratNumDen(exp)
	if !ok || den < 2 || den > 64 {
		return nil, false
	}
	root, ok := exactIntegerRoot(base, den)
	if !ok {
		return nil, false
	}
	return intPower(root, num), true
}

func intPower(base *numeric.Numeric, k int64) *numeric.Numeric {
	neg := k < 0
	if neg {
		k = -k
	}
	result := numeric.One
	b := base
	for k > 0 {
		if k&1 == 1 {
			result = numeric.Mul(result, b)
		}
		b = numeric.Mul(b, b)
		k >>= 1
	}
	if neg {
		result = numeric.Inv(result)
	}
	return result
}

func ratNumDen(n *numeric.Numeric) (num, den int64, ok bool) {
	r := n.Rat()
	if !r.Num().IsInt64() || !r.Denom().IsInt64() {
		return 0, 0, false
	}
	return r.Num().Int64(), r.Denom().Int64(), true
}

// exactIntegerRoot returns base^(1/den) when it is an exact rational: the
// positive root for a positive base, the negated root of |base| for an odd
// root of a negative base; an even root of a negative base is rejected.
func exactIntegerRoot(base *numeric.Numeric, den int64) (*numeric.Numeric, bool) {
	if base.IsZero() {
		return numeric.Zero, true
	}
	neg := base.IsNegative()
	if neg && den%2 == 0 {
		return nil, false
	}
	abs := numeric.Abs(base)
	r := abs.Rat()
	num, ok1 := integerRoot(r.Num(), den)
	dn, ok2 := integerRoot(r.Denom(), den)
	if !ok1 || !ok2 {
		return nil, false
	}
	root := numeric.NewFrac(num, dn)
	if neg {
		root = numeric.Neg(root)
	}
	return root, true
}

// integerRoot returns x such that x^n == v for a non-negative big.Int-valued
// v fitting in int64, by trial exponentiation (v here is always a small
// polynomial/rational numerator or denominator from user-entered numerals,
// never an arbitrary-precision bignum, so this is adequate).
func integerRoot(v interface{ Int64() int64 }, n int64) (int64, bool) {
	target := v.Int64()
	if target < 0 {
		return 0, false
	}
	if target == 0 {
		return 0, true
	}
	for x := int64(1); ; x++ {
		p := int64(1)
		overflow := false
		for i := int64(0); i < n; i++ {
			p *= x
			if p > target {
				overflow = true
				break
			}
		}
		if overflow {
			return 0, false
		}
		if p == target {
			return x, true
		}
		if p > target {
			return 0, false
		}
	}
}

func (p *Power) Base() Expr { return p.base }
func (p *Power) Exp() Expr  { return p.exp }

func (p *Power) Nops() int { return 2 }
func (p *Power) Op(i int) Expr {
	switch i {
	case 0:
		return p.base
	case 1:
		return p.exp
	}
	panic(WrapRange("Op(%d): power has 2 children", i))
}

func (p *Power) Has(sub Expr) bool { return hasDefault(p, sub) }

func (p *Power) Info(pred Predicate) bool {
	switch pred {
	case PredPolynomial:
		if n, ok := asNum(p.exp); ok && n.val.IsPosInt() {
			return p.base.Info(PredPolynomial)
		}
		return false
	case PredReal:
		return p.base.Info(PredReal) && p.exp.Info(PredReal)
	}
	return false
}

func (p *Power) Equal(other Expr) bool {
	o, ok := other.(*Power)
	return ok && p.base.Equal(o.base) && p.exp.Equal(o.exp)
}

func (p *Power) String() string {
	baseStr := p.base.String()
	if needsParensAsBase(p.base) {
		baseStr = "(" + baseStr + ")"
	}
	if n, ok := asNum(p.exp); ok && n.val.IsMinusOne() {
		return "1/" + baseStr
	}
	expStr := p.exp.String()
	if needsParensAsExponent(p.exp) {
		expStr = "(" + expStr + ")"
	}
	return baseStr + "^" + expStr
}

func (p *Power) LaTeX() string {
	if n, ok := asNum(p.exp); ok {
		if n.val.IsMinusOne() {
			return "\\frac{1}{" + p.base.LaTeX() + "}"
		}
		if half := numeric.Half; n.val.Equal(half) {
			return "\\sqrt{" + p.base.LaTeX() + "}"
		}
	}
	baseStr := p.base.LaTeX()
	if needsParensAsBase(p.base) {
		baseStr = "\\left(" + baseStr + "\\right)"
	}
	return "{" + baseStr + "}^{" + p.exp.LaTeX() + "}"
}

func needsParensAsBase(e Expr) bool {
	switch e.Kind() {
	case KindSum, KindProduct, KindNCProduct, KindPower:
		return true
	}
	if n, ok := asNum(e); ok {
		return n.val.IsNegative() || n.val.IsRational() && !n.val.IsInteger()
	}
	return false
}

func needsParensAsExponent(e Expr) bool {
	switch e.Kind() {
	case KindSum, KindProduct, KindNCProduct:
		return true
	}
	return false
}
