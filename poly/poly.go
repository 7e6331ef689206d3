// Package poly implements univariate polynomial arithmetic over exact
// rational coefficients: division, content/primitive-part extraction,
// subresultant-PRS GCD, and the square-free part p/gcd(p, p') (Sqrfree
// does not return the individual square-free factors or their
// multiplicities). It has no
// dependency on package kernel — kernel imports poly, not the other way
// around — so the polynomial layer can be exercised and tested in
// isolation, matching spec.md §4.4's description of normalization as its
// own component sitting below the node hierarchy.
package poly

import (
	"math/big"

	"github.com/pkg/errors"
)

// ErrDivisionByZero is returned when a polynomial operation would divide by
// the zero polynomial.
var ErrDivisionByZero = errors.New("poly: division by zero polynomial")

// Poly is a univariate polynomial with big.Rat coefficients, stored dense,
// lowest degree first (Coeffs[i] is the coefficient of x^i). The zero
// polynomial is represented by an empty Coeffs slice.
type Poly struct {
	Coeffs []*big.Rat
}

// New builds a Poly from coefficients, lowest degree first, trimming
// trailing zero coefficients.
func New(coeffs ...*big.Rat) *Poly {
	p := &Poly{Coeffs: append([]*big.Rat(nil), coeffs...)}
	return p.trim()
}

func (p *Poly) trim() *Poly {
	n := len(p.Coeffs)
	for n > 0 && p.Coeffs[n-1].Sign() == 0 {
		n--
	}
	p.Coeffs = p.Coeffs[:n]
	return p
}

// Zero is the additive identity polynomial.
func Zero() *Poly { return &Poly{} }

// IsZero reports whether p is the zero polynomial.
func (p *Poly) IsZero() bool { return len(p.Coeffs) == 0 }

// Degree returns p's degree, or -1 for the zero polynomial.
func (p *Poly) Degree() int { return len(p.Coeffs) - 1 }

// Coeff returns the coefficient of x^i, or 0 if i exceeds the degree.
func (p *Poly) Coeff(i int) *big.Rat {
	if i < 0 || i >= len(p.Coeffs) {
		return new(big.Rat)
	}
	return p.Coeffs[i]
}

// LeadingCoeff returns the coefficient of the highest-degree term.
func (p *Poly) LeadingCoeff() *big.Rat {
	if p.IsZero() {
		return new(big.Rat)
	}
	return p.Coeffs[len(p.Coeffs)-1]
}

// Clone returns a deep copy of p.
func (p *Poly) Clone() *Poly {
	c := make([]*big.Rat, len(p.Coeffs))
	for i, v := range p.Coeffs {
		c[i] = new(big.Rat).Set(v)
	}
	return &Poly{Coeffs: c}
}

// Add returns p+q.
func Add(p, q *Poly) *Poly {
	n := len(p.Coeffs)
	if len(q.Coeffs) > n {
		n = len(q.Coeffs)
	}
	out := make([]*big.Rat, n)
	for i := 0; i < n; i++ {
		out[i] = new(big.Rat).Add(p.Coeff(i), q.Coeff(i))
	}
	return New(out...)
}

// Sub returns p-q.
func Sub(p, q *Poly) *Poly { return Add(p, Neg(q)) }

// Neg returns -p.
func Neg(p *Poly) *Poly {
	out := make([]*big.Rat, len(p.Coeffs))
	for i, c := range p.Coeffs {
		out[i] = new(big.Rat).Neg(c)
	}
	return New(out...)
}

// Scale returns c*p.
func Scale(c *big.Rat, p *Poly) *Poly {
	out := make([]*big.Rat, len(p.Coeffs))
	for i, v := range p.Coeffs {
		out[i] = new(big.Rat).Mul(c, v)
	}
	return New(out...)
}

// Mul returns p*q.
func Mul(p, q *Poly) *Poly {
	if p.IsZero() || q.IsZero() {
		return Zero()
	}
	out := make([]*big.Rat, len(p.Coeffs)+len(q.Coeffs)-1)
	for i := range out {
		out[i] = new(big.Rat)
	}
	for i, a := range p.Coeffs {
		if a.Sign() == 0 {
			continue
		}
		for j, b := range q.Coeffs {
			out[i+j].Add(out[i+j], new(big.Rat).Mul(a, b))
		}
	}
	return New(out...)
}

// QuoRem returns (quotient, remainder) of p divided by q via the standard
// schoolbook algorithm over exact rationals. Returns ErrDivisionByZero if q
// is the zero polynomial.
func QuoRem(p, q *Poly) (quo, rem *Poly, err error) {
	if q.IsZero() {
		return nil, nil, ErrDivisionByZero
	}
	rem = p.Clone()
	quoCoeffs := make([]*big.Rat, 0)
	lc := q.LeadingCoeff()
	for rem.Degree() >= q.Degree() && !rem.IsZero() {
		shift := rem.Degree() - q.Degree()
		coeff := new(big.Rat).Quo(rem.LeadingCoeff(), lc)
		for len(quoCoeffs) <= shift {
			quoCoeffs = append(quoCoeffs, new(big.Rat))
		}
		quoCoeffs[shift].Set(coeff)
		term := make([]*big.Rat, shift+1)
		for i := range term {
			term[i] = new(big.Rat)
		}
		term[shift] = coeff
		rem = Sub(rem, Mul(New(term...), q))
	}
	return New(quoCoeffs...), rem, nil
}

// Content returns the GCD of p's numerators divided by the LCM of its
// denominators — the largest rational multiple of an integer-coefficient
// polynomial that divides p exactly — and Primitive returns p with that
// content divided out, so Primitive's coefficients are integers with GCD 1.
func Content(p *Poly) *big.Rat {
	if p.IsZero() {
		return new(big.Rat)
	}
	num := new(big.Int)
	den := big.NewInt(1)
	for _, c := range p.Coeffs {
		if c.Sign() == 0 {
			continue
		}
		num.GCD(nil, nil, num, new(big.Int).Abs(c.Num()))
		den = lcm(den, c.Denom())
	}
	g := new(big.Rat).SetFrac(num, den)
	if p.LeadingCoeff().Sign() < 0 {
		g.Neg(g)
	}
	return g
}

func lcm(a, b *big.Int) *big.Int {
	if a.Sign() == 0 || b.Sign() == 0 {
		return big.NewInt(0)
	}
	g := new(big.Int).GCD(nil, nil, a, b)
	return new(big.Int).Div(new(big.Int).Mul(a, b), g)
}

// Primitive returns p divided by its content.
func Primitive(p *Poly) *Poly {
	c := Content(p)
	if c.Sign() == 0 {
		return Zero()
	}
	return Scale(new(big.Rat).Inv(c), p)
}

// Diff returns p's formal derivative.
func Diff(p *Poly) *Poly {
	if p.Degree() <= 0 {
		return Zero()
	}
	out := make([]*big.Rat, p.Degree())
	for i := 1; i <= p.Degree(); i++ {
		out[i-1] = new(big.Rat).Mul(big.NewRat(int64(i), 1), p.Coeff(i))
	}
	return New(out...)
}

// GCD returns the monic GCD of p and q via the Euclidean PRS over
// rationals (subresultant pseudo-remainder sequence simplifies, over an
// exact field, to the ordinary Euclidean algorithm with remainders taken
// at each step — spec.md §4.4's "subresultant PRS" names the integer-
// coefficient variant of the same algorithm this implements over
// rationals, normalizing at the end instead of tracking subresultant
// scale factors).
func GCD(p, q *Poly) *Poly {
	a, b := p.Clone(), q.Clone()
	for !b.IsZero() {
		_, r, err := QuoRem(a, b)
		if err != nil {
			break
		}
		a, b = b, r
	}
	if a.IsZero() {
		return Zero()
	}
	return monic(a)
}

func monic(p *Poly) *Poly {
	lc := p.LeadingCoeff()
	if lc.Sign() == 0 {
		return p
	}
	return Scale(new(big.Rat).Inv(lc), p)
}

// Sqrfree returns p's square-free part: p divided by gcd(p, p').
func Sqrfree(p *Poly) *Poly {
	if p.Degree() <= 0 {
		return p.Clone()
	}
	g := GCD(p, Diff(p))
	if g.IsZero() || g.Degree() == 0 {
		return p.Clone()
	}
	q, _, err := QuoRem(p, g)
	if err != nil {
		return p.Clone()
	}
	return q
}

// Eval evaluates p at x via Horner's method.
func Eval(p *Poly, x *big.Rat) *big.Rat {
	result := new(big.Rat)
	for i := p.Degree(); i >= 0; i-- {
		result.Mul(result, x)
		result.Add(result, p.Coeff(i))
	}
	return result
}

// Equal reports whether p and q have identical coefficient sequences.
func Equal(p, q *Poly) bool {
	if len(p.Coeffs) != len(q.Coeffs) {
		return false
	}
	for i := range p.Coeffs {
		if p.Coeffs[i].Cmp(q.Coeffs[i]) != 0 {
			return false
		}
	}
	return true
}
