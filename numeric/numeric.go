// Package numeric implements the exact-number backend that the algebraic
// kernel is built on: integers and rationals via math/big, a complex-rational
// pair for exact Gaussian rationals, and arbitrary-precision floats for
// numeric evaluation. Nothing above this package needs to know which of the
// four representations a value actually holds; every operation promotes to
// the representation with the least information loss.
package numeric

import (
	"fmt"
	"math/big"

	"github.com/pkg/errors"
)

// Tag identifies which of the four internal representations a Numeric holds.
type Tag int

const (
	TagInteger Tag = iota
	TagRational
	TagComplex
	TagFloat
)

func (t Tag) String() string {
	switch t {
	case TagInteger:
		return "integer"
	case TagRational:
		return "rational"
	case TagComplex:
		return "complex"
	case TagFloat:
		return "float"
	}
	return "unknown"
}

// ErrDivisionByZero is returned (wrapped) whenever a Numeric operation would
// divide by an exact zero.
var ErrDivisionByZero = errors.New("numeric: division by zero")

// ErrDomain is returned (wrapped) for domain violations such as an integer
// root of a negative number in a real-only context.
var ErrDomain = errors.New("numeric: domain violation")

// Numeric is an immutable exact or floating value. The zero value is not
// valid; construct with the New* functions.
type Numeric struct {
	tag Tag
	rat *big.Rat   // TagInteger, TagRational
	re  *big.Rat   // TagComplex: real part
	im  *big.Rat   // TagComplex: imaginary part
	flt *big.Float // TagFloat
}

// precisionBits is the default bit precision used for float construction and
// mixed-mode promotion. It is process-wide and mutated only through
// SetPrecision (config.Config.Apply calls it with a value derived from
// Config.Digits).
var precisionBits uint = 64

// SetPrecision updates the process-wide default float precision, in bits.
// Not safe to call concurrently with in-flight float construction; intended
// to be set once during process start-up.
func SetPrecision(bits uint) {
	if bits < 24 {
		bits = 24
	}
	precisionBits = bits
}

// Precision returns the current process-wide default float precision in bits.
func Precision() uint { return precisionBits }

// NewInt builds an exact integer.
func NewInt(n int64) *Numeric {
	return &Numeric{tag: TagInteger, rat: new(big.Rat).SetInt64(n)}
}

// NewBigInt builds an exact integer from a big.Int.
func NewBigInt(n *big.Int) *Numeric {
	return &Numeric{tag: TagInteger, rat: new(big.Rat).SetInt(n)}
}

// NewFrac builds an exact rational p/q, reducing tag to TagInteger when q
// divides p exactly.
func NewFrac(p, q int64) *Numeric {
	if q == 0 {
		panic(ErrDivisionByZero)
	}
	r := new(big.Rat).SetFrac(big.NewInt(p), big.NewInt(q))
	return fromRat(r)
}

// NewRat builds a Numeric from a copy of an existing big.Rat.
func NewRat(r *big.Rat) *Numeric { return fromRat(new(big.Rat).Set(r)) }

func fromRat(r *big.Rat) *Numeric {
	tag := TagRational
	if r.IsInt() {
		tag = TagInteger
	}
	return &Numeric{tag: tag, rat: r}
}

// NewComplex builds an exact Gaussian rational re + im*i.
func NewComplex(re, im *big.Rat) *Numeric {
	if im.Sign() == 0 {
		return fromRat(new(big.Rat).Set(re))
	}
	return &Numeric{tag: TagComplex, re: new(big.Rat).Set(re), im: new(big.Rat).Set(im)}
}

// NewFloat builds an arbitrary-precision float at the process-wide default
// precision.
func NewFloat(f float64) *Numeric {
	return &Numeric{tag: TagFloat, flt: new(big.Float).SetPrec(precisionBits).SetFloat64(f)}
}

// NewFloatPrec builds a float at an explicit precision, in bits.
func NewFloatPrec(f float64, bits uint) *Numeric {
	return &Numeric{tag: TagFloat, flt: new(big.Float).SetPrec(bits).SetFloat64(f)}
}

// Process-wide singletons, provided to avoid allocation on the hot path.
var (
	Zero      = NewInt(0)
	One       = NewInt(1)
	MinusOne  = NewInt(-1)
	Two       = NewInt(2)
	Three     = NewInt(3)
	Half      = NewFrac(1, 2)
	MinusHalf = NewFrac(-1, 2)
)

// Tag reports which internal representation n holds.
func (n *Numeric) Tag() Tag { return n.tag }

// --- Predicates ---

func (n *Numeric) IsZero() bool {
	switch n.tag {
	case TagInteger, TagRational:
		return n.rat.Sign() == 0
	case TagComplex:
		return n.re.Sign() == 0 && n.im.Sign() == 0
	case TagFloat:
		return n.flt.Sign() == 0
	}
	return false
}

func (n *Numeric) IsOne() bool {
	switch n.tag {
	case TagInteger, TagRational:
		return n.rat.Cmp(bigOne) == 0
	case TagFloat:
		f, _ := n.flt.Float64()
		return f == 1
	}
	return false
}

func (n *Numeric) IsMinusOne() bool {
	switch n.tag {
	case TagInteger, TagRational:
		return n.rat.Cmp(bigMinusOne) == 0
	case TagFloat:
		f, _ := n.flt.Float64()
		return f == -1
	}
	return false
}

var bigOne = big.NewRat(1, 1)
var bigMinusOne = big.NewRat(-1, 1)

func (n *Numeric) IsInteger() bool {
	switch n.tag {
	case TagInteger:
		return true
	case TagFloat:
		return n.flt.IsInt()
	}
	return false
}

func (n *Numeric) IsRational() bool { return n.tag == TagInteger || n.tag == TagRational }
func (n *Numeric) IsReal() bool     { return n.tag != TagComplex }
func (n *Numeric) IsComplex() bool  { return n.tag == TagComplex }
func (n *Numeric) IsFloat() bool    { return n.tag == TagFloat }

func (n *Numeric) IsPositive() bool {
	switch n.tag {
	case TagInteger, TagRational:
		return n.rat.Sign() > 0
	case TagFloat:
		return n.flt.Sign() > 0
	}
	return false
}

func (n *Numeric) IsNegative() bool {
	switch n.tag {
	case TagInteger, TagRational:
		return n.rat.Sign() < 0
	case TagFloat:
		return n.flt.Sign() < 0
	}
	return false
}

func (n *Numeric) IsPosInt() bool { return n.IsInteger() && n.IsPositive() }

// --- Conversions ---

// Rat returns the exact rational value; a float yields the exact rational
// value of its binary representation. Panics if n is complex.
func (n *Numeric) Rat() *big.Rat {
	switch n.tag {
	case TagInteger, TagRational:
		return new(big.Rat).Set(n.rat)
	case TagFloat:
		r := new(big.Rat)
		n.flt.Rat(r)
		return r
	}
	panic("numeric: Rat() called on complex value")
}

// Float64 returns a float64 approximation, valid for any real tag.
func (n *Numeric) Float64() float64 {
	switch n.tag {
	case TagInteger, TagRational:
		f, _ := n.rat.Float64()
		return f
	case TagFloat:
		f, _ := n.flt.Float64()
		return f
	case TagComplex:
		f, _ := n.re.Float64()
		return f
	}
	return 0
}

// BigFloat returns an arbitrary-precision float approximation at the
// process-wide default precision.
func (n *Numeric) BigFloat() *big.Float {
	switch n.tag {
	case TagFloat:
		return new(big.Float).Copy(n.flt)
	case TagComplex:
		f, _ := new(big.Float).SetPrec(precisionBits).SetString(n.re.FloatString(64))
		return f
	default:
		return new(big.Float).SetPrec(precisionBits).SetRat(n.rat)
	}
}

func (n *Numeric) String() string {
	switch n.tag {
	case TagInteger:
		return n.rat.Num().String()
	case TagRational:
		return n.rat.RatString()
	case TagComplex:
		sign := "+"
		im := new(big.Rat).Set(n.im)
		if im.Sign() < 0 {
			sign = "-"
			im.Neg(im)
		}
		return fmt.Sprintf("(%s%s%sI)", ratString(n.re), sign, ratString(im))
	case TagFloat:
		return n.flt.Text('g', -1)
	}
	return "?"
}

func ratString(r *big.Rat) string {
	if r.IsInt() {
		return r.Num().String()
	}
	return r.RatString()
}

// LaTeX renders the value in the same conventions as the kernel's default
// text form.
func (n *Numeric) LaTeX() string {
	switch n.tag {
	case TagInteger:
		return n.rat.Num().String()
	case TagRational:
		v := new(big.Rat).Set(n.rat)
		sign := ""
		if v.Sign() < 0 {
			sign = "-"
			v.Neg(v)
		}
		return fmt.Sprintf("%s\\frac{%s}{%s}", sign, v.Num().String(), v.Denom().String())
	case TagComplex:
		sign := "+"
		im := new(big.Rat).Set(n.im)
		if im.Sign() < 0 {
			sign = "-"
			im.Neg(im)
		}
		return fmt.Sprintf("\\left(%s%s%si\\right)", ratString(n.re), sign, ratString(im))
	case TagFloat:
		return n.flt.Text('g', -1)
	}
	return "?"
}

// Equal reports exact value equality (not just numeric closeness).
func (n *Numeric) Equal(o *Numeric) bool {
	if n.tag == TagComplex || o.tag == TagComplex {
		if n.tag != o.tag {
			return false
		}
		return n.re.Cmp(o.re) == 0 && n.im.Cmp(o.im) == 0
	}
	return Cmp(n, o) == 0
}

// promote returns both operands lifted to the wider of their two tags, in
// the order TagInteger < TagRational < TagComplex < TagFloat (complex and
// float do not mix in this kernel: a complex operand forces both to
// complex-with-zero-imaginary unless one side is already float, in which
// case the float side wins and the complex side is truncated to its real
// part — mixing complex and float is rare enough in practice that exactness
// is preferred whenever the caller has not already gone floating).
func promote(a, b *Numeric) (Tag, *Numeric, *Numeric) {
	if a.tag == TagFloat || b.tag == TagFloat {
		return TagFloat, a, b
	}
	if a.tag == TagComplex || b.tag == TagComplex {
		return TagComplex, a, b
	}
	if a.tag == TagRational || b.tag == TagRational {
		return TagRational, a, b
	}
	return TagInteger, a, b
}

func (n *Numeric) asComplexParts() (re, im *big.Rat) {
	if n.tag == TagComplex {
		return n.re, n.im
	}
	return n.rat, new(big.Rat)
}

// Add returns a+b.
func Add(a, b *Numeric) *Numeric {
	tag, a, b := promote(a, b)
	switch tag {
	case TagFloat:
		return &Numeric{tag: TagFloat, flt: new(big.Float).SetPrec(precisionBits).Add(a.BigFloat(), b.BigFloat())}
	case TagComplex:
		are, aim := a.asComplexParts()
		bre, bim := b.asComplexParts()
		return NewComplex(new(big.Rat).Add(are, bre), new(big.Rat).Add(aim, bim))
	default:
		return fromRat(new(big.Rat).Add(a.rat, b.rat))
	}
}

// Sub returns a-b.
func Sub(a, b *Numeric) *Numeric { return Add(a, Neg(b)) }

// Neg returns -a.
func Neg(a *Numeric) *Numeric {
	switch a.tag {
	case TagFloat:
		return &Numeric{tag: TagFloat, flt: new(big.Float).SetPrec(precisionBits).Neg(a.flt)}
	case TagComplex:
		return NewComplex(new(big.Rat).Neg(a.re), new(big.Rat).Neg(a.im))
	default:
		return fromRat(new(big.Rat).Neg(a.rat))
	}
}

// Mul returns a*b.
func Mul(a, b *Numeric) *Numeric {
	tag, a, b := promote(a, b)
	switch tag {
	case TagFloat:
		return &Numeric{tag: TagFloat, flt: new(big.Float).SetPrec(precisionBits).Mul(a.BigFloat(), b.BigFloat())}
	case TagComplex:
		are, aim := a.asComplexParts()
		bre, bim := b.asComplexParts()
		re := new(big.Rat).Sub(new(big.Rat).Mul(are, bre), new(big.Rat).Mul(aim, bim))
		im := new(big.Rat).Add(new(big.Rat).Mul(are, bim), new(big.Rat).Mul(aim, bre))
		return NewComplex(re, im)
	default:
		return fromRat(new(big.Rat).Mul(a.rat, b.rat))
	}
}

// Inv returns 1/a. Panics with ErrDivisionByZero if a is exactly zero.
func Inv(a *Numeric) *Numeric {
	if a.IsZero() {
		panic(errors.Wrap(ErrDivisionByZero, "numeric.Inv"))
	}
	switch a.tag {
	case TagFloat:
		return &Numeric{tag: TagFloat, flt: new(big.Float).SetPrec(precisionBits).Quo(big.NewFloat(1), a.flt)}
	case TagComplex:
		denom := new(big.Rat).Add(new(big.Rat).Mul(a.re, a.re), new(big.Rat).Mul(a.im, a.im))
		re := new(big.Rat).Quo(a.re, denom)
		im := new(big.Rat).Neg(new(big.Rat).Quo(a.im, denom))
		return NewComplex(re, im)
	default:
		return fromRat(new(big.Rat).Inv(a.rat))
	}
}

// Div returns a/b. Panics with ErrDivisionByZero if b is exactly zero.
func Div(a, b *Numeric) *Numeric { return Mul(a, Inv(b)) }

// Abs returns the absolute value (modulus, for complex).
func Abs(a *Numeric) *Numeric {
	switch a.tag {
	case TagFloat:
		return &Numeric{tag: TagFloat, flt: new(big.Float).SetPrec(precisionBits).Abs(a.flt)}
	case TagComplex:
		f := a.BigFloat()
		_ = f
		re, _ := a.re.Float64()
		im, _ := a.im.Float64()
		return NewFloat(hypot(re, im))
	default:
		r := new(big.Rat).Set(a.rat)
		if r.Sign() < 0 {
			r.Neg(r)
		}
		return fromRat(r)
	}
}

func hypot(a, b float64) float64 {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	if a == 0 && b == 0 {
		return 0
	}
	// Newton iteration on x^2 = a^2+b^2 is unnecessary; math.Hypot semantics
	// suffice and importing math here would be the obvious idiomatic choice,
	// but numeric.go otherwise stays big.Rat/big.Float only, so we do the
	// two-multiply-and-sqrt by hand via big.Float for consistency.
	sq := new(big.Float).SetPrec(precisionBits)
	sq.Add(sq.Mul(big.NewFloat(a), big.NewFloat(a)), new(big.Float).Mul(big.NewFloat(b), big.NewFloat(b)))
	sq.Sqrt(sq)
	f, _ := sq.Float64()
	return f
}

// Cmp compares two real Numerics; panics if either is complex.
func Cmp(a, b *Numeric) int {
	if a.tag == TagComplex || b.tag == TagComplex {
		panic(errors.Wrap(ErrDomain, "numeric.Cmp: complex values are unordered"))
	}
	tag, a, b := promote(a, b)
	if tag == TagFloat {
		return a.BigFloat().Cmp(b.BigFloat())
	}
	return a.rat.Cmp(b.rat)
}

// GCD returns the non-negative integer GCD of two integer Numerics.
func GCD(a, b *Numeric) *Numeric {
	if !a.IsInteger() || !b.IsInteger() {
		panic(errors.Wrap(ErrDomain, "numeric.GCD: operands must be integers"))
	}
	x := new(big.Int).Abs(a.rat.Num())
	y := new(big.Int).Abs(b.rat.Num())
	g := new(big.Int).GCD(nil, nil, x, y)
	return NewBigInt(g)
}

// Sign returns -1, 0 or 1 for a real Numeric.
func Sign(a *Numeric) int {
	switch a.tag {
	case TagFloat:
		return a.flt.Sign()
	case TagComplex:
		panic(errors.Wrap(ErrDomain, "numeric.Sign: complex values have no sign"))
	default:
		return a.rat.Sign()
	}
}

// AsInt64 returns the integer value; the second result is false if n is not
// an exact integer representable in an int64.
func AsInt64(n *Numeric) (int64, bool) {
	if !n.IsInteger() {
		return 0, false
	}
	switch n.tag {
	case TagInteger:
		if !n.rat.IsInt() {
			return 0, false
		}
		if !n.rat.Num().IsInt64() {
			return 0, false
		}
		return n.rat.Num().Int64(), true
	case TagFloat:
		bi, acc := n.flt.Int(nil)
		if acc != big.Exact || !bi.IsInt64() {
			return 0, false
		}
		return bi.Int64(), true
	}
	return 0, false
}
