package poly

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func r(n int64) *big.Rat { return big.NewRat(n, 1) }

func TestQuoRem(t *testing.T) {
	// x^2 - 1 divided by x - 1 => quotient x+1, remainder 0.
	p := New(r(-1), r(0), r(1))
	q := New(r(-1), r(1))
	quo, rem, err := QuoRem(p, q)
	require.NoError(t, err)
	assert.True(t, rem.IsZero())
	assert.True(t, Equal(quo, New(r(1), r(1))), "quo=%v", quo.Coeffs)
}

func TestQuoRemDivisionByZero(t *testing.T) {
	_, _, err := QuoRem(New(r(1)), Zero())
	assert.ErrorIs(t, err, ErrDivisionByZero)
}

func TestGCD(t *testing.T) {
	// gcd(x^2-1, x-1) should be monic (x-1).
	p := New(r(-1), r(0), r(1))
	q := New(r(-1), r(1))
	g := GCD(p, q)
	assert.True(t, Equal(g, New(r(-1), r(1))), "g=%v", g.Coeffs)
}

func TestContentAndPrimitive(t *testing.T) {
	// 2x^2 + 4x + 6 has content 2, primitive x^2 + 2x + 3.
	p := New(r(6), r(4), r(2))
	c := Content(p)
	assert.Equal(t, int64(2), c.Num().Int64())

	prim := Primitive(p)
	assert.True(t, Equal(prim, New(r(3), r(2), r(1))), "prim=%v", prim.Coeffs)
}

func TestDiff(t *testing.T) {
	// d/dx (x^3 + 2x) = 3x^2 + 2
	p := New(r(0), r(2), r(0), r(1))
	got := Diff(p)
	assert.True(t, Equal(got, New(r(2), r(0), r(3))), "got=%v", got.Coeffs)
}

func TestSqrfree(t *testing.T) {
	// (x-1)^2 = x^2 - 2x + 1; square-free part should be x-1.
	p := New(r(1), r(-2), r(1))
	got := Sqrfree(p)
	assert.True(t, Equal(got, New(r(-1), r(1))), "got=%v", got.Coeffs)
}

func TestEvalHorner(t *testing.T) {
	// p(x) = x^2 + 2x + 3 at x=2 => 4+4+3=11
	p := New(r(3), r(2), r(1))
	got := Eval(p, r(2))
	assert.Equal(t, int64(11), got.Num().Int64())
}

func TestTrimDropsTrailingZeros(t *testing.T) {
	p := New(r(1), r(0), r(0))
	assert.Equal(t, 0, p.Degree())
}
