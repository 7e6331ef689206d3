package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaylorSeriesOfExpAtZero(t *testing.T) {
	x := NewSymbol("x")
	fn, ok := LookupFunction("exp")
	require.True(t, ok, "exp must be registered")
	_ = fn

	s, err := TaylorSeries(FuncOf("exp", x), x, NumZero, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, s.Order())
	assert.True(t, s.Coeff(0).Equal(NumOne), "0th coeff should be exp(0)=1, got %s", s.Coeff(0))
	assert.True(t, s.Coeff(1).Equal(NumOne), "1st coeff should be exp'(0)/1!=1, got %s", s.Coeff(1))
	assert.True(t, s.Coeff(2).Equal(NumHalf), "2nd coeff should be exp''(0)/2!=1/2, got %s", s.Coeff(2))
}

func TestTaylorSeriesOfPolynomial(t *testing.T) {
	x := NewSymbol("x")
	// f(x) = x^2, about 0, order 3: coeffs should be 0, 0, 1.
	s, err := TaylorSeries(PowOf(x, Int(2)), x, NumZero, 3)
	require.NoError(t, err)
	assert.True(t, s.Coeff(0).Equal(NumZero))
	assert.True(t, s.Coeff(1).Equal(NumZero))
	assert.True(t, s.Coeff(2).Equal(NumOne))
}

func TestTaylorSeriesRejectsNegativeOrder(t *testing.T) {
	x := NewSymbol("x")
	_, err := TaylorSeries(x, x, NumZero, -1)
	assert.Error(t, err)
}

func TestSeriesToExprDropsRemainder(t *testing.T) {
	x := NewSymbol("x")
	s := SeriesOf(x, NumZero, []Expr{NumOne, Int(2)}, 3)
	got := s.ToExpr()
	want := AddOf(NumOne, MulOf(Int(2), x))
	assert.True(t, got.Equal(want), "got %s, want %s", got, want)
}

func TestSeriesEqual(t *testing.T) {
	x := NewSymbol("x")
	a := SeriesOf(x, NumZero, []Expr{NumOne, Int(2)}, 3)
	b := SeriesOf(x, NumZero, []Expr{NumOne, Int(2)}, 3)
	assert.True(t, a.Equal(b))
}
