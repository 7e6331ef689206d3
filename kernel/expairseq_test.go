package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddOfCombinesLikeTerms(t *testing.T) {
	x := NewSymbol("x")
	got := AddOf(x, x, Int(1))
	want := AddOf(MulOf(Int(2), x), Int(1))
	assert.True(t, got.Equal(want), "got %s, want %s", got, want)
}

func TestAddOfCollapsesToZero(t *testing.T) {
	x := NewSymbol("x")
	got := AddOf(x, MulOf(NumMinusOne, x))
	assert.True(t, got.Equal(NumZero))
}

func TestMulOfCombinesLikePowers(t *testing.T) {
	x := NewSymbol("x")
	got := MulOf(x, x)
	want := PowOf(x, Int(2))
	assert.True(t, got.Equal(want), "got %s, want %s", got, want)
}

func TestMulOfByZeroIsZero(t *testing.T) {
	x := NewSymbol("x")
	got := MulOf(x, NumZero)
	assert.True(t, got.Equal(NumZero))
}

func TestSingletonSumCollapsesToBareTerm(t *testing.T) {
	x := NewSymbol("x")
	got := AddOf(x)
	assert.Same(t, x, got)
}

func TestSumHashIsOrderIndependent(t *testing.T) {
	x, y := NewSymbol("x"), NewSymbol("y")
	a := AddOf(x, y)
	b := AddOf(y, x)
	assert.Equal(t, a.Hash(), b.Hash())
	assert.True(t, a.Equal(b))
}

func TestSumTermsFoldsOverallCoefficient(t *testing.T) {
	x := NewSymbol("x")
	s := AddOf(x, Int(3)).(*Sum)
	terms := s.Terms()
	assert.Len(t, terms, 2)
}

func TestPowerStringRendersReciprocalAsDivision(t *testing.T) {
	x := NewSymbol("x")
	got := PowOf(x, NumMinusOne)
	assert.Equal(t, "1/x", got.String())
}
