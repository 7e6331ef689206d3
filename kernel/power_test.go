package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPowOfFoldsExactIntegerPower(t *testing.T) {
	got := PowOf(Int(2), Int(10))
	assert.True(t, got.Equal(Int(1024)))
}

func TestPowOfFoldsNegativeIntegerPower(t *testing.T) {
	got := PowOf(Int(2), Int(-1))
	assert.True(t, got.Equal(Frac(1, 2)))
}

func TestPowOfFoldsPerfectSquareRoot(t *testing.T) {
	got := PowOf(Int(4), NumHalf)
	assert.True(t, got.Equal(Int(2)), "got %s", got)
}

func TestPowOfLeavesImperfectRootSymbolic(t *testing.T) {
	got := PowOf(Int(2), NumHalf)
	_, isNum := got.(*Num)
	assert.False(t, isNum, "2^(1/2) should stay symbolic, got %s", got)
}

func TestPowOfExponentZeroAndOne(t *testing.T) {
	x := NewSymbol("x")
	assert.True(t, PowOf(x, NumZero).Equal(NumOne))
	assert.Same(t, x, PowOf(x, NumOne))
}

func TestPowOfCollapsesNestedPower(t *testing.T) {
	x := NewSymbol("x")
	got := PowOf(PowOf(x, Int(2)), Int(3))
	want := PowOf(x, Int(6))
	assert.True(t, got.Equal(want), "got %s, want %s", got, want)
}
