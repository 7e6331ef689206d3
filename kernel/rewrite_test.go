package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiffPowerRule(t *testing.T) {
	x := NewSymbol("x")
	got, err := Diff(PowOf(x, Int(3)), x)
	require.NoError(t, err)
	want := MulOf(Int(3), PowOf(x, Int(2)))
	assert.True(t, got.Equal(want), "got %s, want %s", got, want)
}

func TestDiffOfUnrelatedSymbolIsZero(t *testing.T) {
	x, y := NewSymbol("x"), NewSymbol("y")
	got, err := Diff(y, x)
	require.NoError(t, err)
	assert.True(t, got.Equal(NumZero))
}

func TestDiffSumRule(t *testing.T) {
	x := NewSymbol("x")
	got, err := Diff(AddOf(PowOf(x, Int(2)), MulOf(Int(3), x), Int(5)), x)
	require.NoError(t, err)
	want := AddOf(MulOf(Int(2), x), Int(3))
	assert.True(t, got.Equal(want), "got %s, want %s", got, want)
}

func TestSubsReplacesOccurrences(t *testing.T) {
	x := NewSymbol("x")
	got, err := Subs(AddOf(x, Int(1)), x, Int(5))
	require.NoError(t, err)
	assert.True(t, got.Equal(Int(6)))
}

func TestSubsAllSimultaneousSwap(t *testing.T) {
	x, y := NewSymbol("x"), NewSymbol("y")
	got, err := SubsAll(AddOf(x, MulOf(Int(2), y)), map[Expr]Expr{x: y, y: x})
	require.NoError(t, err)
	want := AddOf(y, MulOf(Int(2), x))
	assert.True(t, got.Equal(want), "got %s, want %s", got, want)
}

func TestSubsAllRecursesIntoMatrixAndList(t *testing.T) {
	x, y := NewSymbol("x"), NewSymbol("y")
	pairs := map[Expr]Expr{x: Int(2), y: Int(3)}

	gotMatrix, err := SubsAll(MatrixOf(1, 2, []Expr{x, y}), pairs)
	require.NoError(t, err)
	wantMatrix := MatrixOf(1, 2, []Expr{Int(2), Int(3)})
	assert.True(t, gotMatrix.Equal(wantMatrix), "got %s, want %s", gotMatrix, wantMatrix)

	gotList, err := SubsAll(ListOf(x, y), pairs)
	require.NoError(t, err)
	wantList := ListOf(Int(2), Int(3))
	assert.True(t, gotList.Equal(wantList), "got %s, want %s", gotList, wantList)
}

func TestExpandDistributesProductOverSum(t *testing.T) {
	x, y := NewSymbol("x"), NewSymbol("y")
	got, err := Expand(MulOf(x, AddOf(x, y)))
	require.NoError(t, err)
	want := AddOf(PowOf(x, Int(2)), MulOf(x, y))
	assert.True(t, got.Equal(want), "got %s, want %s", got, want)
}

func TestExpandPowerOfSum(t *testing.T) {
	x, y := NewSymbol("x"), NewSymbol("y")
	got, err := Expand(PowOf(AddOf(x, y), Int(2)))
	require.NoError(t, err)
	want := AddOf(PowOf(x, Int(2)), MulOf(Int(2), x, y), PowOf(y, Int(2)))
	assert.True(t, got.Equal(want), "got %s, want %s", got, want)
}

func TestCollectGroupsByPower(t *testing.T) {
	x := NewSymbol("x")
	got := Collect(AddOf(MulOf(Int(2), x), Int(3), x), x)
	want := AddOf(MulOf(Int(3), x), Int(3))
	assert.True(t, got.Equal(want), "got %s, want %s", got, want)
}

func TestDegreeOfAndLDegreeOf(t *testing.T) {
	x := NewSymbol("x")
	e := AddOf(PowOf(x, Int(3)), PowOf(x, Int(1)))
	assert.EqualValues(t, 3, DegreeOf(e, x))
	assert.EqualValues(t, 1, LDegreeOf(e, x))
}

func TestCoeffOf(t *testing.T) {
	x := NewSymbol("x")
	e := AddOf(MulOf(Int(5), PowOf(x, Int(2))), MulOf(Int(3), x), Int(7))
	assert.True(t, CoeffOf(e, x, 2).Equal(Int(5)))
	assert.True(t, CoeffOf(e, x, 1).Equal(Int(3)))
	assert.True(t, CoeffOf(e, x, 0).Equal(Int(7)))
	assert.True(t, CoeffOf(e, x, 9).Equal(NumZero))
}

func TestEvalfForcesFloat(t *testing.T) {
	got := Evalf(Frac(1, 2))
	num, ok := got.(*Num)
	require.True(t, ok)
	assert.True(t, num.Value().IsFloat())
	assert.InDelta(t, 0.5, num.Value().Float64(), 1e-12)
}
