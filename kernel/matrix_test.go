package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func identity2() *Matrix { return IdentityMatrix(2) }

func TestMatrixAddAndSub(t *testing.T) {
	a := MatrixOf(2, 2, []Expr{Int(1), Int(2), Int(3), Int(4)})
	b := MatrixOf(2, 2, []Expr{Int(4), Int(3), Int(2), Int(1)})
	sum, err := a.MatAdd(b)
	require.NoError(t, err)
	assert.True(t, sum.Get(0, 0).Equal(Int(5)))
	assert.True(t, sum.Get(1, 1).Equal(Int(5)))

	diff, err := a.MatSub(b)
	require.NoError(t, err)
	assert.True(t, diff.Get(0, 0).Equal(Int(-3)))
}

func TestMatrixMulIdentity(t *testing.T) {
	a := MatrixOf(2, 2, []Expr{Int(1), Int(2), Int(3), Int(4)})
	got, err := a.MatMul(identity2())
	require.NoError(t, err)
	assert.True(t, got.Equal(a))
}

func TestMatrixTranspose(t *testing.T) {
	a := MatrixOf(2, 3, []Expr{Int(1), Int(2), Int(3), Int(4), Int(5), Int(6)})
	got := a.Transpose()
	assert.Equal(t, 3, got.Rows())
	assert.Equal(t, 2, got.Cols())
	assert.True(t, got.Get(0, 1).Equal(Int(4)))
}

func TestMatrixTrace(t *testing.T) {
	a := MatrixOf(2, 2, []Expr{Int(1), Int(2), Int(3), Int(4)})
	got, err := a.Trace()
	require.NoError(t, err)
	assert.True(t, got.Equal(Int(5)))
}

func TestMatrixDet2x2(t *testing.T) {
	a := MatrixOf(2, 2, []Expr{Int(1), Int(2), Int(3), Int(4)})
	got, err := a.Det()
	require.NoError(t, err)
	assert.True(t, got.Equal(Int(-2)))
}

func TestMatrixDet3x3(t *testing.T) {
	a := MatrixOf(3, 3, []Expr{
		Int(1), Int(0), Int(2),
		Int(-1), Int(3), Int(1),
		Int(1), Int(1), Int(1),
	})
	got, err := a.Det()
	require.NoError(t, err)
	assert.True(t, got.Equal(Int(-6)), "got %s", got)
}

func TestMatrixInverseTimesOriginalIsIdentity(t *testing.T) {
	a := MatrixOf(2, 2, []Expr{Int(2), Int(0), Int(0), Int(2)})
	inv, err := a.Inverse()
	require.NoError(t, err)
	prod, err := a.MatMul(inv)
	require.NoError(t, err)
	assert.True(t, prod.Equal(identity2()), "got %s", prod)
}

func TestMatrixSingularHasNoInverse(t *testing.T) {
	a := MatrixOf(2, 2, []Expr{Int(1), Int(2), Int(2), Int(4)})
	_, err := a.Inverse()
	assert.Error(t, err)
}

func TestMatrixScale(t *testing.T) {
	a := MatrixOf(1, 2, []Expr{Int(1), Int(2)})
	got := a.Scale(Int(3))
	assert.True(t, got.Get(0, 0).Equal(Int(3)))
	assert.True(t, got.Get(0, 1).Equal(Int(6)))
}
