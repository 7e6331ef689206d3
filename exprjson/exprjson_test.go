package exprjson

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loveq369/symkernel/kernel"
	"github.com/loveq369/symkernel/numeric"
)

func roundTrip(t *testing.T, e kernel.Expr) kernel.Expr {
	t.Helper()
	data, err := Marshal(e)
	require.NoError(t, err)
	got, err := Unmarshal(data)
	require.NoError(t, err)
	return got
}

func TestRoundTripEveryNodeKind(t *testing.T) {
	x := kernel.NewSymbol("x")
	y := kernel.NewSymbol("y")

	cases := map[string]kernel.Expr{
		"integer":    kernel.Int(42),
		"rational":   kernel.Frac(3, 4),
		"complex":    kernel.NewNum(numeric.NewComplex(big.NewRat(1, 1), big.NewRat(2, 1))),
		"symbol":     x,
		"ncproduct":  kernel.NCMulOf(x, y),
		"sum":        kernel.AddOf(x, y, kernel.Int(1)),
		"product":    kernel.MulOf(x, y, kernel.Int(2)),
		"power":      kernel.PowOf(x, kernel.Int(3)),
		"function":   kernel.FuncOf("sin", x),
		"list":       kernel.ListOf(x, y, kernel.Int(1)),
		"tuple":      kernel.TupleOf(x, kernel.Int(2)),
		"constant":   kernel.ConstPi,
		"relational": kernel.RelOf(x, kernel.Int(1), kernel.RelLt),
		"matrix":     kernel.MatrixOf(2, 2, []kernel.Expr{kernel.Int(1), kernel.Int(2), kernel.Int(3), kernel.Int(4)}),
		"derivative": kernel.NewDerivativeOf(kernel.FuncOf("sin", x), x),
		"series":     kernel.SeriesOf(x, kernel.NumZero, []kernel.Expr{kernel.NumOne, kernel.Int(2)}, 3),
	}

	for name, e := range cases {
		e := e
		t.Run(name, func(t *testing.T) {
			got := roundTrip(t, e)
			assert.True(t, got.Equal(e), "round trip mismatch for %s: got %s, want %s", name, got, e)
		})
	}
}

func TestToMapAndFromMapRoundTripWithoutJSON(t *testing.T) {
	x := kernel.NewSymbol("x")
	e := kernel.AddOf(kernel.PowOf(x, kernel.Int(2)), kernel.Int(1))
	m := ToMap(e)
	got, err := FromMap(m)
	require.NoError(t, err)
	assert.True(t, got.Equal(e), "got %s, want %s", got, e)
}

func TestUnmarshalRejectsMissingType(t *testing.T) {
	_, err := Unmarshal([]byte(`{"name": "x"}`))
	assert.Error(t, err)
}

func TestUnmarshalRejectsUnknownType(t *testing.T) {
	_, err := Unmarshal([]byte(`{"type": "bogus"}`))
	assert.Error(t, err)
}

func TestFromMapRejectsNil(t *testing.T) {
	_, err := FromMap(nil)
	assert.Error(t, err)
}

func TestMatrixShapeMismatchIsRejected(t *testing.T) {
	data := []byte(`{"type":"matrix","rows":2,"cols":2,"data":[[{"type":"symbol","name":"x"}]]}`)
	_, err := Unmarshal(data)
	assert.Error(t, err)
}

func TestFunctionArgsPreserveOrder(t *testing.T) {
	x, y := kernel.NewSymbol("x"), kernel.NewSymbol("y")
	e := kernel.FuncOf("atan2", y, x)
	got := roundTrip(t, e)
	fn, ok := got.(*kernel.Function)
	require.True(t, ok)
	require.Len(t, fn.Args(), 2)
	assert.True(t, fn.Args()[0].Equal(y))
	assert.True(t, fn.Args()[1].Equal(x))
}
