package archive

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loveq369/symkernel/kernel"
	"github.com/loveq369/symkernel/numeric"
)

func roundTrip(t *testing.T, e kernel.Expr) kernel.Expr {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, e))
	got, err := Read(&buf)
	require.NoError(t, err)
	return got
}

func TestRoundTripEveryNodeKind(t *testing.T) {
	x := kernel.NewSymbol("x")
	y := kernel.NewSymbol("y")

	cases := map[string]kernel.Expr{
		"integer":    kernel.Int(42),
		"rational":   kernel.Frac(3, 4),
		"float":      kernel.Flt(2.5),
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
			if name == "float" {
				assert.Equal(t, e.String(), got.String(), "round trip mismatch for %s", name)
				return
			}
			assert.True(t, got.Equal(e), "round trip mismatch for %s: got %s, want %s", name, got, e)
		})
	}
}

func TestRoundTripSharedSubexpressionDedupsOnWrite(t *testing.T) {
	x := kernel.NewSymbol("x")
	shared := kernel.AddOf(x, kernel.Int(1))
	e := kernel.AddOf(kernel.FuncOf("sin", shared), kernel.FuncOf("cos", shared))

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, e))

	got, err := Read(&buf)
	require.NoError(t, err)

	sum, ok := got.(*kernel.Sum)
	require.True(t, ok)
	terms := sum.Terms()
	require.Len(t, terms, 2)
	var fns []*kernel.Function
	for _, term := range terms {
		fn, ok := term.(*kernel.Function)
		require.True(t, ok, "term %s should decode as a function", term)
		fns = append(fns, fn)
	}
	assert.Same(t, fns[0].Args()[0], fns[1].Args()[0], "decoded shared subexpression should share a pointer")
}

func TestReadRejectsBadMagic(t *testing.T) {
	_, err := Read(bytes.NewReader([]byte("nope")))
	assert.Error(t, err)
}

func TestReadRejectsUnsupportedVersion(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, kernel.Int(1)))
	raw := buf.Bytes()
	raw[len(Magic)] = Version + 1
	_, err := Read(bytes.NewReader(raw))
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
}

func TestWriteNamedReadNamedMultipleRoots(t *testing.T) {
	x := kernel.NewSymbol("x")
	shared := kernel.AddOf(x, kernel.Int(1))

	var buf bytes.Buffer
	require.NoError(t, WriteNamed(&buf, map[string]kernel.Expr{
		"lhs": kernel.FuncOf("sin", shared),
		"rhs": kernel.FuncOf("cos", shared),
	}))

	roots, err := ReadNamed(&buf)
	require.NoError(t, err)
	require.Len(t, roots, 2)
	assert.True(t, roots["lhs"].Equal(kernel.FuncOf("sin", shared)))
	assert.True(t, roots["rhs"].Equal(kernel.FuncOf("cos", shared)))

	lhsArg := roots["lhs"].(*kernel.Function).Args()[0]
	rhsArg := roots["rhs"].(*kernel.Function).Args()[0]
	assert.Same(t, lhsArg, rhsArg, "roots sharing a subexpression should decode to the same pointer")
}

func TestReadAcceptsVersionWindow(t *testing.T) {
	defer SetAcceptedVersionRange(Version, Version)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, kernel.Int(1)))
	raw := buf.Bytes()
	raw[len(Magic)] = Version + 1

	SetAcceptedVersionRange(Version, Version+1)
	_, err := Read(bytes.NewReader(raw))
	assert.NoError(t, err)
}

func TestRoundTripStructuralDiff(t *testing.T) {
	x := kernel.NewSymbol("x")
	e := kernel.AddOf(kernel.PowOf(x, kernel.Int(2)), kernel.Int(1))
	got := roundTrip(t, e)
	if diff := cmp.Diff(e.String(), got.String()); diff != "" {
		t.Errorf("round trip string mismatch (-want +got):\n%s", diff)
	}
}
