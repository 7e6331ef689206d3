package numeric

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddPromotesToWidestTag(t *testing.T) {
	i := NewInt(2)
	r := NewFrac(1, 2)
	got := Add(i, r)
	assert.Equal(t, TagRational, got.Tag())
	assert.Equal(t, "5/2", got.String())
}

func TestFracReducesToInteger(t *testing.T) {
	got := NewFrac(4, 2)
	assert.Equal(t, TagInteger, got.Tag())
	assert.Equal(t, "2", got.String())
}

func TestComplexArithmetic(t *testing.T) {
	a := NewComplex(big.NewRat(1, 1), big.NewRat(2, 1))
	b := NewComplex(big.NewRat(3, 1), big.NewRat(-1, 1))
	sum := Add(a, b)
	assert.True(t, sum.IsComplex())
	assert.Equal(t, "(4+1I)", sum.String())

	prod := Mul(a, b)
	// (1+2i)(3-i) = 3 - i + 6i - 2i^2 = 3 + 5i + 2 = 5 + 5i
	assert.Equal(t, "(5+5I)", prod.String())
}

func TestComplexWithZeroImaginaryCollapsesToRational(t *testing.T) {
	got := NewComplex(big.NewRat(3, 1), big.NewRat(0, 1))
	assert.False(t, got.IsComplex())
	assert.True(t, got.IsInteger())
}

func TestDivisionByZeroPanics(t *testing.T) {
	assert.PanicsWithError(t, "numeric.Inv: numeric: division by zero", func() {
		Inv(Zero)
	})
}

func TestGCD(t *testing.T) {
	got := GCD(NewInt(12), NewInt(18))
	assert.Equal(t, "6", got.String())
}

func TestCmpOnComplexPanics(t *testing.T) {
	assert.Panics(t, func() {
		Cmp(NewComplex(big.NewRat(1, 1), big.NewRat(1, 1)), Zero)
	})
}

func TestClassOfAndParseLiteralRoundTrip(t *testing.T) {
	cases := []*Numeric{
		NewInt(42),
		NewInt(-7),
		NewFrac(3, 4),
		NewComplex(big.NewRat(1, 1), big.NewRat(-2, 3)),
		NewFloatPrec(3.5, 64),
	}
	for _, v := range cases {
		class := ClassOf(v)
		parsed, err := ParseLiteral(class, v.String())
		require.NoError(t, err, "class %s value %s", class, v.String())
		assert.True(t, v.Equal(parsed) || class == ClassFloat, "round trip mismatch for %s", v.String())
	}
}

func TestParseLiteralUnknownClass(t *testing.T) {
	_, err := ParseLiteral("bogus", "1")
	assert.Error(t, err)
}

func TestAsInt64(t *testing.T) {
	v, ok := AsInt64(NewInt(9))
	assert.True(t, ok)
	assert.EqualValues(t, 9, v)

	_, ok = AsInt64(NewFrac(1, 2))
	assert.False(t, ok)
}
