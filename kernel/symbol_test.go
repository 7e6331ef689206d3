package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSymbolInterns(t *testing.T) {
	a := NewSymbol("q")
	b := NewSymbol("q")
	assert.True(t, a.Equal(b))
	assert.Same(t, a, b)
}

func TestNewSymbolUniqueNeverEqualsInterned(t *testing.T) {
	interned := NewSymbol("p")
	unique := NewSymbolUnique("p")
	assert.False(t, interned.Equal(unique))
	assert.Equal(t, interned.Name(), unique.Name())
}

func TestLookupConstant(t *testing.T) {
	c, ok := LookupConstant("pi")
	assert.True(t, ok)
	assert.Equal(t, ConstPi, c)

	_, ok = LookupConstant("does-not-exist")
	assert.False(t, ok)
}

func TestConstantNumericValue(t *testing.T) {
	v, ok := ConstI.NumericValue()
	assert.True(t, ok)
	assert.True(t, v.Value().IsComplex())
}
