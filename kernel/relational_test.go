package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRelOfCanonicalizesEqualityOrder(t *testing.T) {
	x := NewSymbol("x")
	a := RelOf(x, Int(1), RelEq)
	b := RelOf(Int(1), x, RelEq)
	assert.True(t, a.Equal(b), "equality should be order-independent: %s vs %s", a, b)
}

func TestRelOfPreservesOrderForInequalities(t *testing.T) {
	x := NewSymbol("x")
	got := RelOf(x, Int(1), RelLt)
	assert.Equal(t, x, got.LHS())
	assert.True(t, got.RHS().Equal(Int(1)))
}

func TestParseRelOpRoundTrip(t *testing.T) {
	ops := []RelOp{RelEq, RelNe, RelLt, RelLe, RelGt, RelGe}
	for _, op := range ops {
		parsed, ok := ParseRelOp(op.String())
		assert.True(t, ok)
		assert.Equal(t, op, parsed)
	}
}

func TestParseRelOpRejectsUnknown(t *testing.T) {
	_, ok := ParseRelOp("=~=")
	assert.False(t, ok)
}

func TestRelationalString(t *testing.T) {
	x := NewSymbol("x")
	got := RelOf(x, Int(2), RelLe)
	assert.Equal(t, "x <= 2", got.String())
}
