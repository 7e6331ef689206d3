package kernel

import (
	"math"

	"github.com/loveq369/symkernel/numeric"
)

// Built-in function set, grounded on the teacher's Func type's per-name
// switch in Simplify/Diff/Eval (trig, inverse trig, hyperbolic, exp/ln,
// sqrt, abs, floor/ceil/sign), reshaped into the registry's per-record
// form. Numeric evaluation goes through float64 math functions since this
// kernel has no arbitrary-precision transcendental evaluator; the
// transcendental functions always return a TagFloat Num, never claimed
// exact, while sqrt, abs, floor, ceil and sign can return exact values.
func init() {
	evalFloat1 := func(fn func(float64) float64) func([]*Num) (*Num, bool) {
		return func(args []*Num) (*Num, bool) {
			if !args[0].val.IsReal() {
				return nil, false
			}
			return Flt(fn(args[0].val.Float64())), true
		}
	}

	RegisterFunction(&FunctionRecord{
		Name: "sin", Arity: 1, Eval: evalFloat1(math.Sin),
		Simplify: func(args []Expr) (Expr, bool) {
			if args[0].Equal(NumZero) {
				return NumZero, true
			}
			return nil, false
		},
		Derivative: func(args []Expr) Expr { return FuncOf("cos", args[0]) },
	})
	RegisterFunction(&FunctionRecord{
		Name: "cos", Arity: 1, Eval: evalFloat1(math.Cos),
		Simplify: func(args []Expr) (Expr, bool) {
			if args[0].Equal(NumZero) {
				return NumOne, true
			}
			return nil, false
		},
		Derivative: func(args []Expr) Expr {
			return MulOf(NumMinusOne, FuncOf("sin", args[0]))
		},
	})
	RegisterFunction(&FunctionRecord{
		Name: "tan", Arity: 1, Eval: evalFloat1(math.Tan),
		Simplify: func(args []Expr) (Expr, bool) {
			if args[0].Equal(NumZero) {
				return NumZero, true
			}
			return nil, false
		},
		Derivative: func(args []Expr) Expr {
			return PowOf(FuncOf("cos", args[0]), NewNum(numeric.NewInt(-2)))
		},
	})
	RegisterFunction(&FunctionRecord{
		Name: "asin", Arity: 1, Eval: evalFloat1(math.Asin),
		Derivative: func(args []Expr) Expr {
			return PowOf(AddOf(NumOne, MulOf(NumMinusOne, PowOf(args[0], NumTwo))), NumMinusHalf)
		},
	})
	RegisterFunction(&FunctionRecord{
		Name: "acos", Arity: 1, Eval: evalFloat1(math.Acos),
		Derivative: func(args []Expr) Expr {
			return MulOf(NumMinusOne, PowOf(AddOf(NumOne, MulOf(NumMinusOne, PowOf(args[0], NumTwo))), NumMinusHalf))
		},
	})
	RegisterFunction(&FunctionRecord{
		Name: "atan", Arity: 1, Eval: evalFloat1(math.Atan),
		Derivative: func(args []Expr) Expr {
			return PowOf(AddOf(NumOne, PowOf(args[0], NumTwo)), NumMinusOne)
		},
	})
	RegisterFunction(&FunctionRecord{
		Name: "sinh", Arity: 1, Eval: evalFloat1(math.Sinh),
		Derivative: func(args []Expr) Expr { return FuncOf("cosh", args[0]) },
	})
	RegisterFunction(&FunctionRecord{
		Name: "cosh", Arity: 1, Eval: evalFloat1(math.Cosh),
		Derivative: func(args []Expr) Expr { return FuncOf("sinh", args[0]) },
	})
	RegisterFunction(&FunctionRecord{
		Name: "tanh", Arity: 1, Eval: evalFloat1(math.Tanh),
		Derivative: func(args []Expr) Expr {
			return AddOf(NumOne, MulOf(NumMinusOne, PowOf(FuncOf("tanh", args[0]), NumTwo)))
		},
	})

	RegisterFunction(&FunctionRecord{
		Name: "exp", Arity: 1, Eval: evalFloat1(math.Exp),
		Simplify: func(args []Expr) (Expr, bool) {
			if args[0].Equal(NumZero) {
				return NumOne, true
			}
			if ln, ok := args[0].(*Function); ok && ln.name == "ln" {
				return ln.args[0], true
			}
			return nil, false
		},
		Derivative: func(args []Expr) Expr { return FuncOf("exp", args[0]) },
	})
	RegisterFunction(&FunctionRecord{
		Name: "ln", Arity: 1, LaTeXName: "\\ln",
		Eval: func(args []*Num) (*Num, bool) {
			if !args[0].val.IsReal() || args[0].val.IsNegative() {
				return nil, false
			}
			return Flt(math.Log(args[0].val.Float64())), true
		},
		Simplify: func(args []Expr) (Expr, bool) {
			if args[0].Equal(NumOne) {
				return NumZero, true
			}
			if exp, ok := args[0].(*Function); ok && exp.name == "exp" {
				return exp.args[0], true
			}
			return nil, false
		},
		Derivative: func(args []Expr) Expr { return PowOf(args[0], NumMinusOne) },
	})

	RegisterFunction(&FunctionRecord{
		Name: "sqrt", Arity: 1, LaTeXName: "\\sqrt",
		Eval: func(args []*Num) (*Num, bool) {
			if !args[0].val.IsReal() || args[0].val.IsNegative() {
				return nil, false
			}
			if folded, ok := foldNumericPower(args[0].val, numeric.Half); ok {
				return NewNum(folded), true
			}
			return nil, false
		},
		Derivative: func(args []Expr) Expr {
			return MulOf(NumHalf, PowOf(args[0], NumMinusHalf))
		},
	})

	RegisterFunction(&FunctionRecord{
		Name: "abs", Arity: 1,
		Eval: func(args []*Num) (*Num, bool) {
			return NewNum(numeric.Abs(args[0].val)), true
		},
		Simplify: func(args []Expr) (Expr, bool) {
			if p, ok := args[0].(*Power); ok {
				if n, ok := asNum(p.exp); ok && n.val.IsInteger() {
					if k, ok := numeric.AsInt64(n.val); ok && k%2 == 0 {
						return p, true
					}
				}
			}
			return nil, false
		},
	})
	RegisterFunction(&FunctionRecord{
		Name: "sign", Arity: 1,
		Eval: func(args []*Num) (*Num, bool) {
			if !args[0].val.IsReal() {
				return nil, false
			}
			return Int(int64(numeric.Sign(args[0].val))), true
		},
	})
	RegisterFunction(&FunctionRecord{
		Name: "floor", Arity: 1,
		Eval: func(args []*Num) (*Num, bool) {
			if !args[0].val.IsReal() {
				return nil, false
			}
			return Int(int64(math.Floor(args[0].val.Float64()))), true
		},
	})
	RegisterFunction(&FunctionRecord{
		Name: "ceil", Arity: 1,
		Eval: func(args []*Num) (*Num, bool) {
			if !args[0].val.IsReal() {
				return nil, false
			}
			return Int(int64(math.Ceil(args[0].val.Float64()))), true
		},
	})
}
