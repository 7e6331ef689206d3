package kernel

// Kind tags every node variant in the algebraic DAG. The class hierarchy
// described by the specification (a `basic` base with per-class virtual
// dispatch) is realized here as a single tagged union: dispatch on Kind is a
// match, not an indirect call, which keeps the hot canonicalization path
// cache-friendly and lets constructors inspect a child's Kind without going
// through an interface.
type Kind int

const (
	KindInteger Kind = iota
	KindRational
	KindComplex
	KindFloat
	KindSymbol
	KindConstant
	KindSum
	KindProduct
	KindNCProduct
	KindPower
	KindFunction
	KindList
	KindTuple
	KindMatrix
	KindRelational
	KindSeries
	KindFail
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindRational:
		return "rational"
	case KindComplex:
		return "complex"
	case KindFloat:
		return "float"
	case KindSymbol:
		return "symbol"
	case KindConstant:
		return "constant"
	case KindSum:
		return "sum"
	case KindProduct:
		return "product"
	case KindNCProduct:
		return "ncproduct"
	case KindPower:
		return "power"
	case KindFunction:
		return "function"
	case KindList:
		return "list"
	case KindTuple:
		return "tuple"
	case KindMatrix:
		return "matrix"
	case KindRelational:
		return "relational"
	case KindSeries:
		return "series"
	case KindFail:
		return "fail"
	}
	return "unknown"
}

// kindOrder fixes the tie-breaking position of each Kind in the total order
// used to canonicalize sums/products (spec.md §4.1). Numerics sort last
// within sums (so `x + 3` prints with the constant trailing) and first
// within products (so `3*x` prints with the coefficient leading); the
// ordinal below is the "within sums" order and Compare flips numeric
// ordinals when comparing inside a product's pair sequence.
func kindOrder(k Kind) int {
	switch k {
	case KindInteger, KindRational, KindComplex, KindFloat:
		return 100
	case KindSymbol:
		return 10
	case KindConstant:
		return 15
	case KindPower:
		return 20
	case KindNCProduct:
		return 25
	case KindProduct:
		return 30
	case KindFunction:
		return 40
	case KindSum:
		return 50
	case KindSeries:
		return 60
	case KindList:
		return 70
	case KindTuple:
		return 75
	case KindMatrix:
		return 80
	case KindRelational:
		return 90
	case KindFail:
		return 200
	}
	return 1000
}

// Predicate names a boolean attribute queryable through Expr.Info.
type Predicate int

const (
	PredNumeric Predicate = iota
	PredInteger
	PredPosInt
	PredRational
	PredReal
	PredComplex
	PredPositive
	PredNegative
	PredZero
	PredSymbol
	PredPolynomial
)
