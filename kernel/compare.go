package kernel

import "math/big"

// Compare implements the total order of spec.md §4.1: not the mathematical
// order, but an arbitrary, cheap, stable-across-runs order used to
// canonicalize sums/products and to decide structural equality. It is the
// "sum" ordering (numerics sort last); CompareFor additionally takes the
// expairseq operation kind, since spec.md says numerics sort last within
// sums but first within products.
func Compare(a, b Expr) int { return CompareFor(a, b, opSum) }

// CompareFor is Compare parameterized by which associative operation is
// doing the sorting.
func CompareFor(a, b Expr, op opKind) int {
	if a == b {
		return 0
	}
	ka, kb := kindRank(a.Kind(), op), kindRank(b.Kind(), op)
	if ka != kb {
		if ka < kb {
			return -1
		}
		return 1
	}
	switch a.Kind() {
	case KindInteger, KindRational, KindComplex, KindFloat:
		return compareNum(a.(*Num), b.(*Num))
	case KindSymbol:
		sa, sb := a.(*Symbol), b.(*Symbol)
		switch {
		case sa.serial < sb.serial:
			return -1
		case sa.serial > sb.serial:
			return 1
		default:
			return 0
		}
	case KindConstant:
		ca, cb := a.(*Constant), b.(*Constant)
		return compareStrings(ca.name, cb.name)
	default:
		return compareComposite(a, b, op)
	}
}

// kindRank orders Kinds for sorting purposes, flipping the numeric ordinal
// between "sorts last" (sum) and "sorts first" (product) per spec.md §4.1.
func kindRank(k Kind, op opKind) int {
	r := kindOrder(k)
	isNumeric := k == KindInteger || k == KindRational || k == KindComplex || k == KindFloat
	if isNumeric && op == opProduct {
		return -1 // numerics sort first in a product's pair sequence
	}
	return r
}

func compareNum(a, b *Num) int {
	if a.val.IsComplex() != b.val.IsComplex() {
		if a.val.IsComplex() {
			return 1
		}
		return -1
	}
	if a.val.IsComplex() {
		return compareStrings(a.val.String(), b.val.String())
	}
	ra, rb := ratApprox(a), ratApprox(b)
	return ra.Cmp(rb)
}

// ratApprox gives a big.Rat approximation of a Num for ordering purposes
// only (floats are rationalized, losing no information relevant to order).
func ratApprox(n *Num) *big.Rat {
	if n.val.IsRational() {
		return n.val.Rat()
	}
	r := new(big.Rat)
	n.val.BigFloat().Rat(r)
	return r
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// compareComposite compares two composites of the same Kind lexicographically
// over their canonicalized children and then by arity, as spec.md §4.1
// prescribes.
func compareComposite(a, b Expr, op opKind) int {
	na, nb := a.Nops(), b.Nops()
	n := na
	if nb < n {
		n = nb
	}
	for i := 0; i < n; i++ {
		if c := CompareFor(a.Op(i), b.Op(i), op); c != 0 {
			return c
		}
	}
	switch {
	case na < nb:
		return -1
	case na > nb:
		return 1
	default:
		return 0
	}
}
