package kernel

import (
	"sort"
	"strings"

	"github.com/loveq369/symkernel/numeric"
)

// opKind distinguishes the two associative operations that share the
// expairseq engine (spec.md §4.2).
type opKind int

const (
	opSum opKind = iota
	opProduct
)

// pair is one (rest, coeff) entry of a polyadic sum or product: for a sum,
// coeff*rest is the term; for a product, rest^coeff is the term (spec.md
// §3).
type pair struct {
	rest  Expr
	coeff *numeric.Numeric
}

// expairseq is the single engine behind both Sum and Product: an ordered
// sequence of pairs plus an overall scalar coefficient, additive identity
// for a sum and multiplicative identity for a product (spec.md §3, §4.2).
type expairseq struct {
	envelope
	op      opKind
	pairs   []pair
	overall *numeric.Numeric
}

func identityFor(op opKind) *numeric.Numeric {
	if op == opSum {
		return numeric.Zero
	}
	return numeric.One
}

func annihilatorFor(op opKind) *numeric.Numeric {
	if op == opSum {
		return nil // sums have no multiplicative annihilator
	}
	return numeric.Zero
}

// Sum wraps expairseq for op==opSum; Product wraps it for op==opProduct.
// They are distinct Go types (not type aliases) so that type switches
// elsewhere in the package (Expand, Diff, Subs, Normal...) can tell which
// algebraic law applies, matching spec.md's explicit Sum/Product subclasses
// of expairseq.
type Sum struct{ expairseq }
type Product struct{ expairseq }

// AddOf builds a canonical sum from heterogeneous operands (spec.md §4.2).
func AddOf(operands ...Expr) Expr { return buildExpairseq(opSum, operands) }

// MulOf builds a canonical product from heterogeneous operands.
func MulOf(operands ...Expr) Expr { return buildExpairseq(opProduct, operands) }

// buildExpairseq runs the full canonicalization pipeline: split/flatten
// and combine like terms (folded together in one walk, since this kernel
// accumulates numeric operands directly into the overall coefficient rather
// than deferring them to a later "float overall coefficient" pass), then
// drop zeros, sort, and collapse singletons.
func buildExpairseq(op opKind, operands []Expr) Expr {
	overall := identityFor(op)
	var pairs []pair

	var walk func(x Expr)
	walk = func(x Expr) {
		if n, ok := asNum(x); ok {
			if op == opSum {
				overall = numeric.Add(overall, n.val)
			} else {
				overall = numeric.Mul(overall, n.val)
			}
			return
		}
		if op == opSum {
			if s, ok := x.(*Sum); ok {
				overall = numeric.Add(overall, s.overall)
				for _, p := range s.pairs {
					pairs = mergeSumPair(pairs, p.rest, p.coeff)
				}
				return
			}
			rest, coeff := splitSumTerm(x)
			pairs = mergeSumPair(pairs, rest, coeff)
			return
		}
		if pr, ok := x.(*Product); ok {
			overall = numeric.Mul(overall, pr.overall)
			for _, p := range pr.pairs {
				pairs = mergeProductPair(pairs, p.rest, p.coeff)
			}
			return
		}
		base, exp := splitProductTerm(x)
		pairs = mergeProductPair(pairs, base, exp)
	}
	for _, x := range operands {
		walk(x)
	}

	if op == opProduct && overall.IsZero() {
		return NumZero
	}

	// Drop zero/annihilated pairs (spec.md §4.2 step 5).
	kept := pairs[:0]
	for _, p := range pairs {
		if op == opSum && p.coeff.IsZero() {
			continue
		}
		if op == opProduct && p.coeff.IsZero() {
			continue // exponent 0 means the factor is 1
		}
		kept = append(kept, p)
	}
	pairs = kept

	sort.SliceStable(pairs, func(i, j int) bool {
		return CompareFor(pairs[i].rest, pairs[j].rest, op) < 0
	})

	switch len(pairs) {
	case 0:
		return NewNum(overall)
	case 1:
		if identityEqual(overall, op) {
			return recombine(op, pairs[0])
		}
	}

	seq := &expairseq{op: op, pairs: pairs, overall: overall}
	seq.kind = kindFor(op)
	seq.hash = hashExpairseq(seq)
	seq.setEvaluated()
	if op == opSum {
		return global.Intern(&Sum{*seq}).(*Sum)
	}
	return global.Intern(&Product{*seq}).(*Product)
}

func identityEqual(n *numeric.Numeric, op opKind) bool {
	if op == opSum {
		return n.IsZero()
	}
	return n.IsOne()
}

func kindFor(op opKind) Kind {
	if op == opSum {
		return KindSum
	}
	return KindProduct
}

// splitSumTerm extracts a numeric multiplicative coefficient from a
// non-numeric, non-sum operand of a sum: `c*rest` splits to (rest, c) when
// the operand is a Product whose overall coefficient isn't the identity;
// anything else splits to (operand, 1) (spec.md §4.2 step 1).
func splitSumTerm(x Expr) (Expr, *numeric.Numeric) {
	if pr, ok := x.(*Product); ok && !pr.overall.IsOne() {
		return recombineProductPairsOnly(pr.pairs), pr.overall
	}
	return x, numeric.One
}

// splitProductTerm extracts a numeric exponent from a non-numeric,
// non-product operand of a product: `base^n` with n numeric splits to
// (base, n); anything else splits to (operand, 1) (spec.md §4.2 step 1).
func splitProductTerm(x Expr) (Expr, *numeric.Numeric) {
	if p, ok := x.(*Power); ok {
		if n, ok := asNum(p.exp); ok && n.val.IsReal() {
			return p.base, n.val
		}
	}
	return x, numeric.One
}

// recombineProductPairsOnly rebuilds a product from just its pairs (overall
// coefficient 1), used when peeling a numeric coefficient off a product
// that is itself becoming one pair of an enclosing sum.
func recombineProductPairsOnly(pairs []pair) Expr {
	switch len(pairs) {
	case 0:
		return NumOne
	case 1:
		return recombine(opProduct, pairs[0])
	}
	seq := &expairseq{op: opProduct, pairs: pairs, overall: numeric.One}
	seq.kind = KindProduct
	seq.hash = hashExpairseq(seq)
	seq.setEvaluated()
	return global.Intern(&Product{*seq}).(*Product)
}

func mergeSumPair(pairs []pair, rest Expr, coeff *numeric.Numeric) []pair {
	for i := range pairs {
		if pairs[i].rest.Equal(rest) {
			pairs[i].coeff = numeric.Add(pairs[i].coeff, coeff)
			return pairs
		}
	}
	return append(pairs, pair{rest: rest, coeff: coeff})
}

func mergeProductPair(pairs []pair, rest Expr, exp *numeric.Numeric) []pair {
	for i := range pairs {
		if pairs[i].rest.Equal(rest) {
			pairs[i].coeff = numeric.Add(pairs[i].coeff, exp)
			return pairs
		}
	}
	return append(pairs, pair{rest: rest, coeff: exp})
}

// recombine turns a single surviving pair back into a plain term, used by
// the singleton-collapse rule (spec.md §4.2 step 7).
func recombine(op opKind, p pair) Expr {
	if op == opSum {
		if p.coeff.IsOne() {
			return p.rest
		}
		return mulCoeffRest(p.coeff, p.rest)
	}
	if p.coeff.IsOne() {
		return p.rest
	}
	return newPowerRaw(p.rest, NewNum(p.coeff))
}

// mulCoeffRest builds a raw two-factor product (coeff, rest) without
// re-running the full canonicalization pipeline: the caller already knows
// this is canonical (coeff is a nonzero, non-unit numeric; rest is already
// simplified and not itself numeric).
func mulCoeffRest(coeff *numeric.Numeric, rest Expr) Expr {
	var pairs []pair
	if pr, ok := rest.(*Product); ok {
		pairs = pr.pairs
		coeff = numeric.Mul(coeff, pr.overall)
	} else {
		base, exp := splitProductTerm(rest)
		pairs = []pair{{rest: base, coeff: exp}}
	}
	seq := &expairseq{op: opProduct, pairs: pairs, overall: coeff}
	seq.kind = KindProduct
	seq.hash = hashExpairseq(seq)
	seq.setEvaluated()
	return global.Intern(&Product{*seq}).(*Product)
}

func hashExpairseq(s *expairseq) uint64 {
	childHashes := make([]uint64, len(s.pairs))
	for i, p := range s.pairs {
		childHashes[i] = hashFold(p.rest.Hash(), fnv1a64(p.coeff.String()))
	}
	seed := hashFold(fnv1a64(s.kind.String()), fnv1a64(s.overall.String()))
	return hashFold(seed, childHashes...)
}

// --- Expr interface ---

func (s *expairseq) Nops() int { return len(s.pairs) }
func (s *expairseq) Op(i int) Expr {
	if i < 0 || i >= len(s.pairs) {
		panic(WrapRange("Op(%d): %s has %d children", i, s.kind, len(s.pairs)))
	}
	return recombine(s.op, s.pairs[i])
}

func (s *expairseq) Has(sub Expr) bool {
	if s.Equal(sub) {
		return true
	}
	for i := 0; i < s.Nops(); i++ {
		if hasDefault(s.Op(i), sub) {
			return true
		}
	}
	return false
}

func (s *expairseq) Info(p Predicate) bool {
	switch p {
	case PredPolynomial:
		for i := 0; i < s.Nops(); i++ {
			if !s.Op(i).Info(PredPolynomial) {
				return false
			}
		}
		return true
	case PredReal:
		if !s.overall.IsReal() {
			return false
		}
		for i := 0; i < s.Nops(); i++ {
			if !s.Op(i).Info(PredReal) {
				return false
			}
		}
		return true
	}
	return false
}

func (s *expairseq) equalSeq(o *expairseq) bool {
	if s.op != o.op || len(s.pairs) != len(o.pairs) || !s.overall.Equal(o.overall) {
		return false
	}
	for i := range s.pairs {
		if !s.pairs[i].rest.Equal(o.pairs[i].rest) || !s.pairs[i].coeff.Equal(o.pairs[i].coeff) {
			return false
		}
	}
	return true
}

func (s *expairseq) Equal(other Expr) bool {
	switch o := other.(type) {
	case *Sum:
		return s.equalSeq(&o.expairseq)
	case *Product:
		return s.equalSeq(&o.expairseq)
	default:
		return false
	}
}

func (s *Sum) Equal(other Expr) bool {
	o, ok := other.(*Sum)
	return ok && s.equalSeq(&o.expairseq)
}

func (s *Product) Equal(other Expr) bool {
	o, ok := other.(*Product)
	return ok && s.equalSeq(&o.expairseq)
}

func (s *Sum) String() string {
	var b strings.Builder
	first := true
	writeTerm := func(e Expr) {
		str := e.String()
		if !first {
			if strings.HasPrefix(str, "-") {
				b.WriteString(" - ")
				str = str[1:]
			} else {
				b.WriteString(" + ")
			}
		} else if strings.HasPrefix(str, "-") {
			b.WriteString("-")
			str = str[1:]
		}
		b.WriteString(str)
		first = false
	}
	for _, p := range s.pairs {
		writeTerm(recombine(opSum, p))
	}
	if !s.overall.IsZero() {
		writeTerm(NewNum(s.overall))
	}
	if first {
		return "0"
	}
	return b.String()
}

func (s *Sum) LaTeX() string {
	parts := make([]string, 0, len(s.pairs)+1)
	for _, p := range s.pairs {
		parts = append(parts, recombine(opSum, p).LaTeX())
	}
	if !s.overall.IsZero() {
		parts = append(parts, NewNum(s.overall).LaTeX())
	}
	if len(parts) == 0 {
		return "0"
	}
	return strings.Join(parts, " + ")
}

func (p *Product) String() string {
	parts := make([]string, 0, len(p.pairs)+1)
	leadingMinus := p.overall.IsMinusOne()
	if !p.overall.IsOne() && !leadingMinus {
		parts = append(parts, NewNum(p.overall).String())
	}
	for _, pr := range p.pairs {
		term := recombine(opProduct, pr)
		s := term.String()
		if _, isSum := term.(*Sum); isSum {
			s = "(" + s + ")"
		}
		parts = append(parts, s)
	}
	if len(parts) == 0 {
		return "1"
	}
	out := strings.Join(parts, "*")
	if leadingMinus {
		out = "-" + out
	}
	return out
}

func (p *Product) LaTeX() string {
	parts := make([]string, 0, len(p.pairs)+1)
	leadingMinus := p.overall.IsMinusOne()
	if !p.overall.IsOne() && !leadingMinus {
		parts = append(parts, NewNum(p.overall).LaTeX())
	}
	for _, pr := range p.pairs {
		term := recombine(opProduct, pr)
		s := term.LaTeX()
		if _, isSum := term.(*Sum); isSum {
			s = "\\left(" + s + "\\right)"
		}
		parts = append(parts, s)
	}
	if len(parts) == 0 {
		return "1"
	}
	out := strings.Join(parts, " ")
	if leadingMinus {
		out = "-" + out
	}
	return out
}

// Terms returns the sum's addends as plain Exprs (coeff folded in).
func (s *Sum) Terms() []Expr {
	out := make([]Expr, 0, len(s.pairs)+1)
	for _, p := range s.pairs {
		out = append(out, recombine(opSum, p))
	}
	if !s.overall.IsZero() {
		out = append(out, NewNum(s.overall))
	}
	return out
}

// Factors returns the product's factors as plain Exprs (exponent folded in).
func (p *Product) Factors() []Expr {
	out := make([]Expr, 0, len(p.pairs)+1)
	if !p.overall.IsOne() {
		out = append(out, NewNum(p.overall))
	}
	for _, pr := range p.pairs {
		out = append(out, recombine(opProduct, pr))
	}
	return out
}

// OverallCoeff exposes the sum's additive overall coefficient.
func (s *Sum) OverallCoeff() *numeric.Numeric { return s.overall }

// OverallCoeff exposes the product's multiplicative overall coefficient.
func (p *Product) OverallCoeff() *numeric.Numeric { return p.overall }
