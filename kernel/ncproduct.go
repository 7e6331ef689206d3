package kernel

import "strings"

// NCProduct is an ordered product of factors that must not be reordered
// (spec.md §3's non-commutative product kind, used for e.g. matrix products
// where operand order is load-bearing). Unlike Product it performs no
// sorting and no like-term combination; it only flattens nested NCProducts,
// drops multiplicative-identity factors, and collapses to 0 when any factor
// is an exact zero.
type NCProduct struct {
	envelope
	factors []Expr
}

// NCMulOf builds a canonical non-commutative product, preserving operand
// order.
func NCMulOf(factors ...Expr) Expr {
	var flat []Expr
	zero := false
	var walk func(x Expr)
	walk = func(x Expr) {
		if nc, ok := x.(*NCProduct); ok {
			for _, f := range nc.factors {
				walk(f)
			}
			return
		}
		if n, ok := asNum(x); ok && n.IsOne() {
			return
		}
		if n, ok := asNum(x); ok && n.IsZero() {
			zero = true
			return
		}
		flat = append(flat, x)
	}
	for _, f := range factors {
		walk(f)
	}
	if zero {
		return NumZero
	}
	switch len(flat) {
	case 0:
		return NumOne
	case 1:
		return flat[0]
	}
	p := &NCProduct{factors: flat}
	p.kind = KindNCProduct
	hashes := make([]uint64, len(flat))
	for i, f := range flat {
		hashes[i] = hashFold(f.Hash(), uint64(i))
	}
	p.hash = hashFold(fnv1a64("ncproduct"), hashes...)
	p.setEvaluated()
	return global.Intern(p)
}

func (p *NCProduct) Factors() []Expr { return p.factors }

func (p *NCProduct) Nops() int { return len(p.factors) }
func (p *NCProduct) Op(i int) Expr {
	if i < 0 || i >= len(p.factors) {
		panic(WrapRange("Op(%d): ncproduct has %d children", i, len(p.factors)))
	}
	return p.factors[i]
}

func (p *NCProduct) Has(sub Expr) bool { return hasDefault(p, sub) }

func (p *NCProduct) Info(pred Predicate) bool {
	if pred == PredPolynomial {
		return false
	}
	return false
}

func (p *NCProduct) Equal(other Expr) bool {
	o, ok := other.(*NCProduct)
	if !ok || len(p.factors) != len(o.factors) {
		return false
	}
	for i := range p.factors {
		if !p.factors[i].Equal(o.factors[i]) {
			return false
		}
	}
	return true
}

func (p *NCProduct) String() string {
	parts := make([]string, len(p.factors))
	for i, f := range p.factors {
		parts[i] = f.String()
	}
	return strings.Join(parts, " ** ")
}

func (p *NCProduct) LaTeX() string {
	parts := make([]string, len(p.factors))
	for i, f := range p.factors {
		parts[i] = f.LaTeX()
	}
	return strings.Join(parts, " \\cdot ")
}
