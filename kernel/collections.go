package kernel

import "strings"

// List is an ordered, unsorted sequence of expressions that, unlike Sum and
// Product, carries no algebraic law: operands keep their given order and
// are never combined (spec.md §3, supplementing the distilled spec's
// numeric/symbolic kinds with a plain container kind).
type List struct {
	envelope
	items []Expr
}

// ListOf builds a List node.
func ListOf(items ...Expr) *List {
	l := &List{items: append([]Expr(nil), items...)}
	l.kind = KindList
	hashes := make([]uint64, len(items))
	for i, it := range items {
		hashes[i] = hashFold(it.Hash(), uint64(i))
	}
	l.hash = hashFold(fnv1a64("list"), hashes...)
	l.setEvaluated()
	return l
}

func (l *List) Items() []Expr { return l.items }

// Prepend returns a new List with x inserted at the front; List values are
// immutable like every other node, so this allocates rather than mutating.
func (l *List) Prepend(x Expr) *List { return ListOf(append([]Expr{x}, l.items...)...) }

// Append returns a new List with x added at the back.
func (l *List) Append(x Expr) *List { return ListOf(append(append([]Expr(nil), l.items...), x)...) }

func (l *List) Nops() int { return len(l.items) }
func (l *List) Op(i int) Expr {
	if i < 0 || i >= len(l.items) {
		panic(WrapRange("Op(%d): list has %d elements", i, len(l.items)))
	}
	return l.items[i]
}
func (l *List) Has(sub Expr) bool  { return hasDefault(l, sub) }
func (l *List) Info(Predicate) bool { return false }
func (l *List) Equal(other Expr) bool {
	o, ok := other.(*List)
	if !ok || len(l.items) != len(o.items) {
		return false
	}
	for i := range l.items {
		if !l.items[i].Equal(o.items[i]) {
			return false
		}
	}
	return true
}
func (l *List) String() string {
	parts := make([]string, len(l.items))
	for i, it := range l.items {
		parts[i] = it.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
func (l *List) LaTeX() string {
	parts := make([]string, len(l.items))
	for i, it := range l.items {
		parts[i] = it.LaTeX()
	}
	return "\\left[" + strings.Join(parts, ", ") + "\\right]"
}

// Tuple is a fixed-arity, immutable ordered sequence (spec.md §3), distinct
// from List in intent (a function's multiple return values, a coordinate
// point) though structurally similar; kept as its own Kind so pattern
// matches and printers can tell them apart.
type Tuple struct {
	envelope
	items []Expr
}

// TupleOf builds a Tuple node.
func TupleOf(items ...Expr) *Tuple {
	t := &Tuple{items: append([]Expr(nil), items...)}
	t.kind = KindTuple
	hashes := make([]uint64, len(items))
	for i, it := range items {
		hashes[i] = hashFold(it.Hash(), uint64(i))
	}
	t.hash = hashFold(fnv1a64("tuple"), hashes...)
	t.setEvaluated()
	return t
}

func (t *Tuple) Items() []Expr { return t.items }

func (t *Tuple) Nops() int { return len(t.items) }
func (t *Tuple) Op(i int) Expr {
	if i < 0 || i >= len(t.items) {
		panic(WrapRange("Op(%d): tuple has %d elements", i, len(t.items)))
	}
	return t.items[i]
}
func (t *Tuple) Has(sub Expr) bool  { return hasDefault(t, sub) }
func (t *Tuple) Info(Predicate) bool { return false }
func (t *Tuple) Equal(other Expr) bool {
	o, ok := other.(*Tuple)
	if !ok || len(t.items) != len(o.items) {
		return false
	}
	for i := range t.items {
		if !t.items[i].Equal(o.items[i]) {
			return false
		}
	}
	return true
}
func (t *Tuple) String() string {
	parts := make([]string, len(t.items))
	for i, it := range t.items {
		parts[i] = it.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
func (t *Tuple) LaTeX() string {
	parts := make([]string, len(t.items))
	for i, it := range t.items {
		parts[i] = it.LaTeX()
	}
	return "\\left(" + strings.Join(parts, ", ") + "\\right)"
}
