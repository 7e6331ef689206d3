package kernel

import (
	"math/big"
	"sync"
	"sync/atomic"

	"github.com/loveq369/symkernel/numeric"
)

// serialCounter is the process-wide symbol-serial source (spec.md §3, §5).
// Incrementing it is atomic, and symbolInterned's map access is guarded by
// symbolInternedMu below, so concurrent symbol creation across goroutines is
// safe even though a single expression tree is not meant to be shared across
// goroutines without external synchronization.
var serialCounter uint64

// Symbol is a display name plus a process-unique serial number. Two symbols
// with the same name but distinct serials are distinct algebraic entities
// (spec.md §3): NewSymbolUnique("x") called twice yields two symbols that
// print the same but do not compare Equal and sort by serial, not name,
// when serials differ. Most callers want a single canonical `x`; NewSymbol
// interns by name for that reason, and NewSymbolUnique bypasses interning
// when a fresh binding is genuinely wanted.
type Symbol struct {
	envelope
	name   string
	serial uint64
}

var (
	symbolInternedMu sync.Mutex
	symbolInterned   = map[string]*Symbol{}
)

// NewSymbol returns the canonical Symbol for name, creating and interning it
// on first use. Repeated calls with the same name return the identical
// pointer. Safe for concurrent use: symbolInterned's read-then-write is
// guarded by symbolInternedMu rather than left as a bare map access.
func NewSymbol(name string) *Symbol {
	symbolInternedMu.Lock()
	defer symbolInternedMu.Unlock()
	if s, ok := symbolInterned[name]; ok {
		return s
	}
	s := newSymbolUnchecked(name)
	symbolInterned[name] = s
	return s
}

// NewSymbolUnique returns a fresh Symbol that is never equal to any other
// symbol of the same name, interned or not, for generated variables where
// shadowing the user's own `x` would be a correctness bug, not a
// convenience. No code in this module outside its tests calls it.
func NewSymbolUnique(name string) *Symbol { return newSymbolUnchecked(name) }

func newSymbolUnchecked(name string) *Symbol {
	serial := atomic.AddUint64(&serialCounter, 1)
	s := &Symbol{name: name, serial: serial}
	s.kind = KindSymbol
	s.hash = hashFold(fnv1a64("symbol"), fnv1a64(name), serial)
	s.setEvaluated()
	return s
}

func (s *Symbol) Name() string   { return s.name }
func (s *Symbol) Serial() uint64 { return s.serial }

func (s *Symbol) String() string { return s.name }
func (s *Symbol) LaTeX() string  { return s.name }

func (s *Symbol) Equal(other Expr) bool {
	o, ok := other.(*Symbol)
	return ok && s.serial == o.serial
}

func (s *Symbol) Has(sub Expr) bool { return hasDefault(s, sub) }

func (s *Symbol) Info(p Predicate) bool {
	return p == PredSymbol || p == PredPolynomial
}

// Constant is a named value with either an exact numeric body (e.g. i, the
// imaginary unit) or an arity-0 numeric evaluator for transcendentals (e.g.
// pi), per spec.md §3.
type Constant struct {
	envelope
	name string
	body *Num
	eval func() *Num
}

var constantRegistry = map[string]*Constant{}

// NewExactConstant registers (or returns an already-registered) named
// constant backed by an exact numeric body.
func NewExactConstant(name string, body *Num) *Constant {
	if c, ok := constantRegistry[name]; ok {
		return c
	}
	c := &Constant{name: name, body: body}
	c.kind = KindConstant
	c.hash = hashFold(fnv1a64("constant"), fnv1a64(name))
	c.setEvaluated()
	constantRegistry[name] = c
	return c
}

// NewTranscendentalConstant registers a constant whose numeric value is only
// available through an evaluator (e.g. computing pi to the current
// precision), per spec.md §3's "arity-0 numeric evaluator" case.
func NewTranscendentalConstant(name string, eval func() *Num) *Constant {
	if c, ok := constantRegistry[name]; ok {
		return c
	}
	c := &Constant{name: name, eval: eval}
	c.kind = KindConstant
	c.hash = hashFold(fnv1a64("constant"), fnv1a64(name))
	c.setEvaluated()
	constantRegistry[name] = c
	return c
}

// LookupConstant returns the already-registered constant with the given
// name, so a node class other than the one that originally registered it
// (e.g. the archive reader) can resolve a constant by name alone.
func LookupConstant(name string) (*Constant, bool) {
	c, ok := constantRegistry[name]
	return c, ok
}

func (c *Constant) Name() string { return c.name }

// NumericValue returns the constant's exact body if it has one, or invokes
// its evaluator otherwise. The bool result is false only for a
// transcendental constant with no evaluator registered.
func (c *Constant) NumericValue() (*Num, bool) {
	if c.body != nil {
		return c.body, true
	}
	if c.eval != nil {
		return c.eval(), true
	}
	return nil, false
}

func (c *Constant) String() string { return c.name }
func (c *Constant) LaTeX() string {
	switch c.name {
	case "pi":
		return "\\pi"
	case "e":
		return "e"
	case "i", "I":
		return "i"
	}
	return "\\mathrm{" + c.name + "}"
}

func (c *Constant) Equal(other Expr) bool {
	o, ok := other.(*Constant)
	return ok && c.name == o.name
}

func (c *Constant) Has(sub Expr) bool { return hasDefault(c, sub) }

func (c *Constant) Info(p Predicate) bool {
	switch p {
	case PredNumeric:
		return c.body != nil
	case PredReal:
		return true
	}
	return false
}

// Well-known constants, registered eagerly so the registry never needs
// double-checked locking (spec.md §5 "Shared resources": "Initial
// registration happens before any user operation").
var (
	// ConstI is the imaginary unit, an exact Gaussian-rational constant.
	ConstI = NewExactConstant("I", NewNum(numeric.NewComplex(big.NewRat(0, 1), big.NewRat(1, 1))))
	// ConstPi and ConstE are transcendental; their numeric value depends on
	// the process-wide float precision (numeric.Precision), so it is
	// computed on demand rather than cached once.
	ConstPi = NewTranscendentalConstant("pi", func() *Num { return Flt(piApprox) })
	ConstE  = NewTranscendentalConstant("e", func() *Num { return Flt(eApprox) })
)

// piApprox/eApprox are float64 seeds; a precision-aware implementation would
// compute these via a series to numeric.Precision() bits, which is exactly
// the kind of numeric evaluator body a registered function record supplies
// for transcendentals reached through the function registry (see
// registry.go) rather than through a bare Constant.
const piApprox = 3.14159265358979323846
const eApprox = 2.71828182845904523536
