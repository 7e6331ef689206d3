package kernel

import "strings"

// Function is a named function applied to an argument list (spec.md §3,
// §4.6). Its behavior (numeric evaluation, symbolic identities, derivative
// rules) comes entirely from the function registry, keyed by name, rather
// than from a Go type per function the way the teacher's gosymbol.go
// switches on a string tag inside one big Func type — this kernel keeps
// that single Function type but moves the per-function behavior out to
// FunctionRecord so new functions can be registered without touching this
// file.
type Function struct {
	envelope
	name string
	args []Expr
}

// FuncOf is the canonicalizing constructor: it tries the registered numeric
// evaluator when every argument is numeric, then the registered symbolic
// simplifier, and only builds a bare Function node if neither applies.
func FuncOf(name string, args ...Expr) Expr {
	if rec, ok := LookupFunction(name); ok {
		if rec.Eval != nil && allNumeric(args) {
			nums := make([]*Num, len(args))
			for i, a := range args {
				nums[i] = a.(*Num)
			}
			if v, ok := rec.Eval(nums); ok {
				return v
			}
		}
		if rec.Simplify != nil {
			if v, ok := rec.Simplify(args); ok {
				return v
			}
		}
	}
	return newFunctionRaw(name, args)
}

func allNumeric(args []Expr) bool {
	for _, a := range args {
		if _, ok := asNum(a); !ok {
			return false
		}
	}
	return true
}

func newFunctionRaw(name string, args []Expr) Expr {
	f := &Function{name: name, args: args}
	f.kind = KindFunction
	hashes := make([]uint64, len(args))
	for i, a := range args {
		hashes[i] = a.Hash()
	}
	f.hash = hashFold(fnv1a64(name), hashes...)
	f.setEvaluated()
	return global.Intern(f)
}

func (f *Function) Name() string   { return f.name }
func (f *Function) Args() []Expr   { return f.args }
func (f *Function) Arg(i int) Expr { return f.args[i] }

func (f *Function) Nops() int { return len(f.args) }
func (f *Function) Op(i int) Expr {
	if i < 0 || i >= len(f.args) {
		panic(WrapRange("Op(%d): function %s has %d arguments", i, f.name, len(f.args)))
	}
	return f.args[i]
}

func (f *Function) Has(sub Expr) bool { return hasDefault(f, sub) }

func (f *Function) Info(p Predicate) bool {
	if p == PredReal {
		for _, a := range f.args {
			if !a.Info(PredReal) {
				return false
			}
		}
		return true
	}
	return false
}

func (f *Function) Equal(other Expr) bool {
	o, ok := other.(*Function)
	if !ok || f.name != o.name || len(f.args) != len(o.args) {
		return false
	}
	for i := range f.args {
		if !f.args[i].Equal(o.args[i]) {
			return false
		}
	}
	return true
}

func (f *Function) String() string {
	parts := make([]string, len(f.args))
	for i, a := range f.args {
		parts[i] = a.String()
	}
	return f.name + "(" + strings.Join(parts, ", ") + ")"
}

func (f *Function) LaTeX() string {
	parts := make([]string, len(f.args))
	for i, a := range f.args {
		parts[i] = a.LaTeX()
	}
	name := f.name
	if rec, ok := LookupFunction(f.name); ok && rec.LaTeXName != "" {
		name = rec.LaTeXName
	} else {
		name = "\\mathrm{" + name + "}"
	}
	return name + "\\left(" + strings.Join(parts, ", ") + "\\right)"
}

// DerivativeOf represents an unevaluated d/d(wrt) f(args) placeholder,
// returned by Diff (rewrite.go) when f has no registered derivative rule
// (spec.md §7: a failed derivative yields a symbolic placeholder, not an
// error).
type DerivativeOf struct {
	envelope
	fn  Expr // the Function being differentiated
	wrt Expr // the variable of differentiation
}

func NewDerivativeOf(fn, wrt Expr) Expr {
	d := &DerivativeOf{fn: fn, wrt: wrt}
	d.kind = KindFunction
	d.hash = hashFold(fnv1a64("derivative"), fn.Hash(), wrt.Hash())
	d.setEvaluated()
	return global.Intern(d)
}

func (d *DerivativeOf) Nops() int { return 2 }
func (d *DerivativeOf) Op(i int) Expr {
	switch i {
	case 0:
		return d.fn
	case 1:
		return d.wrt
	}
	panic(WrapRange("Op(%d): Derivative has 2 children", i))
}
func (d *DerivativeOf) Has(sub Expr) bool { return hasDefault(d, sub) }
func (d *DerivativeOf) Info(Predicate) bool { return false }
func (d *DerivativeOf) Equal(other Expr) bool {
	o, ok := other.(*DerivativeOf)
	return ok && d.fn.Equal(o.fn) && d.wrt.Equal(o.wrt)
}
func (d *DerivativeOf) String() string { return "Derivative(" + d.fn.String() + ", " + d.wrt.String() + ")" }
func (d *DerivativeOf) LaTeX() string {
	return "\\frac{\\partial}{\\partial " + d.wrt.LaTeX() + "}" + d.fn.LaTeX()
}
