package kernel

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// FunctionRecord describes one named function known to the kernel: an
// optional numeric evaluator (used by FuncOf and Evalf when every argument
// is already numeric; FuncOf tries it before the simplifier), an optional
// symbolic simplifier (e.g. exp(ln(x)) -> x), and an optional single-variable derivative
// rule consumed by the chain rule in rewrite.go's Diff (spec.md §4.6
// "Function registry", §7's policy that an unregistered derivative yields a
// symbolic Derivative placeholder rather than failing).
type FunctionRecord struct {
	Name  string
	Arity int // -1 means variadic

	// Eval computes f(args) exactly or as a float approximation; ok is
	// false when the evaluator declines (e.g. a domain violation it would
	// rather leave symbolic).
	Eval func(args []*Num) (val *Num, ok bool)

	// Simplify applies identities that don't require numeric evaluation
	// (e.g. exp(ln(x)) -> x). It receives the function's own argument list
	// already simplified by the caller.
	Simplify func(args []Expr) (Expr, bool)

	// Derivative returns d/d(args[0]) of f(args[0]); only single-argument
	// functions register one, which covers every built-in transcendental
	// function (spec.md's registry is scoped to that case).
	Derivative func(args []Expr) Expr

	// LaTeXName overrides the default \name wrapping when the function's
	// conventional LaTeX spelling differs (e.g. "ln" needs no backslash
	// command of its own beyond \ln).
	LaTeXName string
}

var registry = map[string]*FunctionRecord{}

// RegisterFunction adds or replaces the record for name. Called from
// package init for the built-in set (builtins.go); user code may register
// additional functions the same way.
func RegisterFunction(r *FunctionRecord) { registry[r.Name] = r }

// LookupFunction returns the record for name, if any.
func LookupFunction(name string) (*FunctionRecord, bool) {
	r, ok := registry[name]
	return r, ok
}

// RegisteredNames returns every registered function name, sorted, for
// tooling that lists the built-in set (e.g. the mcp-server's capability
// listing).
func RegisteredNames() []string {
	names := maps.Keys(registry)
	slices.Sort(names)
	return names
}
