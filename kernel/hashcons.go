package kernel

import (
	"sync"

	"github.com/benbjohnson/immutable"
)

// internTable is the hash-consing table recommended (not required) by
// spec.md §9 DESIGN NOTES: a content-keyed map from a node's canonical
// content to an already-existing node, so structurally equal composites
// share storage instead of allocating duplicates. It is implemented with
// benbjohnson/immutable's Map rather than a bare Go map because a
// persistent map lets Snapshot/Restore cheaply fork the intern table around
// a speculative rewrite without copying the whole table (nothing in this
// module calls them). mu guards the read of the
// map pointer and its reassignment on write, so the table itself is safe for
// concurrent use even though the immutable.Map value it points to is not
// mutated in place.
type internTable struct {
	mu sync.Mutex
	m  *immutable.Map[string, Expr]
}

func newInternTable() *internTable {
	return &internTable{m: immutable.NewMap[string, Expr](nil)}
}

// internKey builds the table key from a node's Kind and Hash; a key holds
// one node, checked by Equal before reuse, and a colliding node that is not
// Equal to it is returned uninterned (see Intern).
type internKey struct {
	kind Kind
	hash uint64
}

func (k internKey) str() string {
	b := make([]byte, 0, 16)
	b = appendUint64(b, uint64(k.kind))
	b = appendUint64(b, k.hash)
	return string(b)
}

func appendUint64(b []byte, v uint64) []byte {
	for i := 0; i < 8; i++ {
		b = append(b, byte(v>>(8*i)))
	}
	return b
}

// global is the process-wide intern table, shared by every canonicalizing
// constructor (AddOf, MulOf, PowOf, FuncOf, NCMulOf) across every goroutine,
// so its mu guards every read and write of the underlying map pointer.
var global = newInternTable()

// Intern returns e, or an existing structurally-equal node already in the
// table if one exists, inserting e otherwise. Composites' canonicalizing
// constructors call this after building their canonical form so that e.g.
// two independently-constructed copies of `x+y` become the identical
// pointer, which in turn makes Equal on them a pointer comparison in the
// common case.
func (t *internTable) Intern(e Expr) Expr {
	key := internKey{kind: e.Kind(), hash: e.Hash()}.str()
	t.mu.Lock()
	defer t.mu.Unlock()
	if existing, ok := t.m.Get(key); ok {
		if existing.Equal(e) {
			return existing
		}
		// Hash collision across structurally distinct nodes: fall through
		// and keep e uninterned rather than losing it. A production-grade
		// table would chain multiple candidates per key; this kernel
		// accepts the rare extra allocation instead, since the intern
		// table is a performance aid, not a correctness requirement
		// (spec.md §9: "not semantically required").
		return e
	}
	t.m = t.m.Set(key, e)
	return e
}

// Snapshot captures the current intern table so a speculative rewrite can
// be rolled back with Restore without mutating global state seen by other
// callers. The returned table has its own fresh mutex; it shares the
// captured map value, not the source table's lock.
func (t *internTable) Snapshot() *internTable {
	t.mu.Lock()
	defer t.mu.Unlock()
	return &internTable{m: t.m}
}

// Restore installs a previously captured snapshot as the live table.
func (t *internTable) Restore(snap *internTable) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.m = snap.m
}
