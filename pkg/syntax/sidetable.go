package syntax

import (
	"runtime"
	"sync"
	"weak"
)

// sideTable maps green nodes to an out-of-band payload. Entries are keyed
// by a weak pointer and removed once the node is collected. Values must not
// reference their key node, or the entry would keep it alive.
type sideTable[V any] struct {
	entries sync.Map // weak.Pointer[GreenNode] -> V
}

var (
	diagnosticTable sideTable[[]Diagnostic]
	annotationTable sideTable[[]Annotation]
)

// set stores v for n. It is only called while n is being constructed,
// before any other goroutine can observe it.
func (t *sideTable[V]) set(n *GreenNode, v V) {
	key := weak.Make(n)
	t.entries.Store(key, v)
	runtime.AddCleanup(n, func(k weak.Pointer[GreenNode]) {
		t.entries.Delete(k)
	}, key)
}

func (t *sideTable[V]) get(n *GreenNode) (V, bool) {
	var zero V
	if n == nil {
		return zero, false
	}
	v, ok := t.entries.Load(weak.Make(n))
	if !ok {
		return zero, false
	}
	return v.(V), true
}

// count returns the number of live entries. Used by tests.
func (t *sideTable[V]) count() int {
	n := 0
	t.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
