package skipmap

// Iterator is a non-owning forward cursor over the level-zero chain. Two
// iterators are equal iff they sit on the same node, so `it == m.End()` is
// the not-found / exhausted check and plain `==` gives identity semantics.
//
// The typical loop is:
//
//	for it := m.Begin(); it != m.End(); it.Next() {
//		// it.Key(), it.Value()
//	}
//
// An iterator whose node is later removed by Delete or Clear dangles; using
// it afterwards is a caller error, not a guarded one. Insert never
// invalidates iterators on other entries.
type Iterator[K any, V any] struct {
	current *node[K, V]
}

// Valid reports whether the cursor sits on a data node, i.e. it is neither
// End nor advanced past it.
func (it Iterator[K, V]) Valid() bool {
	return it.current != nil && it.current.bound == boundNone
}

// Key returns the key under the cursor. Keys are read-only through the
// iterator; there is deliberately no SetKey.
func (it Iterator[K, V]) Key() K {
	return it.current.key
}

// Value returns the value under the cursor.
func (it Iterator[K, V]) Value() V {
	return it.current.value
}

// SetValue overwrites the value under the cursor in place. Node identity and
// the surrounding structure are untouched.
func (it Iterator[K, V]) SetValue(value V) {
	it.current.value = value
}

// Next advances to the next entry on the level-zero chain. Advancing a
// cursor that is not Valid is a caller error.
func (it *Iterator[K, V]) Next() {
	it.current = it.current.next(0)
}
