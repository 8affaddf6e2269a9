package skipmap

// boundary tags the two sentinel nodes so ordering can treat them as the
// extremes of the key space without requiring synthetic minimum or maximum
// key values from the caller's key type.
type boundary uint8

const (
	boundNone boundary = iota // Regular data node.
	boundHead                 // Header sentinel; orders below every key.
	boundTail                 // Tail sentinel; orders above every key.
)

// node is the storage unit of the skip list: one key/value pair plus a
// fixed-capacity array of forward links, one slot per tower level. Slots
// above the node's assigned tower height stay nil; the height is therefore
// the count of contiguous non-nil slots starting at level zero.
type node[K any, V any] struct {
	key     K
	value   V
	bound   boundary
	forward []*node[K, V]
}

// newNode allocates a data node with room for the full tower height.
func newNode[K any, V any](key K, value V, maxLevels int) *node[K, V] {
	return &node[K, V]{key: key, value: value, forward: make([]*node[K, V], maxLevels)}
}

// newBoundaryNode allocates a sentinel. Its key stays the zero value and is
// never consulted; ordering short-circuits on the boundary tag instead.
func newBoundaryNode[K any, V any](bound boundary, maxLevels int) *node[K, V] {
	return &node[K, V]{bound: bound, forward: make([]*node[K, V], maxLevels)}
}

// next returns the forward link at the given level. Indexing outside
// [0, maxLevels) is a caller bug and panics like any other slice misuse.
func (n *node[K, V]) next(level int) *node[K, V] {
	return n.forward[level]
}

func (n *node[K, V]) setNext(level int, target *node[K, V]) {
	n.forward[level] = target
}

// setAllNext points every forward slot at target. Used to aim the header at
// the tail on construction and again on Clear.
func (n *node[K, V]) setAllNext(target *node[K, V]) {
	for level := range n.forward {
		n.forward[level] = target
	}
}

// level is the node's tower height: the count of contiguous non-nil forward
// slots from level zero up. Nil gaps below the height would break the tower
// invariant, so the first nil terminates the scan.
func (n *node[K, V]) level() int {
	height := 0
	for _, next := range n.forward {
		if next == nil {
			break
		}
		height++
	}
	return height
}
