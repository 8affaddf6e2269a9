// Package skipmap provides an ordered map backed by a skip list.
//
// A skip list maintains multiple forward-pointer layers over a sorted linked
// list. Each entry is promoted to higher levels by fair coin flips, forming
// express lanes that let searches skip over large ranges. Operations start at
// the highest populated level and descend whenever advancing would overshoot
// the target key.
//
// Properties
//   - Expected time complexity for Search/Insert/Delete: O(log n); worst case
//     O(n) under pathological level draws
//   - Space complexity: O(n)
//   - Deterministic ascending iteration order by key over the level-zero chain
//   - No internal locking: a Map must be externally synchronized before it is
//     shared between goroutines (see pkg/store for the locked wrapper)
package skipmap

import (
	"cmp"
	"iter"
	"math/rand"
	"time"

	"github.com/nobletooth/skipmap/pkg/utils"
)

const (
	// DefaultMaxLevels bounds tower height. Roughly ceil(log2(expected max
	// element count)) is a good setting; 16 covers tens of thousands of
	// entries comfortably.
	DefaultMaxLevels = 16
	// levelProbability is the chance a tower grows by one more level, giving
	// P(level = L) = 2^-(L+1) below the cap.
	levelProbability = 0.5
)

// Map is an ordered associative container mapping unique keys to values,
// iterable in ascending key order. Mutating a key after insertion (e.g.
// through a pointer-typed key) breaks the ordering invariants; that is a
// documented caller precondition, not an enforced one.
type Map[K any, V any] struct {
	header, tail *node[K, V]
	highestLevel int // Highest level index used by any data node, counted from zero.
	size         int
	compare      utils.CompareFn[K]
	maxLevels    int
	rnd          *rand.Rand // Private level generator; injectable for reproducible tests.
}

type mapOptions struct {
	maxLevels int
	source    rand.Source
}

// Option adjusts construction-time knobs of a Map.
type Option func(*mapOptions)

// WithMaxLevels caps tower height, trading per-node memory for expected
// search depth. Values below one fall back to DefaultMaxLevels.
func WithMaxLevels(maxLevels int) Option {
	return func(o *mapOptions) { o.maxLevels = maxLevels }
}

// WithRandomSource injects the randomness source behind level draws so tests
// can make tower shapes reproducible. Production use keeps the entropy-seeded
// default.
func WithRandomSource(source rand.Source) Option {
	return func(o *mapOptions) { o.source = source }
}

// New creates an empty map over a naturally ordered key type.
func New[K cmp.Ordered, V any](opts ...Option) *Map[K, V] {
	return NewFunc[K, V](cmp.Compare[K], opts...)
}

// NewFunc creates an empty map ordered by the given three-way comparator.
// The comparator must implement a total order over K; a malformed comparator
// silently corrupts the structure (trusted-caller contract).
func NewFunc[K any, V any](compare utils.CompareFn[K], opts ...Option) *Map[K, V] {
	if compare == nil {
		utils.RaiseInvariant("skipmap", "nil_comparator", "A nil comparator was given to NewFunc.")
	}
	options := mapOptions{maxLevels: DefaultMaxLevels}
	for _, opt := range opts {
		opt(&options)
	}
	if options.maxLevels < 1 {
		utils.RaiseInvariant("skipmap", "invalid_max_levels",
			"Got a non-positive max levels bound.", "maxLevels", options.maxLevels)
		options.maxLevels = DefaultMaxLevels
	}
	if options.source == nil {
		options.source = rand.NewSource(time.Now().UnixNano())
	}

	m := &Map[K, V]{
		header:    newBoundaryNode[K, V](boundHead, options.maxLevels),
		tail:      newBoundaryNode[K, V](boundTail, options.maxLevels),
		compare:   compare,
		maxLevels: options.maxLevels,
		rnd:       rand.New(options.source),
	}
	// An empty map has every header link aimed straight at the tail.
	m.header.setAllNext(m.tail)
	return m
}

// keyLess reports whether n's key orders strictly before key. The boundary
// tags place the header below and the tail above every caller key, so the
// user comparator only ever sees real keys.
func (m *Map[K, V]) keyLess(n *node[K, V], key K) bool {
	switch n.bound {
	case boundHead:
		return true
	case boundTail:
		return false
	default:
		return m.compare(n.key, key) < 0
	}
}

// keyEqual reports whether n is a data node holding exactly key.
func (m *Map[K, V]) keyEqual(n *node[K, V], key K) bool {
	return n.bound == boundNone && m.compare(n.key, key) == 0
}

// randomLevel draws a tower height via a fair geometric process: keep
// flipping a coin and growing the level until the first failure, never
// exceeding the hard cap. Mass concentrates near level zero, which keeps
// expected tower heights logarithmic in the entry count.
func (m *Map[K, V]) randomLevel() int {
	level := 0
	for m.rnd.Float64() < levelProbability && level < m.maxLevels-1 {
		level++
	}
	return level
}

// descend walks the towers from the highest populated level down to level
// zero, advancing rightward at each level while the next key is still below
// the target. When updates is non-nil it records, per level, the rightmost
// node left of the target position (the update vector used for splicing).
// It returns the level-zero predecessor of the target position.
func (m *Map[K, V]) descend(key K, updates []*node[K, V]) *node[K, V] {
	current := m.header
	for level := m.highestLevel; level >= 0; level-- {
		for m.keyLess(current.next(level), key) {
			current = current.next(level)
		}
		if utils.IsTestMode {
			m.checkDescentBounds(current, level, key)
		}
		if updates != nil {
			updates[level] = current
		}
	}
	return current
}

// checkDescentBounds asserts the per-level loop invariant: the stopping node
// sits strictly below the target key while its successor does not. These
// guard internal algorithm correctness, so they run only under tests.
func (m *Map[K, V]) checkDescentBounds(current *node[K, V], level int, key K) {
	if !m.keyLess(current, key) {
		utils.RaiseInvariant("skipmap", "descent_overshoot",
			"Descent stopped on a node at or above the target key.", "level", level)
	}
	if m.keyLess(current.next(level), key) {
		utils.RaiseInvariant("skipmap", "descent_undershoot",
			"Descent stopped while the successor is still below the target key.", "level", level)
	}
}

// Search returns an iterator positioned on key, or End when the key is
// absent. The structure is not mutated.
func (m *Map[K, V]) Search(key K) Iterator[K, V] {
	candidate := m.descend(key, nil).next(0)
	if m.keyEqual(candidate, key) {
		return Iterator[K, V]{current: candidate}
	}
	return m.End()
}

// Get looks up key and reports whether it is present. It is Search for
// callers that want the value rather than a cursor.
func (m *Map[K, V]) Get(key K) (V, bool) {
	previous := m.descend(key, nil)
	if candidate := previous.next(0); m.keyEqual(candidate, key) {
		return candidate.value, true
	}
	var zero V
	return zero, false
}

// Insert adds key with value, or overwrites the value in place when the key
// already exists (no structural change, size unchanged). Existing iterators
// stay valid: splicing only rewrites forward links, never moves nodes.
func (m *Map[K, V]) Insert(key K, value V) {
	updates := make([]*node[K, V], m.maxLevels)
	previous := m.descend(key, updates)
	if candidate := previous.next(0); m.keyEqual(candidate, key) {
		candidate.value = value
		return
	}

	newLevel := m.randomLevel()
	if newLevel > m.highestLevel {
		// No data node reaches the fresh levels yet, so the header is the
		// splice predecessor up there.
		for level := m.highestLevel + 1; level <= newLevel; level++ {
			updates[level] = m.header
		}
		m.highestLevel = newLevel
	}

	// Allocation happens only once the descent confirmed the key is new, so a
	// failed allocation leaves the structure in its pre-call state.
	inserted := newNode(key, value, m.maxLevels)
	for level := 0; level <= newLevel; level++ {
		inserted.setNext(level, updates[level].next(level))
		updates[level].setNext(level, inserted)
	}
	m.size++
}

// Delete removes key and returns 1, or returns 0 when the key is absent and
// leaves the structure untouched.
func (m *Map[K, V]) Delete(key K) int {
	updates := make([]*node[K, V], m.maxLevels)
	previous := m.descend(key, updates)
	target := previous.next(0)
	if !m.keyEqual(target, key) {
		return 0
	}

	// The tower invariant guarantees the levels pointing at the target form a
	// contiguous prefix from zero, so stop at the first level that already
	// skips past it.
	for level := 0; level <= m.highestLevel; level++ {
		if updates[level].next(level) != target {
			break
		}
		updates[level].setNext(level, target.next(level))
	}
	// Shrink the populated height if the target held the top level alone.
	for m.highestLevel > 0 && m.header.next(m.highestLevel) == m.tail {
		m.highestLevel--
	}
	m.size--
	return 1
}

// Clear removes every entry: header links aim straight at the tail again and
// the unlinked nodes are left to the garbage collector. Iterators obtained
// before the call dangle and must not be advanced. Clearing an empty map is
// a no-op.
func (m *Map[K, V]) Clear() {
	m.header.setAllNext(m.tail)
	m.highestLevel = 0
	m.size = 0
}

// Len returns the current entry count.
func (m *Map[K, V]) Len() int {
	return m.size
}

// Begin returns a cursor on the smallest entry, equal to End when the map is
// empty.
func (m *Map[K, V]) Begin() Iterator[K, V] {
	return Iterator[K, V]{current: m.header.next(0)}
}

// End returns the past-the-last cursor. It compares equal only to itself and
// to a Search miss.
func (m *Map[K, V]) End() Iterator[K, V] {
	return Iterator[K, V]{current: m.tail}
}

// All returns an ascending-by-key sequence of entries for use with range.
// The map must not be mutated while the sequence is being consumed.
func (m *Map[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for n := m.header.next(0); n.bound != boundTail; n = n.next(0) {
			if !yield(n.key, n.value) {
				return
			}
		}
	}
}

// LevelCounts reports how many entries participate at each level from zero
// through the current highest populated level. Level zero always equals
// Len(); under fair coin flips level L holds about Len()/2^L entries.
func (m *Map[K, V]) LevelCounts() []int {
	counts := make([]int, m.highestLevel+1)
	for level := 0; level <= m.highestLevel; level++ {
		for n := m.header.next(level); n.bound != boundTail; n = n.next(level) {
			counts[level]++
		}
	}
	return counts
}
