package skipmap

import (
	"fmt"
	"math/rand"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newDeterministic builds an int->string map with a fixed level-draw seed so
// tower shapes are reproducible across runs.
func newDeterministic(t *testing.T, opts ...Option) *Map[int, string] {
	t.Helper()
	opts = append([]Option{WithRandomSource(rand.NewSource(42))}, opts...)
	return New[int, string](opts...)
}

// assertHasKey checks the given map contains key with the expected value.
func assertHasKey[K any, V any](t *testing.T, m *Map[K, V], key K, expectedVal V) {
	t.Helper()
	gotValue, found := m.Get(key)
	assert.Truef(t, found, "Expected key %s to be present.", fmt.Sprint(key))
	assert.Equal(t, expectedVal, gotValue)
}

// collectKeys drains the map's range sequence into a key slice.
func collectKeys[K any, V any](m *Map[K, V]) []K {
	var keys []K
	for key := range m.All() {
		keys = append(keys, key)
	}
	return keys
}

func TestMap_EmptyGet(t *testing.T) {
	m := newDeterministic(t)
	_, found := m.Get(42)
	assert.False(t, found)
	assert.Zero(t, m.Len())
}

func TestMap_InsertAndGet_Simple(t *testing.T) {
	m := newDeterministic(t)
	m.Insert(2, "two")
	m.Insert(1, "one")
	m.Insert(3, "three")

	assertHasKey(t, m, 1, "one")
	assertHasKey(t, m, 2, "two")
	assertHasKey(t, m, 3, "three")
	assert.Equal(t, 3, m.Len())
}

func TestMap_UpdateValueInPlace(t *testing.T) {
	m := newDeterministic(t)
	m.Insert(10, "ten")
	sizeBefore := m.Len()

	m.Insert(10, "TEN")
	assertHasKey(t, m, 10, "TEN")
	assert.Equal(t, sizeBefore, m.Len(), "Updating an existing key must not change the size.")
	assert.Equal(t, []int{10}, collectKeys(m))
}

func TestMap_Delete(t *testing.T) {
	m := newDeterministic(t)
	// Deleting from an empty map removes nothing.
	assert.Equal(t, 0, m.Delete(7))

	for _, testCase := range []struct {
		k int
		v string
	}{{k: 1, v: "a"}, {k: 2, v: "b"}, {k: 3, v: "c"}} {
		m.Insert(testCase.k, testCase.v)
	}
	assert.Equal(t, 1, m.Delete(2))
	_, found := m.Get(2)
	assert.False(t, found)
	// Deleting again removes nothing.
	assert.Equal(t, 0, m.Delete(2))
	// Other keys remain in order.
	assertHasKey(t, m, 1, "a")
	assertHasKey(t, m, 3, "c")
	assert.Equal(t, []int{1, 3}, collectKeys(m))
}

func TestMap_DeleteAbsentLeavesStructure(t *testing.T) {
	m := newDeterministic(t)
	for _, key := range []int{5, 1, 9, 3} {
		m.Insert(key, strconv.Itoa(key))
	}
	before := collectKeys(m)
	sizeBefore := m.Len()

	assert.Equal(t, 0, m.Delete(7))
	assert.Equal(t, sizeBefore, m.Len())
	assert.Equal(t, before, collectKeys(m))
}

func TestMap_SizeAfterInsertsAndDeletes(t *testing.T) {
	m := newDeterministic(t)
	const inserts = 100
	for i := 0; i < inserts; i++ {
		m.Insert(i, strconv.Itoa(i))
	}
	require.Equal(t, inserts, m.Len())

	deletes := 0
	for i := 0; i < inserts; i += 3 {
		deletes += m.Delete(i)
	}
	assert.Equal(t, inserts-deletes, m.Len())
}

func TestMap_Clear(t *testing.T) {
	m := newDeterministic(t)
	for _, key := range []int{4, 8, 15, 16, 23, 42} {
		m.Insert(key, strconv.Itoa(key))
	}
	require.NotZero(t, m.Len())

	m.Clear()
	assert.Zero(t, m.Len())
	assert.Equal(t, m.End(), m.Begin())
	_, found := m.Get(15)
	assert.False(t, found)

	// Clearing an already-empty map is a no-op.
	m.Clear()
	assert.Zero(t, m.Len())

	// The map stays usable after a Clear.
	m.Insert(1, "one")
	assertHasKey(t, m, 1, "one")
}

func TestMap_ConcreteScenario(t *testing.T) {
	m := newDeterministic(t)
	for _, key := range []int{50, 20, 80, 10, 30} {
		m.Insert(key, strconv.Itoa(key))
	}

	var values []string
	for _, value := range m.All() {
		values = append(values, value)
	}
	assert.Equal(t, []string{"10", "20", "30", "50", "80"}, values)

	found := m.Search(30)
	require.NotEqual(t, m.End(), found)
	assert.Equal(t, "30", found.Value())
	assert.Equal(t, m.End(), m.Search(99))

	assert.Equal(t, 1, m.Delete(20))
	assert.Equal(t, []int{10, 30, 50, 80}, collectKeys(m))
	assert.Equal(t, 0, m.Delete(20))
}

func TestMap_StringKeysNaturalOrder(t *testing.T) {
	m := New[string, int](WithRandomSource(rand.NewSource(42)))
	m.Insert("gamma", 3)
	m.Insert("alpha", 1)
	m.Insert("beta", 2)
	assertHasKey(t, m, "beta", 2)
	assert.Equal(t, []string{"alpha", "beta", "gamma"}, collectKeys(m))
}

func TestMap_CustomComparator(t *testing.T) {
	// A reversed comparator flips the iteration order.
	m := NewFunc[int, string](func(x, y int) int { return y - x },
		WithRandomSource(rand.NewSource(42)))
	for _, key := range []int{2, 3, 1} {
		m.Insert(key, strconv.Itoa(key))
	}
	assert.Equal(t, []int{3, 2, 1}, collectKeys(m))
	assertHasKey(t, m, 2, "2")
	assert.Equal(t, 1, m.Delete(3))
	assert.Equal(t, []int{2, 1}, collectKeys(m))
}

func TestMap_MaxLevelsCapsTowers(t *testing.T) {
	const maxLevels = 4
	m := newDeterministic(t, WithMaxLevels(maxLevels))
	for i := 0; i < 1_000; i++ {
		m.Insert(i, strconv.Itoa(i))
	}
	assert.LessOrEqual(t, len(m.LevelCounts()), maxLevels)
	for n := m.header.next(0); n.bound != boundTail; n = n.next(0) {
		assert.LessOrEqual(t, n.level(), maxLevels)
	}
}

func TestMap_SameSeedSameShape(t *testing.T) {
	first := New[int, string](WithRandomSource(rand.NewSource(7)))
	second := New[int, string](WithRandomSource(rand.NewSource(7)))
	for i := 0; i < 500; i++ {
		first.Insert(i, strconv.Itoa(i))
		second.Insert(i, strconv.Itoa(i))
	}
	assert.Equal(t, first.LevelCounts(), second.LevelCounts())
}
