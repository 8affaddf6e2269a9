// skipstats exercises the skip map with a randomized integer workload and
// reports how the towers are distributed across levels. It doubles as a
// smoke test: size accounting, lookups, traversal content, and Clear are all
// verified against a shuffled insert of --keys distinct integers.

package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/nobletooth/skipmap/pkg/skipmap"
	"github.com/nobletooth/skipmap/pkg/utils"
	"github.com/olekukonko/tablewriter"
)

var (
	keyCount  = flag.Int("keys", 100_000, "Number of distinct integer keys to insert.")
	seed      = flag.Int64("seed", 0, "Seed for the workload shuffle and the level draws; 0 picks one from the clock.")
	maxLevels = flag.Int("max_levels", skipmap.DefaultMaxLevels, "Maximum tower height of the skip map.")
)

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "FAIL: "+format+"\n", args...)
	os.Exit(1)
}

// streamDigest hashes the key/value stream of the map in traversal order.
func streamDigest(m *skipmap.Map[int, string]) uint64 {
	digest := xxhash.New()
	for key, value := range m.All() {
		_, _ = digest.WriteString(strconv.Itoa(key))
		_, _ = digest.WriteString(value)
	}
	return digest.Sum64()
}

// expectedDigest hashes the stream a correct map must produce: each key from
// 1 through keyCount in ascending order, valued by its decimal text.
func expectedDigest(keyCount int) uint64 {
	digest := xxhash.New()
	for key := 1; key <= keyCount; key++ {
		text := strconv.Itoa(key)
		_, _ = digest.WriteString(text)
		_, _ = digest.WriteString(text)
	}
	return digest.Sum64()
}

func printLevelTable(m *skipmap.Map[int, string]) {
	counts := m.LevelCounts()
	total := m.Len()

	rows := make([][]string, 0, len(counts))
	expectedShare := 1.0 // Every node participates at level zero.
	for level, nodes := range counts {
		rows = append(rows, []string{
			strconv.Itoa(level),
			strconv.Itoa(nodes),
			fmt.Sprintf("%.4f", float64(nodes)/float64(total)),
			fmt.Sprintf("%.4f", expectedShare),
		})
		expectedShare /= 2 // Fair coin: participation halves per level.
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Level", "Nodes", "Share", "Expected"})
	table.SetAlignment(tablewriter.ALIGN_CENTER)
	table.SetAutoWrapText(false)
	table.AppendBulk(rows)
	table.Render()
}

func main() {
	flag.Parse()

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	rnd := rand.New(rand.NewSource(*seed))
	fmt.Printf("keys: %d, max_levels: %d, seed: %d, build: %s\n", *keyCount, *maxLevels, *seed, utils.Version)

	m := skipmap.New[int, string](
		skipmap.WithMaxLevels(*maxLevels),
		skipmap.WithRandomSource(rand.NewSource(*seed)))

	// Insert 1..keyCount in shuffled order, values are the decimal key text.
	insertStart := time.Now()
	for progress, key := range rnd.Perm(*keyCount) {
		if progress%10_000 == 0 {
			fmt.Print(".")
		}
		m.Insert(key+1, strconv.Itoa(key+1))
	}
	fmt.Printf("\ninserted %d keys in %v\n", *keyCount, time.Since(insertStart))
	if m.Len() != *keyCount {
		fail("size is %d after %d distinct inserts", m.Len(), *keyCount)
	}

	// Every key must be found, with its own decimal text as the value.
	searchStart := time.Now()
	for key := 1; key <= *keyCount; key++ {
		value, found := m.Get(key)
		if !found {
			fail("key %d was not found", key)
		}
		if value != strconv.Itoa(key) {
			fail("key %d maps to %q", key, value)
		}
	}
	fmt.Printf("searched %d keys in %v\n", *keyCount, time.Since(searchStart))

	// Traversal must yield the full ascending stream, nothing more or less.
	if got, want := streamDigest(m), expectedDigest(*keyCount); got != want {
		fail("traversal digest mismatch: got %x, want %x", got, want)
	}
	if m.Search(*keyCount+1) != m.End() {
		fail("found a key that was never inserted")
	}

	printLevelTable(m)

	// Delete a sample and re-check the size accounting.
	deleted := 0
	for key := 1; key <= *keyCount; key += 10 {
		deleted += m.Delete(key)
	}
	if m.Len() != *keyCount-deleted {
		fail("size is %d after deleting %d keys", m.Len(), deleted)
	}
	fmt.Printf("deleted %d keys, size now %d\n", deleted, m.Len())

	m.Clear()
	if m.Len() != 0 || m.Begin() != m.End() {
		fail("map is not empty after Clear")
	}
	fmt.Println("cleared, all checks passed")
}
