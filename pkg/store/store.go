// Package store wraps the single-threaded skip map in the synchronization and
// observability a serving process needs. The container itself carries no
// locks by design; every protocol front-end goes through this wrapper
// instead of holding a Map directly.
package store

import (
	"errors"
	"flag"
	"fmt"
	"iter"
	"sync"

	"github.com/nobletooth/skipmap/pkg/skipmap"
	"github.com/nobletooth/skipmap/pkg/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var ErrKeyNotFound = errors.New("key was not found")

var (
	maxLevels = flag.Int("store_max_levels", skipmap.DefaultMaxLevels,
		"Maximum tower height of the backing skip list; roughly log2 of the expected key count.")

	storeOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "store_ops_total",
		Help: "Total number of store operations.",
	}, []string{"op", "status" /* hit | miss | ok */})
	storeEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "store_entries",
		Help: "Current number of entries held by the store.",
	})
)

// KeyValueStore is the contract protocol front-ends program against.
type KeyValueStore interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) int
	Exists(key string) bool
	Len() int
	Clear()
	Scan() iter.Seq[utils.StringPair]
	Close() error
}

var _ KeyValueStore = (*Store)(nil)

// Store is a mutex-guarded ordered string store. Reads take the shared lock;
// mutations take the exclusive one. Iteration holds the shared lock for the
// whole walk, so consumers should drain Scan promptly.
type Store struct {
	mux     sync.RWMutex
	entries *skipmap.Map[string, string]
}

// NewStore creates an empty store sized by the --store_max_levels flag.
func NewStore() *Store {
	return &Store{entries: skipmap.New[string, string](skipmap.WithMaxLevels(*maxLevels))}
}

// Get looks up the given key and returns its value, or ErrKeyNotFound.
func (s *Store) Get(key string) (string, error) {
	s.mux.RLock()
	defer s.mux.RUnlock()

	value, found := s.entries.Get(key)
	if !found {
		storeOps.WithLabelValues("get", "miss").Inc()
		return "", fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	storeOps.WithLabelValues("get", "hit").Inc()
	return value, nil
}

// Set inserts the key or overwrites its value in place.
func (s *Store) Set(key, value string) error {
	s.mux.Lock()
	defer s.mux.Unlock()

	s.entries.Insert(key, value)
	storeOps.WithLabelValues("set", "ok").Inc()
	storeEntries.Set(float64(s.entries.Len()))
	return nil
}

// Delete removes the key and returns how many entries were removed (0 or 1).
func (s *Store) Delete(key string) int {
	s.mux.Lock()
	defer s.mux.Unlock()

	removed := s.entries.Delete(key)
	if removed == 0 {
		storeOps.WithLabelValues("delete", "miss").Inc()
	} else {
		storeOps.WithLabelValues("delete", "hit").Inc()
	}
	storeEntries.Set(float64(s.entries.Len()))
	return removed
}

// Exists reports whether the key is present without copying its value.
func (s *Store) Exists(key string) bool {
	s.mux.RLock()
	defer s.mux.RUnlock()

	_, found := s.entries.Get(key)
	return found
}

// Len returns the current entry count.
func (s *Store) Len() int {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return s.entries.Len()
}

// Clear drops every entry.
func (s *Store) Clear() {
	s.mux.Lock()
	defer s.mux.Unlock()

	s.entries.Clear()
	storeOps.WithLabelValues("clear", "ok").Inc()
	storeEntries.Set(0)
}

// Scan streams the entries in ascending key order. The shared lock is held
// until the sequence is fully drained or abandoned.
func (s *Store) Scan() iter.Seq[utils.StringPair] {
	return func(yield func(utils.StringPair) bool) {
		s.mux.RLock()
		defer s.mux.RUnlock()
		for key, value := range s.entries.All() {
			if !yield(utils.StringPair{Key: key, Value: value}) {
				return
			}
		}
	}
}

// Close releases no resources to free for now.
func (s *Store) Close() error {
	return nil
}
