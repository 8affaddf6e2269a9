package store

import (
	"slices"
	"sync"
	"testing"

	"github.com/nobletooth/skipmap/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_GetSetDelete(t *testing.T) {
	store := NewStore()

	t.Run("missing_key", func(t *testing.T) {
		_, err := store.Get("missing")
		assert.ErrorIs(t, err, ErrKeyNotFound)
	})
	t.Run("set_then_get", func(t *testing.T) {
		require.NoError(t, store.Set("k", "v"))
		value, err := store.Get("k")
		require.NoError(t, err)
		assert.Equal(t, "v", value)
		assert.True(t, store.Exists("k"))
	})
	t.Run("overwrite_keeps_len", func(t *testing.T) {
		require.NoError(t, store.Set("k", "v2"))
		value, err := store.Get("k")
		require.NoError(t, err)
		assert.Equal(t, "v2", value)
		assert.Equal(t, 1, store.Len())
	})
	t.Run("delete", func(t *testing.T) {
		assert.Equal(t, 1, store.Delete("k"))
		assert.Equal(t, 0, store.Delete("k"))
		assert.False(t, store.Exists("k"))
		assert.Zero(t, store.Len())
	})
}

func TestStore_MaxLevelsFlag(t *testing.T) {
	utils.SetTestFlag(t, "store_max_levels", "4")
	store := NewStore()
	for _, key := range []string{"a", "b", "c"} {
		require.NoError(t, store.Set(key, key))
	}
	assert.Equal(t, 3, store.Len())
}

func TestStore_ScanOrdered(t *testing.T) {
	store := NewStore()
	for _, key := range []string{"banana", "apple", "cherry"} {
		require.NoError(t, store.Set(key, "fruit:"+key))
	}

	got := slices.Collect(store.Scan())
	assert.Equal(t, []utils.StringPair{
		{Key: "apple", Value: "fruit:apple"},
		{Key: "banana", Value: "fruit:banana"},
		{Key: "cherry", Value: "fruit:cherry"},
	}, got)
}

func TestStore_Clear(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.Set("a", "1"))
	require.NoError(t, store.Set("b", "2"))

	store.Clear()
	assert.Zero(t, store.Len())
	assert.Empty(t, slices.Collect(store.Scan()))
	store.Clear() // Clearing twice stays a no-op.
	assert.Zero(t, store.Len())
}

func TestStore_ConcurrentReadersAndWriters(t *testing.T) {
	store := NewStore()
	var wg sync.WaitGroup
	for worker := 0; worker < 8; worker++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			key := string(rune('a' + worker))
			for i := 0; i < 200; i++ {
				assert.NoError(t, store.Set(key, key))
				_, _ = store.Get(key)
				store.Exists(key)
			}
		}(worker)
	}
	wg.Wait()
	assert.Equal(t, 8, store.Len())
}

func TestStore_CloseNoop(t *testing.T) {
	assert.NoError(t, NewStore().Close())
}
