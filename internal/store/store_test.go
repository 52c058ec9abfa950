package store

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/mmcdole/akiba/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]domain.Store {
	t.Helper()
	dir := t.TempDir()

	bolt, err := NewBoltStore(filepath.Join(dir, "akiba.db"))
	require.NoError(t, err)
	sqlite, err := NewSQLiteStore(filepath.Join(dir, "akiba.sqlite"))
	require.NoError(t, err)
	memory, err := NewBoltStore("")
	require.NoError(t, err)

	t.Cleanup(func() {
		bolt.Close()
		sqlite.Close()
		memory.Close()
	})

	return map[string]domain.Store{
		"bolt":   bolt,
		"sqlite": sqlite,
		"memory": memory,
	}
}

func TestStoreGetSetRemove(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := s.Get(domain.KeyFavorites)
			require.NoError(t, err)
			assert.False(t, ok, "empty store has no value")

			require.NoError(t, s.Set(domain.KeyFavorites, "[1,2,3]"))
			v, ok, err := s.Get(domain.KeyFavorites)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "[1,2,3]", v)

			require.NoError(t, s.Set(domain.KeyFavorites, "[4]"))
			v, _, _ = s.Get(domain.KeyFavorites)
			assert.Equal(t, "[4]", v, "set overwrites")

			require.NoError(t, s.Remove(domain.KeyFavorites))
			_, ok, err = s.Get(domain.KeyFavorites)
			require.NoError(t, err)
			assert.False(t, ok)

			// Removing an absent key is not an error
			assert.NoError(t, s.Remove("missing"))
		})
	}
}

func TestBoltStoreRemoveWinsOverConcurrentGet(t *testing.T) {
	s, err := NewBoltStore(filepath.Join(t.TempDir(), "akiba.db"))
	require.NoError(t, err)
	defer s.Close()

	for i := 0; i < 200; i++ {
		require.NoError(t, s.Set("k", "v"))
		// Drop the promoted copy so readers go to the database
		s.mu.Lock()
		delete(s.cache, "k")
		s.mu.Unlock()

		done := make(chan struct{})
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
					s.Get("k")
				}
			}
		}()

		require.NoError(t, s.Remove("k"))
		close(done)
		wg.Wait()

		_, ok, err := s.Get("k")
		require.NoError(t, err)
		require.False(t, ok, "iteration %d: key readable after Remove returned", i)
	}
}

func TestBoltStoreSetWinsOverConcurrentGet(t *testing.T) {
	s, err := NewBoltStore(filepath.Join(t.TempDir(), "akiba.db"))
	require.NoError(t, err)
	defer s.Close()

	for i := 0; i < 200; i++ {
		require.NoError(t, s.Set("k", "old"))
		s.mu.Lock()
		delete(s.cache, "k")
		s.mu.Unlock()

		done := make(chan struct{})
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
					s.Get("k")
				}
			}
		}()

		require.NoError(t, s.Set("k", "new"))
		close(done)
		wg.Wait()

		v, _, err := s.Get("k")
		require.NoError(t, err)
		require.Equal(t, "new", v, "iteration %d", i)
	}
}

func TestBoltStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "akiba.db")

	s, err := NewBoltStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(domain.KeySettings, `{"gridColumns":1}`))
	require.NoError(t, s.Close())

	reopened, err := NewBoltStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	v, ok, err := reopened.Get(domain.KeySettings)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"gridColumns":1}`, v)
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "akiba.sqlite")

	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Set("k", "v"))
	require.NoError(t, s.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	v, ok, err := reopened.Get("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)
}

func TestClosedStore(t *testing.T) {
	s, err := NewBoltStore(filepath.Join(t.TempDir(), "akiba.db"))
	require.NoError(t, err)
	require.NoError(t, s.Close())
	assert.NoError(t, s.Close(), "double close is a no-op")

	_, _, err = s.Get("k")
	assert.ErrorIs(t, err, domain.ErrStoreClosed)
	assert.ErrorIs(t, s.Set("k", "v"), domain.ErrStoreClosed)
	assert.ErrorIs(t, s.Remove("k"), domain.ErrStoreClosed)

	sq, err := NewSQLiteStore(filepath.Join(t.TempDir(), "akiba.sqlite"))
	require.NoError(t, err)
	require.NoError(t, sq.Close())
	assert.ErrorIs(t, sq.Set("k", "v"), domain.ErrStoreClosed)
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	for _, backend := range []string{BackendBolt, BackendSQLite, BackendMemory, ""} {
		s, err := Open(backend, filepath.Join(dir, "db-"+backend))
		require.NoError(t, err, backend)
		require.NoError(t, s.Set("k", "v"))
		require.NoError(t, s.Close())
	}

	_, err := Open("redis", "")
	assert.Error(t, err)
}

func TestJSONHelpers(t *testing.T) {
	s, err := NewBoltStore("")
	require.NoError(t, err)

	var ids []int
	found, err := LoadJSON(s, domain.KeyFavorites, &ids)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, SaveJSON(s, domain.KeyFavorites, []int{7, 9}))
	found, err = LoadJSON(s, domain.KeyFavorites, &ids)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []int{7, 9}, ids)

	require.NoError(t, s.Set(domain.KeyFavorites, "{not json"))
	found, err = LoadJSON(s, domain.KeyFavorites, &ids)
	assert.True(t, found)
	assert.ErrorIs(t, err, ErrCorrupt)
}
