package favorites

import (
	"errors"
	"sync"
	"testing"

	"github.com/mmcdole/akiba/internal/cache"
	"github.com/mmcdole/akiba/internal/domain"
	"github.com/mmcdole/akiba/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyStore fails writes while failWrites is set.
type flakyStore struct {
	domain.Store
	mu         sync.Mutex
	failWrites bool
}

func (f *flakyStore) Set(key, value string) error {
	f.mu.Lock()
	fail := f.failWrites
	f.mu.Unlock()
	if fail {
		return errors.New("disk full")
	}
	return f.Store.Set(key, value)
}

func (f *flakyStore) setFail(v bool) {
	f.mu.Lock()
	f.failWrites = v
	f.mu.Unlock()
}

func newTestLedger(t *testing.T) (*Ledger, *flakyStore, *cache.Cache) {
	t.Helper()
	mem, err := store.NewBoltStore("")
	require.NoError(t, err)
	t.Cleanup(func() { mem.Close() })

	s := &flakyStore{Store: mem}
	c := cache.New(s, nil)
	return New(s, c, nil), s, c
}

func TestLoadEmptyStore(t *testing.T) {
	l, _, _ := newTestLedger(t)

	art, chars, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, []int{}, art)
	assert.Equal(t, []int{}, chars)
	assert.False(t, l.IsFavorite(domain.KindArt, 1))
}

func TestToggleIsIdempotentInPairs(t *testing.T) {
	l, _, _ := newTestLedger(t)

	added, err := l.ToggleArt(7, nil)
	require.NoError(t, err)
	assert.True(t, added)
	assert.True(t, l.IsFavorite(domain.KindArt, 7))

	added, err = l.ToggleArt(7, nil)
	require.NoError(t, err)
	assert.False(t, added)
	assert.False(t, l.IsFavorite(domain.KindArt, 7))

	art, _, err := l.Load()
	require.NoError(t, err)
	assert.Empty(t, art)
}

func TestToggleKeepsIDsUnique(t *testing.T) {
	l, _, _ := newTestLedger(t)

	for _, id := range []int{1, 2, 1, 3, 1} {
		_, err := l.Toggle(domain.KindArt, id)
		require.NoError(t, err)
	}

	art, _, err := l.Load()
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{1, 2, 3}, art)
}

func TestKindsAreIndependent(t *testing.T) {
	l, _, _ := newTestLedger(t)

	_, err := l.ToggleArt(5, nil)
	require.NoError(t, err)
	_, err = l.ToggleCharacter(5, nil)
	require.NoError(t, err)
	_, err = l.ToggleArt(5, nil)
	require.NoError(t, err)

	assert.False(t, l.IsFavorite(domain.KindArt, 5))
	assert.True(t, l.IsFavorite(domain.KindCharacter, 5))
}

func TestToggleWithRecordCaches(t *testing.T) {
	l, _, c := newTestLedger(t)

	rec := domain.ImageRecord{ID: 11, FileURL: "https://pic.re/11.jpg"}
	_, err := l.ToggleArt(11, &rec)
	require.NoError(t, err)

	records, err := l.ArtRecords()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, rec.FileURL, records[0].FileURL)

	// Removing keeps the snapshot but drops it from the favorites view
	_, err = l.ToggleArt(11, &rec)
	require.NoError(t, err)
	records, err = l.ArtRecords()
	require.NoError(t, err)
	assert.Empty(t, records)

	cached, err := c.Images()
	require.NoError(t, err)
	assert.Len(t, cached, 1)
}

func TestToggleCharacterWithRecord(t *testing.T) {
	l, _, _ := newTestLedger(t)

	rec := domain.NewCharacterRecord(417, "Lelouch", "https://cdn/417.jpg")
	added, err := l.ToggleCharacter(417, &rec)
	require.NoError(t, err)
	assert.True(t, added)

	got, err := l.Records(domain.KindCharacter)
	require.NoError(t, err)
	chars := got.([]domain.CharacterRecord)
	require.Len(t, chars, 1)
	assert.Equal(t, "https://cdn/417.jpg", chars[0].ImageURL())
}

func TestWriteFailureLeavesMirror(t *testing.T) {
	l, s, _ := newTestLedger(t)

	_, err := l.ToggleArt(1, nil)
	require.NoError(t, err)

	s.setFail(true)
	_, err = l.ToggleArt(1, nil)
	assert.Error(t, err)
	assert.True(t, l.IsFavorite(domain.KindArt, 1), "mirror unchanged on failed write")

	_, err = l.ToggleArt(2, nil)
	assert.Error(t, err)
	assert.False(t, l.IsFavorite(domain.KindArt, 2))

	s.setFail(false)
	art, _, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, []int{1}, art)
}

func TestCorruptFavoritesLoadEmpty(t *testing.T) {
	l, s, _ := newTestLedger(t)
	require.NoError(t, s.Set(domain.KeyFavorites, "{{{"))

	art, _, err := l.Load()
	require.NoError(t, err)
	assert.Empty(t, art)

	added, err := l.ToggleArt(3, nil)
	require.NoError(t, err)
	assert.True(t, added)
}

func TestTwoLedgersShareStore(t *testing.T) {
	a, s, c := newTestLedger(t)
	b := New(s, c, nil)

	_, err := a.ToggleArt(1, nil)
	require.NoError(t, err)
	_, err = b.ToggleArt(2, nil)
	require.NoError(t, err)

	art, _, err := a.Load()
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{1, 2}, art)
}

func TestConcurrentToggles(t *testing.T) {
	l, _, _ := newTestLedger(t)

	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			_, err := l.ToggleArt(id, nil)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	art, _, err := l.Load()
	require.NoError(t, err)
	assert.Len(t, art, 30)
}

func TestUnknownKind(t *testing.T) {
	l, _, _ := newTestLedger(t)

	_, err := l.Toggle("book", 1)
	assert.ErrorIs(t, err, domain.ErrUnknownKind)

	_, err = l.Records("book")
	assert.ErrorIs(t, err, domain.ErrUnknownKind)
}
