// Package favorites maintains the two persisted favorite id sets (art and
// characters) and an in-memory mirror used for fast membership checks.
package favorites

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mmcdole/akiba/internal/cache"
	"github.com/mmcdole/akiba/internal/domain"
	"github.com/mmcdole/akiba/internal/store"
)

// Ledger is the Favorites Ledger.
//
// Toggles read the set fresh from the store, so two ledgers sharing a store
// never lose each other's writes. The mirror only changes after a successful
// persist.
type Ledger struct {
	store  domain.Store
	cache  *cache.Cache
	logger *slog.Logger

	artMu  sync.Mutex
	charMu sync.Mutex

	mirrorMu sync.RWMutex
	mirror   map[domain.FavoriteKind]map[int]struct{}
}

// New creates a ledger. The mirror is empty until Load is called.
func New(s domain.Store, c *cache.Cache, logger *slog.Logger) *Ledger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ledger{
		store:  s,
		cache:  c,
		logger: logger,
		mirror: map[domain.FavoriteKind]map[int]struct{}{
			domain.KindArt:       {},
			domain.KindCharacter: {},
		},
	}
}

func storeKey(kind domain.FavoriteKind) (string, error) {
	switch kind {
	case domain.KindArt:
		return domain.KeyFavorites, nil
	case domain.KindCharacter:
		return domain.KeyFavoriteCharacters, nil
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownKind, kind)
	}
}

func (l *Ledger) kindLock(kind domain.FavoriteKind) *sync.Mutex {
	if kind == domain.KindCharacter {
		return &l.charMu
	}
	return &l.artMu
}

// Load re-reads both sets from the store and refreshes the mirror.
// Absent keys load as empty sets.
func (l *Ledger) Load() (art, characters []int, err error) {
	art, err = l.read(domain.KindArt)
	if err != nil {
		return nil, nil, err
	}
	characters, err = l.read(domain.KindCharacter)
	if err != nil {
		return nil, nil, err
	}

	l.setMirror(domain.KindArt, art)
	l.setMirror(domain.KindCharacter, characters)

	l.logger.Debug("favorites loaded", "art", len(art), "characters", len(characters))
	return art, characters, nil
}

// IsFavorite checks membership against the mirror.
func (l *Ledger) IsFavorite(kind domain.FavoriteKind, id int) bool {
	l.mirrorMu.RLock()
	defer l.mirrorMu.RUnlock()
	_, ok := l.mirror[kind][id]
	return ok
}

// IDs returns the mirrored ids of kind in no particular order.
func (l *Ledger) IDs(kind domain.FavoriteKind) []int {
	l.mirrorMu.RLock()
	defer l.mirrorMu.RUnlock()
	out := make([]int, 0, len(l.mirror[kind]))
	for id := range l.mirror[kind] {
		out = append(out, id)
	}
	return out
}

// ToggleArt flips the favorite state of an image. When adding and rec is
// non-nil, the record is upserted into the content cache.
func (l *Ledger) ToggleArt(id int, rec *domain.ImageRecord) (bool, error) {
	added, err := l.Toggle(domain.KindArt, id)
	if err != nil || !added || rec == nil {
		return added, err
	}
	if l.cache != nil {
		if err := l.cache.UpsertImage(*rec); err != nil {
			l.logger.Error("failed to cache favorite image", "id", id, "error", err)
		}
	}
	return added, nil
}

// ToggleCharacter flips the favorite state of a character. When adding and
// rec is non-nil, the record is upserted into the content cache.
func (l *Ledger) ToggleCharacter(id int, rec *domain.CharacterRecord) (bool, error) {
	added, err := l.Toggle(domain.KindCharacter, id)
	if err != nil || !added || rec == nil {
		return added, err
	}
	if l.cache != nil {
		if err := l.cache.UpsertCharacter(*rec); err != nil {
			l.logger.Error("failed to cache favorite character", "id", id, "error", err)
		}
	}
	return added, nil
}

// Toggle flips membership of id in the kind set and persists it.
// Returns whether id is now a favorite. Cached records are left alone on
// removal so a re-add renders immediately.
func (l *Ledger) Toggle(kind domain.FavoriteKind, id int) (bool, error) {
	key, err := storeKey(kind)
	if err != nil {
		return false, err
	}

	mu := l.kindLock(kind)
	mu.Lock()
	defer mu.Unlock()

	ids, err := l.read(kind)
	if err != nil {
		return false, err
	}

	next := make([]int, 0, len(ids)+1)
	added := true
	for _, existing := range ids {
		if existing == id {
			added = false
			continue
		}
		next = append(next, existing)
	}
	if added {
		next = append(next, id)
	}

	if err := store.SaveJSON(l.store, key, next); err != nil {
		return false, fmt.Errorf("failed to persist favorites: %w", err)
	}

	l.setMirror(kind, next)
	l.logger.Info("favorite toggled", "kind", kind, "id", id, "added", added)
	return added, nil
}

// Records returns the cached snapshots of the current favorites of kind.
// The result is []domain.ImageRecord for art and []domain.CharacterRecord
// for characters.
func (l *Ledger) Records(kind domain.FavoriteKind) (any, error) {
	switch kind {
	case domain.KindArt:
		return l.ArtRecords()
	case domain.KindCharacter:
		return l.CharacterRecords()
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownKind, kind)
	}
}

// ArtRecords resolves favorite image ids through the content cache.
func (l *Ledger) ArtRecords() ([]domain.ImageRecord, error) {
	ids, err := l.read(domain.KindArt)
	if err != nil {
		return nil, err
	}
	return l.cache.FavoriteImages(ids)
}

// CharacterRecords resolves favorite character ids through the content cache.
func (l *Ledger) CharacterRecords() ([]domain.CharacterRecord, error) {
	ids, err := l.read(domain.KindCharacter)
	if err != nil {
		return nil, err
	}
	return l.cache.FavoriteCharacters(ids)
}

// read loads the persisted id list. Corrupt data reads as an empty set.
func (l *Ledger) read(kind domain.FavoriteKind) ([]int, error) {
	key, err := storeKey(kind)
	if err != nil {
		return nil, err
	}

	var ids []int
	_, err = store.LoadJSON(l.store, key, &ids)
	if errors.Is(err, store.ErrCorrupt) {
		l.logger.Warn("discarding corrupt favorites", "kind", kind, "error", err)
		return []int{}, nil
	}
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []int{}
	}
	return ids, nil
}

func (l *Ledger) setMirror(kind domain.FavoriteKind, ids []int) {
	set := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	l.mirrorMu.Lock()
	l.mirror[kind] = set
	l.mirrorMu.Unlock()
}
