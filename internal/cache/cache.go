// Package cache keeps denormalized snapshots of remote records in the
// key-value store so they can be rendered without a network round-trip.
//
// Two collections are keyed by record identity with last-write-wins upserts
// (cached_images, cached_characters). The feed window (cached_feed) is a
// FIFO-capped list where an already cached record keeps its place.
//
// cached_feed is not part of the shared on-disk key layout (favorites,
// favorite_characters, cached_images, cached_characters, cached_tags,
// @app_settings). Other clients of that layout append feed pages to
// cached_images; here the feed window lives apart so its cap never evicts a
// favorite's snapshot. Feed entries such a client left in cached_images are
// read as ordinary snapshots and are not moved.
package cache

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/mmcdole/akiba/internal/domain"
	"github.com/mmcdole/akiba/internal/store"
)

// DefaultFeedCap is the feed window length used when no cap is given.
const DefaultFeedCap = 100

// keyed is satisfied by domain.ImageRecord and domain.CharacterRecord.
type keyed interface {
	Key() int
}

// Cache is the Content Cache over a domain.Store.
type Cache struct {
	store  domain.Store
	logger *slog.Logger
	clock  func() time.Time

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex // serializes read-modify-write per key
}

// New creates a content cache.
func New(s domain.Store, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{store: s, logger: logger, locks: make(map[string]*sync.Mutex)}
}

func (c *Cache) lock(key string) func() {
	c.locksMu.Lock()
	mu, ok := c.locks[key]
	if !ok {
		mu = &sync.Mutex{}
		c.locks[key] = mu
	}
	c.locksMu.Unlock()

	mu.Lock()
	return mu.Unlock
}

// === Images ===

// UpsertImage stores rec, replacing any cached record with the same id.
func (c *Cache) UpsertImage(rec domain.ImageRecord) error {
	return upsert(c, domain.KeyCachedImages, rec)
}

// Images returns every cached image record in insertion order.
func (c *Cache) Images() ([]domain.ImageRecord, error) {
	return loadList[domain.ImageRecord](c, domain.KeyCachedImages)
}

// FavoriteImages filters the cached images to the given ids.
// Order follows storage order, not the order of ids.
func (c *Cache) FavoriteImages(ids []int) ([]domain.ImageRecord, error) {
	all, err := c.Images()
	if err != nil {
		return nil, err
	}
	return filterByID(all, ids), nil
}

// === Characters ===

// UpsertCharacter stores rec, replacing any cached record with the same mal_id.
func (c *Cache) UpsertCharacter(rec domain.CharacterRecord) error {
	return upsert(c, domain.KeyCachedCharacters, rec)
}

// Characters returns every cached character record in insertion order.
func (c *Cache) Characters() ([]domain.CharacterRecord, error) {
	return loadList[domain.CharacterRecord](c, domain.KeyCachedCharacters)
}

// FavoriteCharacters filters the cached characters to the given ids.
func (c *Cache) FavoriteCharacters(ids []int) ([]domain.CharacterRecord, error) {
	all, err := c.Characters()
	if err != nil {
		return nil, err
	}
	return filterByID(all, ids), nil
}

// === Feed window ===

// Feed returns the rolling window of recently seen images, oldest first.
func (c *Cache) Feed() ([]domain.ImageRecord, error) {
	return loadList[domain.ImageRecord](c, domain.KeyCachedFeed)
}

// AppendFeedPage merges the unseen records of a freshly fetched page into the
// feed window and drops the oldest entries beyond maxLen. Records whose id is
// already in the window are skipped, so the stored copy keeps priority.
// maxLen <= 0 means DefaultFeedCap. Returns the stored window.
func (c *Cache) AppendFeedPage(records []domain.ImageRecord, maxLen int) ([]domain.ImageRecord, error) {
	if maxLen <= 0 {
		maxLen = DefaultFeedCap
	}
	if len(records) == 0 {
		return c.Feed()
	}

	unlock := c.lock(domain.KeyCachedFeed)
	defer unlock()

	existing, err := loadList[domain.ImageRecord](c, domain.KeyCachedFeed)
	if err != nil {
		return nil, err
	}

	seen := make(map[int]struct{}, len(existing)+len(records))
	for _, r := range existing {
		seen[r.ID] = struct{}{}
	}
	merged := existing
	for _, r := range records {
		if _, dup := seen[r.ID]; dup {
			continue
		}
		seen[r.ID] = struct{}{}
		merged = append(merged, r)
	}

	if len(merged) == len(existing) && len(existing) <= maxLen {
		// Nothing new; skip the write
		return existing, nil
	}

	if len(merged) > maxLen {
		dropped := len(merged) - maxLen
		merged = merged[dropped:]
		c.logger.Debug("feed window trimmed", "dropped", dropped, "cap", maxLen)
	}

	if err := store.SaveJSON(c.store, domain.KeyCachedFeed, merged); err != nil {
		return nil, err
	}
	return merged, nil
}

// === Generic helpers ===

func upsert[T keyed](c *Cache, key string, rec T) error {
	unlock := c.lock(key)
	defer unlock()

	list, err := loadList[T](c, key)
	if err != nil {
		return err
	}

	out := make([]T, 0, len(list)+1)
	for _, r := range list {
		if r.Key() != rec.Key() {
			out = append(out, r)
		}
	}
	out = append(out, rec)

	return store.SaveJSON(c.store, key, out)
}

// loadList reads a JSON array. A corrupt value is logged and read as empty.
func loadList[T any](c *Cache, key string) ([]T, error) {
	var list []T
	_, err := store.LoadJSON(c.store, key, &list)
	if errors.Is(err, store.ErrCorrupt) {
		c.logger.Warn("discarding corrupt cache collection", "key", key, "error", err)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return list, nil
}

func filterByID[T keyed](list []T, ids []int) []T {
	if len(ids) == 0 || len(list) == 0 {
		return nil
	}
	want := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	var out []T
	for _, r := range list {
		if _, ok := want[r.Key()]; ok {
			out = append(out, r)
		}
	}
	return out
}
