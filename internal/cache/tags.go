package cache

import (
	"strconv"
	"time"

	"github.com/mmcdole/akiba/internal/domain"
	"github.com/mmcdole/akiba/internal/store"
)

// SaveTags replaces the cached tag list and stamps it with the current time.
func (c *Cache) SaveTags(tags []string) error {
	unlock := c.lock(domain.KeyCachedTags)
	defer unlock()

	if tags == nil {
		tags = []string{}
	}
	if err := store.SaveJSON(c.store, domain.KeyCachedTags, tags); err != nil {
		return err
	}
	stamp := strconv.FormatInt(c.now().UnixMilli(), 10)
	return c.store.Set(domain.KeyCachedTagsTime, stamp)
}

// Tags returns the cached tag list and whether it is younger than ttl.
// A missing or unreadable timestamp counts as stale.
func (c *Cache) Tags(ttl time.Duration) ([]string, bool, error) {
	tags, err := loadList[string](c, domain.KeyCachedTags)
	if err != nil {
		return nil, false, err
	}

	raw, ok, err := c.store.Get(domain.KeyCachedTagsTime)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return tags, false, nil
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		c.logger.Warn("ignoring bad tags timestamp", "value", raw)
		return tags, false, nil
	}

	age := c.now().Sub(time.UnixMilli(ms))
	return tags, age < ttl, nil
}

func (c *Cache) now() time.Time {
	if c.clock != nil {
		return c.clock()
	}
	return time.Now()
}
