package domain

// Store is the on-device key-value store. Values are UTF-8 strings, in
// practice JSON documents. No transactions, no schema.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Remove(key string) error
	Close() error
}

// Store keys.
const (
	KeyFavorites          = "favorites"
	KeyFavoriteCharacters = "favorite_characters"
	KeyCachedImages       = "cached_images"
	KeyCachedCharacters   = "cached_characters"
	KeyCachedFeed         = "cached_feed"
	KeyCachedTags         = "cached_tags"
	KeyCachedTagsTime     = "cached_tags_timestamp"
	KeySettings           = "@app_settings"
)
