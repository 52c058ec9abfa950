package tui

import "github.com/mmcdole/akiba/internal/domain"

// Message types for the TUI

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// FavoritesLoadedMsg carries the reloaded favorite snapshots
type FavoritesLoadedMsg struct {
	Art        []domain.ImageRecord
	Characters []domain.CharacterRecord
}

// FavoriteToggledMsg signals a completed toggle
type FavoriteToggledMsg struct {
	Kind     domain.FavoriteKind
	ID       int
	Favorite bool
}

// ImageResolvedMsg carries the local path (or remote fallback) of an image
type ImageResolvedMsg struct {
	URL      string
	Resolved string
}

// CacheSizeMsg carries the file cache footprint in bytes
type CacheSizeMsg struct {
	Bytes int64
}

// ClearStatusMsg clears the status line if it still shows the given id
type ClearStatusMsg struct {
	ID int
}
