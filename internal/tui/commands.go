package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/akiba/internal/domain"
	"github.com/mmcdole/akiba/internal/favorites"
	"github.com/mmcdole/akiba/internal/filecache"
)

// Command factories for async operations

// LoadFavoritesCmd re-reads both favorite sets and their cached snapshots
func LoadFavoritesCmd(ledger *favorites.Ledger) tea.Cmd {
	return func() tea.Msg {
		if _, _, err := ledger.Load(); err != nil {
			return ErrMsg{Err: err, Context: "loading favorites"}
		}
		art, err := ledger.ArtRecords()
		if err != nil {
			return ErrMsg{Err: err, Context: "loading art"}
		}
		chars, err := ledger.CharacterRecords()
		if err != nil {
			return ErrMsg{Err: err, Context: "loading characters"}
		}
		return FavoritesLoadedMsg{Art: art, Characters: chars}
	}
}

// ToggleFavoriteCmd flips membership of an id
func ToggleFavoriteCmd(ledger *favorites.Ledger, kind domain.FavoriteKind, id int) tea.Cmd {
	return func() tea.Msg {
		fav, err := ledger.Toggle(kind, id)
		if err != nil {
			return ErrMsg{Err: err, Context: "updating favorites"}
		}
		return FavoriteToggledMsg{Kind: kind, ID: id, Favorite: fav}
	}
}

// ResolveImageCmd fetches an image into the file cache
func ResolveImageCmd(files *filecache.Manager, url string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		return ImageResolvedMsg{URL: url, Resolved: files.Resolve(ctx, url)}
	}
}

// OpenImageCmd shows a resolved image in the external viewer
func OpenImageCmd(viewer Opener, target string) tea.Cmd {
	return func() tea.Msg {
		if err := viewer.Open(target); err != nil {
			return ErrMsg{Err: err, Context: "opening image"}
		}
		return nil
	}
}

// CacheSizeCmd measures the file cache
func CacheSizeCmd(files *filecache.Manager) tea.Cmd {
	return func() tea.Msg {
		size, err := files.Size()
		if err != nil {
			return ErrMsg{Err: err, Context: "measuring cache"}
		}
		return CacheSizeMsg{Bytes: size}
	}
}

// ClearStatusCmd clears a status message after a delay
func ClearStatusCmd(id int, after time.Duration) tea.Cmd {
	return tea.Tick(after, func(time.Time) tea.Msg {
		return ClearStatusMsg{ID: id}
	})
}
