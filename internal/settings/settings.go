// Package settings persists the singleton user preference record.
package settings

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mmcdole/akiba/internal/domain"
	"github.com/mmcdole/akiba/internal/store"
)

// Store holds the current settings and writes them under @app_settings.
type Store struct {
	store    domain.Store
	defaults domain.Settings
	logger   *slog.Logger

	mu      sync.Mutex
	current domain.Settings
}

// New creates a settings store. The current value starts at defaults.
func New(s domain.Store, defaults domain.Settings, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{store: s, defaults: defaults, logger: logger, current: defaults}
}

// Load reads the stored record and merges it over the defaults. A missing or
// corrupt record yields the defaults, which are not written back.
func (s *Store) Load() (domain.Settings, error) {
	var patch domain.SettingsPatch
	found, err := store.LoadJSON(s.store, domain.KeySettings, &patch)
	if errors.Is(err, store.ErrCorrupt) {
		s.logger.Warn("ignoring corrupt settings", "error", err)
		found, err = false, nil
	}
	if err != nil {
		return s.defaults, err
	}

	loaded := s.defaults
	if found {
		loaded = patch.Apply(s.defaults)
	}

	s.mu.Lock()
	s.current = loaded
	s.mu.Unlock()
	return loaded, nil
}

// Update merges patch over the in-memory value and persists the result.
// On a failed write the in-memory value is left unchanged.
func (s *Store) Update(patch domain.SettingsPatch) (domain.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := patch.Apply(s.current)
	if err := store.SaveJSON(s.store, domain.KeySettings, next); err != nil {
		return s.current, fmt.Errorf("failed to save settings: %w", err)
	}
	s.current = next
	s.logger.Info("settings updated", "grid_columns", next.GridColumns, "max_cache_size", next.MaxCacheSize)
	return next, nil
}

// Current returns the in-memory value without touching the store.
func (s *Store) Current() domain.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Defaults returns the configured defaults.
func (s *Store) Defaults() domain.Settings {
	return s.defaults
}
