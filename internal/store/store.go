// Package store provides the persisted key-value backends behind
// domain.Store and JSON helpers shared by the collections built on it.
package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mmcdole/akiba/internal/domain"
)

// Backend names accepted by Open.
const (
	BackendBolt   = "bolt"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// ErrCorrupt marks a stored value that is not valid JSON for its collection.
var ErrCorrupt = errors.New("corrupt stored value")

// Open returns the configured backend.
func Open(backend, path string) (domain.Store, error) {
	switch backend {
	case BackendBolt, "":
		return NewBoltStore(path)
	case BackendSQLite:
		return NewSQLiteStore(path)
	case BackendMemory:
		return NewBoltStore("")
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", backend)
	}
}

// LoadJSON decodes the value at key into dest. It reports false when the key
// is absent. A value that fails to decode returns an error wrapping ErrCorrupt.
func LoadJSON(s domain.Store, key string, dest any) (bool, error) {
	raw, ok, err := s.Get(key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return true, fmt.Errorf("%w: key %q: %v", ErrCorrupt, key, err)
	}
	return true, nil
}

// SaveJSON encodes value and writes it at key.
func SaveJSON(s domain.Store, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	return s.Set(key, string(data))
}
