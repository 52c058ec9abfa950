package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mmcdole/akiba/internal/domain"
	bolt "go.etcd.io/bbolt"
)

var bucketKV = []byte("kv")

// BoltStore implements domain.Store using BoltDB.
type BoltStore struct {
	db      *bolt.DB
	writeMu sync.Mutex   // Serializes Set and Remove
	mu      sync.RWMutex // Protects memory cache, gen and closed
	closed  bool

	// In-memory cache for hot-path reads (promoted on access)
	cache map[string]string

	// Bumped on every write to a key; a read only promotes its value if no
	// write landed while it was reading the database
	gen map[string]uint64
}

// NewBoltStore opens (or creates) the database at path.
// An empty path gives a memory-only store with no persistence.
func NewBoltStore(path string) (*BoltStore, error) {
	if path == "" {
		return newBoltStore(nil), nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketKV)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return newBoltStore(db), nil
}

func newBoltStore(db *bolt.DB) *BoltStore {
	return &BoltStore{
		db:    db,
		cache: make(map[string]string),
		gen:   make(map[string]uint64),
	}
}

func (s *BoltStore) Get(key string) (string, bool, error) {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return "", false, domain.ErrStoreClosed
	}
	if v, ok := s.cache[key]; ok {
		s.mu.RUnlock()
		return v, true, nil
	}
	gen := s.gen[key]
	s.mu.RUnlock()

	if s.db == nil {
		return "", false, nil
	}

	var (
		value string
		found bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketKV)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			// v is only valid inside the transaction; string() copies
			value = string(v)
			found = true
		}
		return nil
	})
	if err != nil {
		return "", false, fmt.Errorf("bolt get %q: %w", key, err)
	}
	if !found {
		return "", false, nil
	}

	// Promote to memory cache unless a write raced the read
	s.mu.Lock()
	if !s.closed && s.gen[key] == gen {
		s.cache[key] = value
	}
	s.mu.Unlock()

	return value, true, nil
}

func (s *BoltStore) Set(key, value string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.isClosed() {
		return domain.ErrStoreClosed
	}

	if s.db != nil {
		err := s.db.Update(func(tx *bolt.Tx) error {
			return tx.Bucket(bucketKV).Put([]byte(key), []byte(value))
		})
		if err != nil {
			return fmt.Errorf("bolt set %q: %w", key, err)
		}
	}

	// Only cache what was durably written
	s.mu.Lock()
	s.cache[key] = value
	s.gen[key]++
	s.mu.Unlock()
	return nil
}

func (s *BoltStore) Remove(key string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.isClosed() {
		return domain.ErrStoreClosed
	}

	if s.db != nil {
		err := s.db.Update(func(tx *bolt.Tx) error {
			return tx.Bucket(bucketKV).Delete([]byte(key))
		})
		if err != nil {
			return fmt.Errorf("bolt remove %q: %w", key, err)
		}
	}

	s.mu.Lock()
	delete(s.cache, key)
	s.gen[key]++
	s.mu.Unlock()
	return nil
}

func (s *BoltStore) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

func (s *BoltStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.cache = make(map[string]string)
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
