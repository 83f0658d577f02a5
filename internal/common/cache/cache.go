package cache

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Store defines the cache operations the OAuth flow relies on.
type Store interface {
	// Set stores value under key until ttl elapses.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Get returns the value under key; found is false when missing or expired.
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Delete(ctx context.Context, key string) error
	// Take returns and removes the value under key atomically.
	Take(ctx context.Context, key string) (value string, found bool, err error)
	Health() error
	Name() string
}

// MemoryStore keeps entries in process memory using go-cache
type MemoryStore struct {
	cache *gocache.Cache
	// takeMu serialises Take so that two callers cannot both read a key
	// before either deletes it.
	takeMu sync.Mutex
}

// NewMemoryStore creates a store that purges expired entries every
// cleanupInterval. Entries always carry their own TTL.
func NewMemoryStore(cleanupInterval time.Duration) *MemoryStore {
	return &MemoryStore{
		cache: gocache.New(gocache.NoExpiration, cleanupInterval),
	}
}

// Set stores a value; a non-positive ttl means the entry never expires
func (m *MemoryStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	m.takeMu.Lock()
	defer m.takeMu.Unlock()
	m.cache.Set(key, value, ttl)
	return nil
}

// Get retrieves a value
func (m *MemoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, found := m.cache.Get(key)
	if !found {
		return "", false, nil
	}
	s, _ := value.(string)
	return s, true, nil
}

// Delete removes a value
func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	m.takeMu.Lock()
	defer m.takeMu.Unlock()
	m.cache.Delete(key)
	return nil
}

// Take retrieves and removes a value
func (m *MemoryStore) Take(ctx context.Context, key string) (string, bool, error) {
	m.takeMu.Lock()
	defer m.takeMu.Unlock()

	value, found := m.cache.Get(key)
	if !found {
		return "", false, nil
	}
	m.cache.Delete(key)

	s, _ := value.(string)
	return s, true, nil
}

// Health always succeeds for the in-process store
func (m *MemoryStore) Health() error {
	return nil
}

func (m *MemoryStore) Name() string {
	return "memory"
}

