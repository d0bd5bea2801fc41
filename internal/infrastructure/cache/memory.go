package cache

import (
	"context"
	"path"
	"sync"
	"time"

	"github.com/mhiraki-dev/mediacore/internal/infrastructure/metrics"
)

type memoryEntry struct {
	value   []byte
	expires time.Time
}

// MemoryStore is the in-process cache tier. It is a pure performance
// optimization in front of the shared tier, never authoritative, and not
// durable across restarts. Create one per process and inject it; tests
// substitute a fresh instance per case.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]memoryEntry
}

// Compile-time verification that MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-process cache store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: make(map[string]memoryEntry),
	}
}

// Get retrieves a value if present and not expired. Expired entries are
// removed opportunistically.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool) {
	s.mu.RLock()
	entry, ok := s.items[key]
	s.mu.RUnlock()

	if !ok {
		metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpGet, metrics.CacheStatusMiss, metrics.CacheTierMemory).Inc()
		return nil, false
	}

	if time.Now().After(entry.expires) {
		s.mu.Lock()
		// Re-check under the write lock; a concurrent Set may have
		// refreshed the entry.
		if cur, ok := s.items[key]; ok && time.Now().After(cur.expires) {
			delete(s.items, key)
		}
		s.mu.Unlock()
		metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpGet, metrics.CacheStatusMiss, metrics.CacheTierMemory).Inc()
		return nil, false
	}

	metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpGet, metrics.CacheStatusHit, metrics.CacheTierMemory).Inc()
	return entry.value, true
}

// Set stores a value with a TTL.
func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	s.mu.Lock()
	s.items[key] = memoryEntry{
		value:   value,
		expires: time.Now().Add(ttl),
	}
	s.mu.Unlock()
	metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpSet, metrics.CacheStatusSuccess, metrics.CacheTierMemory).Inc()
}

// Delete removes a single key.
func (s *MemoryStore) Delete(_ context.Context, key string) {
	s.mu.Lock()
	delete(s.items, key)
	s.mu.Unlock()
	metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpDelete, metrics.CacheStatusSuccess, metrics.CacheTierMemory).Inc()
}

// DeleteByPattern removes all keys matching a glob pattern. Expired
// entries encountered during the sweep are removed as well.
func (s *MemoryStore) DeleteByPattern(_ context.Context, pattern string) int {
	now := time.Now()
	deleted := 0

	s.mu.Lock()
	for key, entry := range s.items {
		if now.After(entry.expires) {
			delete(s.items, key)
			continue
		}
		if ok, err := path.Match(pattern, key); err == nil && ok {
			delete(s.items, key)
			deleted++
		}
	}
	s.mu.Unlock()

	metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpDeletePattern, metrics.CacheStatusSuccess, metrics.CacheTierMemory).Inc()
	return deleted
}

// Len reports the number of live entries, expired ones included until
// their next sweep.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
