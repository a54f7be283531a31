package cache

import (
	"strings"
	"sync"
	"time"

	"neighborly/internal/logging"
	"neighborly/internal/metrics"
)

// DefaultMaxEntries is the sweep threshold when none is configured.
const DefaultMaxEntries = 1000

// Entry is a cached upstream payload. Entries are replaced wholesale on
// refresh, never mutated in place.
type Entry struct {
	Payload   []byte
	ExpiresAt time.Time
}

// Store is a process-lifetime TTL cache of upstream responses. It is
// constructed once at startup, shared by every request, and discarded with
// the process; nothing is persisted.
//
// Expiry is lazy: Get treats an expired-but-present entry as a miss without
// removing it, and Set sweeps expired entries only when the store has grown
// past maxEntries. Unexpired entries are retained even when the store stays
// above the threshold, so the size is not hard-capped; only expired garbage
// is reclaimed opportunistically.
type Store struct {
	mu         sync.Mutex
	entries    map[string]Entry
	maxEntries int
	now        func() time.Time
}

// NewStore creates a cache that sweeps once the entry count exceeds
// maxEntries. A maxEntries of 0 or less selects DefaultMaxEntries.
func NewStore(maxEntries int) *Store {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Store{
		entries:    make(map[string]Entry),
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Get returns the payload for key if a fresh entry exists. An expired entry
// is a miss; it stays in the map until the next sweep.
func (s *Store) Get(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok || !s.now().Before(entry.ExpiresAt) {
		return nil, false
	}
	return entry.Payload, true
}

// Set inserts or overwrites the entry for key with the given TTL, then
// sweeps expired entries if the store has grown past its threshold.
func (s *Store) Set(key string, payload []byte, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.entries[key] = Entry{Payload: payload, ExpiresAt: now.Add(ttl)}

	if len(s.entries) > s.maxEntries {
		s.sweepLocked(now)
	}
	metrics.QueryCacheEntries.Set(float64(len(s.entries)))
}

// sweepLocked removes every expired entry. Callers hold s.mu.
func (s *Store) sweepLocked(now time.Time) {
	before := len(s.entries)
	for key, entry := range s.entries {
		if entry.ExpiresAt.Before(now) {
			delete(s.entries, key)
		}
	}
	logging.Debug("query cache sweep: %d -> %d entries", before, len(s.entries))
}

// Len returns the current entry count, including expired entries that have
// not been swept yet.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Key builds the namespaced cache key for a provider and query: the query
// is trimmed and lowercased so equivalent texts collide, and the provider
// prefix keeps distinct providers apart.
func Key(provider, query string) string {
	return provider + ":" + strings.ToLower(strings.TrimSpace(query))
}
