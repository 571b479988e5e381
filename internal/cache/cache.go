package cache

import (
	"encoding/hex"
	"time"

	"github.com/zeebo/blake3"
)

// Cache is an in-memory result cache keyed by content digest. It is
// not safe for concurrent mutation: the owner either serializes calls
// or guards the cache with its own lock.
type Cache[T any] struct {
	entries map[string]Entry[T]
	hits    uint64
	misses  uint64
	enabled bool
}

// Entry represents one cached result.
type Entry[T any] struct {
	Digest    string
	Value     T
	CreatedAt time.Time
}

// Stats reports cache effectiveness counters.
type Stats struct {
	Hits    uint64 `json:"hits" toon:"hits"`
	Misses  uint64 `json:"misses" toon:"misses"`
	Entries int    `json:"entries" toon:"entries"`
}

// New creates a cache instance. A disabled cache misses every Get and
// drops every Set, so callers never need to branch on it.
func New[T any](enabled bool) *Cache[T] {
	return &Cache[T]{
		entries: make(map[string]Entry[T]),
		enabled: enabled,
	}
}

// HashBytes computes a BLAKE3 hash of bytes and returns it as a hex string.
func HashBytes(data []byte) string {
	hash := blake3.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// Get retrieves the cached value for a digest, counting the lookup as
// a hit or a miss.
func (c *Cache[T]) Get(digest string) (T, bool) {
	var zero T
	if !c.enabled {
		return zero, false
	}

	entry, ok := c.entries[digest]
	if !ok {
		c.misses++
		return zero, false
	}
	c.hits++
	return entry.Value, true
}

// Set stores a value under its digest, replacing any previous entry.
func (c *Cache[T]) Set(digest string, value T) {
	if !c.enabled {
		return
	}
	c.entries[digest] = Entry[T]{
		Digest:    digest,
		Value:     value,
		CreatedAt: time.Now(),
	}
}

// Clear returns the cache to its initial state, dropping all entries
// and counters. There is no other eviction.
func (c *Cache[T]) Clear() {
	c.entries = make(map[string]Entry[T])
	c.hits = 0
	c.misses = 0
}

// GetStats returns statistics about the cache.
func (c *Cache[T]) GetStats() Stats {
	return Stats{
		Hits:    c.hits,
		Misses:  c.misses,
		Entries: len(c.entries),
	}
}
