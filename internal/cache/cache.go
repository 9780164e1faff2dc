package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// entry holds one cached model response. An entry past its expiry is
// treated as absent and physically removed on the next access.
type entry struct {
	response  string
	createdAt time.Time
	expiresAt time.Time
}

// Stats reports a snapshot of the cache's state.
type Stats struct {
	Size    int           `json:"size"`
	MaxSize int           `json:"max_size"`
	TTL     time.Duration `json:"ttl"`
	Oldest  time.Time     `json:"oldest_entry,omitzero"`
	Newest  time.Time     `json:"newest_entry,omitzero"`
}

// ResponseCache maps command keys to raw model responses with TTL
// expiry and a bounded entry count. When full, the single oldest entry
// by creation time is evicted; access recency is not tracked. Safe for
// concurrent use.
type ResponseCache struct {
	mu      sync.Mutex
	entries map[string]*entry
	maxSize int
	ttl     time.Duration

	// now is swapped out in tests.
	now func() time.Time
}

func New(maxSize int, ttl time.Duration) *ResponseCache {
	return &ResponseCache{
		entries: make(map[string]*entry),
		maxSize: maxSize,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached response for key. A key that was never set,
// or whose entry has outlived the TTL, reports absent; expired entries
// are deleted on access.
func (c *ResponseCache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ent, ok := c.entries[key]
	if !ok {
		return "", false
	}
	if c.now().After(ent.expiresAt) {
		delete(c.entries, key)
		return "", false
	}
	return ent.response, true
}

// Set stores a response under key, evicting the oldest entry first if
// the cache is at capacity.
func (c *ResponseCache) Set(key, response string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= c.maxSize {
		c.evictOldest()
	}

	now := c.now()
	c.entries[key] = &entry{
		response:  response,
		createdAt: now,
		expiresAt: now.Add(c.ttl),
	}
}

// Clear empties the cache unconditionally.
func (c *ResponseCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry)
}

// Size returns the number of entries currently held, expired or not.
func (c *ResponseCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns a snapshot of the cache state.
func (c *ResponseCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{Size: len(c.entries), MaxSize: c.maxSize, TTL: c.ttl}
	for _, ent := range c.entries {
		if s.Oldest.IsZero() || ent.createdAt.Before(s.Oldest) {
			s.Oldest = ent.createdAt
		}
		if ent.createdAt.After(s.Newest) {
			s.Newest = ent.createdAt
		}
	}
	return s
}

// evictOldest removes the entry with the earliest creation time.
// Callers must hold the lock.
func (c *ResponseCache) evictOldest() {
	var oldestKey string
	var oldestTime time.Time

	for key, ent := range c.entries {
		if oldestKey == "" || ent.createdAt.Before(oldestTime) {
			oldestKey = key
			oldestTime = ent.createdAt
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}

// Key derives a stable cache key from the command text.
func Key(command string) string {
	h := sha256.Sum256([]byte(command))
	return hex.EncodeToString(h[:])[:16]
}
