package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryCache is a process-local cache with per-entry expiry.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memEntry
	now     func() time.Time
}

type memEntry struct {
	data      []byte
	expiresAt time.Time
}

// NewMemoryCache creates an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memEntry), now: time.Now}
}

// Get returns a copy of the stored value.
func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !e.expiresAt.IsZero() && c.now().After(e.expiresAt) {
		c.mu.Lock()
		if cur, ok := c.entries[key]; ok && cur.expiresAt.Equal(e.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false, nil
	}
	return append([]byte(nil), e.data...), true, nil
}

// Set stores a copy of data.
func (c *MemoryCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	e := memEntry{data: append([]byte(nil), data...)}
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}
	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
	return nil
}

// Delete removes key.
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close drops all entries.
func (c *MemoryCache) Close() error {
	c.mu.Lock()
	c.entries = make(map[string]memEntry)
	c.mu.Unlock()
	return nil
}

var _ Cache = (*MemoryCache)(nil)
