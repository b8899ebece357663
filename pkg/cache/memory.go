package cache

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultMemorySize is the entry limit used when none is configured.
const DefaultMemorySize = 1024

// MemoryCache is an in-process LRU cache. Entries past their TTL are
// dropped on read.
type MemoryCache struct {
	entries *lru.Cache[string, memoryEntry]
	now     func() time.Time
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// NewMemoryCache creates an LRU cache holding at most size entries.
// A size <= 0 uses DefaultMemorySize.
func NewMemoryCache(size int) (*MemoryCache, error) {
	if size <= 0 {
		size = DefaultMemorySize
	}
	entries, err := lru.New[string, memoryEntry](size)
	if err != nil {
		return nil, err
	}
	return &MemoryCache{entries: entries, now: time.Now}, nil
}

// Get implements Cache.
func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	e, ok := c.entries.Get(key)
	if !ok {
		return nil, false, nil
	}
	if !e.expiresAt.IsZero() && c.now().After(e.expiresAt) {
		c.entries.Remove(key)
		return nil, false, nil
	}
	return e.data, true, nil
}

// Set implements Cache. The data slice is copied.
func (c *MemoryCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	e := memoryEntry{data: append([]byte(nil), data...)}
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}
	c.entries.Add(key, e)
	return nil
}

// Delete implements Cache.
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.entries.Remove(key)
	return nil
}

// Clear implements Clearer.
func (c *MemoryCache) Clear(ctx context.Context) (int, error) {
	n := c.entries.Len()
	c.entries.Purge()
	return n, nil
}

// Len returns the number of stored entries.
func (c *MemoryCache) Len() int { return c.entries.Len() }

// Close implements Cache.
func (c *MemoryCache) Close() error {
	c.entries.Purge()
	return nil
}

var (
	_ Cache   = (*MemoryCache)(nil)
	_ Clearer = (*MemoryCache)(nil)
)
