package cache

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultMemoryEntries bounds a [MemoryCache] created with size <= 0.
const DefaultMemoryEntries = 256

type memEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryCache is an in-process LRU cache. It is safe for concurrent use.
type MemoryCache struct {
	lru *lru.Cache[string, memEntry]
	now func() time.Time
}

// NewMemoryCache creates an LRU cache holding at most size entries.
func NewMemoryCache(size int) (*MemoryCache, error) {
	if size <= 0 {
		size = DefaultMemoryEntries
	}
	l, err := lru.New[string, memEntry](size)
	if err != nil {
		return nil, err
	}
	return &MemoryCache{lru: l, now: time.Now}, nil
}

// Get retrieves a value from the cache.
func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	e, ok := c.lru.Get(key)
	if !ok {
		return nil, false, nil
	}
	if !e.expiresAt.IsZero() && c.now().After(e.expiresAt) {
		c.lru.Remove(key)
		return nil, false, nil
	}
	return e.data, true, nil
}

// Set stores a copy of data in the cache.
func (c *MemoryCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	e := memEntry{data: append([]byte(nil), data...)}
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}
	c.lru.Add(key, e)
	return nil
}

// Delete removes a value from the cache.
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.lru.Remove(key)
	return nil
}

// Len returns the number of entries, expired ones included.
func (c *MemoryCache) Len() int { return c.lru.Len() }

// Clear drops every entry.
func (c *MemoryCache) Clear(ctx context.Context) error {
	c.lru.Purge()
	return nil
}

// Close drops every entry.
func (c *MemoryCache) Close() error {
	c.lru.Purge()
	return nil
}

var (
	_ Cache   = (*MemoryCache)(nil)
	_ Clearer = (*MemoryCache)(nil)
)
