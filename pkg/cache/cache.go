// Package cache stores rendered artifacts keyed by content hash.
//
// Layouts themselves are never cached: they are cheap, and they must always
// reflect the tree just fetched. What is cached is the output of rendering a
// layout (SVG, PNG, PDF, DOT, text), keyed by a SHA-256 of the serialized
// layout plus the render options, so an unchanged tree renders instantly.
//
// # Implementations
//
//   - [NullCache]: stores nothing; the default when caching is off
//   - [FileCache]: one JSON file per entry under a directory, for the CLI
//   - [MemoryCache]: bounded LRU in process memory, for the HTTP service
//   - [RedisCache]: shared cache for several service instances
//
// All implementations honour per-entry TTLs; a zero TTL never expires.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with expiry.
type Cache interface {
	// Get returns the value for key and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases resources held by the cache.
	Close() error
}

// Clearer is implemented by caches that can drop every entry at once.
type Clearer interface {
	Clear(ctx context.Context) error
}

// Clear empties c when it supports it and reports whether it did.
func Clear(ctx context.Context, c Cache) (bool, error) {
	cl, ok := c.(Clearer)
	if !ok {
		return false, nil
	}
	return true, cl.Clear(ctx)
}
