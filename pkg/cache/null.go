package cache

import (
	"context"
	"time"
)

// NullCache stores nothing. The CLI uses it for --no-cache and for the
// "none" backend, so every render goes through the full pipeline.
type NullCache struct{}

// NewNullCache returns a cache that always misses.
func NewNullCache() Cache { return &NullCache{} }

// Get reports a miss for every artifact key.
func (*NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

// Set discards the rendered artifact.
func (*NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (*NullCache) Delete(context.Context, string) error { return nil }

func (*NullCache) Close() error { return nil }

var _ Cache = (*NullCache)(nil)
