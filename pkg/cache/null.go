package cache

import (
	"context"
	"time"
)

// NullCache never stores anything. It is the backend for "none".
type NullCache struct{}

// NewNullCache returns a null cache.
func NewNullCache() Cache { return NullCache{} }

// Get always misses.
func (NullCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}

// Set discards data.
func (NullCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return nil
}

func (NullCache) Delete(ctx context.Context, key string) error { return nil }

func (NullCache) Close() error { return nil }

var _ Cache = NullCache{}
