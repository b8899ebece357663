// Package cache provides the pluggable caches used by the render pipeline:
// null, file, in-memory LRU, Redis and MongoDB backends behind one interface,
// plus the keyers that derive content-addressed keys.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values under string keys.
//
// Implementations must be safe for concurrent use. A miss is reported as
// (nil, false, nil); errors are reserved for backend failures. Callers treat
// every cache as disposable: a failing cache degrades to recomputation.
type Cache interface {
	// Get returns the value for key and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Clearer is implemented by caches that can drop all entries at once.
// It returns the number of entries removed when known, or -1.
type Clearer interface {
	Clear(ctx context.Context) (int, error)
}
