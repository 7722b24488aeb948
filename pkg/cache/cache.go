// Package cache stores fetched assets and rendered artifacts.
//
// Rendering the same badge twice, or fetching the same background image
// for every badge of a batch, is wasted work. The [Cache] interface is a
// small byte store with TTLs; backends are:
//
//   - [FileCache]: one file per entry under a local directory (CLI default)
//   - [RedisCache]: a shared Redis instance for multiple workers
//   - [NullCache]: stores nothing
//
// Keys come from a [Keyer] so that all callers agree on the key layout.
// [ScopedKeyer] prefixes every key, which keeps tenants or events apart
// in a shared backend.
package cache

import (
	"context"
	"time"
)

// Default TTLs per entry kind.
const (
	AssetTTL    = 7 * 24 * time.Hour
	ArtifactTTL = 24 * time.Hour
)

// Cache is a byte store with per-entry expiration.
type Cache interface {
	// Get returns the stored bytes and whether the key was present and
	// not expired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A non-positive ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
