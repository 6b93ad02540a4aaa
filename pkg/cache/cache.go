// Package cache stores solver results between layout requests.
//
// Solving is the slow step of a layout. Because graph construction is
// deterministic, a [graph.Snapshot] hashed together with the solver name
// and parameters identifies a solution exactly, and a cached solution can
// be applied instead of calling the solver again.
//
// # Backends
//
//   - [NullCache]: never stores anything (caching disabled)
//   - [FileCache]: one JSON file per entry, for the CLI
//   - [RedisCache]: shared cache for the HTTP server
//
// # Keys
//
// A [Keyer] derives cache keys. [DefaultKeyer] hashes every key component
// with SHA-256; [ScopedKeyer] adds a prefix so several tenants or diagrams
// can share one backend.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases the backend's resources.
	Close() error
}

// Default entry lifetimes.
const (
	TTLSolution = 7 * 24 * time.Hour
	TTLMetrics  = 24 * time.Hour
)
