// Package cache provides the query cache that fronts catalog reads: a
// key/value store with per-entry TTL and a single coarse Clear used for
// write invalidation. Values are opaque serialized bytes so one
// implementation serves both entity and query-result entries.
package cache

import (
	"context"
	"time"
)

const (
	// DefaultTTL bounds how long an entry may be served without a
	// storage round-trip.
	DefaultTTL = 60 * time.Second

	// DefaultCapacity is the entry limit for the in-memory
	// implementation.
	DefaultCapacity = 100
)

// Cache is the read-through cache contract. Get reports a miss for
// absent or expired keys. Clear drops every entry: catalog writes
// invalidate the whole cache rather than hunting for affected keys, so
// no stale read can survive a write.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	Clear(ctx context.Context)
}
