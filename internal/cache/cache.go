// Package cache stores small encoded values for read-mostly lookups.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-blob store with per-entry expiry.
type Cache interface {
	// Get returns the stored value and whether it was present and fresh.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
}

// DefaultTTL applies when a cache is constructed with a non-positive TTL.
const DefaultTTL = time.Minute
