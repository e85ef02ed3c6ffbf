package cache

import (
	"context"
	"slices"
	"sync"
	"time"
)

type cacheEntry struct {
	value   []byte
	expires time.Time
}

// Memory is a TTL-based in-process cache.
type Memory struct {
	ttl time.Duration
	now func() time.Time

	mu    sync.RWMutex
	items map[string]cacheEntry
}

// NewMemory returns a cache whose entries expire after ttl.
func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Memory{
		ttl:   ttl,
		now:   time.Now,
		items: make(map[string]cacheEntry),
	}
}

// Get returns a fresh entry for key. Expired entries are reported as misses.
func (c *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	entry, ok := c.items[key]
	c.mu.RUnlock()
	if !ok || !c.now().Before(entry.expires) {
		return nil, false, nil
	}
	return slices.Clone(entry.value), true, nil
}

// Set stores value under key until the TTL elapses.
func (c *Memory) Set(_ context.Context, key string, value []byte) error {
	c.mu.Lock()
	c.items[key] = cacheEntry{value: slices.Clone(value), expires: c.now().Add(c.ttl)}
	c.mu.Unlock()
	return nil
}

// Delete drops the given keys.
func (c *Memory) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	for _, key := range keys {
		delete(c.items, key)
	}
	c.mu.Unlock()
	return nil
}

var _ Cache = (*Memory)(nil)
