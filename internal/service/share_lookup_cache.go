package service

import (
	"context"
	"sync"
	"time"
)

// ShareLookupCache remembers public IDs that resolved to nothing, so repeated
// probes for dead links skip the database. Only misses are cached; a hit is
// always re-read from the file store.
type ShareLookupCache interface {
	WasMissing(ctx context.Context, publicID string) (bool, error)
	MarkMissing(ctx context.Context, publicID string) error
	Reset(ctx context.Context) error
}

type NoopShareLookupCache struct{}

func NewNoopShareLookupCache() *NoopShareLookupCache {
	return &NoopShareLookupCache{}
}

func (c *NoopShareLookupCache) WasMissing(context.Context, string) (bool, error) {
	return false, nil
}

func (c *NoopShareLookupCache) MarkMissing(context.Context, string) error {
	return nil
}

func (c *NoopShareLookupCache) Reset(context.Context) error {
	return nil
}

type InMemoryShareLookupCache struct {
	ttl time.Duration

	mu      sync.RWMutex
	entries map[string]time.Time
}

func NewInMemoryShareLookupCache(ttl time.Duration) *InMemoryShareLookupCache {
	return &InMemoryShareLookupCache{
		ttl:     ttl,
		entries: make(map[string]time.Time),
	}
}

func (c *InMemoryShareLookupCache) WasMissing(_ context.Context, publicID string) (bool, error) {
	now := time.Now().UTC()
	c.mu.RLock()
	expiresAt, ok := c.entries[publicID]
	c.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if now.After(expiresAt) {
		c.mu.Lock()
		delete(c.entries, publicID)
		c.mu.Unlock()
		return false, nil
	}
	return true, nil
}

func (c *InMemoryShareLookupCache) MarkMissing(_ context.Context, publicID string) error {
	if c.ttl <= 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[publicID] = time.Now().UTC().Add(c.ttl)
	return nil
}

func (c *InMemoryShareLookupCache) Reset(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]time.Time)
	return nil
}
