package cache

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
)

// InMemoryFactorCache is a process-local factor cache used when Redis is
// unavailable or disabled. Safe for concurrent use.
type InMemoryFactorCache struct {
	mu      sync.RWMutex
	entries map[string]decimal.Decimal
}

// NewInMemoryFactorCache creates an empty in-memory cache.
func NewInMemoryFactorCache() *InMemoryFactorCache {
	return &InMemoryFactorCache{entries: make(map[string]decimal.Decimal)}
}

// Get implements indices.FactorCache.
func (c *InMemoryFactorCache) Get(_ context.Context, key string) (decimal.Decimal, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rate, ok := c.entries[key]
	return rate, ok
}

// Set implements indices.FactorCache.
func (c *InMemoryFactorCache) Set(_ context.Context, key string, rate decimal.Decimal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = rate
}

// Len reports the number of cached factors.
func (c *InMemoryFactorCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
