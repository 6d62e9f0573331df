package flyers

import (
	"context"
	"sync"
	"time"

	"github.com/planea/aiserver/internal/ports/outbound"
)

// MemoryCache decorates a DealSource with a process-local TTL cache keyed
// by (store, postal code). Safe for concurrent readers with single-writer
// refresh per key.
type MemoryCache struct {
	next  outbound.DealSource
	ttl   time.Duration
	clock outbound.Clock

	mu      sync.RWMutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	deals     []outbound.Deal
	expiresAt time.Time
}

// NewMemoryCache wraps next with a TTL cache.
func NewMemoryCache(next outbound.DealSource, ttl time.Duration, clock outbound.Clock) *MemoryCache {
	if ttl == 0 {
		ttl = 6 * time.Hour
	}
	return &MemoryCache{
		next:    next,
		ttl:     ttl,
		clock:   clock,
		entries: make(map[string]cacheEntry),
	}
}

// GetWeeklyDeals serves from cache when fresh, otherwise refreshes.
// Upstream failures are not cached: the next request retries.
func (c *MemoryCache) GetWeeklyDeals(ctx context.Context, store, postalCode string) ([]outbound.Deal, error) {
	key := store + "|" + postalCode
	now := c.clock.Now()

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if ok && now.Before(entry.expiresAt) {
		return entry.deals, nil
	}

	deals, err := c.next.GetWeeklyDeals(ctx, store, postalCode)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[key] = cacheEntry{deals: deals, expiresAt: now.Add(c.ttl)}
	c.mu.Unlock()
	return deals, nil
}
