// Package pricecache holds the process-wide quote↔base FX rate cache
// described in spec §4.1, refreshed periodically by priceupdater and read
// concurrently by convert.Converter.
package pricecache

import (
	"context"
	"sync"

	"github.com/decred/slog"

	"github.com/anypayx/hub/internal/store"
)

type pairKey struct {
	base  string
	quote string
}

// Cache is a readers-writer-locked map of (base, quote) -> store.Price. It
// only ever grows on refresh: entries are never deleted, so a concurrent
// reader never observes a torn read mid-refresh.
type Cache struct {
	mu     sync.RWMutex
	prices map[pairKey]store.Price

	st  store.Store
	log slog.Logger
}

// New returns an empty Cache backed by st.
func New(st store.Store, log slog.Logger) *Cache {
	return &Cache{
		prices: make(map[pairKey]store.Price),
		st:     st,
		log:    log,
	}
}

// Get returns the cached price for (base, quote), if present.
func (c *Cache) Get(base, quote string) (store.Price, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.prices[pairKey{base, quote}]
	return p, ok
}

// Refresh reloads every price from the store and inserts it into the
// cache. On a store error the cache is left untouched (stale-on-failure,
// spec §4.1) and the error is logged, never returned to the caller — the
// updater loop must never abort on a transient store failure.
func (c *Cache) Refresh(ctx context.Context) {
	prices, err := c.st.AllPrices(ctx)
	if err != nil {
		c.log.Errorf("price refresh failed, keeping stale cache: %v", err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range prices {
		c.prices[pairKey{p.Base, p.Quote}] = p
	}
}

// Len reports the number of cached pairs, mostly useful for tests and
// metrics.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.prices)
}

// All returns a snapshot of every cached price, backing the "list_prices"
// session command of spec §4.8.
func (c *Cache) All() []store.Price {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]store.Price, 0, len(c.prices))
	for _, p := range c.prices {
		out = append(out, p)
	}
	return out
}
