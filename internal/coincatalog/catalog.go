// Package coincatalog implements the lazily-loaded (currency, chain) ->
// CoinInfo cache described in spec §4.3.
package coincatalog

import (
	"context"
	"sync"

	"github.com/decred/slog"

	"github.com/anypayx/hub/internal/chains"
	"github.com/anypayx/hub/internal/store"
)

// Catalog is a readers-writer-locked, lazily populated map of CoinInfo.
type Catalog struct {
	mu     sync.RWMutex
	coins  map[string]store.CoinInfo
	loaded bool

	st  store.Store
	log slog.Logger
}

// New returns a Catalog backed by st. Nothing is loaded until the first
// Get or an explicit Refresh.
func New(st store.Store, log slog.Logger) *Catalog {
	return &Catalog{st: st, log: log}
}

// Get returns the CoinInfo for (currency, chain), loading the full catalog
// on first use.
func (c *Catalog) Get(ctx context.Context, currency, chain string) (store.CoinInfo, bool) {
	c.ensureLoaded(ctx)

	key := currency + ":" + chain
	c.mu.RLock()
	defer c.mu.RUnlock()
	info, ok := c.coins[key]
	return info, ok
}

// Precision returns the coin's stored precision if it carries one, or the
// chain-family default from spec §4.3 otherwise.
func (c *Catalog) Precision(ctx context.Context, currency, chain string) int {
	info, ok := c.Get(ctx, currency, chain)
	if ok && info.HasPrecision {
		return info.Precision
	}
	return chains.DefaultPrecision(currency)
}

// Refresh clears and reloads the catalog from the store.
func (c *Catalog) Refresh(ctx context.Context) error {
	coins, err := c.st.AllCoins(ctx)
	if err != nil {
		return store.Wrap(store.KindStoreError, "coin catalog refresh failed", err)
	}

	next := make(map[string]store.CoinInfo, len(coins))
	for _, info := range coins {
		next[info.Key()] = info
	}

	c.mu.Lock()
	c.coins = next
	c.loaded = true
	c.mu.Unlock()
	return nil
}

func (c *Catalog) ensureLoaded(ctx context.Context) {
	c.mu.RLock()
	loaded := c.loaded
	c.mu.RUnlock()
	if loaded {
		return
	}

	if err := c.Refresh(ctx); err != nil {
		c.log.Errorf("coin catalog load failed: %v", err)
	}
}
