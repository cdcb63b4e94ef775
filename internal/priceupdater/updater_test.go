package priceupdater

import (
	"testing"
	"time"

	"github.com/decred/slog"
	"github.com/stretchr/testify/require"

	"github.com/anypayx/hub/internal/pricecache"
	"github.com/anypayx/hub/internal/store"
	"github.com/anypayx/hub/internal/store/memstore"
)

func TestUpdaterRefreshesOnTick(t *testing.T) {
	mem := memstore.New()
	cache := pricecache.New(mem, slog.Disabled)

	// Seeded after the cache is built, so the only way it can appear is
	// via the updater's own tick, not an initial load.
	mem.SeedPrice(store.Price{Base: "BTC", Quote: "USD", Value: "40000"})

	u := newWithInterval(cache, slog.Disabled, 10*time.Millisecond)
	require.NoError(t, u.Start())
	defer u.Stop()

	require.Eventually(t, func() bool {
		_, ok := cache.Get("BTC", "USD")
		return ok
	}, time.Second, 10*time.Millisecond)
}

func TestUpdaterStopIsIdempotentAndStopsLoop(t *testing.T) {
	mem := memstore.New()
	cache := pricecache.New(mem, slog.Disabled)

	u := newWithInterval(cache, slog.Disabled, 5*time.Millisecond)
	require.NoError(t, u.Start())
	require.NoError(t, u.Start())

	require.NoError(t, u.Stop())
	require.NoError(t, u.Stop())
}
