package coincatalog

import (
	"context"
	"testing"

	"github.com/decred/slog"
	"github.com/stretchr/testify/require"

	"github.com/anypayx/hub/internal/store"
	"github.com/anypayx/hub/internal/store/memstore"
)

func TestGetLazyLoads(t *testing.T) {
	mem := memstore.New()
	mem.SeedCoin(store.CoinInfo{Currency: "BTC", Chain: "BTC", Precision: 8, HasPrecision: true})
	cat := New(mem, slog.Disabled)

	info, ok := cat.Get(context.Background(), "BTC", "BTC")
	require.True(t, ok)
	require.Equal(t, 8, info.Precision)
}

func TestPrecisionFallsBackToDefault(t *testing.T) {
	mem := memstore.New()
	mem.SeedCoin(store.CoinInfo{Currency: "ETH", Chain: "ETH"})
	cat := New(mem, slog.Disabled)

	require.Equal(t, 18, cat.Precision(context.Background(), "ETH", "ETH"))
}

func TestPrecisionUnknownCoinUsesChainDefault(t *testing.T) {
	mem := memstore.New()
	cat := New(mem, slog.Disabled)

	require.Equal(t, 9, cat.Precision(context.Background(), "SOL", "SOL"))
}

func TestRefreshClearsAndReloads(t *testing.T) {
	mem := memstore.New()
	mem.SeedCoin(store.CoinInfo{Currency: "BTC", Chain: "BTC", Unavailable: true})
	cat := New(mem, slog.Disabled)

	info, ok := cat.Get(context.Background(), "BTC", "BTC")
	require.True(t, ok)
	require.True(t, info.Unavailable)

	// Point the catalog at a store that no longer lists BTC but does list
	// ETH: Refresh must drop the stale entry and pick up the new one.
	next := memstore.New()
	next.SeedCoin(store.CoinInfo{Currency: "ETH", Chain: "ETH"})
	cat.st = next
	require.NoError(t, cat.Refresh(context.Background()))

	_, ok = cat.Get(context.Background(), "BTC", "BTC")
	require.False(t, ok)
	_, ok = cat.Get(context.Background(), "ETH", "ETH")
	require.True(t, ok)
}
