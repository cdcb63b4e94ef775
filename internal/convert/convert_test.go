package convert

import (
	"context"
	"testing"
	"time"

	"github.com/decred/slog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/anypayx/hub/internal/pricecache"
	"github.com/anypayx/hub/internal/store"
	"github.com/anypayx/hub/internal/store/memstore"
)

func newCacheWithPrices(prices ...store.Price) *pricecache.Cache {
	mem := memstore.New()
	for _, p := range prices {
		mem.SeedPrice(p)
	}
	c := pricecache.New(mem, slog.Disabled)
	c.Refresh(context.Background())
	return c
}

func TestConvertDirect(t *testing.T) {
	cache := newCacheWithPrices(store.Price{Base: "BTC", Quote: "USD", Value: "40000"})
	c := New(cache)

	res, err := c.Convert("USD", "BTC", decimal.NewFromInt(10000))
	require.NoError(t, err)
	require.True(t, res.BaseValue.Equal(decimal.NewFromFloat(0.25)))
	require.WithinDuration(t, time.Now(), res.Timestamp, time.Second)
}

func TestConvertInverted(t *testing.T) {
	// Only the (quote, base) direction is cached here: 1 USD = 0.000025 BTC.
	// Convert must fall through to the second lookup and multiply rather
	// than divide, landing on the same 0.25 BTC as the direct case above.
	cache := newCacheWithPrices(store.Price{Base: "USD", Quote: "BTC", Value: "0.000025"})
	c := New(cache)

	res, err := c.Convert("USD", "BTC", decimal.NewFromInt(10000))
	require.NoError(t, err)
	require.True(t, res.BaseValue.Equal(decimal.NewFromFloat(0.25)))
}

func TestConvertNoRate(t *testing.T) {
	cache := newCacheWithPrices()
	c := New(cache)

	_, err := c.Convert("USD", "XYZ", decimal.NewFromInt(1))
	require.Error(t, err)
	require.Equal(t, "No price for USD to XYZ", err.Error())
}

func TestConvertZero(t *testing.T) {
	cache := newCacheWithPrices(store.Price{Base: "BTC", Quote: "USD", Value: "40000"})
	c := New(cache)

	res, err := c.Convert("USD", "BTC", decimal.Zero)
	require.NoError(t, err)
	require.True(t, res.BaseValue.IsZero())
}
