package paymentoptions

import (
	"context"
	"testing"
	"time"

	"github.com/decred/slog"
	"github.com/stretchr/testify/require"

	"github.com/anypayx/hub/internal/coincatalog"
	"github.com/anypayx/hub/internal/convert"
	"github.com/anypayx/hub/internal/pricecache"
	"github.com/anypayx/hub/internal/store"
	"github.com/anypayx/hub/internal/store/memstore"
)

func newEngine(mem *memstore.Store) *Engine {
	cat := coincatalog.New(mem, slog.Disabled)
	cache := pricecache.New(mem, slog.Disabled)
	cache.Refresh(context.Background())
	conv := convert.New(cache)
	return New(mem, cat, conv, slog.Disabled)
}

func TestBuildOnePerAvailableAddress(t *testing.T) {
	mem := memstore.New()
	mem.SeedCoin(store.CoinInfo{Currency: "BTC", Chain: "BTC", Precision: 8, HasPrecision: true})
	mem.SeedCoin(store.CoinInfo{Currency: "ETH", Chain: "ETH", Precision: 18, HasPrecision: true})
	mem.SeedPrice(store.Price{Base: "BTC", Quote: "USD", Value: "40000"})
	mem.SeedPrice(store.Price{Base: "ETH", Quote: "USD", Value: "2000"})

	e := newEngine(mem)
	invoice := store.Invoice{UID: "inv1", Amount: 10000, Currency: "USD"}
	account := store.Account{ID: 1}
	addrs := []store.Address{
		{AccountID: 1, Chain: "BTC", Currency: "BTC", Value: "bc1q..."},
		{AccountID: 1, Chain: "ETH", Currency: "ETH", Value: "0xabc"},
	}

	opts, err := e.Build(context.Background(), invoice, account, addrs)
	require.NoError(t, err)
	require.Len(t, opts, 2)

	byCurrency := map[string]store.PaymentOption{}
	for _, o := range opts {
		byCurrency[o.Currency] = o
	}
	require.Equal(t, int64(25000000), byCurrency["BTC"].Amount)
	require.Equal(t, int64(2500), byCurrency["BTC"].Fee)
	require.Len(t, byCurrency["BTC"].Outputs, 1)
	require.Contains(t, byCurrency["BTC"].URI, "bitcoin:?r=")
}

func TestBuildSkipsAddressWithNoRate(t *testing.T) {
	mem := memstore.New()
	mem.SeedCoin(store.CoinInfo{Currency: "XYZ", Chain: "XYZ"})

	e := newEngine(mem)
	invoice := store.Invoice{UID: "inv2", Amount: 1000, Currency: "USD"}
	account := store.Account{ID: 1}
	addrs := []store.Address{{AccountID: 1, Chain: "XYZ", Currency: "XYZ", Value: "addr"}}

	opts, err := e.Build(context.Background(), invoice, account, addrs)
	require.NoError(t, err)
	require.Empty(t, opts)
}

func TestBuildSkipsUncatalogedAddress(t *testing.T) {
	mem := memstore.New()
	e := newEngine(mem)
	invoice := store.Invoice{UID: "inv3", Amount: 1000, Currency: "USD"}
	account := store.Account{ID: 1}
	addrs := []store.Address{{AccountID: 1, Chain: "BTC", Currency: "BTC", Value: "addr"}}

	opts, err := e.Build(context.Background(), invoice, account, addrs)
	require.NoError(t, err)
	require.Empty(t, opts)
}

func TestBuildDedupesByChainCurrencyFirstWins(t *testing.T) {
	mem := memstore.New()
	mem.SeedCoin(store.CoinInfo{Currency: "BTC", Chain: "BTC", Precision: 8, HasPrecision: true})
	mem.SeedPrice(store.Price{Base: "BTC", Quote: "USD", Value: "40000"})

	e := newEngine(mem)
	invoice := store.Invoice{UID: "inv4", Amount: 10000, Currency: "USD"}
	account := store.Account{ID: 1}
	addrs := []store.Address{
		{AccountID: 1, Chain: "BTC", Currency: "BTC", Value: "first"},
		{AccountID: 1, Chain: "BTC", Currency: "BTC", Value: "second"},
	}

	opts, err := e.Build(context.Background(), invoice, account, addrs)
	require.NoError(t, err)
	require.Len(t, opts, 1)
	require.Equal(t, "first", opts[0].Address)
}

func TestIsExpired(t *testing.T) {
	require.True(t, IsExpired(store.PaymentOption{Expires: time.Now().Add(-time.Minute)}))
	require.False(t, IsExpired(store.PaymentOption{Expires: time.Now().Add(time.Minute)}))
	require.True(t, IsExpired(store.PaymentOption{}))
}

func TestUpdateExpiredOptionsRefreshesOnlyExpired(t *testing.T) {
	mem := memstore.New()
	mem.SeedCoin(store.CoinInfo{Currency: "BTC", Chain: "BTC", Precision: 8, HasPrecision: true})
	mem.SeedPrice(store.Price{Base: "BTC", Quote: "USD", Value: "40000"})

	e := newEngine(mem)
	invoice := store.Invoice{UID: "inv5", Amount: 10000, Currency: "USD"}
	account := store.Account{ID: 1}

	expired := store.PaymentOption{
		InvoiceUID: "inv5", Chain: "BTC", Currency: "BTC", Address: "addr",
		CreatedAt: time.Now().Add(-time.Hour), Expires: time.Now().Add(-time.Minute),
	}
	fresh := store.PaymentOption{
		InvoiceUID: "inv5", Chain: "ETH", Currency: "ETH", Address: "addr2",
		Amount: 123, Expires: time.Now().Add(time.Hour),
	}

	updated := e.UpdateExpiredOptions(context.Background(), invoice, []store.PaymentOption{expired, fresh}, account)
	require.Len(t, updated, 2)
	require.False(t, IsExpired(updated[0]))
	require.Equal(t, "addr", updated[0].Address)
	require.Equal(t, int64(123), updated[1].Amount)
}
