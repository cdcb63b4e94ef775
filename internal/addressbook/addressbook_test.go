package addressbook

import (
	"context"
	"testing"

	"github.com/decred/slog"
	"github.com/stretchr/testify/require"

	"github.com/anypayx/hub/internal/coincatalog"
	"github.com/anypayx/hub/internal/store"
	"github.com/anypayx/hub/internal/store/memstore"
)

func TestListAvailableFiltersUnavailable(t *testing.T) {
	mem := memstore.New()
	mem.SeedCoin(store.CoinInfo{Currency: "BTC", Chain: "BTC"})
	mem.SeedCoin(store.CoinInfo{Currency: "XMR", Chain: "XMR", Unavailable: true})
	mem.SeedAddress(store.Address{AccountID: 7, Chain: "BTC", Currency: "BTC", Value: "bc1q..."})
	mem.SeedAddress(store.Address{AccountID: 7, Chain: "XMR", Currency: "XMR", Value: "4..."})

	cat := coincatalog.New(mem, slog.Disabled)
	book := New(mem, cat)

	addrs, err := book.ListAvailable(context.Background(), store.Account{ID: 7})
	require.NoError(t, err)
	require.Len(t, addrs, 1)
	require.Equal(t, "BTC", addrs[0].Currency)
}

func TestListAvailableSkipsUncataloged(t *testing.T) {
	mem := memstore.New()
	mem.SeedAddress(store.Address{AccountID: 7, Chain: "ETH", Currency: "ETH", Value: "0x..."})

	cat := coincatalog.New(mem, slog.Disabled)
	book := New(mem, cat)

	addrs, err := book.ListAvailable(context.Background(), store.Account{ID: 7})
	require.NoError(t, err)
	require.Empty(t, addrs)
}

func TestListAvailableEmptyAddressList(t *testing.T) {
	mem := memstore.New()
	cat := coincatalog.New(mem, slog.Disabled)
	book := New(mem, cat)

	addrs, err := book.ListAvailable(context.Background(), store.Account{ID: 42})
	require.NoError(t, err)
	require.Empty(t, addrs)
}
