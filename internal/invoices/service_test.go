package invoices

import (
	"context"
	"testing"
	"time"

	"github.com/decred/slog"
	"github.com/stretchr/testify/require"

	"github.com/anypayx/hub/internal/addressbook"
	"github.com/anypayx/hub/internal/coincatalog"
	"github.com/anypayx/hub/internal/convert"
	"github.com/anypayx/hub/internal/paymentoptions"
	"github.com/anypayx/hub/internal/pricecache"
	"github.com/anypayx/hub/internal/store"
	"github.com/anypayx/hub/internal/store/memstore"
)

func newService(mem *memstore.Store) *Service {
	cat := coincatalog.New(mem, slog.Disabled)
	cache := pricecache.New(mem, slog.Disabled)
	cache.Refresh(context.Background())
	conv := convert.New(cache)
	engine := paymentoptions.New(mem, cat, conv, slog.Disabled)
	book := addressbook.New(mem, cat)
	return New(mem, book, engine, slog.Disabled)
}

func seedBTCAccount(mem *memstore.Store, accountID int64) {
	mem.SeedAccount(store.Account{ID: accountID})
	mem.SeedAddress(store.Address{AccountID: accountID, Chain: "BTC", Currency: "BTC", Value: "bc1q..."})
	mem.SeedCoin(store.CoinInfo{Currency: "BTC", Chain: "BTC", Precision: 8, HasPrecision: true})
	mem.SeedPrice(store.Price{Base: "BTC", Quote: "USD", Value: "40000"})
}

func TestCreateAndFetch(t *testing.T) {
	mem := memstore.New()
	seedBTCAccount(mem, 7)
	svc := newService(mem)

	created, err := svc.Create(context.Background(), 7, 10000, "USD", "", "", "")
	require.NoError(t, err)
	require.True(t, created.Invoice.UID != "")
	require.Len(t, created.Options, 1)
	require.Equal(t, store.InvoiceUnpaid, created.Invoice.Status)

	fetched, ok, err := svc.Get(context.Background(), created.Invoice.UID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, fetched.Options, 1)
	require.Equal(t, created.Options[0].Amount, fetched.Options[0].Amount)
}

func TestGetMissingReturnsFalse(t *testing.T) {
	mem := memstore.New()
	svc := newService(mem)

	_, ok, err := svc.Get(context.Background(), "inv_missing")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestGetRefreshesExpiredOption(t *testing.T) {
	mem := memstore.New()
	seedBTCAccount(mem, 7)
	svc := newService(mem)

	created, err := svc.Create(context.Background(), 7, 10000, "USD", "", "", "")
	require.NoError(t, err)

	expired := created.Options[0]
	expired.Expires = time.Now().Add(-time.Minute)
	_, err = mem.InsertPaymentOptions(context.Background(), []store.PaymentOption{expired})
	require.NoError(t, err)

	fetched, ok, err := svc.Get(context.Background(), created.Invoice.UID)
	require.NoError(t, err)
	require.True(t, ok)
	require.False(t, paymentoptions.IsExpired(fetched.Options[0]))
}

func TestCancelRejectsWrongAccount(t *testing.T) {
	mem := memstore.New()
	seedBTCAccount(mem, 7)
	svc := newService(mem)

	created, err := svc.Create(context.Background(), 7, 10000, "USD", "", "", "")
	require.NoError(t, err)

	err = svc.Cancel(context.Background(), created.Invoice.UID, 9)
	require.Error(t, err)
	require.Equal(t, store.KindUnauthorized, store.KindOf(err))

	fetched, ok, err := svc.Get(context.Background(), created.Invoice.UID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, store.InvoiceUnpaid, fetched.Invoice.Status)
}

func TestCancelOwnerSucceeds(t *testing.T) {
	mem := memstore.New()
	seedBTCAccount(mem, 7)
	svc := newService(mem)

	created, err := svc.Create(context.Background(), 7, 10000, "USD", "", "", "")
	require.NoError(t, err)

	err = svc.Cancel(context.Background(), created.Invoice.UID, 7)
	require.NoError(t, err)

	fetched, ok, err := svc.Get(context.Background(), created.Invoice.UID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, store.InvoiceCancelled, fetched.Invoice.Status)
}
