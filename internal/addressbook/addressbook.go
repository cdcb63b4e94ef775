// Package addressbook resolves an account's available receive addresses,
// filtered by coin availability, per spec §4.4.
package addressbook

import (
	"context"

	"github.com/anypayx/hub/internal/coincatalog"
	"github.com/anypayx/hub/internal/store"
)

// Book reads addresses from the store and filters them through a
// coincatalog.Catalog.
type Book struct {
	st      store.Store
	catalog *coincatalog.Catalog
}

// New returns a Book backed by st and catalog.
func New(st store.Store, catalog *coincatalog.Catalog) *Book {
	return &Book{st: st, catalog: catalog}
}

// ListAvailable returns every address on file for account.ID whose
// (currency, chain) maps to a CoinInfo with Unavailable == false.
func (b *Book) ListAvailable(ctx context.Context, account store.Account) ([]store.Address, error) {
	addrs, err := b.st.AddressesByAccount(ctx, account.ID)
	if err != nil {
		return nil, store.Wrap(store.KindStoreError, "listing addresses failed", err)
	}

	available := make([]store.Address, 0, len(addrs))
	for _, addr := range addrs {
		info, ok := b.catalog.Get(ctx, addr.Currency, addr.Chain)
		if !ok || info.Unavailable {
			continue
		}
		available = append(available, addr)
	}
	return available, nil
}
