// Package memstore is an in-memory store.Store double used by unit tests
// across the hub, playing the role the teacher's channeldb/lntest harnesses
// play for dcrlnd: a fast, deterministic stand-in for the opaque record
// service described in spec §6.5.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/anypayx/hub/internal/store"
)

// Store is a minimal, concurrency-safe in-memory implementation of
// store.Store.
type Store struct {
	mu sync.Mutex

	invoices map[string]store.Invoice
	options  map[string][]store.PaymentOption // keyed by invoice uid
	accounts map[int64]store.Account
	addrs    map[int64][]store.Address
	coins    []store.CoinInfo
	prices   []store.Price
	payments []store.Payment
	tokens   map[string]int64

	nextPaymentID int64
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		invoices: make(map[string]store.Invoice),
		options:  make(map[string][]store.PaymentOption),
		accounts: make(map[int64]store.Account),
		addrs:    make(map[int64][]store.Address),
		tokens:   make(map[string]int64),
	}
}

func (s *Store) InsertInvoice(_ context.Context, inv store.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invoices[inv.UID] = inv
	return nil
}

func (s *Store) InvoiceByUID(_ context.Context, uid string) (store.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invoices[uid]
	if !ok {
		return store.Invoice{}, store.New(store.KindNotFound, "invoice not found: "+uid)
	}
	return inv, nil
}

func (s *Store) UpdateInvoiceStatus(_ context.Context, uid string, status store.InvoiceStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invoices[uid]
	if !ok {
		return store.New(store.KindNotFound, "invoice not found: "+uid)
	}
	inv.Status = status
	inv.UpdatedAt = time.Now()
	s.invoices[uid] = inv
	return nil
}

// InsertPaymentOptions is insert-only at the call site, matching the
// original's batch-insert call; memstore simulates the unique constraint on
// (invoice_uid, chain, currency) assumed in spec §9 so that refreshing an
// option does not accumulate duplicates.
func (s *Store) InsertPaymentOptions(_ context.Context, opts []store.PaymentOption) ([]store.PaymentOption, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range opts {
		list := s.options[o.InvoiceUID]
		replaced := false
		for i, existing := range list {
			if existing.Chain == o.Chain && existing.Currency == o.Currency {
				list[i] = o
				replaced = true
				break
			}
		}
		if !replaced {
			list = append(list, o)
		}
		s.options[o.InvoiceUID] = list
	}
	return opts, nil
}

func (s *Store) PaymentOptionsByInvoice(_ context.Context, invoiceUID string) ([]store.PaymentOption, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]store.PaymentOption, len(s.options[invoiceUID]))
	copy(out, s.options[invoiceUID])
	return out, nil
}

func (s *Store) AccountByID(_ context.Context, id int64) (store.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return store.Account{}, store.New(store.KindNotFound, "account not found")
	}
	return a, nil
}

func (s *Store) AddressesByAccount(_ context.Context, accountID int64) ([]store.Address, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]store.Address, len(s.addrs[accountID]))
	copy(out, s.addrs[accountID])
	return out, nil
}

func (s *Store) AllCoins(_ context.Context) ([]store.CoinInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]store.CoinInfo, len(s.coins))
	copy(out, s.coins)
	return out, nil
}

func (s *Store) AllPrices(_ context.Context) ([]store.Price, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]store.Price, len(s.prices))
	copy(out, s.prices)
	return out, nil
}

func (s *Store) PriceByPair(_ context.Context, base, quote string) (store.Price, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.prices {
		if p.Base == base && p.Quote == quote {
			return p, true, nil
		}
	}
	return store.Price{}, false, nil
}

func (s *Store) UnconfirmedPaymentByTxID(_ context.Context, txid string) (store.Payment, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.payments {
		if p.TxID == txid && !p.HasConfirmation {
			return p, true, nil
		}
	}
	return store.Payment{}, false, nil
}

func (s *Store) ConfirmPayment(_ context.Context, paymentID int64, hash string, height int32, date time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.payments {
		if p.ID == paymentID {
			if p.HasConfirmation {
				return false, nil
			}
			p.ConfirmationHash = hash
			p.ConfirmationHeight = height
			p.ConfirmationDate = date
			p.HasConfirmation = true
			p.Status = "confirmed"
			s.payments[i] = p
			return true, nil
		}
	}
	return false, store.New(store.KindNotFound, "payment not found")
}

func (s *Store) AccountIDByAccessToken(_ context.Context, tokenUID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.tokens[tokenUID]
	if !ok {
		return 0, store.New(store.KindNotFound, "unknown token")
	}
	return id, nil
}

// --- seeding helpers used by tests, not part of store.Store ---

func (s *Store) SeedAccount(a store.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[a.ID] = a
}

func (s *Store) SeedAddress(a store.Address) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addrs[a.AccountID] = append(s.addrs[a.AccountID], a)
}

func (s *Store) SeedCoin(c store.CoinInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.coins = append(s.coins, c)
}

func (s *Store) SeedPrice(p store.Price) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prices = append(s.prices, p)
}

func (s *Store) SeedToken(tokenUID string, accountID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[tokenUID] = accountID
}

// SeedPayment inserts an unconfirmed payment and returns its assigned id.
func (s *Store) SeedPayment(p store.Payment) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextPaymentID++
	p.ID = s.nextPaymentID
	s.payments = append(s.payments, p)
	return p.ID
}
