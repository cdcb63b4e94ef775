// Package invoices implements the InvoiceService of spec §4.6: invoice
// creation (uid allocation, persistence, payment-option build), lookup with
// expired-option refresh, status updates and ownership-checked cancellation.
package invoices

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/decred/slog"

	"github.com/anypayx/hub/internal/addressbook"
	"github.com/anypayx/hub/internal/paymentoptions"
	"github.com/anypayx/hub/internal/store"
)

const defaultBaseURL = "https://api.anypayx.com"

// Invoice pairs a stored invoice with its current payment options, the
// shape every SessionBus response for fetch_invoice/create_invoice returns.
type Invoice struct {
	Invoice store.Invoice
	Options []store.PaymentOption
}

// Service wires the store, address book and payment-option engine together.
type Service struct {
	st     store.Store
	book   *addressbook.Book
	engine *paymentoptions.Engine
	log    slog.Logger
}

// New returns a Service backed by its collaborators.
func New(st store.Store, book *addressbook.Book, engine *paymentoptions.Engine, log slog.Logger) *Service {
	return &Service{st: st, book: book, engine: engine, log: log}
}

// Create allocates a uid, persists the invoice, and builds its initial
// payment-option batch, per spec §4.6 step 1-5.
func (s *Service) Create(ctx context.Context, accountID int64, amount int64, currency string, webhookURL, redirectURL, memo string) (Invoice, error) {
	uid, err := shortID()
	if err != nil {
		return Invoice{}, store.Wrap(store.KindStoreError, "generating invoice uid failed", err)
	}
	uid = "inv_" + uid

	now := time.Now()
	inv := store.Invoice{
		UID:         uid,
		AccountID:   accountID,
		Amount:      amount,
		Currency:    currency,
		Status:      store.InvoiceUnpaid,
		URI:         invoiceURI(uid),
		WebhookURL:  webhookURL,
		RedirectURL: redirectURL,
		Memo:        memo,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.st.InsertInvoice(ctx, inv); err != nil {
		return Invoice{}, err
	}

	account, err := s.st.AccountByID(ctx, accountID)
	if err != nil {
		return Invoice{}, err
	}

	addrs, err := s.book.ListAvailable(ctx, account)
	if err != nil {
		return Invoice{}, err
	}

	options, err := s.engine.Build(ctx, inv, account, addrs)
	if err != nil {
		return Invoice{}, err
	}

	return Invoice{Invoice: inv, Options: options}, nil
}

// Get reads an invoice and its options, refreshing any expired options in
// place with best-effort semantics, per spec §4.6.
func (s *Service) Get(ctx context.Context, uid string) (Invoice, bool, error) {
	inv, err := s.st.InvoiceByUID(ctx, uid)
	if err != nil {
		if store.KindOf(err) == store.KindNotFound {
			return Invoice{}, false, nil
		}
		return Invoice{}, false, err
	}

	options, err := s.st.PaymentOptionsByInvoice(ctx, uid)
	if err != nil {
		return Invoice{}, false, err
	}

	anyExpired := false
	for _, opt := range options {
		if paymentoptions.IsExpired(opt) {
			anyExpired = true
			break
		}
	}
	if !anyExpired {
		return Invoice{Invoice: inv, Options: options}, true, nil
	}

	account, err := s.st.AccountByID(ctx, inv.AccountID)
	if err != nil {
		s.log.Debugf("best-effort refresh of %s: account lookup failed: %v", uid, err)
		return Invoice{Invoice: inv, Options: options}, true, nil
	}

	refreshed := s.engine.UpdateExpiredOptions(ctx, inv, options, account)
	return Invoice{Invoice: inv, Options: refreshed}, true, nil
}

// UpdateStatus writes a new invoice status through to the store.
func (s *Service) UpdateStatus(ctx context.Context, uid string, status store.InvoiceStatus) error {
	return s.st.UpdateInvoiceStatus(ctx, uid, status)
}

// Cancel transitions uid to cancelled, failing KindUnauthorized when
// requestingAccountID does not own the invoice, per spec §4.6.
func (s *Service) Cancel(ctx context.Context, uid string, requestingAccountID int64) error {
	inv, err := s.st.InvoiceByUID(ctx, uid)
	if err != nil {
		return err
	}
	if inv.AccountID != requestingAccountID {
		return store.New(store.KindUnauthorized, "Unauthorized to cancel this invoice")
	}
	return s.UpdateStatus(ctx, uid, store.InvoiceCancelled)
}

// invoiceURI builds the external short-URL form of an invoice's uid,
// distinct from a payment option's protocol URI (§6.4).
func invoiceURI(uid string) string {
	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return fmt.Sprintf("%s/i/%s", baseURL, uid)
}
