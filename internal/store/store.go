package store

import (
	"context"
	"time"
)

// Store is the only surface the core uses to reach the persistent record
// service (spec §6.5). Every method returns a *Error so callers can switch
// on Kind. Timeouts are the caller's responsibility via ctx, per the
// budgets in spec §5 (reads 10s, writes 15s).
type Store interface {
	// InsertInvoice persists a newly created invoice.
	InsertInvoice(ctx context.Context, inv Invoice) error
	// InvoiceByUID fetches an invoice by its unique id. Returns a *Error
	// of KindNotFound if absent.
	InvoiceByUID(ctx context.Context, uid string) (Invoice, error)
	// UpdateInvoiceStatus writes a new status and bumps UpdatedAt.
	UpdateInvoiceStatus(ctx context.Context, uid string, status InvoiceStatus) error

	// InsertPaymentOptions persists a batch atomically.
	InsertPaymentOptions(ctx context.Context, opts []PaymentOption) ([]PaymentOption, error)
	// PaymentOptionsByInvoice returns all options for an invoice, in
	// store insertion order.
	PaymentOptionsByInvoice(ctx context.Context, invoiceUID string) ([]PaymentOption, error)

	// AccountByID fetches an account. Returns KindNotFound if absent.
	AccountByID(ctx context.Context, id int64) (Account, error)

	// AddressesByAccount lists every address on file for an account.
	AddressesByAccount(ctx context.Context, accountID int64) ([]Address, error)

	// AllCoins returns every known CoinInfo.
	AllCoins(ctx context.Context) ([]CoinInfo, error)

	// AllPrices returns every known Price.
	AllPrices(ctx context.Context) ([]Price, error)
	// PriceByPair looks up a single (base, quote) price, if present.
	PriceByPair(ctx context.Context, base, quote string) (Price, bool, error)

	// UnconfirmedPaymentByTxID looks up a pending payment by its on-chain
	// transaction id. Returns (_, false, nil) when none matches.
	UnconfirmedPaymentByTxID(ctx context.Context, txid string) (Payment, bool, error)
	// ConfirmPayment conditionally sets the confirmation fields on a
	// payment whose confirmation_hash is still null. affected is false
	// when the payment was already confirmed by a concurrent caller,
	// realizing the idempotent confirm-payment precondition of spec §5.
	ConfirmPayment(ctx context.Context, paymentID int64, hash string, height int32, date time.Time) (affected bool, err error)

	// AccountIDByAccessToken resolves a bearer token to an account id.
	// Returns KindNotFound if the token is unknown.
	AccountIDByAccessToken(ctx context.Context, tokenUID string) (int64, error)
}
