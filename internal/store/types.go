// Package store defines the boundary contract between the hub's core
// subsystems and the opaque record service described in spec §6.5: the data
// types that cross the boundary and the interfaces the core consumes. The
// store itself — its schema, its transport, its persistence engine — is
// out of scope; this package only fixes the shape of the conversation.
package store

import "time"

// InvoiceStatus is the closed set of states an Invoice can be in.
type InvoiceStatus string

const (
	InvoiceUnpaid    InvoiceStatus = "unpaid"
	InvoicePaid      InvoiceStatus = "paid"
	InvoiceCancelled InvoiceStatus = "cancelled"
)

// Invoice is a request for payment denominated in a fiat quote currency.
type Invoice struct {
	UID         string
	AccountID   int64
	Amount      int64
	Currency    string
	Status      InvoiceStatus
	URI         string
	WebhookURL  string
	RedirectURL string
	Memo        string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Output is one destination/amount pair within a PaymentOption.
type Output struct {
	Address string
	Amount  int64
}

// PaymentOption is one concrete way to pay an Invoice, in one cryptocurrency
// on one chain.
type PaymentOption struct {
	InvoiceUID string
	Chain      string
	Currency   string
	Address    string
	Amount     int64
	Fee        int64
	Outputs    []Output
	URI        string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Expires    time.Time
}

// CoinInfo describes the precision and availability of a (currency, chain)
// pair.
type CoinInfo struct {
	Currency        string
	Chain           string
	Precision       int
	HasPrecision    bool
	Unavailable     bool
	RequiredFeeRate float64
	Color           string
	URITemplate     string
}

// Key returns the unique "currency:chain" cache key for this coin.
func (c CoinInfo) Key() string {
	return c.Currency + ":" + c.Chain
}

// Price is a single FX rate sample, quote→base or base→quote depending on
// how it was stored; PriceCache and Converter disambiguate by the (base,
// quote) pair under which it was looked up.
type Price struct {
	Base      string
	Quote     string
	Value     string // decimal string, parsed with shopspring/decimal
	Source    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Account is a merchant account; the hub only reads it.
type Account struct {
	ID            int64
	Denomination  string
	HasDenomination bool
}

// Address is one of an account's available receive addresses.
type Address struct {
	AccountID int64
	Chain     string
	Currency  string
	Value     string
}

// Payment is an on-chain payment correlated to an invoice, finalized by the
// confirmation pipeline.
type Payment struct {
	ID                 int64
	TxID               string
	Chain              string
	Currency           string
	InvoiceUID         string
	Status             string
	ConfirmationHash   string
	HasConfirmation    bool
	ConfirmationHeight int32
	ConfirmationDate   time.Time
}

// BlockNotification is a transient per-block event pushed by a
// block-notification provider.
type BlockNotification struct {
	Hash      string
	Height    uint32
	Timestamp time.Time
	HasTime   bool
	TxIDs     []string
}

// Subscription identifies a client's interest in events about one entity.
type Subscription struct {
	Type string
	ID   string
}
