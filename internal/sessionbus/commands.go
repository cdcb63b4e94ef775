package sessionbus

import (
	"encoding/json"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/anypayx/hub/internal/store"
)

// envelope is the outer shape of every inbound command frame, spec §6.1.
type envelope struct {
	Action string `json:"action"`

	// subscribe / unsubscribe
	Type string `json:"type"`
	ID   string `json:"id"`

	// create_invoice
	Amount      json.Number `json:"amount"`
	Currency    string      `json:"currency"`
	WebhookURL  string      `json:"webhook_url"`
	RedirectURL string      `json:"redirect_url"`
	Memo        string      `json:"memo"`

	// cancel_invoice
	UID string `json:"uid"`

	// convert_price
	QuoteCurrency string          `json:"quote_currency"`
	BaseCurrency  string          `json:"base_currency"`
	QuoteValue    json.RawMessage `json:"quote_value"`
}

// response is the outer shape of a command's reply, spec §6.1.
type response struct {
	Status  string      `json:"status"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

func okResponse(data interface{}) response {
	return response{Status: "success", Data: data}
}

func errResponse(message string) response {
	return response{Status: "error", Message: message}
}

// pongResponse is the reply to a "ping" command, spec §6.1.
type pongResponse struct {
	Type      string `json:"type"`
	Status    string `json:"status"`
	Timestamp int64  `json:"timestamp"`
}

// parseQuoteValue accepts quote_value as either a JSON number or a numeric
// string, per spec §6.1.
func parseQuoteValue(raw json.RawMessage) (decimal.Decimal, error) {
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return decimal.NewFromString(asString)
	}

	var asNumber json.Number
	if err := json.Unmarshal(raw, &asNumber); err != nil {
		return decimal.Decimal{}, err
	}
	return decimal.NewFromString(asNumber.String())
}

func parseAmount(n json.Number) (int64, error) {
	if n == "" {
		return 0, strconv.ErrSyntax
	}
	return strconv.ParseInt(n.String(), 10, 64)
}

// invoiceView is the wire shape of an invoice in fetch_invoice/create_invoice
// responses. The payment.confirmed event carries its own, smaller
// events.PaymentConfirmedInvoice instead.
type invoiceView struct {
	UID         string `json:"uid"`
	AccountID   int64  `json:"account_id"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	Status      string `json:"status"`
	URI         string `json:"uri"`
	WebhookURL  string `json:"webhook_url,omitempty"`
	RedirectURL string `json:"redirect_url,omitempty"`
	Memo        string `json:"memo,omitempty"`
}

func toInvoiceView(inv store.Invoice) invoiceView {
	return invoiceView{
		UID:         inv.UID,
		AccountID:   inv.AccountID,
		Amount:      inv.Amount,
		Currency:    inv.Currency,
		Status:      string(inv.Status),
		URI:         inv.URI,
		WebhookURL:  inv.WebhookURL,
		RedirectURL: inv.RedirectURL,
		Memo:        inv.Memo,
	}
}

// invoiceWithOptions is the {invoice, payment_options} shape fetch_invoice
// and create_invoice both return, spec §4.8.
type invoiceWithOptions struct {
	Invoice        invoiceView           `json:"invoice"`
	PaymentOptions []store.PaymentOption `json:"payment_options"`
}
