// Package events defines the event payloads the hub emits to subscribers
// (spec §6.2) and the fire-and-forget sink boundary other components
// publish through. AMQP or any other external bus is explicitly out of
// scope (spec §1); no example repo in the retrieval pack carries a real
// AMQP client either, so Sink stays an in-process interface satisfied by
// sessionbus's fan-out and, in tests, a recording double.
package events

// PaymentConfirmed is the payload of the "payment.confirmed" topic, per
// spec §6.2. AccountID is stringified at this boundary only — everywhere
// else in the hub it stays an int64 (spec §9's account_id open question,
// resolved per the original implementation's event-serialization path).
type PaymentConfirmed struct {
	Topic   string                  `json:"topic"`
	Payload PaymentConfirmedPayload `json:"payload"`
}

// PaymentConfirmedPayload is the payload body of a PaymentConfirmed event.
type PaymentConfirmedPayload struct {
	AccountID    *string                 `json:"account_id"`
	AppID        *string                 `json:"app_id"`
	Payment      PaymentConfirmedPayment `json:"payment"`
	Invoice      PaymentConfirmedInvoice `json:"invoice"`
	Confirmation PaymentConfirmation     `json:"confirmation"`
}

// PaymentConfirmedPayment mirrors the fields of a confirmed payment.
type PaymentConfirmedPayment struct {
	Chain    string `json:"chain"`
	Currency string `json:"currency"`
	TxID     string `json:"txid"`
	Status   string `json:"status"`
}

// PaymentConfirmedInvoice carries only the fields a subscriber needs to
// know an invoice turned paid.
type PaymentConfirmedInvoice struct {
	UID    string `json:"uid"`
	Status string `json:"status"`
}

// PaymentConfirmation carries the on-chain confirmation's hash and height.
type PaymentConfirmation struct {
	Hash   string `json:"hash"`
	Height int32  `json:"height"`
}

// Topic names recognized across the hub.
const TopicPaymentConfirmed = "payment.confirmed"

// Sink is the fire-and-forget publish boundary ConfirmationPipeline
// targets. SessionBus implements it to fan events out to subscribed
// sessions; tests substitute a recording double.
type Sink interface {
	Publish(event PaymentConfirmed)
}

// StringPtr returns a pointer to s, used to populate AccountID/AppID.
func StringPtr(s string) *string {
	return &s
}
