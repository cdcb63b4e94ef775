package confirmation

import (
	"context"
	"testing"
	"time"

	"github.com/decred/slog"
	"github.com/stretchr/testify/require"

	"github.com/anypayx/hub/internal/events"
	"github.com/anypayx/hub/internal/store"
	"github.com/anypayx/hub/internal/store/memstore"
)

type recordingSink struct {
	published []events.PaymentConfirmed
}

func (r *recordingSink) Publish(e events.PaymentConfirmed) {
	r.published = append(r.published, e)
}

func TestConfirmPaymentMarksPaidAndPublishes(t *testing.T) {
	mem := memstore.New()
	mem.SeedAccount(store.Account{ID: 1})
	mem.InsertInvoice(context.Background(), store.Invoice{UID: "inv_1", AccountID: 1, Status: store.InvoiceUnpaid})
	id := mem.SeedPayment(store.Payment{TxID: "tx1", Chain: "BTC", Currency: "BTC", InvoiceUID: "inv_1", Status: "pending"})

	sink := &recordingSink{}
	p := New("", "", "", mem, sink, slog.Disabled)

	err := p.confirmPayment(context.Background(), store.Payment{ID: id, TxID: "tx1", Chain: "BTC", Currency: "BTC", InvoiceUID: "inv_1"}, "blockhash1", 100, time.Now())
	require.NoError(t, err)

	inv, err := mem.InvoiceByUID(context.Background(), "inv_1")
	require.NoError(t, err)
	require.Equal(t, store.InvoicePaid, inv.Status)

	require.Len(t, sink.published, 1)
	require.Equal(t, events.TopicPaymentConfirmed, sink.published[0].Topic)
	require.Equal(t, int32(100), sink.published[0].Payload.Confirmation.Height)
	require.Equal(t, "blockhash1", sink.published[0].Payload.Confirmation.Hash)
	require.Equal(t, "paid", sink.published[0].Payload.Invoice.Status)
	require.NotNil(t, sink.published[0].Payload.AccountID)
	require.Equal(t, "1", *sink.published[0].Payload.AccountID)
}

func TestConfirmPaymentFailsWhenInvoiceMissing(t *testing.T) {
	mem := memstore.New()
	id := mem.SeedPayment(store.Payment{TxID: "tx4", Chain: "BTC", Currency: "BTC", InvoiceUID: "inv_missing", Status: "pending"})

	sink := &recordingSink{}
	p := New("", "", "", mem, sink, slog.Disabled)

	err := p.confirmPayment(context.Background(), store.Payment{ID: id, TxID: "tx4", InvoiceUID: "inv_missing"}, "blockhash1", 100, time.Now())
	require.Error(t, err)
	require.Empty(t, sink.published)
}

func TestConfirmPaymentIdempotent(t *testing.T) {
	mem := memstore.New()
	mem.InsertInvoice(context.Background(), store.Invoice{UID: "inv_2", AccountID: 1, Status: store.InvoiceUnpaid})
	id := mem.SeedPayment(store.Payment{TxID: "tx2", InvoiceUID: "inv_2"})

	sink := &recordingSink{}
	p := New("", "", "", mem, sink, slog.Disabled)

	payment := store.Payment{ID: id, TxID: "tx2", InvoiceUID: "inv_2"}
	require.NoError(t, p.confirmPayment(context.Background(), payment, "h1", 10, time.Now()))
	require.NoError(t, p.confirmPayment(context.Background(), payment, "h2", 20, time.Now()))

	require.Len(t, sink.published, 1)
}

func TestConfirmPaymentAlreadyConfirmedSkips(t *testing.T) {
	mem := memstore.New()
	sink := &recordingSink{}
	p := New("", "", "", mem, sink, slog.Disabled)

	payment := store.Payment{ID: 99, TxID: "tx3", InvoiceUID: "inv_3", HasConfirmation: true}
	err := p.confirmPayment(context.Background(), payment, "h", 1, time.Now())
	require.NoError(t, err)
	require.Empty(t, sink.published)
}
