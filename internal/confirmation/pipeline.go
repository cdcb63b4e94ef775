// Package confirmation implements the ConfirmationPipeline of spec §4.9: a
// WebSocket consumer for a block-notification provider that correlates
// transaction ids in new blocks against unconfirmed payments, finalizes
// matches, and publishes a payment.confirmed event. Lifecycle and
// reconnect-with-backoff follow the teacher family's BtcdNotifier
// (atomic started/stopped flags, sync.WaitGroup, quit channel).
package confirmation

import (
	"context"
	"math/rand"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/decred/slog"

	"github.com/anypayx/hub/internal/events"
	"github.com/anypayx/hub/internal/store"
)

const (
	backoffBase = time.Second
	backoffCap  = 30 * time.Second

	httpFetchTimeout = 10 * time.Second
)

// Pipeline owns the block-notification consumer loop.
type Pipeline struct {
	started int32
	stopped int32

	wsURL    string
	httpHost string
	apiKey   string

	st   store.Store
	sink events.Sink
	log  slog.Logger

	wg   sync.WaitGroup
	quit chan struct{}
}

// New returns a Pipeline targeting the given block-notification provider.
func New(wsURL, httpHost, apiKey string, st store.Store, sink events.Sink, log slog.Logger) *Pipeline {
	return &Pipeline{
		wsURL:    wsURL,
		httpHost: httpHost,
		apiKey:   apiKey,
		st:       st,
		sink:     sink,
		log:      log,
		quit:     make(chan struct{}),
	}
}

// Start launches the consumer loop in the background. Safe to call once.
func (p *Pipeline) Start() error {
	if !atomic.CompareAndSwapInt32(&p.started, 0, 1) {
		return nil
	}

	p.wg.Add(1)
	go p.run()
	return nil
}

// Stop signals the consumer loop to exit and waits for it to finish.
func (p *Pipeline) Stop() error {
	if !atomic.CompareAndSwapInt32(&p.stopped, 0, 1) {
		return nil
	}
	close(p.quit)
	p.wg.Wait()
	return nil
}

// run reconnects with exponential backoff (base 1s, cap 30s, full jitter)
// whenever the WS connection drops, per spec §4.9's failure model.
func (p *Pipeline) run() {
	defer p.wg.Done()

	attempt := 0
	for {
		select {
		case <-p.quit:
			return
		default:
		}

		client := newBlockbookClient(p.wsURL, p.httpHost, p.apiKey)
		if err := client.dial(); err != nil {
			p.log.Errorf("confirmation pipeline dial failed: %v", err)
			if !p.sleepBackoff(attempt) {
				return
			}
			attempt++
			continue
		}

		attempt = 0
		p.consume(client)
		client.close()

		if !p.sleepBackoff(0) {
			return
		}
	}
}

// sleepBackoff waits out a jittered backoff for the given attempt count,
// returning false if the pipeline was asked to stop while waiting.
func (p *Pipeline) sleepBackoff(attempt int) bool {
	delay := backoffBase << uint(attempt)
	if delay > backoffCap || delay <= 0 {
		delay = backoffCap
	}
	jittered := time.Duration(rand.Int63n(int64(delay) + 1))

	select {
	case <-time.After(jittered):
		return true
	case <-p.quit:
		return false
	}
}

// consume reads frames from client until the connection drops or the
// pipeline is asked to stop.
func (p *Pipeline) consume(client *blockbookClient) {
	for {
		select {
		case <-p.quit:
			return
		default:
		}

		blk, _, err := client.readFrame()
		if err != nil {
			p.log.Errorf("confirmation pipeline read failed, reconnecting: %v", err)
			return
		}
		if blk == nil {
			continue
		}

		p.handleBlock(client, *blk)
	}
}

// handleBlock fetches a block's transaction ids and correlates each one
// against unconfirmed payments, per spec §4.9 step 2.
func (p *Pipeline) handleBlock(client *blockbookClient, blk blockNotification) {
	ctx, cancel := context.WithTimeout(context.Background(), httpFetchTimeout)
	defer cancel()

	txids, err := client.fetchBlockTxIDs(blk.Hash)
	if err != nil {
		p.log.Errorf("block fetch for %s failed, will reprocess on next block: %v", blk.Hash, err)
		return
	}

	ts := time.Now()
	if blk.HasTime {
		ts = time.Unix(blk.Timestamp, 0)
	}

	for _, txid := range txids {
		payment, ok, err := p.st.UnconfirmedPaymentByTxID(ctx, txid)
		if err != nil {
			p.log.Errorf("unconfirmed payment lookup for %s failed: %v", txid, err)
			continue
		}
		if !ok {
			continue
		}

		if err := p.confirmPayment(ctx, payment, blk.Hash, blk.Height, ts); err != nil {
			p.log.Errorf("confirming payment %d (txid %s) failed: %v", payment.ID, txid, err)
		}
	}
}

// confirmPayment realizes the pending -> confirming -> confirmed state
// machine. Already-confirmed payments are left unchanged (idempotent).
func (p *Pipeline) confirmPayment(ctx context.Context, payment store.Payment, blockHash string, height uint32, date time.Time) error {
	if payment.HasConfirmation {
		p.log.Debugf("payment %d already confirmed, skipping duplicate confirmation", payment.ID)
		return nil
	}

	affected, err := p.st.ConfirmPayment(ctx, payment.ID, blockHash, int32(height), date)
	if err != nil {
		return err
	}
	if !affected {
		// a concurrent confirmation won the race; no event is emitted here.
		return nil
	}

	if err := p.st.UpdateInvoiceStatus(ctx, payment.InvoiceUID, store.InvoicePaid); err != nil {
		return err
	}

	// spec §4.9 step 2c: the confirmed event carries the owning account,
	// so the invoice must be fetched back before the event is built.
	inv, err := p.st.InvoiceByUID(ctx, payment.InvoiceUID)
	if err != nil {
		return err
	}

	p.sink.Publish(events.PaymentConfirmed{
		Topic: events.TopicPaymentConfirmed,
		Payload: events.PaymentConfirmedPayload{
			AccountID: events.StringPtr(strconv.FormatInt(inv.AccountID, 10)),
			AppID:     nil,
			Payment: events.PaymentConfirmedPayment{
				Chain:    payment.Chain,
				Currency: payment.Currency,
				TxID:     payment.TxID,
				Status:   "confirmed",
			},
			Invoice: events.PaymentConfirmedInvoice{
				UID:    payment.InvoiceUID,
				Status: string(store.InvoicePaid),
			},
			Confirmation: events.PaymentConfirmation{
				Hash:   blockHash,
				Height: int32(height),
			},
		},
	})
	return nil
}
