// Package sessionbus implements the SessionBus of spec §4.8: the
// WebSocket front end that authenticates sessions, dispatches JSON
// command frames, and fans out events to subscribed sessions. Session
// lifecycle (outbound queue, writer goroutine, started/stopped-style
// bookkeeping) follows the teacher family's per-connection conventions;
// the command table mirrors the closed action enumeration of spec §4.8.
package sessionbus

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/decred/slog"

	"github.com/anypayx/hub/internal/convert"
	"github.com/anypayx/hub/internal/events"
	"github.com/anypayx/hub/internal/invoices"
	"github.com/anypayx/hub/internal/metrics"
	"github.com/anypayx/hub/internal/pricecache"
	"github.com/anypayx/hub/internal/store"
	"github.com/anypayx/hub/internal/subscription"
)

const (
	handshakeTimeout = 5 * time.Second

	// inboundRateLimit bounds the rate of inbound command frames a single
	// session may submit, guarding against a misbehaving or abusive client.
	inboundRateLimit = 20 // per second
	inboundBurst     = 40
)

var upgrader = websocket.Upgrader{
	HandshakeTimeout: handshakeTimeout,
	CheckOrigin:      func(r *http.Request) bool { return true },
}

// Bus is the WebSocket front end wiring together every session and the
// subscription fan-out.
type Bus struct {
	st        store.Store
	invoices  *invoices.Service
	cache     *pricecache.Cache
	converter *convert.Converter
	registry  *subscription.Registry
	metrics   *metrics.Metrics
	log       slog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

// New returns a Bus wired to its collaborators.
func New(st store.Store, invoiceSvc *invoices.Service, cache *pricecache.Cache, converter *convert.Converter, registry *subscription.Registry, m *metrics.Metrics, log slog.Logger) *Bus {
	return &Bus{
		st:        st,
		invoices:  invoiceSvc,
		cache:     cache,
		converter: converter,
		registry:  registry,
		metrics:   m,
		log:       log,
		sessions:  make(map[string]*Session),
	}
}

// ServeHTTP upgrades the connection and runs the session until it
// terminates, per spec §4.8.
func (b *Bus) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		b.log.Errorf("websocket upgrade failed: %v", err)
		return
	}

	session := newSession(uuid.NewString(), conn, b.log)
	b.authenticate(session, r)

	go session.writerLoop()
	b.register(session)
	defer b.unregister(session)

	b.readLoop(session)
}

// authenticate validates the bearer token, if any, carried in the
// Authorization header or query parameter, per spec §4.8 step 1-2.
func (b *Bus) authenticate(session *Session, r *http.Request) {
	token := r.Header.Get("Authorization")
	if token == "" {
		token = r.URL.Query().Get("Authorization")
	}
	token = strings.TrimPrefix(token, "Bearer ")
	if token == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	accountID, err := b.st.AccountIDByAccessToken(ctx, token)
	if err != nil {
		b.log.Debugf("session %s: token validation failed: %v", session.ID, err)
		return
	}
	session.authenticate(accountID)
}

func (b *Bus) register(session *Session) {
	b.mu.Lock()
	b.sessions[session.ID] = session
	b.mu.Unlock()
	if b.metrics != nil {
		b.metrics.ActiveSessions.Inc()
	}
}

func (b *Bus) unregister(session *Session) {
	b.mu.Lock()
	delete(b.sessions, session.ID)
	b.mu.Unlock()
	b.registry.UnsubscribeAll(session.ID)
	session.close()
	if b.metrics != nil {
		b.metrics.ActiveSessions.Dec()
	}
}

// readLoop processes inbound frames sequentially, in arrival order, per
// spec §5's per-session ordering guarantee.
func (b *Bus) readLoop(session *Session) {
	limiter := rate.NewLimiter(rate.Limit(inboundRateLimit), inboundBurst)

	for {
		_, raw, err := session.conn.ReadMessage()
		if err != nil {
			return
		}

		if err := limiter.Wait(context.Background()); err != nil {
			return
		}

		reply := b.dispatch(session, raw)
		encoded, err := json.Marshal(reply)
		if err != nil {
			b.log.Errorf("session %s: encoding reply failed: %v", session.ID, err)
			continue
		}
		session.send(encoded)
	}
}

// dispatch decodes a command frame and routes it to its handler, per the
// action table of spec §4.8.
func (b *Bus) dispatch(session *Session, raw []byte) interface{} {
	start := time.Now()

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		b.log.Debugf("session %s: malformed command frame: %v\n%s", session.ID, err, spew.Sdump(raw))
		b.observe("invalid", start, string(store.KindInvalidMessage))
		return errResponse("Invalid message format")
	}

	var result interface{}
	kind := ""
	switch env.Action {
	case "subscribe":
		b.registry.Subscribe(session.ID, env.Type, env.ID)
		result = okResponse(nil)
	case "unsubscribe":
		b.registry.Unsubscribe(session.ID, env.Type, env.ID)
		result = okResponse(nil)
	case "fetch_invoice":
		result, kind = b.handleFetchInvoice(env)
	case "create_invoice":
		result, kind = b.handleCreateInvoice(session, env)
	case "list_prices":
		result = okResponse(b.cache.All())
	case "convert_price":
		result, kind = b.handleConvertPrice(env)
	case "cancel_invoice":
		result, kind = b.handleCancelInvoice(session, env)
	case "ping":
		result = pongResponse{Type: "pong", Status: "success", Timestamp: time.Now().Unix()}
	default:
		result, kind = errResponse("Invalid message format"), string(store.KindInvalidMessage)
	}

	b.observe(env.Action, start, kind)
	return result
}

func (b *Bus) observe(action string, start time.Time, errKind string) {
	if b.metrics == nil {
		return
	}
	b.metrics.CommandDuration.WithLabelValues(action).Observe(time.Since(start).Seconds())
	if errKind != "" {
		b.metrics.CommandErrors.WithLabelValues(action, errKind).Inc()
	}
}

func (b *Bus) handleFetchInvoice(env envelope) (interface{}, string) {
	result, ok, err := b.invoices.Get(context.Background(), env.ID)
	if err != nil {
		return errResponse(err.Error()), string(store.KindOf(err))
	}
	if !ok {
		return errResponse("invoice not found"), string(store.KindNotFound)
	}
	return okResponse(invoiceWithOptions{
		Invoice:        toInvoiceView(result.Invoice),
		PaymentOptions: result.Options,
	}), ""
}

func (b *Bus) handleCreateInvoice(session *Session, env envelope) (interface{}, string) {
	if !session.Authenticated() {
		return errResponse("Unauthorized: API key required"), string(store.KindUnauthorized)
	}

	amount, err := parseAmount(env.Amount)
	if err != nil {
		return errResponse("Invalid message format"), string(store.KindInvalidMessage)
	}

	result, err := b.invoices.Create(context.Background(), session.AccountID(), amount, env.Currency, env.WebhookURL, env.RedirectURL, env.Memo)
	if err != nil {
		return errResponse(err.Error()), string(store.KindOf(err))
	}
	return okResponse(invoiceWithOptions{
		Invoice:        toInvoiceView(result.Invoice),
		PaymentOptions: result.Options,
	}), ""
}

func (b *Bus) handleCancelInvoice(session *Session, env envelope) (interface{}, string) {
	if !session.Authenticated() {
		return errResponse("Unauthorized: API key required"), string(store.KindUnauthorized)
	}
	if err := b.invoices.Cancel(context.Background(), env.UID, session.AccountID()); err != nil {
		return errResponse(err.Error()), string(store.KindOf(err))
	}
	return okResponse(nil), ""
}

func (b *Bus) handleConvertPrice(env envelope) (interface{}, string) {
	quoteValue, err := parseQuoteValue(env.QuoteValue)
	if err != nil {
		return errResponse("Invalid message format"), string(store.KindInvalidMessage)
	}

	result, err := b.converter.Convert(env.QuoteCurrency, env.BaseCurrency, quoteValue)
	if err != nil {
		return errResponse(err.Error()), string(store.KindOf(err))
	}
	return okResponse(result), ""
}

// Publish implements events.Sink: it fans an event out to every session
// subscribed to its topic, per spec §4.8's fan-out rule. A write failure
// on any session disconnects only that session.
func (b *Bus) Publish(event events.PaymentConfirmed) {
	if b.metrics != nil {
		b.metrics.ConfirmedPayments.Inc()
	}

	sub := store.Subscription{Type: "invoice", ID: event.Payload.Invoice.UID}
	subscribers := b.registry.SubscribersOf(sub)
	if len(subscribers) == 0 {
		return
	}

	encoded, err := json.Marshal(event)
	if err != nil {
		b.log.Errorf("encoding %s event failed: %v", event.Topic, err)
		return
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, id := range subscribers {
		session, ok := b.sessions[id]
		if !ok {
			continue
		}
		session.send(encoded)
	}

	if b.metrics != nil {
		b.metrics.EventsPublished.WithLabelValues(event.Topic).Add(float64(len(subscribers)))
	}
}
