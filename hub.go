// Package hub wires together the payments event hub's subsystems:
// PriceCache, Converter, CoinCatalog, AddressBook, PaymentOptionEngine,
// InvoiceService, SubscriptionRegistry, SessionBus, ConfirmationPipeline
// and PriceUpdater. Lifecycle follows the teacher's top-level
// Start/Stop-with-atomic-flags convention.
package hub

import (
	"context"
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/anypayx/hub/internal/addressbook"
	"github.com/anypayx/hub/internal/coincatalog"
	"github.com/anypayx/hub/internal/confirmation"
	"github.com/anypayx/hub/internal/convert"
	"github.com/anypayx/hub/internal/invoices"
	"github.com/anypayx/hub/internal/metrics"
	"github.com/anypayx/hub/internal/paymentoptions"
	"github.com/anypayx/hub/internal/pricecache"
	"github.com/anypayx/hub/internal/priceupdater"
	"github.com/anypayx/hub/internal/sessionbus"
	"github.com/anypayx/hub/internal/store"
	"github.com/anypayx/hub/internal/subscription"
)

// Hub is the top-level orchestrator: it owns every subsystem and the
// listeners that front them.
type Hub struct {
	started int32
	stopped int32

	cfg Config
	st  store.Store

	cache      *pricecache.Cache
	catalog    *coincatalog.Catalog
	converter  *convert.Converter
	book       *addressbook.Book
	engine     *paymentoptions.Engine
	invoices   *invoices.Service
	registry   *subscription.Registry
	bus        *sessionbus.Bus
	updater    *priceupdater.Updater
	pipeline   *confirmation.Pipeline
	metricsReg *metrics.Metrics

	wsServer      *http.Server
	metricsServer *http.Server
}

// New wires every subsystem together against st, ready to Start.
func New(cfg Config, st store.Store) *Hub {
	cache := pricecache.New(st, prceLog)
	catalog := coincatalog.New(st, catlLog)
	converter := convert.New(cache)
	book := addressbook.New(st, catalog)
	engine := paymentoptions.New(st, catalog, converter, invsLog)
	invoiceSvc := invoices.New(st, book, engine, invsLog)
	registry := subscription.New()

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	bus := sessionbus.New(st, invoiceSvc, cache, converter, registry, m, hubsLog)
	updater := priceupdater.New(cache, prceLog)
	pipeline := confirmation.New(cfg.BlockbookWSURL, cfg.BlockbookHost, cfg.BlockbookAPIKey, st, bus, confLog)

	h := &Hub{
		cfg:        cfg,
		st:         st,
		cache:      cache,
		catalog:    catalog,
		converter:  converter,
		book:       book,
		engine:     engine,
		invoices:   invoiceSvc,
		registry:   registry,
		bus:        bus,
		updater:    updater,
		pipeline:   pipeline,
		metricsReg: m,
	}

	h.wsServer = &http.Server{Addr: cfg.ListenAddr, Handler: bus}
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		h.metricsServer = &http.Server{Addr: cfg.MetricsAddr, Handler: mux}
	}
	return h
}

// Start launches every background task and begins serving WebSocket
// connections. Safe to call once.
func (h *Hub) Start() error {
	if !atomic.CompareAndSwapInt32(&h.started, 0, 1) {
		return nil
	}

	if err := h.catalog.Refresh(context.Background()); err != nil {
		hubsLog.Errorf("initial coin catalog load failed: %v", err)
	}
	h.cache.Refresh(context.Background())

	if err := h.updater.Start(); err != nil {
		return err
	}
	if h.cfg.BlockbookWSURL != "" {
		if err := h.pipeline.Start(); err != nil {
			return err
		}
	}

	if h.metricsServer != nil {
		go func() {
			if err := h.metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				hubsLog.Errorf("metrics server exited: %v", err)
			}
		}()
	}

	go func() {
		hubsLog.Infof("session bus listening on %s", h.cfg.ListenAddr)
		if err := h.wsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			hubsLog.Errorf("session bus server exited: %v", err)
		}
	}()

	return nil
}

// Stop shuts down every subsystem: it stops accepting connections, gives
// the HTTP servers up to the configured grace period to shut down before
// force-closing them, then stops the price updater and the confirmation
// pipeline. Open WebSocket sessions are hijacked connections, which
// http.Server's Shutdown and Close leave open; Stop does not close them.
func (h *Hub) Stop() error {
	if !atomic.CompareAndSwapInt32(&h.stopped, 0, 1) {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := h.wsServer.Shutdown(ctx); err != nil {
		h.wsServer.Close()
	}
	if h.metricsServer != nil {
		if err := h.metricsServer.Shutdown(ctx); err != nil {
			h.metricsServer.Close()
		}
	}

	h.updater.Stop()
	h.pipeline.Stop()
	return nil
}
