// Package priceupdater implements the PriceUpdater periodic task of spec
// §4.10: a 60-second tick that refreshes the shared PriceCache, logging
// but never exiting on error, and exiting as soon as it is stopped, without
// a further refresh.
package priceupdater

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/decred/slog"

	"github.com/anypayx/hub/internal/pricecache"
)

// Interval is the tick period between PriceCache refreshes.
const Interval = 60 * time.Second

// Updater owns the background refresh loop.
type Updater struct {
	started int32
	stopped int32

	cache    *pricecache.Cache
	log      slog.Logger
	interval time.Duration

	wg   sync.WaitGroup
	quit chan struct{}
}

// New returns an Updater targeting cache, ticking every Interval.
func New(cache *pricecache.Cache, log slog.Logger) *Updater {
	return newWithInterval(cache, log, Interval)
}

// newWithInterval is the same as New but with a caller-chosen tick period,
// so tests don't have to wait out the real 60-second interval.
func newWithInterval(cache *pricecache.Cache, log slog.Logger, interval time.Duration) *Updater {
	return &Updater{cache: cache, log: log, interval: interval, quit: make(chan struct{})}
}

// Start launches the tick loop in the background. Safe to call once.
func (u *Updater) Start() error {
	if !atomic.CompareAndSwapInt32(&u.started, 0, 1) {
		return nil
	}

	u.wg.Add(1)
	go u.run()
	return nil
}

// Stop signals the tick loop to exit, without waiting for the next tick,
// and waits for it.
func (u *Updater) Stop() error {
	if !atomic.CompareAndSwapInt32(&u.stopped, 0, 1) {
		return nil
	}
	close(u.quit)
	u.wg.Wait()
	return nil
}

func (u *Updater) run() {
	defer u.wg.Done()

	ticker := time.NewTicker(u.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), u.interval)
			u.cache.Refresh(ctx)
			cancel()
		case <-u.quit:
			return
		}
	}
}
