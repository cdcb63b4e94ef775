// Package signal mirrors the interrupt-handling package referenced from the
// teacher's root log.go (signal.UseLogger). It centralizes the single
// shutdown channel that main blocks on before calling Hub.Stop, which in
// turn stops the WS listener, PriceUpdater and ConfirmationPipeline.
package signal

import (
	"os"
	"os/signal"
	"sync"
	"syscall"
)

var (
	mu              sync.Mutex
	shutdownChannel = make(chan struct{})
	started         bool
	interruptChannel chan os.Signal
)

// Intercept begins intercepting SIGINT/SIGTERM and arranges for
// ShutdownChannel to be closed on the first one received. Safe to call
// more than once; only the first call has an effect.
func Intercept() {
	mu.Lock()
	defer mu.Unlock()

	if started {
		return
	}
	started = true

	interruptChannel = make(chan os.Signal, 1)
	signal.Notify(interruptChannel, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-interruptChannel
		RequestShutdown()
	}()
}

// RequestShutdown closes the shutdown channel if it has not already been
// closed, waking every goroutine selecting on ShutdownChannel().
func RequestShutdown() {
	mu.Lock()
	defer mu.Unlock()

	select {
	case <-shutdownChannel:
		// Already closed.
	default:
		close(shutdownChannel)
	}
}

// ShutdownChannel returns the channel that is closed once shutdown has
// been requested, either by an OS signal or an explicit RequestShutdown.
func ShutdownChannel() <-chan struct{} {
	return shutdownChannel
}

// Started reports whether Intercept has been called.
func Started() bool {
	mu.Lock()
	defer mu.Unlock()
	return started
}
