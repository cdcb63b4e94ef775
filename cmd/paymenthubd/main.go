// Command paymenthubd runs the payments event hub: the WebSocket session
// bus, the confirmation pipeline and the price updater, wired against a
// store.Store implementation. Entry-point flow follows the teacher's
// daemon main: parse flags, set up logging, install the interrupt
// handler, start the orchestrator, block until shutdown is requested.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	flags "github.com/jessevdk/go-flags"

	"github.com/anypayx/hub"
	"github.com/anypayx/hub/internal/build"
	"github.com/anypayx/hub/internal/signal"
	"github.com/anypayx/hub/internal/store/memstore"

	"github.com/decred/slog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg := hub.DefaultConfig()
	parser := flags.NewParser(&cfg, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			return nil
		}
		return err
	}

	logFile := ""
	if cfg.LogDir != "" {
		if err := os.MkdirAll(cfg.LogDir, 0700); err != nil {
			return fmt.Errorf("creating log directory: %w", err)
		}
		logFile = filepath.Join(cfg.LogDir, "paymenthubd.log")
	}
	if err := build.InitLogRotator(logFile); err != nil {
		return fmt.Errorf("initializing log rotator: %w", err)
	}
	level, ok := slog.LevelFromString(cfg.LogLevel)
	if !ok {
		level = slog.LevelInfo
	}
	hub.SetupLoggers(level)

	signal.Intercept()

	if cfg.BaseURL != "" {
		os.Setenv("BASE_URL", cfg.BaseURL)
	}

	// A real deployment supplies a store.Store implementation that talks
	// to the platform's actual record service (spec §6.5's opaque store
	// contract; its transport is explicitly out of this hub's scope).
	// memstore stands in here so the daemon is runnable out of the box.
	st := memstore.New()

	h := hub.New(cfg, st)
	if err := h.Start(); err != nil {
		return fmt.Errorf("starting hub: %w", err)
	}

	<-signal.ShutdownChannel()

	return h.Stop()
}
