package hub

import (
	"github.com/decred/slog"

	"github.com/anypayx/hub/internal/build"
)

// replaceableLogger lets every package-level logger be swapped in place
// once the root log writer is ready, without threading a logger through
// every constructor up front.
type replaceableLogger struct {
	slog.Logger
	subsystem string
}

var (
	// hubPkgLoggers tracks every logger created via addHubPkgLogger so
	// SetupLoggers can replace them all once a real backend exists.
	hubPkgLoggers []*replaceableLogger

	addHubPkgLogger = func(subsystem string) *replaceableLogger {
		l := &replaceableLogger{
			Logger:    build.NewSubLogger(subsystem),
			subsystem: subsystem,
		}
		hubPkgLoggers = append(hubPkgLoggers, l)
		return l
	}

	hubsLog = addHubPkgLogger("HUBS") // SessionBus / top-level orchestrator
	prceLog = addHubPkgLogger("PRCE") // PriceCache / Converter / PriceUpdater
	catlLog = addHubPkgLogger("CATL") // CoinCatalog / AddressBook
	invsLog = addHubPkgLogger("INVS") // InvoiceService / PaymentOptionEngine
	subsLog = addHubPkgLogger("SUBS") // SubscriptionRegistry
	confLog = addHubPkgLogger("CONF") // ConfirmationPipeline
)

// SetupLoggers rewires every package-level logger to subsystem into the
// real root backend, once InitLogRotator has been called.
func SetupLoggers(level slog.Level) {
	levels := make(map[string]slog.Logger, len(hubPkgLoggers))
	for _, l := range hubPkgLoggers {
		l.Logger = build.NewSubLogger(l.subsystem)
		levels[l.subsystem] = l.Logger
	}
	build.SetLogLevels(levels, level)
}
