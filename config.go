package hub

import "time"

// Config holds every tunable the hub's top-level orchestrator needs,
// parsed from the command line and environment by cmd/paymenthubd via
// jessevdk/go-flags.
type Config struct {
	ListenAddr string `long:"listenaddr" description:"WebSocket listen address" default:":8080"`

	LogDir   string `long:"logdir" description:"Directory to store log files"`
	LogLevel string `long:"loglevel" description:"Logging level for all subsystems" default:"info"`

	BlockbookWSURL  string `long:"blockbook.wsurl" description:"WebSocket URL of the block-notification provider"`
	BlockbookHost   string `long:"blockbook.host" description:"HTTP host used for the block-by-hash fallback"`
	BlockbookAPIKey string `long:"blockbook.apikey" description:"API key path segment for the block-by-hash fallback"`

	BaseURL string `long:"baseurl" description:"External base URL used to build payment and invoice URIs" default:"https://api.anypayx.com"`

	MetricsAddr string `long:"metricsaddr" description:"Address to serve Prometheus metrics on; empty disables metrics" default:":9090"`

	ShutdownGracePeriod time.Duration `long:"shutdowngraceperiod" description:"How long to wait for the HTTP listeners to shut down before force-closing them" default:"5s"`
}

// DefaultConfig returns a Config populated with the hub's defaults, before
// go-flags overlays any file, environment, or command-line values.
func DefaultConfig() Config {
	return Config{
		ListenAddr:          ":8080",
		LogLevel:            "info",
		BaseURL:             "https://api.anypayx.com",
		MetricsAddr:         ":9090",
		ShutdownGracePeriod: 5 * time.Second,
	}
}
