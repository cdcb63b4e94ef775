package paymentoptions

import (
	"fmt"
	"os"

	"github.com/anypayx/hub/internal/chains"
)

const defaultBaseURL = "https://api.anypayx.com"

// ComputeURI builds the payment-option URI described in spec §6.4:
// "<protocol>:?r=<base_url>/r/<uid>", protocol chosen from the closed
// per-currency table, base_url read from the BASE_URL environment
// variable.
func ComputeURI(currency, uid string) string {
	protocol := chains.URIProtocol(currency)
	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return fmt.Sprintf("%s:?r=%s/r/%s", protocol, baseURL, uid)
}
