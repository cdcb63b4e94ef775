// Package chains holds the small closed tables spec §4.3, §4.5 and §6.4
// hang off a currency code: default smallest-unit precision, fee-rate
// family, and payment-URI protocol. These are pure, dependency-free lookup
// tables shared by coincatalog, paymentoptions and their tests.
package chains

// DefaultPrecision returns the smallest-unit precision assumed for a
// currency when the store's CoinInfo does not carry one, per spec §4.3.
func DefaultPrecision(currency string) int {
	switch currency {
	case "BTC", "BSV", "DOGE", "FB":
		return 8
	case "SOL":
		return 9
	case "XRP":
		return 6
	default:
		if isStablecoin(currency) {
			return 6
		}
		if isEVMFamily(currency) {
			return 18
		}
		// No closed-table match; fall back to the EVM default, the
		// most common precision among the chains this hub supports.
		return 18
	}
}

func isStablecoin(currency string) bool {
	switch currency {
	case "USDT", "USDC", "RLUSD", "DAI", "BUSD":
		return true
	}
	return false
}

func isEVMFamily(currency string) bool {
	switch currency {
	case "ETH", "MATIC", "BNB", "AVAX", "ARB", "OP":
		return true
	}
	return false
}

// IsUTXO reports whether currency belongs to the UTXO fee-rate family used
// by spec §4.5 (0.01% fee rate), as opposed to the EVM-and-others family
// (0.1%).
func IsUTXO(currency string) bool {
	switch currency {
	case "BTC", "BSV", "FB", "DOGE":
		return true
	}
	return false
}

// FeeRate returns the default fee rate (as a fraction, e.g. 0.0001 for
// 0.01%) applied to a payment option's smallest-unit amount, per spec §4.5.
func FeeRate(currency string) float64 {
	if IsUTXO(currency) {
		return 0.0001
	}
	return 0.001
}

// uriProtocols is the closed table from spec §6.4.
var uriProtocols = map[string]string{
	"DASH":  "dash",
	"ZEC":   "zcash",
	"BTC":   "bitcoin",
	"LTC":   "litecoin",
	"ETH":   "ethereum",
	"XMR":   "monero",
	"DOGE":  "dogecoin",
	"BCH":   "bitcoincash",
	"XRP":   "ripple",
	"ZEN":   "horizen",
	"SMART": "smartcash",
	"RVN":   "ravencoin",
	"BSV":   "pay",
}

// URIProtocol returns the URI scheme for currency, defaulting to "pay" for
// anything not in the closed table.
func URIProtocol(currency string) string {
	if p, ok := uriProtocols[currency]; ok {
		return p
	}
	return "pay"
}
