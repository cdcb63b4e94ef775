package invoices

import (
	"crypto/rand"

	"github.com/mr-tron/base58"
)

const shortIDLen = 12

// shortID returns a 12-character base58 identifier, per spec §4.6: the
// first 12 characters of 16 random bytes in base58, roughly 10^21
// possible values.
func shortID() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	encoded := base58.Encode(buf)
	if len(encoded) > shortIDLen {
		encoded = encoded[:shortIDLen]
	}
	return encoded, nil
}
