// Package convert implements the stateless FX conversion described in
// spec §4.2: direct and inverted lookup against pricecache.Cache, fixed at
// an 8-decimal-digit scale.
package convert

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/anypayx/hub/internal/pricecache"
	"github.com/anypayx/hub/internal/store"
)

// Scale is the fixed number of decimal digits a converted value is rounded
// to, per spec §4.2.
const Scale = 8

// Converter consults a pricecache.Cache; it holds no state of its own.
type Converter struct {
	cache *pricecache.Cache
}

// New returns a Converter backed by cache.
func New(cache *pricecache.Cache) *Converter {
	return &Converter{cache: cache}
}

// Result is the outcome of a successful conversion.
type Result struct {
	BaseValue decimal.Decimal
	Timestamp time.Time
}

// Convert converts quoteValue, denominated in quoteCurrency, into
// baseCurrency. A cached Price{Base, Quote, Value} means "1 Base equals
// Value Quote". It tries the direct (base, quote) rate first, dividing
// quoteValue by that rate, then the inverted (quote, base) rate,
// multiplying by it, and fails with store.KindNoRate if neither is cached.
func (c *Converter) Convert(quoteCurrency, baseCurrency string, quoteValue decimal.Decimal) (Result, error) {
	if price, ok := c.cache.Get(baseCurrency, quoteCurrency); ok {
		rate, err := decimal.NewFromString(price.Value)
		if err != nil {
			return Result{}, store.Wrap(store.KindStoreError, "malformed price value", err)
		}
		if rate.IsZero() {
			return Result{}, store.New(store.KindNoRate, "No price for "+quoteCurrency+" to "+baseCurrency)
		}
		return Result{
			BaseValue: quoteValue.DivRound(rate, Scale+4).Round(Scale),
			Timestamp: time.Now(),
		}, nil
	}

	if price, ok := c.cache.Get(quoteCurrency, baseCurrency); ok {
		rate, err := decimal.NewFromString(price.Value)
		if err != nil {
			return Result{}, store.Wrap(store.KindStoreError, "malformed price value", err)
		}
		return Result{
			BaseValue: quoteValue.Mul(rate).Round(Scale),
			Timestamp: time.Now(),
		}, nil
	}

	return Result{}, store.New(store.KindNoRate, "No price for "+quoteCurrency+" to "+baseCurrency)
}
