// Package paymentoptions implements the payment-option engine of spec §4.5:
// given an invoice and an account, derive one payment option per available
// address, converting through convert.Converter and scaling through
// coincatalog.Catalog, in parallel across addresses — mirroring the
// per-address fan-out and WaitGroup-based join the teacher's
// chainntnfs/invoiceregistry-family code uses for concurrent per-item work.
package paymentoptions

import (
	"context"
	"sync"
	"time"

	"github.com/decred/slog"
	"github.com/shopspring/decimal"

	"github.com/anypayx/hub/internal/chains"
	"github.com/anypayx/hub/internal/coincatalog"
	"github.com/anypayx/hub/internal/convert"
	"github.com/anypayx/hub/internal/store"
)

// Expiry is how long a freshly built or refreshed option remains valid,
// per spec §4.5.
const Expiry = 15 * time.Minute

const defaultDenomination = "USD"

// Engine builds and refreshes PaymentOption batches.
type Engine struct {
	st        store.Store
	catalog   *coincatalog.Catalog
	converter *convert.Converter
	log       slog.Logger
}

// New returns an Engine wired to its collaborators.
func New(st store.Store, catalog *coincatalog.Catalog, converter *convert.Converter, log slog.Logger) *Engine {
	return &Engine{st: st, catalog: catalog, converter: converter, log: log}
}

// Build computes one PaymentOption per available address on the account,
// in parallel, then persists the non-empty batch atomically and returns
// the persisted options.
func (e *Engine) Build(ctx context.Context, invoice store.Invoice, account store.Account, addresses []store.Address) ([]store.PaymentOption, error) {
	built := make([]*store.PaymentOption, len(addresses))

	var wg sync.WaitGroup
	for i, addr := range addresses {
		wg.Add(1)
		go func(i int, addr store.Address) {
			defer wg.Done()
			opt, ok := e.buildOne(ctx, invoice, account, addr)
			if ok {
				built[i] = &opt
			}
		}(i, addr)
	}
	wg.Wait()

	options := dedupeFirstWins(built)
	if len(options) == 0 {
		return nil, nil
	}

	persisted, err := e.st.InsertPaymentOptions(ctx, options)
	if err != nil {
		return nil, store.Wrap(store.KindStoreError, "persisting payment options failed", err)
	}
	return persisted, nil
}

// dedupeFirstWins keeps only the first built option per (chain, currency)
// key, preserving the original address order — spec §4.5's tie-break.
func dedupeFirstWins(built []*store.PaymentOption) []store.PaymentOption {
	seen := make(map[string]struct{}, len(built))
	out := make([]store.PaymentOption, 0, len(built))
	for _, opt := range built {
		if opt == nil {
			continue
		}
		key := opt.Chain + ":" + opt.Currency
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, *opt)
	}
	return out
}

// buildOne computes a single payment option for addr. A false second
// return skips the address silently, per spec §4.5's edge cases: missing
// CoinInfo or a NoRate conversion failure.
func (e *Engine) buildOne(ctx context.Context, invoice store.Invoice, account store.Account, addr store.Address) (store.PaymentOption, bool) {
	_, ok := e.catalog.Get(ctx, addr.Currency, addr.Chain)
	if !ok {
		return store.PaymentOption{}, false
	}

	denom := account.Denomination
	if !account.HasDenomination || denom == "" {
		denom = defaultDenomination
	}

	result, err := e.converter.Convert(denom, addr.Currency, decimal.NewFromInt(invoice.Amount))
	if err != nil {
		e.log.Debugf("skipping address %s/%s for invoice %s: %v", addr.Chain, addr.Currency, invoice.UID, err)
		return store.PaymentOption{}, false
	}

	precision := e.catalog.Precision(ctx, addr.Currency, addr.Chain)
	smallestUnit := toSmallestUnit(result.BaseValue, precision)
	fee := applyFeeRate(smallestUnit, chains.FeeRate(addr.Currency))

	now := time.Now()
	return store.PaymentOption{
		InvoiceUID: invoice.UID,
		Chain:      addr.Chain,
		Currency:   addr.Currency,
		Address:    addr.Value,
		Amount:     smallestUnit,
		Fee:        fee,
		Outputs: []store.Output{
			{Address: addr.Value, Amount: smallestUnit},
		},
		URI:       ComputeURI(addr.Currency, invoice.UID),
		CreatedAt: now,
		UpdatedAt: now,
		Expires:   now.Add(Expiry),
	}, true
}

// toSmallestUnit scales a decimal base amount to the integer smallest unit
// at precision digits, truncating toward zero (spec §4.5 step 4).
func toSmallestUnit(baseAmount decimal.Decimal, precision int) int64 {
	scale := decimal.New(1, int32(precision))
	return baseAmount.Mul(scale).Truncate(0).IntPart()
}

// applyFeeRate floors smallestUnit * feeRate to an integer fee.
func applyFeeRate(smallestUnit int64, feeRate float64) int64 {
	fee := decimal.NewFromInt(smallestUnit).Mul(decimal.NewFromFloat(feeRate))
	return fee.Floor().IntPart()
}

// Refresh recomputes amount, fee, outputs[0].amount and advances
// updated_at/expires for an existing option, preserving address and
// created_at, per spec §4.5.
func (e *Engine) Refresh(ctx context.Context, opt store.PaymentOption, invoice store.Invoice, account store.Account) (store.PaymentOption, error) {
	denom := account.Denomination
	if !account.HasDenomination || denom == "" {
		denom = defaultDenomination
	}

	result, err := e.converter.Convert(denom, opt.Currency, decimal.NewFromInt(invoice.Amount))
	if err != nil {
		return store.PaymentOption{}, err
	}

	precision := e.catalog.Precision(ctx, opt.Currency, opt.Chain)
	smallestUnit := toSmallestUnit(result.BaseValue, precision)
	fee := applyFeeRate(smallestUnit, chains.FeeRate(opt.Currency))

	now := time.Now()
	opt.Amount = smallestUnit
	opt.Fee = fee
	opt.Outputs = []store.Output{{Address: opt.Address, Amount: smallestUnit}}
	opt.UpdatedAt = now
	opt.Expires = now.Add(Expiry)
	return opt, nil
}

// IsExpired reports whether opt's expiry has passed. An unparsable expiry
// (the zero time) is treated as expired, matching spec §4.5.
func IsExpired(opt store.PaymentOption) bool {
	if opt.Expires.IsZero() {
		return true
	}
	return opt.Expires.Before(time.Now())
}

// UpdateExpiredOptions refreshes every expired option in options and
// persists the refreshed batch, passing unexpired entries through
// unchanged. Refresh failures are best-effort: the original, unrefreshed
// option is kept and the caller still gets a full set back.
func (e *Engine) UpdateExpiredOptions(ctx context.Context, invoice store.Invoice, options []store.PaymentOption, account store.Account) []store.PaymentOption {
	out := make([]store.PaymentOption, len(options))
	var toPersist []store.PaymentOption

	for i, opt := range options {
		if !IsExpired(opt) {
			out[i] = opt
			continue
		}
		refreshed, err := e.Refresh(ctx, opt, invoice, account)
		if err != nil {
			e.log.Debugf("best-effort refresh failed for %s/%s on invoice %s: %v", opt.Chain, opt.Currency, invoice.UID, err)
			out[i] = opt
			continue
		}
		out[i] = refreshed
		toPersist = append(toPersist, refreshed)
	}

	if len(toPersist) > 0 {
		if _, err := e.st.InsertPaymentOptions(ctx, toPersist); err != nil {
			e.log.Errorf("failed to persist refreshed payment options for invoice %s: %v", invoice.UID, err)
		}
	}
	return out
}
