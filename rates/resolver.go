package rates

import (
	"context"
	"fmt"
	"math"
)

// RateUnavailableError means neither the direct nor the inverse lookup for
// a pair produced a usable rate. The calculation that needed it must fail;
// defaulting the rate would silently corrupt position sizing.
type RateUnavailableError struct {
	Base  string
	Quote string
	Err   error
}

func (e *RateUnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("rate unavailable for %s/%s: %v", e.Base, e.Quote, e.Err)
	}
	return fmt.Sprintf("rate unavailable for %s/%s", e.Base, e.Quote)
}

func (e *RateUnavailableError) Unwrap() error { return e.Err }

// Resolver turns a USD-anchored quote table into quote-per-base rates for
// arbitrary pairs. It holds no state and caches nothing; every Resolve call
// reads the source fresh.
type Resolver struct {
	source Source
}

func NewResolver(source Source) *Resolver {
	return &Resolver{source: source}
}

// Resolve returns how many units of quote one unit of base buys.
//
// Identity pairs resolve to 1 without touching the source. Otherwise the
// direct derivation is attempted first; if it fails, the reciprocal pair is
// derived and inverted. Both failing yields RateUnavailableError.
func (r *Resolver) Resolve(ctx context.Context, base, quote string) (float64, error) {
	if base == quote {
		return 1, nil
	}

	direct, err := r.derive(ctx, base, quote)
	if err == nil {
		return direct, nil
	}
	firstErr := err

	inverse, err := r.derive(ctx, quote, base)
	if err == nil {
		return 1 / inverse, nil
	}

	return 0, &RateUnavailableError{Base: base, Quote: quote, Err: firstErr}
}

// derive computes base→quote from per-USD quotes:
//
//	base == USD:  perUSD[quote]
//	quote == USD: 1 / perUSD[base]
//	cross:        perUSD[quote] / perUSD[base]
func (r *Resolver) derive(ctx context.Context, base, quote string) (float64, error) {
	switch {
	case base == "USD":
		table, err := r.source.PerUSD(ctx, quote)
		if err != nil {
			return 0, err
		}
		return checkRate(table[quote])

	case quote == "USD":
		table, err := r.source.PerUSD(ctx, base)
		if err != nil {
			return 0, err
		}
		perBase, err := checkRate(table[base])
		if err != nil {
			return 0, err
		}
		return 1 / perBase, nil

	default:
		table, err := r.source.PerUSD(ctx, base, quote)
		if err != nil {
			return 0, err
		}
		perBase, err := checkRate(table[base])
		if err != nil {
			return 0, err
		}
		perQuote, err := checkRate(table[quote])
		if err != nil {
			return 0, err
		}
		return perQuote / perBase, nil
	}
}

func checkRate(v float64) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, fmt.Errorf("unusable rate %v", v)
	}
	return v, nil
}
