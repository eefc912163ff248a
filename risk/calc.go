package risk

import (
	"context"
	"math"
	"strings"

	"github.com/pipdeck/pipdeck/instrument"
)

// Request is one position-sizing question: how many lots can be opened so
// that a stop-loss StopPips away risks RiskPercent of the balance?
type Request struct {
	AccountCurrency string
	Instrument      string
	Balance         float64
	RiskPercent     float64 // percent, (0, 100]
	StopPips        float64
}

// Result carries the three output figures, all denominated in Currency.
type Result struct {
	RiskAmount     float64
	PipValuePerLot float64
	PositionLots   float64
	Currency       string
}

// RateResolver supplies quote-per-base conversion rates.
type RateResolver interface {
	Resolve(ctx context.Context, base, quote string) (float64, error)
}

// Calculate sizes a position. All arithmetic is float64; rounding for
// display is the caller's job.
//
// Input validation runs before the symbol is touched, and the symbol is
// validated before any rate lookup, so a malformed request never generates
// remote traffic. A failed rate lookup fails the whole calculation; there
// is no retry and no fallback rate.
func Calculate(ctx context.Context, rates RateResolver, req Request) (Result, error) {
	if err := validate(req); err != nil {
		return Result{}, err
	}

	sym, err := instrument.Normalize(req.Instrument)
	if err != nil {
		return Result{}, err
	}

	pipSize := instrument.PipSizeFor(sym)
	contractSize := instrument.ContractSizeFor(sym)
	account := strings.ToUpper(strings.TrimSpace(req.AccountCurrency))

	riskAmount := req.Balance * (req.RiskPercent / 100)

	quoteToAccount := 1.0
	if account != sym.Quote() {
		quoteToAccount, err = rates.Resolve(ctx, sym.Quote(), account)
		if err != nil {
			return Result{}, err
		}
	}

	pipValuePerLot := pipSize * quoteToAccount * contractSize

	riskPerLot := req.StopPips * pipValuePerLot
	if math.IsNaN(riskPerLot) || math.IsInf(riskPerLot, 0) || riskPerLot <= 0 {
		return Result{}, &InvalidCalculationError{Instrument: string(sym), RiskPerLot: riskPerLot}
	}

	return Result{
		RiskAmount:     riskAmount,
		PipValuePerLot: pipValuePerLot,
		PositionLots:   riskAmount / riskPerLot,
		Currency:       account,
	}, nil
}

func validate(req Request) error {
	checks := []struct {
		field string
		value float64
		ok    bool
	}{
		{"balance", req.Balance, finite(req.Balance) && req.Balance > 0},
		{"risk_percent", req.RiskPercent, finite(req.RiskPercent) && req.RiskPercent > 0 && req.RiskPercent <= 100},
		{"stop_pips", req.StopPips, finite(req.StopPips) && req.StopPips > 0},
	}
	for _, c := range checks {
		if !c.ok {
			return &InvalidInputError{Field: c.field, Value: c.value}
		}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
