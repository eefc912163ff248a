package risk

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pipdeck/pipdeck/instrument"
	"github.com/pipdeck/pipdeck/rates"
)

type fakeResolver struct {
	rate   float64
	err    error
	calls  int
	lastBQ [2]string
}

func (f *fakeResolver) Resolve(ctx context.Context, base, quote string) (float64, error) {
	f.calls++
	f.lastBQ = [2]string{base, quote}
	return f.rate, f.err
}

func TestCalculate_USDQuoteNoConversion(t *testing.T) {
	t.Parallel()

	fr := &fakeResolver{}
	got, err := Calculate(context.Background(), fr, Request{
		AccountCurrency: "USD",
		Instrument:      "EURUSD",
		Balance:         10000,
		RiskPercent:     1,
		StopPips:        50,
	})
	require.NoError(t, err)

	assert.InDelta(t, 100.0, got.RiskAmount, 1e-9)
	assert.InDelta(t, 10.0, got.PipValuePerLot, 1e-9)
	assert.InDelta(t, 0.20, got.PositionLots, 1e-9)
	assert.Equal(t, "USD", got.Currency)
	assert.Equal(t, 0, fr.calls, "quote == account currency needs no lookup")
}

func TestCalculate_Gold(t *testing.T) {
	t.Parallel()

	fr := &fakeResolver{}
	got, err := Calculate(context.Background(), fr, Request{
		AccountCurrency: "USD",
		Instrument:      "XAUUSD",
		Balance:         5000,
		RiskPercent:     2,
		StopPips:        300,
	})
	require.NoError(t, err)

	assert.InDelta(t, 100.0, got.RiskAmount, 1e-9)
	assert.InDelta(t, 1.0, got.PipValuePerLot, 1e-9)
	assert.InDelta(t, 100.0/300.0, got.PositionLots, 1e-9)
}

func TestCalculate_JPYQuoteConversion(t *testing.T) {
	t.Parallel()

	// JPY quote, USD account: pip value converts at JPY→USD.
	fr := &fakeResolver{rate: 1.0 / 151.33}
	got, err := Calculate(context.Background(), fr, Request{
		AccountCurrency: "USD",
		Instrument:      "USD/JPY",
		Balance:         10000,
		RiskPercent:     1,
		StopPips:        50,
	})
	require.NoError(t, err)

	assert.Equal(t, [2]string{"JPY", "USD"}, fr.lastBQ)
	wantPipValue := 0.01 * (1.0 / 151.33) * 100000
	assert.InDelta(t, wantPipValue, got.PipValuePerLot, 1e-9)
	assert.InDelta(t, 100.0/(50*wantPipValue), got.PositionLots, 1e-9)
}

func TestCalculate_RateUnavailable(t *testing.T) {
	t.Parallel()

	fr := &fakeResolver{err: &rates.RateUnavailableError{Base: "JPY", Quote: "USD"}}
	_, err := Calculate(context.Background(), fr, Request{
		AccountCurrency: "USD",
		Instrument:      "USDJPY",
		Balance:         10000,
		RiskPercent:     1,
		StopPips:        50,
	})
	require.Error(t, err)

	var unavailable *rates.RateUnavailableError
	assert.True(t, errors.As(err, &unavailable))
}

func TestCalculate_InvalidInput(t *testing.T) {
	t.Parallel()

	base := Request{
		AccountCurrency: "USD",
		Instrument:      "EURUSD",
		Balance:         10000,
		RiskPercent:     1,
		StopPips:        50,
	}

	tests := []struct {
		name      string
		mutate    func(*Request)
		wantField string
	}{
		{"zero balance", func(r *Request) { r.Balance = 0 }, "balance"},
		{"negative balance", func(r *Request) { r.Balance = -5 }, "balance"},
		{"nan balance", func(r *Request) { r.Balance = math.NaN() }, "balance"},
		{"zero risk", func(r *Request) { r.RiskPercent = 0 }, "risk_percent"},
		{"risk above 100", func(r *Request) { r.RiskPercent = 101 }, "risk_percent"},
		{"zero stop", func(r *Request) { r.StopPips = 0 }, "stop_pips"},
		{"inf stop", func(r *Request) { r.StopPips = math.Inf(1) }, "stop_pips"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := base
			tt.mutate(&req)

			fr := &fakeResolver{}
			_, err := Calculate(context.Background(), fr, req)
			require.Error(t, err)

			var invalid *InvalidInputError
			require.True(t, errors.As(err, &invalid))
			assert.Equal(t, tt.wantField, invalid.Field)
			assert.Equal(t, 0, fr.calls)
		})
	}
}

func TestCalculate_MalformedSymbolBeforeLookup(t *testing.T) {
	t.Parallel()

	fr := &fakeResolver{}
	_, err := Calculate(context.Background(), fr, Request{
		AccountCurrency: "USD",
		Instrument:      "EURUS",
		Balance:         10000,
		RiskPercent:     1,
		StopPips:        50,
	})
	require.Error(t, err)

	var malformed *instrument.MalformedSymbolError
	require.True(t, errors.As(err, &malformed))
	assert.Equal(t, 0, fr.calls, "symbol must be rejected before any rate lookup")
}

func TestCalculate_DegenerateRate(t *testing.T) {
	t.Parallel()

	fr := &fakeResolver{rate: math.Inf(1)}
	_, err := Calculate(context.Background(), fr, Request{
		AccountCurrency: "USD",
		Instrument:      "USDJPY",
		Balance:         10000,
		RiskPercent:     1,
		StopPips:        50,
	})
	require.Error(t, err)

	var invalid *InvalidCalculationError
	assert.True(t, errors.As(err, &invalid))
}
