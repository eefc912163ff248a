package instrument

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  Symbol
	}{
		{"slash separator", "EUR/USD", "EURUSD"},
		{"lowercase", "eur/usd", "EURUSD"},
		{"already normalized", "EURUSD", "EURUSD"},
		{"metal", "xauusd", "XAUUSD"},
		{"crypto", "BTC/USD", "BTCUSD"},
		{"surrounding whitespace", " gbp/jpy ", "GBPJPY"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Normalize(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	t.Parallel()

	once, err := Normalize("eur/usd")
	require.NoError(t, err)

	twice, err := Normalize(string(once))
	require.NoError(t, err)
	assert.Equal(t, once, twice)
}

func TestNormalize_Malformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{"too short", "EURUS"},
		{"too long", "EURUSDX"},
		{"empty", ""},
		{"separator only", "/"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Normalize(tt.input)
			require.Error(t, err)

			var malformed *MalformedSymbolError
			require.True(t, errors.As(err, &malformed))
			assert.Equal(t, tt.input, malformed.Input)
		})
	}
}

func TestDecompose(t *testing.T) {
	t.Parallel()

	sym, err := Normalize("gbp/nzd")
	require.NoError(t, err)

	assert.Equal(t, "GBP", sym.Base())
	assert.Equal(t, "NZD", sym.Quote())
	assert.Len(t, sym.Base(), 3)
	assert.Len(t, sym.Quote(), 3)
}
