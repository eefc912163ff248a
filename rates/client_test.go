package rates

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_PerUSD(t *testing.T) {
	t.Parallel()

	var gotKey, gotCurrencies string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.URL.Query().Get("access_key")
		gotCurrencies = r.URL.Query().Get("currencies")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"base":"USD","rates":{"EUR":"0.9172","JPY":"151.33"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key", 5*time.Second)
	table, err := c.PerUSD(context.Background(), "EUR", "JPY")
	require.NoError(t, err)

	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, "EUR,JPY", gotCurrencies)
	assert.InDelta(t, 0.9172, table["EUR"], 1e-9)
	assert.InDelta(t, 151.33, table["JPY"], 1e-9)
}

func TestClient_PerUSD_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    string
		codes   []string
		wantErr string
	}{
		{
			name:    "non-2xx",
			status:  http.StatusForbidden,
			body:    `{"error":"bad key"}`,
			codes:   []string{"EUR"},
			wantErr: "status 403",
		},
		{
			name:    "malformed json",
			status:  http.StatusOK,
			body:    `{"rates": not-json`,
			codes:   []string{"EUR"},
			wantErr: "decode rate response",
		},
		{
			name:    "missing code",
			status:  http.StatusOK,
			body:    `{"base":"USD","rates":{"EUR":"0.9172"}}`,
			codes:   []string{"JPY"},
			wantErr: "no quote for JPY",
		},
		{
			name:    "non-numeric quote",
			status:  http.StatusOK,
			body:    `{"base":"USD","rates":{"EUR":"n/a"}}`,
			codes:   []string{"EUR"},
			wantErr: "parse quote for EUR",
		},
		{
			name:    "non-positive quote",
			status:  http.StatusOK,
			body:    `{"base":"USD","rates":{"EUR":"0"}}`,
			codes:   []string{"EUR"},
			wantErr: "unusable quote",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewClient(srv.URL, "k", time.Second)
			_, err := c.PerUSD(context.Background(), tt.codes...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestClient_PerUSD_NoCodes(t *testing.T) {
	t.Parallel()

	c := NewClient("http://127.0.0.1:0", "k", time.Second)
	_, err := c.PerUSD(context.Background())
	require.Error(t, err)
}
