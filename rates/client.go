package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Source supplies a USD-anchored quote table: for each requested currency
// code, how many units of that currency one USD buys.
type Source interface {
	PerUSD(ctx context.Context, codes ...string) (map[string]float64, error)
}

// Client queries a hosted rate endpoint that returns per-USD quotes as
// numeric strings, keyed by currency code.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a rate-source client. The API key is sent as a query
// parameter on every request.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// liveResponse is the wire shape of the hosted quote table.
type liveResponse struct {
	Base  string            `json:"base"`
	Rates map[string]string `json:"rates"`
}

// PerUSD fetches the per-USD quote for each requested code. Any missing,
// non-numeric, non-finite, or non-positive entry fails the whole lookup;
// a bad rate must never be papered over with a default.
func (c *Client) PerUSD(ctx context.Context, codes ...string) (map[string]float64, error) {
	if len(codes) == 0 {
		return nil, fmt.Errorf("no currency codes requested")
	}

	params := url.Values{}
	params.Set("access_key", c.apiKey)
	params.Set("currencies", strings.Join(codes, ","))

	apiURL := fmt.Sprintf("%s/live?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("rate source error (status %d): %s", resp.StatusCode, string(body))
	}

	var live liveResponse
	if err := json.NewDecoder(resp.Body).Decode(&live); err != nil {
		return nil, fmt.Errorf("decode rate response: %w", err)
	}

	out := make(map[string]float64, len(codes))
	for _, code := range codes {
		raw, ok := live.Rates[code]
		if !ok {
			return nil, fmt.Errorf("rate source returned no quote for %s", code)
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("parse quote for %s: %w", code, err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return nil, fmt.Errorf("rate source returned unusable quote %q for %s", raw, code)
		}
		out[code] = v
	}
	return out, nil
}
