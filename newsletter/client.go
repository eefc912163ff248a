// Package newsletter relays signup-form submissions to the third-party
// email-marketing provider. The provider owns list management and
// double-opt-in; this side only forwards the address.
package newsletter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrInvalidEmail rejects addresses that cannot possibly be deliverable.
var ErrInvalidEmail = errors.New("invalid email address")

// Client posts form-encoded subscriptions to the provider's form endpoint.
type Client struct {
	formURL       string
	honeypotField string
	httpClient    *http.Client
}

func NewClient(formURL, honeypotField string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		formURL:       formURL,
		honeypotField: honeypotField,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Subscribe forwards one address. The provider treats any 2xx as accepted;
// everything else is an error for the caller to surface. The honeypot
// field is always sent empty, as a browser would for a human submission.
func (c *Client) Subscribe(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if !plausibleEmail(email) {
		return ErrInvalidEmail
	}

	form := url.Values{}
	form.Set("email", email)
	if c.honeypotField != "" {
		form.Set(c.honeypotField, "")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.formURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("provider rejected subscription (status %d): %s", resp.StatusCode, string(body))
	}
	return nil
}

// plausibleEmail is a shape check, not RFC validation; the provider does
// its own verification.
func plausibleEmail(email string) bool {
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	domain := email[at+1:]
	return strings.Contains(domain, ".") && !strings.ContainsAny(email, " \t\n")
}
