package textgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/flopayments/recongen/config"
)

const (
	defaultTimeout = 30 * time.Second
	maxRetries     = 3
)

// Client calls the remote text service in batches. Requests are idempotent
// (same prompt, same text), so transient failures are retried; after the
// retry budget the client degrades to the local Fallback and flags the
// batch, because free text must never stall invariant-checking work.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
	fallback Fallback
}

func NewClient(endpoint, apiKey string) *Client {
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		http:     &http.Client{Timeout: defaultTimeout},
	}
}

func (c *Client) InvoiceTexts(ctx context.Context, reqs []InvoiceTextRequest) ([]InvoiceText, error) {
	var out []InvoiceText
	if err := c.post(ctx, "/v1/invoice-texts", reqs, &out); err != nil {
		config.LogError(config.GetLogger(), "textgen", "InvoiceTexts", "degrading to fallback", len(reqs), err)
		return c.fallback.InvoiceTexts(ctx, reqs)
	}
	if len(out) != len(reqs) {
		config.LogError(config.GetLogger(), "textgen", "InvoiceTexts", "short response, degrading to fallback", len(out),
			fmt.Errorf("got %d texts for %d requests", len(out), len(reqs)))
		return c.fallback.InvoiceTexts(ctx, reqs)
	}
	return out, nil
}

func (c *Client) PaymentTexts(ctx context.Context, reqs []PaymentTextRequest) ([]PaymentText, error) {
	var out []PaymentText
	if err := c.post(ctx, "/v1/payment-texts", reqs, &out); err != nil {
		config.LogError(config.GetLogger(), "textgen", "PaymentTexts", "degrading to fallback", len(reqs), err)
		return c.fallback.PaymentTexts(ctx, reqs)
	}
	if len(out) != len(reqs) {
		config.LogError(config.GetLogger(), "textgen", "PaymentTexts", "short response, degrading to fallback", len(out),
			fmt.Errorf("got %d texts for %d requests", len(out), len(reqs)))
		return c.fallback.PaymentTexts(ctx, reqs)
	}
	return out, nil
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * 500 * time.Millisecond):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode >= 500 {
			resp.Body.Close()
			lastErr = fmt.Errorf("text service returned %d", resp.StatusCode)
			continue
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return fmt.Errorf("text service returned %d", resp.StatusCode)
		}
		err = json.NewDecoder(resp.Body).Decode(out)
		resp.Body.Close()
		return err
	}
	return lastErr
}

// FromEnv returns the HTTP client when an endpoint is configured, otherwise
// the deterministic local fallback.
func FromEnv() Generator {
	if ep := config.TextServiceEndpoint(); ep != "" {
		return NewClient(ep, config.TextServiceAPIKey())
	}
	return Fallback{}
}
