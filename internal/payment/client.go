// Package payment talks to the external payment provider's
// checkout-session API over HTTP.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Line is one billable entry of a checkout session, projected from a
// cart item at checkout time.
type Line struct {
	Quantity           int32    `json:"quantity"`
	UnitAmount         int64    `json:"unit_amount"`
	Currency           string   `json:"currency"`
	ProductName        string   `json:"product_name"`
	ProductDescription string   `json:"product_description,omitempty"`
	ProductImages      []string `json:"product_images"`
}

// RedirectURLs is where the provider sends the shopper afterwards.
type RedirectURLs struct {
	SuccessURL string `json:"success_url"`
	CancelURL  string `json:"cancel_url"`
}

// Session is the provider's handle for a created checkout session. URL
// may be empty; the provider does not always return one.
type Session struct {
	ID  string `json:"id"`
	URL string `json:"url,omitempty"`
}

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

type createSessionRequest struct {
	Lines    []Line            `json:"line_items"`
	Redirect RedirectURLs      `json:"redirect_urls"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// CreateSession asks the provider for a new checkout session. Each call
// carries a fresh idempotency key; the caller decides whether to retry.
func (c *Client) CreateSession(ctx context.Context, lines []Line, urls RedirectURLs, metadata map[string]string) (*Session, error) {
	body, err := json.Marshal(createSessionRequest{
		Lines:    lines,
		Redirect: urls,
		Metadata: metadata,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/checkout/sessions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build session request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Idempotency-Key", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("payment provider request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("payment provider returned %d: %s", resp.StatusCode, msg)
	}

	var session Session
	if e2 := json.NewDecoder(resp.Body).Decode(&session); e2 != nil {
		return nil, fmt.Errorf("failed to decode session response: %w", e2)
	}
	if session.ID == "" {
		return nil, fmt.Errorf("payment provider returned a session without an id")
	}

	return &session, nil
}
