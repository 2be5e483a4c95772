// Package email sends alert emails via the Resend API.
package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultTimeout = 15 * time.Second

// ResendClient sends transactional email via the Resend HTTP API.
// See https://resend.com/docs/api-reference/emails/send-email.
type ResendClient struct {
	APIKey     string
	BaseURL    string
	From       string
	HTTPClient *http.Client
}

// NewResendClient returns a client that uses the given API key, optional base
// URL, and From address.
func NewResendClient(apiKey, baseURL, from string) *ResendClient {
	if baseURL == "" {
		baseURL = "https://api.resend.com"
	}
	return &ResendClient{
		APIKey:     apiKey,
		BaseURL:    baseURL,
		From:       from,
		HTTPClient: &http.Client{Timeout: defaultTimeout},
	}
}

// Name identifies this channel in preferences and alert history.
func (c *ResendClient) Name() string { return "email" }

// Send delivers one HTML email to the recipient. Returns an error if the API
// key is missing, the request fails, or Resend returns a non-2xx status.
func (c *ResendClient) Send(ctx context.Context, recipient, subject, body string) error {
	if c.APIKey == "" {
		return fmt.Errorf("email: API key not configured")
	}
	payload := map[string]interface{}{
		"from":    c.From,
		"to":      []string{recipient},
		"subject": subject,
		"html":    body,
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/emails", bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("email: request failed status=%d body=%s", resp.StatusCode, string(b))
	}
	return nil
}
