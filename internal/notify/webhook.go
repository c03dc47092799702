package notify

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

// WebhookNotifier POSTs {to, subject, body} JSON to a mail relay endpoint.
type WebhookNotifier struct {
	URL        string
	APIKey     string
	HTTPClient *http.Client
}

// NewWebhookNotifier returns a notifier for url. apiKey, when set, is sent as the Authorization header.
func NewWebhookNotifier(url, apiKey string) *WebhookNotifier {
	return &WebhookNotifier{
		URL:        url,
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: defaultTimeout},
	}
}

type webhookPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Send posts msg to the relay. Any non-2xx status is an error carrying the response body.
func (n *WebhookNotifier) Send(ctx context.Context, msg Message) error {
	if n.URL == "" {
		return fmt.Errorf("webhook: %w", ErrNotConfigured)
	}
	raw, err := json.Marshal(webhookPayload{To: msg.To, Subject: msg.Subject, Body: msg.Body})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.URL, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if n.APIKey != "" {
		req.Header.Set("Authorization", n.APIKey)
	}
	resp, err := n.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("webhook: request failed status=%d body=%s", resp.StatusCode, string(b))
	}
	return nil
}
