package notify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
)

// smsPayload is the body posted to the SMS gateway.
type smsPayload struct {
	From string `json:"from"`
	To   string `json:"to"`
	Body string `json:"body"`
}

// WebhookSender posts SMS messages as JSON to an HTTP gateway.
type WebhookSender struct {
	url    string
	from   string
	client *http.Client
}

func NewWebhookSender(url, from string, client *http.Client) *WebhookSender {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &WebhookSender{url: url, from: from, client: client}
}

func (s *WebhookSender) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return ErrInvalidRecipient
	}

	body, err := json.Marshal(smsPayload{From: s.from, To: msg.To, Body: msg.Body})
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return wrapSend("sms", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return wrapSend("sms", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return wrapSend("sms", fmt.Errorf("gateway returned %d: %s", resp.StatusCode, bytes.TrimSpace(snippet)))
	}
	return nil
}
