/*-------------------------------------------------------------------------
 *
 * webhook.go
 *    Webhook notification sink
 *
 * Posts queued notifications to the ERP's notification hub endpoint.
 *
 * Copyright (c) 2024-2026, Sysafari Logistics <dev@sysafari.com>
 *
 * IDENTIFICATION
 *    sysafari-logistics/internal/notify/webhook.go
 *
 *-------------------------------------------------------------------------
 */

package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

/* WebhookSink delivers notifications over HTTP */
type WebhookSink struct {
	url        string
	httpClient *http.Client
}

/* NewWebhookSink creates a webhook sink. An empty URL disables it. */
func NewWebhookSink(url string, timeout time.Duration) *WebhookSink {
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &WebhookSink{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

/* Enabled reports whether the sink is configured */
func (w *WebhookSink) Enabled() bool {
	return w.url != ""
}

/* Send posts one notification payload */
func (w *WebhookSink) Send(ctx context.Context, recipientID, title, body, correlationID string) error {
	if w.url == "" {
		return fmt.Errorf("webhook URL is not configured")
	}

	payload := map[string]interface{}{
		"recipientId":   recipientID,
		"title":         title,
		"body":          body,
		"correlationId": correlationID,
	}

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("webhook payload serialization failed: error=%w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", w.url, bytes.NewReader(payloadJSON))
	if err != nil {
		return fmt.Errorf("webhook request creation failed: url='%s', error=%w", w.url, err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "SysafariApproval/1.0")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: url='%s', error=%w", w.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook request failed: url='%s', status_code=%d", w.url, resp.StatusCode)
	}

	return nil
}
