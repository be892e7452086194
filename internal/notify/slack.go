// Package notify delivers alerts to the external channel.
//
// DESIGN: One destination, one payload shape. Slack posts the classic
// incoming-webhook attachment; LogOnly is the degraded mode used when no
// webhook is configured, so the engine keeps running and alerts land in the
// local log.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/edgeops/poolwatch/internal/monitoring"
)

// deliverTimeout bounds one webhook POST; the engine blocks on delivery.
const deliverTimeout = 5 * time.Second

// attachment is one Slack message attachment.
type attachment struct {
	Fallback string `json:"fallback"`
	Color    string `json:"color"`
	Title    string `json:"title"`
	Text     string `json:"text"`
	Ts       int64  `json:"ts"`
}

// payload is the incoming-webhook request body.
type payload struct {
	Username    string       `json:"username"`
	IconEmoji   string       `json:"icon_emoji"`
	Attachments []attachment `json:"attachments"`
}

// Slack posts alerts to a Slack-compatible incoming webhook.
type Slack struct {
	webhookURL string
	client     *http.Client
	logger     *monitoring.Logger
}

// NewSlack creates a webhook notifier.
func NewSlack(webhookURL string, logger *monitoring.Logger) *Slack {
	return &Slack{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: deliverTimeout},
		logger:     logger,
	}
}

// Deliver posts one alert. Network errors, timeouts, and non-2xx responses
// are returned as errors; the caller decides what a failure means.
func (s *Slack) Deliver(ctx context.Context, title, body string) error {
	p := payload{
		Username:  "log-watcher",
		IconEmoji: ":rotating_light:",
		Attachments: []attachment{{
			Fallback: title + " - " + body,
			Color:    "danger",
			Title:    title,
			Text:     body,
			Ts:       time.Now().Unix(),
		}},
	}

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	s.logger.Info().Str("title", title).Msg("slack alert sent")
	return nil
}

// LogOnly is the degraded-mode notifier used when no webhook is configured:
// alerts are logged locally and never delivered.
type LogOnly struct {
	logger *monitoring.Logger
}

// NewLogOnly creates a log-only notifier.
func NewLogOnly(logger *monitoring.Logger) *LogOnly {
	return &LogOnly{logger: logger}
}

// Deliver logs the alert and always succeeds.
func (n *LogOnly) Deliver(_ context.Context, title, body string) error {
	n.logger.Warn().
		Str("title", title).
		Str("body", body).
		Msg("webhook not configured, alert logged only")
	return nil
}
