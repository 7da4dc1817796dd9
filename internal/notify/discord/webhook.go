package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/podcast-notifier/pkg/logger"
	"github.com/podcast-notifier/pkg/ratelimit"
)

// Sender delivers messages to Discord webhooks
type Sender struct {
	httpClient  *http.Client
	rateLimiter *ratelimit.MultiLimiter
	log         *logger.Logger
}

// NewSender creates a new webhook sender
func NewSender(limiter *ratelimit.MultiLimiter, log *logger.Logger) *Sender {
	return &Sender{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		rateLimiter: limiter,
		log:         log.WithComponent("discord"),
	}
}

// Send serializes the message and issues a single POST to the webhook. Any
// non-success status is an error.
func (s *Sender) Send(ctx context.Context, webhookURL string, msg Message) error {
	if err := s.rateLimiter.Wait(ctx, ratelimit.LimiterDiscord); err != nil {
		return fmt.Errorf("rate limit error: %w", err)
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", webhookURL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("webhook error (status %d): %s", resp.StatusCode, string(body))
	}

	s.log.Debug().Int("status", resp.StatusCode).Msg("Webhook delivered")

	return nil
}
