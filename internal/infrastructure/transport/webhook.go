// Package transport implements the outbound delivery side of the
// coordinator. The core hands it notifications and relay payloads; this
// package gets them to participants (or, in development, to the log).
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/fixmarket/backend/internal/application/notify"
	"github.com/fixmarket/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// envelope is the wire format posted to the webhook endpoint
type envelope struct {
	Kind          string              `json:"kind"` // notification, relay
	ParticipantID string              `json:"participant_id"`
	Message       string              `json:"message,omitempty"`
	Actions       []notify.Action     `json:"actions,omitempty"`
	FromID        string              `json:"from_id,omitempty"`
	Payload       json.RawMessage     `json:"payload,omitempty"`
	SentAt        time.Time           `json:"sent_at"`
}

// WebhookNotifier delivers notifications by POSTing JSON envelopes to a
// configured endpoint. The downstream bridge (bot, SMS gateway, mail)
// owns the final hop to the participant.
type WebhookNotifier struct {
	url    string
	token  string
	client *http.Client
	logger *zap.Logger
}

// NewWebhookNotifier creates a new WebhookNotifier
func NewWebhookNotifier(cfg config.WebhookConfig, logger *zap.Logger) *WebhookNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookNotifier{
		url:    cfg.URL,
		token:  cfg.Token,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// Notify delivers a notification to a participant
func (w *WebhookNotifier) Notify(ctx context.Context, n notify.Notification) error {
	return w.post(ctx, envelope{
		Kind:          "notification",
		ParticipantID: n.ParticipantID,
		Message:       n.Message,
		Actions:       n.Actions,
		SentAt:        time.Now(),
	})
}

// RelayRaw forwards relay message content unchanged to the recipient
func (w *WebhookNotifier) RelayRaw(ctx context.Context, fromID, toID string, payload json.RawMessage) error {
	return w.post(ctx, envelope{
		Kind:          "relay",
		ParticipantID: toID,
		FromID:        fromID,
		Payload:       payload,
		SentAt:        time.Now(),
	})
}

func (w *WebhookNotifier) post(ctx context.Context, env envelope) error {
	body, err := json.Marshal(env)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if w.token != "" {
		req.Header.Set("Authorization", "Bearer "+w.token)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

var _ notify.Transport = (*WebhookNotifier)(nil)
