package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fixmarket/backend/internal/application/notify"
	"github.com/fixmarket/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookNotifier_Notify(t *testing.T) {
	var received envelope
	var authHeader string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	notifier := NewWebhookNotifier(config.WebhookConfig{
		URL:     srv.URL,
		Token:   "hook-token",
		Timeout: 5 * time.Second,
	}, nil)

	err := notifier.Notify(context.Background(), notify.Notification{
		ParticipantID: "u1",
		Message:       "Order #1 matched.",
		Actions:       []notify.Action{{Label: "Open", Command: "order:1"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer hook-token", authHeader)
	assert.Equal(t, "notification", received.Kind)
	assert.Equal(t, "u1", received.ParticipantID)
	assert.Equal(t, "Order #1 matched.", received.Message)
	require.Len(t, received.Actions, 1)
	assert.Equal(t, "order:1", received.Actions[0].Command)
}

func TestWebhookNotifier_RelayRaw(t *testing.T) {
	var received envelope
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	notifier := NewWebhookNotifier(config.WebhookConfig{URL: srv.URL, Timeout: 5 * time.Second}, nil)

	payload := json.RawMessage(`{"text":"hello"}`)
	err := notifier.RelayRaw(context.Background(), "cust1", "exec1", payload)
	require.NoError(t, err)

	assert.Equal(t, "relay", received.Kind)
	assert.Equal(t, "exec1", received.ParticipantID)
	assert.Equal(t, "cust1", received.FromID)
	assert.JSONEq(t, `{"text":"hello"}`, string(received.Payload))
}

func TestWebhookNotifier_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	notifier := NewWebhookNotifier(config.WebhookConfig{URL: srv.URL, Timeout: 5 * time.Second}, nil)

	err := notifier.Notify(context.Background(), notify.Notification{ParticipantID: "u1", Message: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}
