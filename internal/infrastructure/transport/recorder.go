package transport

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/fixmarket/backend/internal/application/notify"
)

// RelayedMessage is one forwarded relay payload captured by the Recorder
type RelayedMessage struct {
	FromID  string
	ToID    string
	Payload json.RawMessage
}

// Recorder is a test transport that captures deliveries instead of
// sending them. FailFor makes deliveries to specific participants fail.
type Recorder struct {
	mu            sync.Mutex
	Notifications []notify.Notification
	Relayed       []RelayedMessage
	FailFor       map[string]error
}

// NewRecorder creates a new Recorder
func NewRecorder() *Recorder {
	return &Recorder{FailFor: make(map[string]error)}
}

// Notify captures a notification
func (r *Recorder) Notify(ctx context.Context, n notify.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err, ok := r.FailFor[n.ParticipantID]; ok {
		return err
	}
	r.Notifications = append(r.Notifications, n)
	return nil
}

// RelayRaw captures a relay forwarding
func (r *Recorder) RelayRaw(ctx context.Context, fromID, toID string, payload json.RawMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err, ok := r.FailFor[toID]; ok {
		return err
	}
	r.Relayed = append(r.Relayed, RelayedMessage{FromID: fromID, ToID: toID, Payload: payload})
	return nil
}

// MessagesTo returns the captured notifications for one participant
func (r *Recorder) MessagesTo(participantID string) []notify.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []notify.Notification
	for _, n := range r.Notifications {
		if n.ParticipantID == participantID {
			out = append(out, n)
		}
	}
	return out
}

var _ notify.Transport = (*Recorder)(nil)
