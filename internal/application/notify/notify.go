// Package notify carries outbound notifications from the core to the
// transport collaborator. Services queue notifications while mutating
// state and dispatch them only after the mutation commits, so a slow or
// failing delivery never stalls another participant's request.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
)

// Action is a suggested follow-up the transport may render next to a
// notification (as a button, quick reply, or plain text).
type Action struct {
	Label   string `json:"label"`
	Command string `json:"command"`
}

// Notification is a message addressed to one participant
type Notification struct {
	ParticipantID string   `json:"participant_id"`
	Message       string   `json:"message"`
	Actions       []Action `json:"actions,omitempty"`
}

// Transport is the outbound collaborator contract. Delivery is
// best-effort: failures are returned as errors, reported back to the
// sender where relevant, and never undo the state change that produced
// the message.
type Transport interface {
	// Notify delivers a notification to a participant
	Notify(ctx context.Context, n Notification) error

	// RelayRaw forwards arbitrary message content unchanged between two
	// relay participants
	RelayRaw(ctx context.Context, fromID, toID string, payload json.RawMessage) error
}

// DeliveryError reports a failed best-effort delivery
type DeliveryError struct {
	ParticipantID string
	Err           error
}

// Error implements the error interface
func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivery to participant %s failed: %v", e.ParticipantID, e.Err)
}

// Unwrap returns the underlying transport error
func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// Queue collects notifications produced during one operation
type Queue struct {
	pending []Notification
}

// Add queues a notification
func (q *Queue) Add(participantID, message string, actions ...Action) {
	q.pending = append(q.pending, Notification{
		ParticipantID: participantID,
		Message:       message,
		Actions:       actions,
	})
}

// Len returns the number of queued notifications
func (q *Queue) Len() int {
	return len(q.pending)
}
