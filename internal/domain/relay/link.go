package relay

import "time"

// Link is one directed entry of an anonymized relay session. A session
// between A and B over an order is stored as two mirrored entries
// (A -> B and B -> A) so lookup by either side is O(1); both entries
// must be written and removed together.
type Link struct {
	ParticipantID string
	PeerID        string
	OrderID       int64
	EstablishedAt time.Time
}

// NewPair builds the two mirrored entries of a session
func NewPair(a, b string, orderID int64) (Link, Link) {
	now := time.Now()
	return Link{ParticipantID: a, PeerID: b, OrderID: orderID, EstablishedAt: now},
		Link{ParticipantID: b, PeerID: a, OrderID: orderID, EstablishedAt: now}
}
