package contact

import (
	"time"

	"github.com/fixmarket/backend/internal/domain/contact"
)

// SubmitRequest carries a phone callback submission. The requester is
// the authenticated participant.
type SubmitRequest struct {
	RequesterID   string `json:"-"`
	RequesterName string `json:"requester_name"`
	Phone         string `json:"phone" binding:"required,dialable"`
	Source        string `json:"source" binding:"required"`
}

// RequestResponse is the outward view of a contact request
type RequestResponse struct {
	ID            int64     `json:"id"`
	RequesterID   string    `json:"requester_id"`
	RequesterName string    `json:"requester_name,omitempty"`
	Phone         string    `json:"phone"`
	Source        string    `json:"source"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

// SupportCard is the static support contact shown to any participant
type SupportCard struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

// ToRequestResponse converts a contact request to its response form
func ToRequestResponse(r *contact.Request) RequestResponse {
	return RequestResponse{
		ID:            r.ID,
		RequesterID:   r.RequesterID,
		RequesterName: r.RequesterName,
		Phone:         r.Phone,
		Source:        string(r.Source),
		Status:        r.Status.String(),
		CreatedAt:     r.CreatedAt,
	}
}
