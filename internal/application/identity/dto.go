package identity

import "github.com/fixmarket/backend/internal/domain/identity"

// ParticipantResponse is the outward view of a participant
type ParticipantResponse struct {
	ID           string `json:"id"`
	Handle       string `json:"handle,omitempty"`
	DisplayName  string `json:"display_name"`
	Role         string `json:"role"`
	Availability string `json:"availability,omitempty"`
}

// ToParticipantResponse converts a participant to its response form.
// The role shown is the effective role after allow-list re-validation.
func ToParticipantResponse(p *identity.Participant, ops identity.OperatorDirectory) ParticipantResponse {
	return ParticipantResponse{
		ID:           p.ID,
		Handle:       p.Handle,
		DisplayName:  p.DisplayName,
		Role:         p.EffectiveRole(ops).String(),
		Availability: p.Availability,
	}
}
