package handler

import (
	identityapp "github.com/fixmarket/backend/internal/application/identity"
	"github.com/fixmarket/backend/internal/infrastructure/auth"
	"github.com/gin-gonic/gin"
)

// SessionHandler opens participant sessions. The upstream transport
// (bot bridge, gateway) authenticates the platform identity; this
// endpoint registers or refreshes the participant and hands back a
// bearer token for the rest of the API.
type SessionHandler struct {
	BaseHandler
	identity *identityapp.Service
	jwt      *auth.JWTService
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(identity *identityapp.Service, jwt *auth.JWTService) *SessionHandler {
	return &SessionHandler{identity: identity, jwt: jwt}
}

type openSessionRequest struct {
	ParticipantID string `json:"participant_id" binding:"required"`
	Handle        string `json:"handle"`
	DisplayName   string `json:"display_name"`
}

type openSessionResponse struct {
	Participant *identityapp.ParticipantResponse `json:"participant"`
	Token       *auth.Token                      `json:"session"`
}

// Open registers or refreshes the participant and issues a session token
// POST /api/v1/sessions
func (h *SessionHandler) Open(c *gin.Context) {
	var req openSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	participant, err := h.identity.Ensure(c.Request.Context(), req.ParticipantID, req.Handle, req.DisplayName)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	token, err := h.jwt.Generate(req.ParticipantID, req.Handle)
	if err != nil {
		h.InternalError(c, "Failed to issue session token")
		return
	}

	h.Created(c, openSessionResponse{Participant: participant, Token: token})
}
