package handler

import (
	identityapp "github.com/fixmarket/backend/internal/application/identity"
	"github.com/fixmarket/backend/internal/domain/identity"
	"github.com/fixmarket/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// ParticipantHandler serves profile and role operations for the
// authenticated participant
type ParticipantHandler struct {
	BaseHandler
	identity *identityapp.Service
}

// NewParticipantHandler creates a new ParticipantHandler
func NewParticipantHandler(identity *identityapp.Service) *ParticipantHandler {
	return &ParticipantHandler{identity: identity}
}

// Me returns the authenticated participant's profile
// GET /api/v1/me
func (h *ParticipantHandler) Me(c *gin.Context) {
	participantID := middleware.GetParticipantID(c)

	resp, err := h.identity.Get(c.Request.Context(), participantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

type switchRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=CUSTOMER EXECUTOR OPERATOR"`
}

// SwitchRole changes the participant's declared role
// PUT /api/v1/me/role
func (h *ParticipantHandler) SwitchRole(c *gin.Context) {
	var req switchRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.identity.SwitchRole(c.Request.Context(), middleware.GetParticipantID(c), identity.Role(req.Role))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

type availabilityRequest struct {
	Text string `json:"text" binding:"max=500"`
}

// SetAvailability stores the executor's free-text availability note
// PUT /api/v1/me/availability
func (h *ParticipantHandler) SetAvailability(c *gin.Context) {
	var req availabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.identity.SetAvailability(c.Request.Context(), middleware.GetParticipantID(c), req.Text)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
