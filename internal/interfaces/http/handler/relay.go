package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	relayapp "github.com/fixmarket/backend/internal/application/relay"
	"github.com/fixmarket/backend/internal/interfaces/http/dto"
	"github.com/fixmarket/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// RelayHandler serves the anonymized relay session endpoints
type RelayHandler struct {
	BaseHandler
	relay   *relayapp.Manager
	reveals *relayapp.RevealService
}

// NewRelayHandler creates a new RelayHandler
func NewRelayHandler(relay *relayapp.Manager, reveals *relayapp.RevealService) *RelayHandler {
	return &RelayHandler{relay: relay, reveals: reveals}
}

type relayMessageRequest struct {
	Payload json.RawMessage `json:"payload" binding:"required"`
}

// Send forwards the sender's message to their session peer. Without an
// active session the message is dropped without error, matching the
// out-of-flow free text behavior.
// POST /api/v1/relay/messages
func (h *RelayHandler) Send(c *gin.Context) {
	var req relayMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	relayed, err := h.relay.Relay(c.Request.Context(), middleware.GetParticipantID(c), req.Payload)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"relayed": relayed})
}

// Status reports whether the participant sits in an active session
// GET /api/v1/relay/session
func (h *RelayHandler) Status(c *gin.Context) {
	active, err := h.relay.Active(c.Request.Context(), middleware.GetParticipantID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"active": active})
}

// End tears down the participant's session and closes its order
// DELETE /api/v1/relay/session
func (h *RelayHandler) End(c *gin.Context) {
	orderID, err := h.relay.End(c.Request.Context(), middleware.GetParticipantID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"order_id": orderID})
}

// RequestReveal records the participant's wish to disclose identities
// POST /api/v1/relay/reveal
func (h *RelayHandler) RequestReveal(c *gin.Context) {
	resp, err := h.reveals.Request(c.Request.Context(), middleware.GetParticipantID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// OverrideReveal grants the reveal on an order by operator decision
// POST /api/v1/operator/orders/:id/reveal
func (h *RelayHandler) OverrideReveal(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || orderID <= 0 {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	resp, err := h.reveals.OperatorOverride(c.Request.Context(), middleware.GetParticipantID(c), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ActivePairs lists the current relay sessions for the operator panel
// GET /api/v1/operator/relay/pairs
func (h *RelayHandler) ActivePairs(c *gin.Context) {
	pairs, err := h.relay.ActivePairs(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(pairs))
}
