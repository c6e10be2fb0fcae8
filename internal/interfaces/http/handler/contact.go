package handler

import (
	"strconv"

	contactapp "github.com/fixmarket/backend/internal/application/contact"
	"github.com/fixmarket/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// ContactHandler serves the callback queue and support card endpoints
type ContactHandler struct {
	BaseHandler
	contacts *contactapp.Service
}

// NewContactHandler creates a new ContactHandler
func NewContactHandler(contacts *contactapp.Service) *ContactHandler {
	return &ContactHandler{contacts: contacts}
}

// Submit accepts a phone callback request from the authenticated
// participant
// POST /api/v1/contact-requests
func (h *ContactHandler) Submit(c *gin.Context) {
	var req contactapp.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	req.RequesterID = middleware.GetParticipantID(c)

	resp, err := h.contacts.Submit(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Support returns the static support contact card
// GET /api/v1/support
func (h *ContactHandler) Support(c *gin.Context) {
	h.Success(c, h.contacts.Support(c.Request.Context()))
}

// ListNew returns the open triage backlog
// GET /api/v1/operator/contact-requests/new
func (h *ContactHandler) ListNew(c *gin.Context) {
	requests, err := h.contacts.ListNew(c.Request.Context(), middleware.GetParticipantID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, requests)
}

// ListDone returns the most recently worked-off requests
// GET /api/v1/operator/contact-requests/done
func (h *ContactHandler) ListDone(c *gin.Context) {
	requests, err := h.contacts.ListDone(c.Request.Context(), middleware.GetParticipantID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, requests)
}

// MarkDone moves a request to done
// POST /api/v1/operator/contact-requests/:id/done
func (h *ContactHandler) MarkDone(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		h.BadRequest(c, "Invalid request ID")
		return
	}

	resp, err := h.contacts.MarkDone(c.Request.Context(), middleware.GetParticipantID(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
