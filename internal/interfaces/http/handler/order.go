package handler

import (
	"strconv"

	orderapp "github.com/fixmarket/backend/internal/application/order"
	"github.com/fixmarket/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// OrderHandler serves the order lifecycle endpoints
type OrderHandler struct {
	BaseHandler
	orders *orderapp.Service
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orders *orderapp.Service) *OrderHandler {
	return &OrderHandler{orders: orders}
}

func orderIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// Create posts a new order for the authenticated customer
// POST /api/v1/orders
func (h *OrderHandler) Create(c *gin.Context) {
	var req orderapp.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	req.CustomerID = middleware.GetParticipantID(c)

	resp, err := h.orders.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Get returns one order
// GET /api/v1/orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := orderIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	resp, err := h.orders.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// OpenFeed lists all open orders for executors to browse
// GET /api/v1/orders/open
func (h *OrderHandler) OpenFeed(c *gin.Context) {
	feed, err := h.orders.OpenFeed(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, feed)
}

// MyOffers shows the authenticated customer's open order with its bids
// GET /api/v1/orders/mine
func (h *OrderHandler) MyOffers(c *gin.Context) {
	offers, err := h.orders.CustomerOffers(c.Request.Context(), middleware.GetParticipantID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, offers)
}

// AddAttachment records one more attachment on an open order
// POST /api/v1/orders/:id/attachments
func (h *OrderHandler) AddAttachment(c *gin.Context) {
	id, ok := orderIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	resp, err := h.orders.AddAttachment(c.Request.Context(), id, middleware.GetParticipantID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// PlaceBid records the authenticated executor's net price on an order
// POST /api/v1/orders/:id/bids
func (h *OrderHandler) PlaceBid(c *gin.Context) {
	id, ok := orderIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	var req orderapp.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	req.ExecutorID = middleware.GetParticipantID(c)

	quote, err := h.orders.PlaceBid(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, quote)
}

// SelectBid matches the order with the chosen executor
// POST /api/v1/orders/:id/selection
func (h *OrderHandler) SelectBid(c *gin.Context) {
	id, ok := orderIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	var req orderapp.SelectBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	req.CustomerID = middleware.GetParticipantID(c)

	resp, err := h.orders.SelectBid(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Close moves the order to its terminal state
// POST /api/v1/orders/:id/close
func (h *OrderHandler) Close(c *gin.Context) {
	id, ok := orderIDParam(c)
	if !ok {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	resp, err := h.orders.Close(c.Request.Context(), id, middleware.GetParticipantID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
