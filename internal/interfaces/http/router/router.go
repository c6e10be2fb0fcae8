// Package router wires the HTTP surface: middleware chain, public
// endpoints, authenticated participant endpoints and the operator
// panel.
package router

import (
	"net/http"

	"github.com/fixmarket/backend/internal/domain/identity"
	"github.com/fixmarket/backend/internal/infrastructure/auth"
	"github.com/fixmarket/backend/internal/infrastructure/config"
	"github.com/fixmarket/backend/internal/infrastructure/logger"
	"github.com/fixmarket/backend/internal/interfaces/http/handler"
	"github.com/fixmarket/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Deps carries everything the router needs
type Deps struct {
	Config       *config.Config
	Logger       *zap.Logger
	JWT          *auth.JWTService
	Operators    identity.OperatorDirectory
	Sessions     *handler.SessionHandler
	Participants *handler.ParticipantHandler
	Orders       *handler.OrderHandler
	Relay        *handler.RelayHandler
	Contacts     *handler.ContactHandler
}

// New builds the gin engine with all routes registered
func New(deps Deps) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(deps.Logger),
		logger.Recovery(deps.Logger),
	)
	if len(deps.Config.HTTP.TrustedProxies) > 0 {
		_ = engine.SetTrustedProxies(deps.Config.HTTP.TrustedProxies)
	}
	if deps.Config.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(
			deps.Config.HTTP.RateLimitRequests,
			deps.Config.HTTP.RateLimitWindow,
		)
		engine.Use(middleware.RateLimit(limiter))
	}

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := engine.Group("/api/v1")
	api.POST("/sessions", deps.Sessions.Open)

	authed := api.Group("")
	authed.Use(middleware.JWTAuth(deps.JWT))
	{
		authed.GET("/me", deps.Participants.Me)
		authed.PUT("/me/role", deps.Participants.SwitchRole)
		authed.PUT("/me/availability", deps.Participants.SetAvailability)

		authed.POST("/orders", deps.Orders.Create)
		authed.GET("/orders/open", deps.Orders.OpenFeed)
		authed.GET("/orders/mine", deps.Orders.MyOffers)
		authed.GET("/orders/:id", deps.Orders.Get)
		authed.POST("/orders/:id/attachments", deps.Orders.AddAttachment)
		authed.POST("/orders/:id/bids", deps.Orders.PlaceBid)
		authed.POST("/orders/:id/selection", deps.Orders.SelectBid)
		authed.POST("/orders/:id/close", deps.Orders.Close)

		authed.POST("/relay/messages", deps.Relay.Send)
		authed.GET("/relay/session", deps.Relay.Status)
		authed.DELETE("/relay/session", deps.Relay.End)
		authed.POST("/relay/reveal", deps.Relay.RequestReveal)

		authed.POST("/contact-requests", deps.Contacts.Submit)
		authed.GET("/support", deps.Contacts.Support)
	}

	operator := authed.Group("/operator")
	operator.Use(middleware.OperatorOnly(deps.Operators))
	{
		operator.GET("/relay/pairs", deps.Relay.ActivePairs)
		operator.POST("/orders/:id/reveal", deps.Relay.OverrideReveal)
		operator.GET("/contact-requests/new", deps.Contacts.ListNew)
		operator.GET("/contact-requests/done", deps.Contacts.ListDone)
		operator.POST("/contact-requests/:id/done", deps.Contacts.MarkDone)
	}

	return engine
}
