package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/fixmarket/backend/internal/infrastructure/auth"
	"github.com/gin-gonic/gin"
)

// JWT context keys
const (
	JWTClaimsKey        = "jwt_claims"
	JWTParticipantIDKey = "jwt_participant_id"
	AuthHeaderKey       = "Authorization"
	BearerPrefix        = "Bearer "
)

// JWTAuth validates the participant session token and stores its claims
// in the gin context. Paths listed in skipPaths pass through unchecked.
func JWTAuth(jwtService *auth.JWTService, skipPaths ...string) gin.HandlerFunc {
	skip := make(map[string]bool, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = true
	}

	return func(c *gin.Context) {
		if skip[c.Request.URL.Path] {
			c.Next()
			return
		}

		authHeader := c.GetHeader(AuthHeaderKey)
		if authHeader == "" {
			abortUnauthorized(c, "Missing authorization header")
			return
		}
		if !strings.HasPrefix(authHeader, BearerPrefix) {
			abortUnauthorized(c, "Invalid authorization header format")
			return
		}

		claims, err := jwtService.Validate(strings.TrimPrefix(authHeader, BearerPrefix))
		if err != nil {
			if errors.Is(err, auth.ErrExpiredToken) {
				abortUnauthorized(c, "Token has expired")
				return
			}
			abortUnauthorized(c, "Invalid token")
			return
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(JWTParticipantIDKey, claims.ParticipantID)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "UNAUTHORIZED",
			"message": message,
		},
	})
}

// GetParticipantID returns the authenticated participant's ID, empty if
// the request was not authenticated
func GetParticipantID(c *gin.Context) string {
	return c.GetString(JWTParticipantIDKey)
}
