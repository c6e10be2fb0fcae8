package middleware

import (
	"net/http"

	"github.com/fixmarket/backend/internal/domain/identity"
	"github.com/gin-gonic/gin"
)

// OperatorOnly rejects requests from participants not on the operator
// allow-list. Services behind it still re-check the list; this gate
// keeps the whole operator surface behind one door.
func OperatorOnly(operators identity.OperatorDirectory) gin.HandlerFunc {
	return func(c *gin.Context) {
		participantID := GetParticipantID(c)
		if participantID == "" || !operators.IsOperator(participantID) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "FORBIDDEN",
					"message": "Operator access required",
				},
			})
			return
		}
		c.Next()
	}
}
