package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"tripplanner-backend/utils"
)

// AuthRequired validates the Bearer JWT and stores the actor on the
// gin context.
func AuthRequired(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			utils.Unauthorized(c, "Authorization header required")
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			utils.Unauthorized(c, "Invalid authorization header format")
			c.Abort()
			return
		}

		actor, err := utils.ParseToken(strings.TrimSpace(parts[1]), secret)
		if err != nil {
			utils.Unauthorized(c, "Invalid or expired token")
			c.Abort()
			return
		}

		utils.SetCurrentActor(c, actor)
		c.Next()
	}
}
