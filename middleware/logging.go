package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"tripplanner-backend/utils"
)

// RequestLogger logs every request with its status, duration and caller.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		c.Next()

		attrs := []any{
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if actor, ok := utils.GetCurrentActor(c); ok {
			attrs = append(attrs, "user_id", actor.UserID)
		}

		switch status := c.Writer.Status(); {
		case status >= 500:
			slog.Error("Request failed", attrs...)
		case status >= 400:
			slog.Warn("Request rejected", attrs...)
		default:
			slog.Info("Request handled", attrs...)
		}
	}
}
