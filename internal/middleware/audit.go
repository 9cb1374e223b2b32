package middleware

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/finsight/fraudlens/internal/models"
)

type auditLogger interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// Audit creates a middleware that records audit logs after successful requests.
func Audit(sink auditLogger, action, resource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now().UTC()
		c.Next()

		if c.Writer.Status() >= 400 {
			return
		}

		var userID *string
		if claims, ok := c.Get(ContextUserKey); ok {
			if user, ok := claims.(*models.JWTClaims); ok {
				userID = &user.UserID
			}
		}

		body, _ := json.Marshal(map[string]interface{}{
			"path":    c.FullPath(),
			"method":  c.Request.Method,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).Milliseconds(),
		})

		_ = sink.CreateAuditLog(c.Request.Context(), &models.AuditLog{
			UserID:    userID,
			Action:    action,
			Resource:  resource,
			NewValues: body,
			IPAddress: c.ClientIP(),
			UserAgent: c.GetHeader("User-Agent"),
		})
	}
}
