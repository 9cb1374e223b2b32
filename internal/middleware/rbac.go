package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/finsight/fraudlens/internal/models"
	appErrors "github.com/finsight/fraudlens/pkg/errors"
	"github.com/finsight/fraudlens/pkg/response"
)

// RequireRoles enforces role-based access control for routes.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims, ok := claimsValue.(*models.JWTClaims)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		if _, ok := allowed[claims.Role]; ok {
			c.Next()
			return
		}

		response.Error(c, appErrors.ErrForbidden)
		c.Abort()
	}
}
