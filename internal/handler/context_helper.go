package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/finsight/fraudlens/internal/middleware"
	"github.com/finsight/fraudlens/internal/models"
)

// claimsFromContext extracts the authenticated user, or nil when the route is
// reached without authentication.
func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, ok := c.Get(middleware.ContextUserKey)
	if !ok {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}
