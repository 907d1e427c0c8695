package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"orderdesk/internal/domain"
	"orderdesk/internal/pkg/response"
)

// RequireRole must run after Auth; it relies on the role set there.
func RequireRole(roles ...domain.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := domain.UserRole(c.GetString("role"))
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Insufficient permissions")
		c.Abort()
	}
}

func AdminOnly() gin.HandlerFunc {
	return RequireRole(domain.RoleAdmin)
}
