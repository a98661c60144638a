package middleware

import (
	"net/http"

	"bhutantours/models"
	"bhutantours/utils"

	"github.com/gin-gonic/gin"
)

// RequireRole admits only callers whose token carries one of roles. It must
// run after AuthMiddleware.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(CtxRole)
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		utils.JSONErrorCode(c, http.StatusForbidden, "Insufficient permissions", "FORBIDDEN")
	}
}

// AdminOnly is RequireRole(models.RoleAdmin).
func AdminOnly() gin.HandlerFunc {
	return RequireRole(models.RoleAdmin)
}
