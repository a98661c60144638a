package handlers

import (
	"net/http"

	"bhutantours/services/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminHandler encapsulates elevated admin-level operations.
type AdminHandler struct {
	Auth auth.AuthService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(svc auth.AuthService) *AdminHandler {
	return &AdminHandler{Auth: svc}
}

// GetAllUsersHandler returns all users (with sensitive fields excluded).
func (ah *AdminHandler) GetAllUsersHandler(c *gin.Context) {
	users, err := ah.Auth.ListUsers(c.Request.Context())
	if err != nil {
		getLogger(c).Error("Failed to fetch all users", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(users), "data": users})
}
