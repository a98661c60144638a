package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const genericResetMessage = "If email exists, reset link will be sent"

// ForgotPasswordHandler always answers the same way so accounts cannot be enumerated.
func (h *AuthHandler) ForgotPasswordHandler(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	res, err := h.Auth.RequestReset(c.Request.Context(), req.Email)
	if err != nil {
		getLogger(c).Error("Password reset request failed", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"message": genericResetMessage})
		return
	}
	h.Metrics.AuthEvent("reset_request", "ok")
	body := gin.H{"message": genericResetMessage}
	if res.ResetURL != "" {
		body["resetUrl"] = res.ResetURL
	}
	c.JSON(http.StatusOK, body)
}

// ResetPasswordHandler redeems a reset token.
func (h *AuthHandler) ResetPasswordHandler(c *gin.Context) {
	var req struct {
		Token       string `json:"token" binding:"required"`
		NewPassword string `json:"newPassword" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.Auth.RedeemReset(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		h.Metrics.AuthEvent("reset_redeem", "failure")
		writeAuthError(c, err)
		return
	}
	h.Metrics.AuthEvent("reset_redeem", "success")
	c.JSON(http.StatusOK, gin.H{"message": "Password reset successful"})
}
