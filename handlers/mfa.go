package handlers

import (
	"net/http"

	"bhutantours/middleware"

	"github.com/gin-gonic/gin"
)

// SetupMFAHandler starts authenticator app enrollment.
func (h *AuthHandler) SetupMFAHandler(c *gin.Context) {
	enr, err := h.Auth.StartEnrollment(c.Request.Context(), c.GetString(middleware.CtxUserID))
	if err != nil {
		writeAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"secret":     enr.Secret,
		"qrCode":     enr.QRCode,
		"otpauthUrl": enr.ProvisioningURI,
		"message":    "Scan QR with authenticator app",
	})
}

// VerifyMFAHandler confirms enrollment with a code from the app.
func (h *AuthHandler) VerifyMFAHandler(c *gin.Context) {
	var req struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ok, err := h.Auth.ConfirmEnrollment(c.Request.Context(), c.GetString(middleware.CtxUserID), req.Code)
	if err != nil {
		writeAuthError(c, err)
		return
	}
	if !ok {
		h.Metrics.AuthEvent("mfa_enroll", "failure")
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid MFA code", "code": "INVALID_MFA_CODE"})
		return
	}
	h.Metrics.AuthEvent("mfa_enroll", "success")
	c.JSON(http.StatusOK, gin.H{"message": "MFA enabled", "mfaEnabled": true})
}

// DisableMFAHandler turns MFA off after a password check.
func (h *AuthHandler) DisableMFAHandler(c *gin.Context) {
	var req struct {
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.Auth.DisableMFA(c.Request.Context(), c.GetString(middleware.CtxUserID), req.Password); err != nil {
		writeAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "MFA disabled", "mfaEnabled": false})
}

// BackupCodesHandler returns a fresh set of backup codes, once.
func (h *AuthHandler) BackupCodesHandler(c *gin.Context) {
	codes, err := h.Auth.GenerateBackupCodes(c.Request.Context(), c.GetString(middleware.CtxUserID))
	if err != nil {
		writeAuthError(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, gin.H{"message": "Backup codes generated successfully", "backupCodes": codes})
}
