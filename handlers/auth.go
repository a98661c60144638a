package handlers

import (
	"net/http"

	"bhutantours/metrics"
	"bhutantours/middleware"
	"bhutantours/models"
	"bhutantours/services/auth"
	"bhutantours/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthHandler serves /api/auth.
type AuthHandler struct {
	Auth      auth.AuthService
	Transport *SessionTransport
	Metrics   *metrics.Metrics
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc auth.AuthService, transport *SessionTransport, m *metrics.Metrics) *AuthHandler {
	return &AuthHandler{Auth: svc, Transport: transport, Metrics: m}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	MFACode  string `json:"mfaCode"`
}

// RegisterHandler creates an account and signs it in.
func (h *AuthHandler) RegisterHandler(c *gin.Context) {
	var req models.UserRegistrationData
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	sess, err := h.Auth.Register(c.Request.Context(), req)
	if err != nil {
		h.Metrics.AuthEvent("register", "rejected")
		writeAuthError(c, err)
		return
	}
	h.Metrics.AuthEvent("register", "ok")
	body := h.Transport.Attach(c, sess)
	body["message"] = "Registration successful"
	c.JSON(http.StatusCreated, body)
}

// LoginHandler verifies credentials and either emails a code or returns a session.
func (h *AuthHandler) LoginHandler(c *gin.Context) {
	h.login(c, false)
}

// AdminLoginHandler is LoginHandler restricted to the configured admin.
func (h *AuthHandler) AdminLoginHandler(c *gin.Context) {
	h.login(c, true)
}

func (h *AuthHandler) login(c *gin.Context, adminOnly bool) {
	logger := getLogger(c)

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if adminOnly && !h.Auth.IsAdminEmail(req.Email) {
		h.Metrics.AuthEvent("login", "failure")
		writeAuthError(c, auth.ErrInvalidCredentials)
		return
	}

	res, err := h.Auth.Login(c.Request.Context(), req.Email, req.Password, req.MFACode)
	if err != nil {
		h.Metrics.AuthEvent("login", "failure")
		writeAuthError(c, err)
		return
	}
	if res.RequiresMFA {
		h.Metrics.AuthEvent("login", "challenge")
		c.JSON(http.StatusOK, gin.H{
			"requiresMFA": true,
			"method":      res.Method,
			"message":     "OTP sent to registered email",
		})
		return
	}

	h.Metrics.AuthEvent("login", "success")
	logger.Info("Login successful", zap.String("userID", res.Session.User.ID))
	body := h.Transport.Attach(c, res.Session)
	body["message"] = "Login successful"
	c.JSON(http.StatusOK, body)
}

// RefreshTokenHandler issues a new access token from the refresh cookie or body.
func (h *AuthHandler) RefreshTokenHandler(c *gin.Context) {
	token, _ := c.Cookie(utils.RefreshTokenCookie)
	if token == "" {
		var req struct {
			RefreshToken string `json:"refreshToken"`
		}
		_ = c.ShouldBindJSON(&req)
		token = req.RefreshToken
	}
	if token == "" {
		utils.JSONErrorCode(c, http.StatusUnauthorized, "Refresh token missing", "TOKEN_MISSING")
		return
	}

	sess, err := h.Auth.Refresh(c.Request.Context(), token)
	if err != nil {
		h.Metrics.AuthEvent("refresh", "failure")
		writeAuthError(c, err)
		return
	}
	h.Metrics.AuthEvent("refresh", "success")
	body := h.Transport.Attach(c, sess)
	body["message"] = "Token refreshed"
	c.JSON(http.StatusOK, body)
}

// LogoutHandler clears the session cookies. Tokens are stateless and expire on their own.
func (h *AuthHandler) LogoutHandler(c *gin.Context) {
	h.Transport.Clear(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logout successful"})
}

// MeHandler returns the caller's profile.
func (h *AuthHandler) MeHandler(c *gin.Context) {
	user, err := h.Auth.CurrentUser(c.Request.Context(), c.GetString(middleware.CtxUserID))
	if err != nil {
		writeAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// ChangePasswordHandler sets a new password after re-checking the current one.
func (h *AuthHandler) ChangePasswordHandler(c *gin.Context) {
	var req struct {
		CurrentPassword string `json:"currentPassword" binding:"required"`
		NewPassword     string `json:"newPassword" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	err := h.Auth.ChangePassword(c.Request.Context(), c.GetString(middleware.CtxUserID), req.CurrentPassword, req.NewPassword)
	if err != nil {
		writeAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}
