package handlers

import (
	"context"
	"net/http"
	"time"

	"bhutantours/services/notification"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DebugHandler exposes development-only diagnostics.
type DebugHandler struct {
	Mailer     notification.Mailer
	Production bool
	Timeout    time.Duration
}

// NewDebugHandler creates a new DebugHandler.
func NewDebugHandler(m notification.Mailer, production bool, timeout time.Duration) *DebugHandler {
	return &DebugHandler{Mailer: m, Production: production, Timeout: timeout}
}

// SendTestEmailHandler sends a fixed message to check mail delivery end to end.
func (h *DebugHandler) SendTestEmailHandler(c *gin.Context) {
	if h.Production {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}
	var req struct {
		To string `json:"to" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	timeout := h.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
	defer cancel()

	res, err := h.Mailer.Send(ctx, notification.Email{
		To:      req.To,
		Subject: "Bhutan Tours test email",
		Text:    "Mail delivery is working.",
		HTML:    "<p>Mail delivery is working.</p>",
	})
	if err != nil {
		getLogger(c).Warn("Test email failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to send test email", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Test email sent", "provider": res.Provider, "messageId": res.MessageID})
}
