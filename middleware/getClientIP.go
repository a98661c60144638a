package middleware

import (
	"github.com/gin-gonic/gin"
)

// getClientIP keys rate limits. Forwarding headers are honoured only from
// proxies the engine trusts (see gin.Engine.SetTrustedProxies); otherwise the
// socket peer is used, so a client cannot pick its own bucket.
func getClientIP(c *gin.Context) string {
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return c.Request.RemoteAddr
}
