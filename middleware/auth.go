package middleware

import (
	"errors"
	"net/http"
	"strings"

	"bhutantours/utils"

	"github.com/gin-gonic/gin"
)

// Context keys set by AuthMiddleware.
const (
	CtxUserID = "userID"
	CtxEmail  = "email"
	CtxRole   = "role"
)

// bearerOrCookie prefers the Authorization header and falls back to the
// access token cookie.
func bearerOrCookie(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if v, err := c.Cookie(utils.AccessTokenCookie); err == nil {
		return v
	}
	return ""
}

// AuthMiddleware verifies the access token. An expired token gets 401 with
// code TOKEN_EXPIRED so clients can refresh silently; any other bad token
// gets 403.
func AuthMiddleware(tokens *utils.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerOrCookie(c)
		if tokenString == "" {
			utils.JSONErrorCode(c, http.StatusUnauthorized, "Access token required", "TOKEN_MISSING")
			return
		}

		claims, err := tokens.VerifyAccess(tokenString)
		switch {
		case errors.Is(err, utils.ErrTokenExpired):
			utils.JSONErrorCode(c, http.StatusUnauthorized, "Token expired", "TOKEN_EXPIRED")
			return
		case err != nil:
			utils.JSONErrorCode(c, http.StatusForbidden, "Invalid token", "TOKEN_INVALID")
			return
		}

		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxEmail, claims.Email)
		c.Set(CtxRole, claims.Role)
		c.Next()
	}
}

// OptionalAuthMiddleware sets the caller's identity when a valid access token
// is present and otherwise lets the request through anonymously.
func OptionalAuthMiddleware(tokens *utils.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString := bearerOrCookie(c); tokenString != "" {
			if claims, err := tokens.VerifyAccess(tokenString); err == nil {
				c.Set(CtxUserID, claims.UserID)
				c.Set(CtxEmail, claims.Email)
				c.Set(CtxRole, claims.Role)
			}
		}
		c.Next()
	}
}
