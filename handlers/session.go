package handlers

import (
	"net/http"
	"strings"
	"time"

	"bhutantours/config"
	"bhutantours/services/auth"
	"bhutantours/utils"

	"github.com/gin-gonic/gin"
)

// TransportStrategy decides how issued tokens reach the client.
type TransportStrategy int

const (
	// TransportBearer returns tokens in the JSON body only.
	TransportBearer TransportStrategy = iota
	// TransportDual also sets HttpOnly cookies.
	TransportDual
)

// SessionTransportHeader lets a non-browser client opt into cookies.
const SessionTransportHeader = "X-Session-Transport"

// SelectTransport picks dual delivery for browser requests, recognised by an
// Origin header, or when the client asks for cookies explicitly.
func SelectTransport(r *http.Request) TransportStrategy {
	if strings.EqualFold(r.Header.Get(SessionTransportHeader), "cookie") {
		return TransportDual
	}
	if strings.EqualFold(r.Header.Get(SessionTransportHeader), "bearer") {
		return TransportBearer
	}
	if r.Header.Get("Origin") != "" {
		return TransportDual
	}
	return TransportBearer
}

// SessionTransport binds tokens to responses.
type SessionTransport struct {
	Domain     string
	Secure     bool
	SameSite   http.SameSite
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// NewSessionTransport derives the cookie policy from configuration.
func NewSessionTransport(cfg config.Config, accessTTL, refreshTTL time.Duration) *SessionTransport {
	return &SessionTransport{
		Domain:     cfg.CookieDomain,
		Secure:     cfg.SecureContext(),
		SameSite:   cfg.CookieSameSite(),
		AccessTTL:  accessTTL,
		RefreshTTL: refreshTTL,
	}
}

func (t *SessionTransport) cookie(name, value, path string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Domain:   t.Domain,
		MaxAge:   int(ttl.Seconds()),
		Expires:  time.Now().Add(ttl),
		HttpOnly: true,
		Secure:   t.Secure,
		SameSite: t.SameSite,
	}
}

// Attach writes cookies when the strategy allows and returns the body fields.
// The refresh cookie is scoped to the refresh endpoint only.
func (t *SessionTransport) Attach(c *gin.Context, sess *auth.Session) gin.H {
	if SelectTransport(c.Request) == TransportDual {
		http.SetCookie(c.Writer, t.cookie(utils.AccessTokenCookie, sess.AccessToken, utils.AccessCookiePath, t.AccessTTL))
		if sess.RefreshToken != "" {
			http.SetCookie(c.Writer, t.cookie(utils.RefreshTokenCookie, sess.RefreshToken, utils.RefreshCookiePath, t.RefreshTTL))
		}
	}
	return gin.H{
		"token":        sess.AccessToken,
		"refreshToken": sess.RefreshToken,
		"user":         sess.User,
	}
}

// Clear expires both cookies at the paths they were set on.
func (t *SessionTransport) Clear(c *gin.Context) {
	for _, ck := range []*http.Cookie{
		t.cookie(utils.AccessTokenCookie, "", utils.AccessCookiePath, 0),
		t.cookie(utils.RefreshTokenCookie, "", utils.RefreshCookiePath, 0),
	} {
		ck.MaxAge = -1
		ck.Expires = time.Unix(0, 0)
		http.SetCookie(c.Writer, ck)
	}
}
