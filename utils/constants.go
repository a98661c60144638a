// File: utils/constants.go
package utils

import "time"

// OTPCachePrefix is the prefix used for Redis login code keys.
const OTPCachePrefix = "otp:"

// Session cookie names and paths shared by handlers and middleware.
const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
	AccessCookiePath   = "/"
	RefreshCookiePath  = "/api/auth/refresh-token"
)

// AdminID is the fixed identifier of the configured administrator.
const AdminID = "admin-0001"

// HealthCheckInterval is how often StartHealthMonitor checks dependencies.
const HealthCheckInterval = 60 * time.Second
