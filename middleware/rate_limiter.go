package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RateLimiter holds one token bucket per client IP. Idle buckets expire.
type RateLimiter struct {
	name     string
	perMin   int
	burst    int
	mu       sync.Mutex
	limiters *cache.Cache
}

// NewRateLimiter allows perMin requests a minute per IP with the given burst.
func NewRateLimiter(name string, perMin, burst int) *RateLimiter {
	if perMin <= 0 {
		perMin = 100
	}
	if burst <= 0 {
		burst = perMin
	}
	return &RateLimiter{
		name:     name,
		perMin:   perMin,
		burst:    burst,
		limiters: cache.New(15*time.Minute, 5*time.Minute),
	}
}

// getLimiter returns the rate limiter for a given IP, creating one if it doesn't exist.
func (l *RateLimiter) getLimiter(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if v, ok := l.limiters.Get(ip); ok {
		l.limiters.SetDefault(ip, v)
		return v.(*rate.Limiter)
	}
	limiter := rate.NewLimiter(rate.Every(time.Minute/time.Duration(l.perMin)), l.burst)
	l.limiters.SetDefault(ip, limiter)
	return limiter
}

// Allow reports whether ip may make another request now.
func (l *RateLimiter) Allow(ip string) bool {
	return l.getLimiter(ip).Allow()
}

// RateLimitMiddleware limits requests per IP address.
func RateLimitMiddleware(l *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := getClientIP(c)
		if !l.Allow(ip) {
			zap.L().Warn("Rate limit exceeded", zap.String("limiter", l.name), zap.String("ip", ip))
			c.Header("Retry-After", "60")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"message": "Too many requests, please try again later.",
				"code":    "RATE_LIMITED",
			})
			return
		}
		c.Next()
	}
}
