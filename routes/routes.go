package routes

import (
	"net/http"
	"time"

	"bhutantours/handlers"
	"bhutantours/middleware"
	"bhutantours/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Options carries the per-deployment settings of the router.
type Options struct {
	AllowedOrigins []string
	GlobalLimiter  *middleware.RateLimiter
	AuthLimiter    *middleware.RateLimiter
}

// RegisterAuthRoutes registers authentication, MFA and password reset endpoints.
func RegisterAuthRoutes(r *gin.Engine, hb *handlers.HandlerBundle, authLimit gin.HandlerFunc) {
	api := r.Group("/api/auth")
	{
		api.POST("/register", authLimit, hb.Auth.RegisterHandler)
		api.POST("/login", authLimit, hb.Auth.LoginHandler)
		api.POST("/admin/login", authLimit, hb.Auth.AdminLoginHandler)
		api.POST("/refresh-token", hb.Auth.RefreshTokenHandler)
		api.POST("/logout", hb.Auth.LogoutHandler)
		api.POST("/forgot-password", authLimit, hb.Auth.ForgotPasswordHandler)
		api.POST("/reset-password", authLimit, hb.Auth.ResetPasswordHandler)

		// Protected routes (Require Authentication)
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(hb.Tokens))
		protected.GET("/me", hb.Auth.MeHandler)
		protected.PUT("/change-password", authLimit, hb.Auth.ChangePasswordHandler)
		protected.POST("/mfa/setup", hb.Auth.SetupMFAHandler)
		protected.POST("/mfa/verify", authLimit, hb.Auth.VerifyMFAHandler)
		protected.POST("/mfa/disable", authLimit, hb.Auth.DisableMFAHandler)
		protected.POST("/mfa/backup-codes", hb.Auth.BackupCodesHandler)
	}
}

// RegisterPackageRoutes registers the tour catalogue.
func RegisterPackageRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/packages")
	{
		api.GET("", hb.Packages.ListPackagesHandler)
		api.GET("/:id", middleware.OptionalAuthMiddleware(hb.Tokens), hb.Packages.GetPackageHandler)

		admin := api.Group("")
		admin.Use(middleware.AuthMiddleware(hb.Tokens), middleware.AdminOnly())
		admin.POST("", hb.Packages.CreatePackageHandler)
		admin.PUT("/:id", hb.Packages.UpdatePackageHandler)
		admin.DELETE("/:id", hb.Packages.DeletePackageHandler)
	}
}

// RegisterBookingRoutes sets up the endpoints for bookings.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	bookingGroup := r.Group("/api/bookings")
	{
		bookingGroup.Use(middleware.AuthMiddleware(hb.Tokens))
		bookingGroup.POST("", hb.Bookings.CreateBookingHandler)
		bookingGroup.GET("/my-bookings", hb.Bookings.MyBookingsHandler)
		bookingGroup.GET("", middleware.AdminOnly(), hb.Bookings.AllBookingsHandler)
		bookingGroup.GET("/:id", hb.Bookings.GetBookingHandler)
		bookingGroup.PATCH("/:id/status", middleware.AdminOnly(), hb.Bookings.UpdateStatusHandler)
		bookingGroup.DELETE("/:id", hb.Bookings.CancelBookingHandler)
	}
}

// RegisterAdminRoutes sets up endpoints for admin operations.
func RegisterAdminRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	adminGroup := r.Group("/api/admin")
	{
		adminGroup.Use(middleware.AuthMiddleware(hb.Tokens), middleware.AdminOnly())
		adminGroup.GET("/users", hb.Admin.GetAllUsersHandler)
	}
}

// RegisterDebugRoutes registers development diagnostics. The handler itself
// answers 404 in production.
func RegisterDebugRoutes(r *gin.Engine, hb *handlers.HandlerBundle, authLimit gin.HandlerFunc) {
	if hb.Debug == nil {
		return
	}
	r.POST("/api/auth/debug/send-test", authLimit, hb.Debug.SendTestEmailHandler)
}

// RegisterHealthRoute registers a health-check endpoint backed by the
// background dependency monitor.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		status := utils.GetHealthStatus()
		code := http.StatusOK
		if !status.CheckedAt.IsZero() && !status.Healthy() {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{"status": statusLabel(code), "message": "Bhutan Tours API", "dependencies": status})
	})
}

func statusLabel(code int) string {
	if code == http.StatusOK {
		return "ok"
	}
	return "degraded"
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle, opts Options) {
	// Without configured origins only same-origin browsers can call the API.
	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     opts.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", handlers.SessionTransportHeader, "X-Request-ID"},
			ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	r.Use(middleware.RequestLogger(), utils.ErrorHandler())
	if hb.Metrics != nil {
		r.Use(hb.Metrics.Middleware())
		r.GET("/metrics", gin.WrapH(hb.Metrics.Handler()))
	}

	RegisterHealthRoute(r)

	if opts.GlobalLimiter != nil {
		r.Use(middleware.RateLimitMiddleware(opts.GlobalLimiter))
	}

	authLimit := func(c *gin.Context) { c.Next() }
	if opts.AuthLimiter != nil {
		authLimit = middleware.RateLimitMiddleware(opts.AuthLimiter)
	}

	RegisterAuthRoutes(r, hb, authLimit)
	RegisterPackageRoutes(r, hb)
	RegisterBookingRoutes(r, hb)
	RegisterAdminRoutes(r, hb)
	RegisterDebugRoutes(r, hb, authLimit)
}
