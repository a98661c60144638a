package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bhutantours/config"
	"bhutantours/cron"
	"bhutantours/database"
	bookingRepoPkg "bhutantours/database/repository/booking"
	packageRepoPkg "bhutantours/database/repository/tourpackage"
	userRepoPkg "bhutantours/database/repository/user"
	"bhutantours/handlers"
	"bhutantours/metrics"
	"bhutantours/middleware"
	"bhutantours/routes"
	"bhutantours/services/auth"
	"bhutantours/services/booking"
	"bhutantours/services/encryption"
	"bhutantours/services/notification"
	"bhutantours/services/tasks"
	"bhutantours/services/tourpackage"
	"bhutantours/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger := utils.GetLogger()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("main: invalid configuration", zap.Error(err))
	}
	if cfg.IsProductionEnv() {
		gin.SetMode(gin.ReleaseMode)
	}

	database.InitDB()

	var otpCache auth.OTPCache
	if cfg.OTPStoreDriver == "redis" {
		if err := utils.InitOTPCache(); err != nil {
			logger.Fatal("main: failed to initialize OTP cache", zap.Error(err))
		}
		otpCache = auth.NewRedisOTPCache(utils.GetOTPCacheClient())
	} else {
		otpCache = auth.NewMemoryOTPCache()
	}

	m := metrics.New()

	rawMailer, err := notification.NewMailer(cfg, logger.Named("mailer"))
	if err != nil {
		logger.Fatal("main: failed to initialize mailer", zap.Error(err))
	}
	mailer := notification.ObservedMailer{
		Mailer:  rawMailer,
		Observe: func(err error) { m.MailSent(cfg.EmailProvider, err) },
	}

	var (
		dispatcher  tasks.MailDispatcher
		mailWorker  *asynq.Server
		queueClient *asynq.Client
	)
	if cfg.MailQueueEnabled {
		queueClient = asynq.NewClient(cron.RedisOpt())
		dispatcher = &tasks.QueueDispatcher{Client: queueClient}
		mailWorker = cron.InitMailWorker(mailer)
	} else {
		dispatcher = &tasks.DirectDispatcher{Mailer: mailer, Timeout: cfg.EmailTimeout}
	}

	key, err := config.ParseEncryptionKey(cfg.EncryptionKey)
	if err != nil {
		logger.Fatal("main: invalid encryption key", zap.Error(err))
	}
	cipher, err := encryption.NewCipher(key)
	if err != nil {
		logger.Fatal("main: failed to initialize cipher", zap.Error(err))
	}

	tokens, err := utils.NewTokenIssuer(cfg.JWTSecret, cfg.JWTRefreshSecret, cfg.JWTExpiresIn, cfg.JWTRefreshExpiresIn)
	if err != nil {
		logger.Fatal("main: failed to initialize token issuer", zap.Error(err))
	}

	// repositories.
	userRepo := userRepoPkg.NewMongoUserRepo()
	packageRepo := packageRepoPkg.NewMongoPackageRepo()
	bookingRepo := bookingRepoPkg.NewMongoBookingRepo()

	// services.
	authService := &auth.DefaultAuthService{
		Users:  userRepo,
		Tokens: tokens,
		OTP: &auth.OTPEngine{
			Users:       userRepo,
			Cache:       otpCache,
			Mailer:      mailer,
			SendTimeout: cfg.EmailTimeout,
		},
		Mailer:         mailer,
		Admin:          auth.NewDistinguishedAdmin(cfg.AdminEmail, cfg.AdminName, cfg.AdminPasswordHash),
		TOTPIssuer:     cfg.TOTPIssuer,
		FrontendURL:    firstOrigin(cfg),
		ExposeResetURL: !cfg.IsProductionEnv(),
		SendTimeout:    cfg.EmailTimeout,
	}
	packageService := &tourpackage.DefaultPackageService{Repo: packageRepo}
	bookingService := &booking.DefaultBookingService{
		Bookings:      bookingRepo,
		Packages:      packageRepo,
		Cipher:        cipher,
		Mail:          dispatcher,
		OnOpenFailure: m.DecryptionFailed,
	}

	transport := handlers.NewSessionTransport(cfg, tokens.AccessTTL(), tokens.RefreshTTL())
	handlerBundle := &handlers.HandlerBundle{
		Tokens:   tokens,
		Metrics:  m,
		Auth:     handlers.NewAuthHandler(authService, transport, m),
		Bookings: handlers.NewBookingHandler(bookingService),
		Packages: handlers.NewPackageHandler(packageService),
		Admin:    handlers.NewAdminHandler(authService),
		Debug:    handlers.NewDebugHandler(mailer, cfg.IsProductionEnv(), cfg.EmailTimeout),
	}

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	routes.RegisterRoutes(router, handlerBundle, routes.Options{
		AllowedOrigins: cfg.AllowedOrigins(),
		GlobalLimiter:  middleware.NewRateLimiter("global", cfg.MaxRequestsPerMin, 0),
		AuthLimiter:    middleware.NewRateLimiter("auth", cfg.AuthRequestsPerMin, 5),
	})

	monitorCtx, stopMonitor := context.WithCancel(context.Background())
	utils.StartHealthMonitor(monitorCtx, utils.RedisClients(), database.MongoClient)

	// Start the HTTP server.
	port := cfg.AppPort
	if port == "" {
		port = "5000"
	}
	srv := &http.Server{
		Addr:              "0.0.0.0:" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
	}
	stopMonitor()
	if mailWorker != nil {
		mailWorker.Shutdown()
	}
	if queueClient != nil {
		_ = queueClient.Close()
	}
	for _, c := range utils.RedisClients() {
		_ = c.Close()
	}
	if err := database.Close(ctx); err != nil {
		logger.Sugar().Errorf("main: failed to close MongoDB: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
	_ = logger.Sync()
}

// firstOrigin is the frontend base used in password reset links.
func firstOrigin(cfg config.Config) string {
	if origins := cfg.AllowedOrigins(); len(origins) > 0 {
		return origins[0]
	}
	return "http://localhost:3000"
}
