package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort            string `mapstructure:"APP_PORT"`
	Env                string `mapstructure:"ENV"`
	LogLevel           string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin  int    `mapstructure:"MAX_REQUESTS_PER_MIN"`
	AuthRequestsPerMin int    `mapstructure:"AUTH_REQUESTS_PER_MIN"`

	// MongoDB.
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	DatabaseName string `mapstructure:"DATABASE_NAME"`

	// Tokens.
	JWTSecret           string        `mapstructure:"JWT_SECRET"`
	JWTRefreshSecret    string        `mapstructure:"JWT_REFRESH_SECRET"`
	JWTExpiresIn        time.Duration `mapstructure:"JWT_EXPIRES_IN"`
	JWTRefreshExpiresIn time.Duration `mapstructure:"JWT_REFRESH_EXPIRES_IN"`

	// Booking detail encryption (64 hex chars).
	EncryptionKey string `mapstructure:"ENCRYPTION_KEY"`

	// Browser session policy.
	FrontendURL  string `mapstructure:"FRONTEND_URL"`
	CookieDomain string `mapstructure:"COOKIE_DOMAIN"`

	// Distinguished admin identity.
	AdminEmail        string `mapstructure:"ADMIN_EMAIL"`
	AdminName         string `mapstructure:"ADMIN_NAME"`
	AdminPasswordHash string `mapstructure:"ADMIN_PASSWORD_HASH"`

	TOTPIssuer     string `mapstructure:"TOTP_ISSUER"`
	OTPStoreDriver string `mapstructure:"OTP_STORE_DRIVER"`

	// Email delivery.
	EmailProvider    string        `mapstructure:"EMAIL_PROVIDER"`
	EmailFrom        string        `mapstructure:"EMAIL_FROM"`
	EmailFromName    string        `mapstructure:"EMAIL_FROM_NAME"`
	EmailTimeout     time.Duration `mapstructure:"EMAIL_TIMEOUT"`
	SMTPHost         string        `mapstructure:"SMTP_HOST"`
	SMTPPort         int           `mapstructure:"SMTP_PORT"`
	SMTPUser         string        `mapstructure:"SMTP_USER"`
	SMTPPass         string        `mapstructure:"SMTP_PASS"`
	SMTPTLSMode      string        `mapstructure:"SMTP_TLS_MODE"`
	MailerSendAPIKey string        `mapstructure:"MAILERSEND_API_KEY"`
	MailQueueEnabled bool          `mapstructure:"MAIL_QUEUE_ENABLED"`

	// Redis configuration.
	RedisAddr        string `mapstructure:"REDIS_ADDR"`
	RedisPassword    string `mapstructure:"REDIS_PASSWORD"`
	RedisOTPDB       int    `mapstructure:"REDIS_OTP_DB"`
	RedisMailQueueDB int    `mapstructure:"REDIS_MAIL_QUEUE_DB"`
}

var AppConfig Config

func LoadConfig() {
	// A local .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	AppConfig.AdminEmail = strings.ToLower(strings.TrimSpace(AppConfig.AdminEmail))
}

// setDefaults registers every key so AutomaticEnv values reach Unmarshal.
func setDefaults() {
	viper.SetDefault("APP_PORT", "5000")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 200)
	viper.SetDefault("AUTH_REQUESTS_PER_MIN", 20)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "bhutan_tours")
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("JWT_REFRESH_SECRET", "")
	viper.SetDefault("JWT_EXPIRES_IN", time.Hour)
	viper.SetDefault("JWT_REFRESH_EXPIRES_IN", 7*24*time.Hour)
	viper.SetDefault("ENCRYPTION_KEY", "")
	viper.SetDefault("FRONTEND_URL", "http://localhost:3000")
	viper.SetDefault("COOKIE_DOMAIN", "")
	viper.SetDefault("ADMIN_EMAIL", "")
	viper.SetDefault("ADMIN_NAME", "System Admin")
	viper.SetDefault("ADMIN_PASSWORD_HASH", "")
	viper.SetDefault("TOTP_ISSUER", "Bhutan Tours")
	viper.SetDefault("OTP_STORE_DRIVER", "memory")
	viper.SetDefault("EMAIL_PROVIDER", "dev")
	viper.SetDefault("EMAIL_FROM", "no-reply@example.com")
	viper.SetDefault("EMAIL_FROM_NAME", "Bhutan Tours")
	viper.SetDefault("EMAIL_TIMEOUT", 5*time.Second)
	viper.SetDefault("SMTP_HOST", "")
	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("SMTP_USER", "")
	viper.SetDefault("SMTP_PASS", "")
	viper.SetDefault("SMTP_TLS_MODE", "auto")
	viper.SetDefault("MAILERSEND_API_KEY", "")
	viper.SetDefault("MAIL_QUEUE_ENABLED", false)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_OTP_DB", 2)
	viper.SetDefault("REDIS_MAIL_QUEUE_DB", 3)
}

// Validate reports configuration that must stop the process at startup.
func (c Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is not set"))
	}
	if c.JWTRefreshSecret == "" {
		errs = append(errs, errors.New("JWT_REFRESH_SECRET is not set"))
	}
	if c.JWTSecret != "" && c.JWTSecret == c.JWTRefreshSecret {
		errs = append(errs, errors.New("JWT_REFRESH_SECRET must differ from JWT_SECRET"))
	}
	if c.JWTExpiresIn <= 0 || c.JWTRefreshExpiresIn <= 0 {
		errs = append(errs, errors.New("token lifetimes must be positive"))
	}
	if _, err := ParseEncryptionKey(c.EncryptionKey); err != nil {
		errs = append(errs, err)
	}
	if c.AdminEmail != "" && c.AdminPasswordHash == "" {
		errs = append(errs, errors.New("ADMIN_PASSWORD_HASH is required when ADMIN_EMAIL is set"))
	}
	switch c.OTPStoreDriver {
	case "memory", "redis":
	default:
		errs = append(errs, fmt.Errorf("OTP_STORE_DRIVER %q is not supported", c.OTPStoreDriver))
	}
	return errors.Join(errs...)
}

// ParseEncryptionKey decodes the 64 hex character master key.
func ParseEncryptionKey(raw string) ([]byte, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("ENCRYPTION_KEY is not set; generate one with `toursctl gen-key`")
	}
	if len(raw) != 64 {
		return nil, fmt.Errorf("ENCRYPTION_KEY must be 64 hex characters, got %d", len(raw))
	}
	key, err := hex.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("ENCRYPTION_KEY is not valid hex: %w", err)
	}
	return key, nil
}

func IsProduction() bool {
	return AppConfig.IsProductionEnv()
}

func (c Config) IsProductionEnv() bool {
	return c.Env == "production"
}

// SecureContext is true when cookies travel cross-site and therefore need
// SameSite=None with the Secure flag.
func (c Config) SecureContext() bool {
	return c.IsProductionEnv() || strings.HasPrefix(strings.ToLower(c.FrontendURL), "https://")
}

// CookieSameSite returns the SameSite mode matching the deployment context.
func (c Config) CookieSameSite() http.SameSite {
	if c.SecureContext() {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}

// AllowedOrigins lists the browser origins allowed by CORS.
func (c Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.FrontendURL, ",") {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
