package config

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Env:                 "development",
		JWTSecret:           "access-secret",
		JWTRefreshSecret:    "refresh-secret",
		JWTExpiresIn:        time.Hour,
		JWTRefreshExpiresIn: 7 * 24 * time.Hour,
		EncryptionKey:       strings.Repeat("ab", 32),
		OTPStoreDriver:      "memory",
		FrontendURL:         "http://localhost:3000",
	}
}

func TestValidate_AcceptsCompleteConfig(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestValidate_RejectsMissingOrMalformedEncryptionKey(t *testing.T) {
	for name, key := range map[string]string{
		"missing":   "",
		"too short": strings.Repeat("ab", 16),
		"not hex":   strings.Repeat("zz", 32),
	} {
		t.Run(name, func(t *testing.T) {
			cfg := validConfig()
			cfg.EncryptionKey = key
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "ENCRYPTION_KEY")
		})
	}
}

func TestValidate_RejectsSharedSigningSecret(t *testing.T) {
	cfg := validConfig()
	cfg.JWTRefreshSecret = cfg.JWTSecret
	require.Error(t, cfg.Validate())
}

func TestValidate_AdminNeedsPasswordHash(t *testing.T) {
	cfg := validConfig()
	cfg.AdminEmail = "admin@example.com"
	require.Error(t, cfg.Validate())

	cfg.AdminPasswordHash = "$2a$12$abcdefghijklmnopqrstuv"
	require.NoError(t, cfg.Validate())
}

func TestCookiePolicy(t *testing.T) {
	cfg := validConfig()
	assert.False(t, cfg.SecureContext())
	assert.Equal(t, http.SameSiteLaxMode, cfg.CookieSameSite())

	cfg.FrontendURL = "https://tours.example.com"
	assert.True(t, cfg.SecureContext())
	assert.Equal(t, http.SameSiteNoneMode, cfg.CookieSameSite())

	cfg.FrontendURL = "http://localhost:3000"
	cfg.Env = "production"
	assert.True(t, cfg.SecureContext())
}

func TestAllowedOrigins(t *testing.T) {
	cfg := validConfig()
	cfg.FrontendURL = "https://a.example.com/, https://b.example.com"
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.AllowedOrigins())
}
