// File: utils/cache.go
package utils

import (
	"context"
	"fmt"
	"time"

	"bhutantours/config"

	"github.com/go-redis/redis/v8"
)

var (
	// OTPCacheClient backs the shared admin login code store.
	OTPCacheClient *redis.Client
)

// InitOTPCache connects the Redis client used for admin login codes.
func InitOTPCache() error {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisOTPDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("failed to connect to Redis (OTP cache): %w", err)
	}
	OTPCacheClient = client
	return nil
}

// GetOTPCacheClient returns the OTP cache client, or nil if it was never initialised.
func GetOTPCacheClient() *redis.Client {
	return OTPCacheClient
}

// RedisClients lists every initialised client, for health checks and shutdown.
func RedisClients() []*redis.Client {
	var clients []*redis.Client
	if OTPCacheClient != nil {
		clients = append(clients, OTPCacheClient)
	}
	return clients
}
