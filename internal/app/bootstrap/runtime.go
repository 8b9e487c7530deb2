package bootstrap

import (
	"context"
	"crypto/tls"
	"strings"

	"github.com/redis/go-redis/v9"

	appconfig "github.com/wolfman30/orbit-landing/internal/config"
	"github.com/wolfman30/orbit-landing/internal/intake"
	"github.com/wolfman30/orbit-landing/internal/waitlist"
	"github.com/wolfman30/orbit-landing/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// BuildSubmitLock returns the cross-instance submit lock, or nil when Redis
// is not configured. A nil interface, not a typed nil, so the wizard skips it.
func BuildSubmitLock(client *redis.Client, cfg *appconfig.Config, logger *logging.Logger) intake.SubmitLock {
	if client == nil || cfg == nil {
		return nil
	}
	return waitlist.NewRedisSubmitLock(client, cfg.SubmitLockTTL, logger)
}
