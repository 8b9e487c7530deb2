package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port       string
	Env        string
	LogLevel   string
	AppVersion string

	DatabaseURL      string
	WaitlistStore    string
	WaitlistTable    string
	SubmitTimeout    time.Duration
	IntakeSessionTTL time.Duration
	SubmitLockTTL    time.Duration

	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string

	// Avatar uploads
	AvatarBucket        string
	AvatarPublicBaseURL string
	AvatarMaxBytes      int64

	AnalyticsQueueURL string

	// Confirmation email
	EmailProvider     string
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
	SESFromEmail      string
	SESFromName       string

	AdminJWTSecret     string
	CORSAllowedOrigins []string
	RateLimitRPS       float64
	RateLimitBurst     int
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:       getEnv("PORT", "8080"),
		Env:        getEnv("ENV", "development"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		AppVersion: getEnv("APP_VERSION", "1.0.0"),

		DatabaseURL:      getEnv("DATABASE_URL", ""),
		WaitlistStore:    strings.ToLower(strings.TrimSpace(getEnv("WAITLIST_STORE", "auto"))),
		WaitlistTable:    getEnv("WAITLIST_TABLE", "waitlist"),
		SubmitTimeout:    getEnvAsDuration("SUBMIT_TIMEOUT", 10*time.Second),
		IntakeSessionTTL: getEnvAsDuration("INTAKE_SESSION_TTL", 30*time.Minute),
		SubmitLockTTL:    getEnvAsDuration("SUBMIT_LOCK_TTL", 30*time.Second),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		AvatarBucket:        getEnv("AVATAR_BUCKET", ""),
		AvatarPublicBaseURL: strings.TrimRight(getEnv("AVATAR_PUBLIC_BASE_URL", ""), "/"),
		AvatarMaxBytes:      int64(getEnvAsInt("AVATAR_MAX_BYTES", 4718592)),

		AnalyticsQueueURL: getEnv("ANALYTICS_QUEUE_URL", ""),

		EmailProvider:     strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", "stub"))),
		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "Orbit"),
		SESFromEmail:      getEnv("SES_FROM_EMAIL", ""),
		SESFromName:       getEnv("SES_FROM_NAME", "Orbit"),

		AdminJWTSecret:     getEnv("ADMIN_JWT_SECRET", ""),
		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS"),
		RateLimitRPS:       getEnvAsFloat("RATE_LIMIT_RPS", 2),
		RateLimitBurst:     getEnvAsInt("RATE_LIMIT_BURST", 10),
	}
}

// Waitlist store backends accepted by WAITLIST_STORE.
const (
	StorePostgres = "postgres"
	StoreDynamoDB = "dynamodb"
	StoreMemory   = "memory"
)

// StoreBackend resolves WAITLIST_STORE=auto to a concrete backend name.
func (c *Config) StoreBackend() string {
	switch c.WaitlistStore {
	case StorePostgres, StoreDynamoDB, StoreMemory:
		return c.WaitlistStore
	}
	if strings.TrimSpace(c.DatabaseURL) != "" {
		return StorePostgres
	}
	return StoreMemory
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	raw := strings.TrimSpace(getEnv(key, ""))
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
