package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables

	AllowedOrigins []string // CORS allowed origins
	AdminAPIToken  string   // static bearer token for /admin routes; empty disables them

	Auth AuthConfig
}

// AuthConfig tunes the login guards. These were module-level constants in the
// original service; making them explicit keeps tests deterministic and allows
// per-environment tuning.
type AuthConfig struct {
	RateLimitWindow    time.Duration // sliding window for the username+IP guard
	MaxFailedAttempts  int           // cap shared by both guards
	LockoutDuration    time.Duration // account lock applied when the cap is hit
	AccessCodeRequired bool          // when true, signup without a code is rejected
	BcryptCost         int
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users         string
	AccessCodes   string
	LoginAttempts string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Users:         getEnv("DYNAMO_TABLE_USERS", "user_accounts"),
			AccessCodes:   getEnv("DYNAMO_TABLE_ACCESS_CODES", "access_codes"),
			LoginAttempts: getEnv("DYNAMO_TABLE_LOGIN_ATTEMPTS", "login_attempts"),
		},

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
		AdminAPIToken:  getEnv("ADMIN_API_TOKEN", ""),

		Auth: AuthConfig{
			RateLimitWindow:    time.Duration(getEnvInt("RATE_LIMIT_WINDOW_MINUTES", 15)) * time.Minute,
			MaxFailedAttempts:  getEnvInt("MAX_FAILED_ATTEMPTS", 5),
			LockoutDuration:    time.Duration(getEnvInt("ACCOUNT_LOCKOUT_MINUTES", 30)) * time.Minute,
			AccessCodeRequired: getEnvBool("ACCESS_CODE_REQUIRED", false),
			BcryptCost:         getEnvInt("BCRYPT_COST", 12),
		},
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
