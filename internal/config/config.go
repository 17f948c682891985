// Package config handles application configuration from environment variables
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server settings
	Port     string
	Env      string // "development", "staging", "production"
	LogLevel string

	// Database
	DatabaseURL string // PostgreSQL connection string (optional, uses in-memory if not set)

	// VNPay settings. All four are required: without them the signer and
	// verifier cannot operate, and payment endpoints fail with a
	// configuration error rather than a silent default.
	VNPayMerchantCode string // vnp_TmnCode assigned by the gateway
	VNPayHashSecret   string // shared HMAC-SHA512 signing secret, never logged
	VNPayBaseURL      string // gateway payment page, e.g. sandbox paygate URL
	VNPayReturnURL    string // where the gateway redirects the customer back

	// Identity provider
	ProviderSecret string // shared secret for the session-mint endpoint
	AdminSecret    string // X-Admin-Secret for order status transitions

	// Observability
	OTLPEndpoint string // OTLP gRPC endpoint, tracing disabled if empty

	// Security
	RateLimitRPM   int
	AllowedOrigins string // comma-separated CORS origins, "*" for any
}

const (
	DefaultPort      = "8080"
	DefaultEnv       = "development"
	DefaultLogLevel  = "info"
	DefaultRateLimit = 120
)

// Load reads configuration from environment variables
// It loads .env file if present (for local development)
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not present)
	_ = godotenv.Load()

	cfg := &Config{
		Port:              getEnv("PORT", DefaultPort),
		Env:               getEnv("ENV", DefaultEnv),
		LogLevel:          getEnv("LOG_LEVEL", DefaultLogLevel),
		DatabaseURL:       os.Getenv("DATABASE_URL"), // Optional, uses in-memory if not set
		VNPayMerchantCode: os.Getenv("VNP_TMN_CODE"),
		VNPayHashSecret:   os.Getenv("VNP_HASH_SECRET"),
		VNPayBaseURL:      os.Getenv("VNP_URL"),
		VNPayReturnURL:    os.Getenv("VNP_RETURN_URL"),
		ProviderSecret:    os.Getenv("PROVIDER_SECRET"),
		AdminSecret:       os.Getenv("ADMIN_SECRET"),
		OTLPEndpoint:      os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		RateLimitRPM:      getEnvInt("RATE_LIMIT_RPM", DefaultRateLimit),
		AllowedOrigins:    getEnv("ALLOWED_ORIGINS", "*"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that all required configuration is present
func (c *Config) Validate() error {
	if c.VNPayMerchantCode == "" {
		return fmt.Errorf("VNP_TMN_CODE is required")
	}
	if c.VNPayHashSecret == "" {
		return fmt.Errorf("VNP_HASH_SECRET is required")
	}
	if c.VNPayBaseURL == "" {
		return fmt.Errorf("VNP_URL is required")
	}
	if c.VNPayReturnURL == "" {
		return fmt.Errorf("VNP_RETURN_URL is required")
	}
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}
