package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"inkforge-server/internal/domain"
)

// AppConfig implements the domain.Config interface
type AppConfig struct {
	ServerPort     string
	LogLevel       string
	AllowedOrigins []string

	SupabaseURL        string
	SupabaseKey        string
	SupabaseServiceKey string

	EngineURL     string
	EngineModel   string
	EngineTimeout time.Duration

	FreeDailyLimit int
	QuotaTimezone  string

	StripeSecretKey     string
	StripeWebhookSecret string
	StripePriceID       string
	CheckoutSuccessURL  string
	CheckoutCancelURL   string
}

// NewConfig creates a new configuration instance with default values
func NewConfig() domain.Config {
	return &AppConfig{
		// Cloud Run (and many PaaS) provide the listening port via PORT.
		// Keep SERVER_PORT for local/dev compatibility.
		ServerPort:     getEnvOrDefault("PORT", getEnvOrDefault("SERVER_PORT", "8080")),
		LogLevel:       getEnvOrDefault("LOG_LEVEL", "info"),
		AllowedOrigins: splitAndTrim(getEnvOrDefault("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")),

		SupabaseURL:        getEnvOrDefault("SUPABASE_URL", ""),
		SupabaseKey:        getEnvOrDefault("SUPABASE_ANON_KEY", ""),
		SupabaseServiceKey: getEnvOrDefault("SUPABASE_SERVICE_ROLE_KEY", ""),

		EngineURL:     getEnvOrDefault("ENGINE_URL", "http://localhost:11434/api/generate"),
		EngineModel:   getEnvOrDefault("ENGINE_MODEL", "llama3"),
		EngineTimeout: time.Duration(getEnvIntOrDefault("ENGINE_TIMEOUT_SECONDS", 120)) * time.Second,

		FreeDailyLimit: getEnvIntOrDefault("FREE_DAILY_LIMIT", 10),
		QuotaTimezone:  getEnvOrDefault("QUOTA_TIMEZONE", "UTC"),

		StripeSecretKey:     getEnvOrDefault("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret: getEnvOrDefault("STRIPE_WEBHOOK_SECRET", ""),
		StripePriceID:       getEnvOrDefault("STRIPE_PRICE_ID", ""),
		CheckoutSuccessURL:  getEnvOrDefault("CHECKOUT_SUCCESS_URL", "http://localhost:3000/success"),
		CheckoutCancelURL:   getEnvOrDefault("CHECKOUT_CANCEL_URL", "http://localhost:3000/cancel"),
	}
}

// GetServerPort returns the server port
func (c *AppConfig) GetServerPort() string {
	return c.ServerPort
}

// GetLogLevel returns the logging level
func (c *AppConfig) GetLogLevel() string {
	return c.LogLevel
}

// GetAllowedOrigins returns the CORS allow-list
func (c *AppConfig) GetAllowedOrigins() []string {
	return c.AllowedOrigins
}

// GetSupabaseURL returns the Supabase URL
func (c *AppConfig) GetSupabaseURL() string {
	return c.SupabaseURL
}

// GetSupabaseKey returns the Supabase anon key
func (c *AppConfig) GetSupabaseKey() string {
	return c.SupabaseKey
}

// GetSupabaseServiceKey returns the Supabase service-role key
func (c *AppConfig) GetSupabaseServiceKey() string {
	return c.SupabaseServiceKey
}

// GetEngineURL returns the generation engine endpoint
func (c *AppConfig) GetEngineURL() string {
	return c.EngineURL
}

// GetEngineModel returns the model name sent to the engine
func (c *AppConfig) GetEngineModel() string {
	return c.EngineModel
}

// GetEngineTimeout returns the connect-and-first-byte timeout for engine calls
func (c *AppConfig) GetEngineTimeout() time.Duration {
	return c.EngineTimeout
}

// GetFreeDailyLimit returns the daily generation cap for free-tier users
func (c *AppConfig) GetFreeDailyLimit() int {
	return c.FreeDailyLimit
}

// GetQuotaTimezone returns the IANA timezone name for daily quota rollover
func (c *AppConfig) GetQuotaTimezone() string {
	return c.QuotaTimezone
}

// GetStripeSecretKey returns the payment provider API key
func (c *AppConfig) GetStripeSecretKey() string {
	return c.StripeSecretKey
}

// GetStripeWebhookSecret returns the webhook signing secret
func (c *AppConfig) GetStripeWebhookSecret() string {
	return c.StripeWebhookSecret
}

// GetStripePriceID returns the subscription price id used at checkout
func (c *AppConfig) GetStripePriceID() string {
	return c.StripePriceID
}

// GetCheckoutSuccessURL returns the post-checkout success redirect
func (c *AppConfig) GetCheckoutSuccessURL() string {
	return c.CheckoutSuccessURL
}

// GetCheckoutCancelURL returns the post-checkout cancel redirect
func (c *AppConfig) GetCheckoutCancelURL() string {
	return c.CheckoutCancelURL
}

// Helper functions for environment variable handling
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func splitAndTrim(value string) []string {
	parts := strings.Split(value, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
