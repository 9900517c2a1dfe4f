package domain

import "time"

// Logger defines the interface for logging operations
type Logger interface {
	Info(msg string, fields ...interface{})
	Error(msg string, err error, fields ...interface{})
	Debug(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
}

// Config defines the interface for configuration management
type Config interface {
	GetServerPort() string
	GetLogLevel() string
	GetAllowedOrigins() []string

	GetSupabaseURL() string
	GetSupabaseKey() string
	GetSupabaseServiceKey() string

	GetEngineURL() string
	GetEngineModel() string
	GetEngineTimeout() time.Duration

	GetFreeDailyLimit() int
	GetQuotaTimezone() string

	GetStripeSecretKey() string
	GetStripeWebhookSecret() string
	GetStripePriceID() string
	GetCheckoutSuccessURL() string
	GetCheckoutCancelURL() string
}
