package config

import (
	"os"
	"strconv"
	"time"

	"conference-system/internal/gateway/paystack"
	"conference-system/internal/notify"
	"conference-system/internal/realtime"
	"conference-system/utils"
)

type Config struct {
	// Server configuration
	Port        string
	Environment string

	// Redis configuration
	RedisURL      string
	RedisPassword string
	RedisDB       int

	// Payment gateway configuration
	Paystack paystack.Config
	Currency string

	// Email configuration
	Resend notify.Config

	// PubNub configuration
	PubNub realtime.Config

	// Event metadata stamped into QR payloads and emails
	EventName  string
	EventDate  string
	EventVenue string

	// Reference/ticket numbering
	ReferencePrefix    string
	TicketNumberPrefix string

	// Rate limiting
	PurchaseRateLimit  int64
	PurchaseRateWindow time.Duration

	// Monitoring
	EnableMetrics bool
}

func LoadConfig() *Config {
	return &Config{
		// Server
		Port:        getEnv("PORT", "8090"),
		Environment: getEnv("ENVIRONMENT", "development"),

		// Redis
		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		// Paystack
		Paystack: paystack.Config{
			BaseURL:   getEnv("PAYSTACK_BASE_URL", "https://api.paystack.co"),
			SecretKey: getEnv("PAYSTACK_SECRET_KEY", ""),
			PublicKey: getEnv("PAYSTACK_PUBLIC_KEY", ""),
			Breaker: utils.BreakerSettings{
				MaxRequests:  uint32(getEnvAsInt("PAYSTACK_BREAKER_MAX_REQUESTS", 100)),
				Interval:     getEnvAsDuration("PAYSTACK_BREAKER_INTERVAL", "60s"),
				Timeout:      getEnvAsDuration("PAYSTACK_BREAKER_TIMEOUT", "60s"),
				FailureRatio: getEnvAsFloat("PAYSTACK_BREAKER_FAILURE_RATIO", 0.6),
			},
		},
		Currency: getEnv("CURRENCY", "GHS"),

		// Resend
		Resend: notify.Config{
			BaseURL: getEnv("RESEND_BASE_URL", ""),
			APIKey:  getEnv("RESEND_API_KEY", ""),
			From:    getEnv("EMAIL_FROM", "tickets@devcongress.example"),
		},

		// PubNub
		PubNub: realtime.Config{
			PublishKey:   getEnv("PUBNUB_PUBLISH_KEY", ""),
			SubscribeKey: getEnv("PUBNUB_SUBSCRIBE_KEY", ""),
			SecretKey:    getEnv("PUBNUB_SECRET_KEY", ""),
			UUID:         getEnv("PUBNUB_UUID", "conference-backend"),
		},

		// Event metadata
		EventName:  getEnv("EVENT_NAME", "DevCongress Accra"),
		EventDate:  getEnv("EVENT_DATE", "2026-11-14"),
		EventVenue: getEnv("EVENT_VENUE", "Accra International Conference Centre"),

		// Numbering
		ReferencePrefix:    getEnv("REFERENCE_PREFIX", "CONF"),
		TicketNumberPrefix: getEnv("TICKET_NUMBER_PREFIX", "ACC"),

		// Rate limiting
		PurchaseRateLimit:  int64(getEnvAsInt("PURCHASE_RATE_LIMIT", 10)),
		PurchaseRateWindow: getEnvAsDuration("PURCHASE_RATE_WINDOW", "1m"),

		// Monitoring
		EnableMetrics: getEnvAsBool("ENABLE_METRICS", true),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
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

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	// If parsing fails, try to parse default value
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
