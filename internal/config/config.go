package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds application configuration
type Config struct {
	ServerPort        string
	BaseURL           string
	FrontendURL       string
	RedisURL          string
	StorePrefix       string
	RabbitMQURL       string
	NotifyWebhookURL  string
	NotifyPrefetch    int
	RateLimit         string
	ServerDebugMode   bool
	NotifierDebugMode bool
	OTELEnabled       bool
	OTELEndpoint      string
}

// Load loads configuration from environment variables. REDIS_URL is the
// only hard requirement: the store is the system of record. RABBITMQ_URL
// may be empty, in which case reminders are logged instead of queued.
func Load() (*Config, error) {
	cfg := &Config{
		ServerPort:        getEnv("SERVER_PORT", "8080"),
		BaseURL:           getEnv("BASE_URL", "http://localhost:8080"),
		FrontendURL:       getEnv("FRONTEND_URL", "http://localhost:3000"),
		RedisURL:          getEnv("REDIS_URL", "redis://localhost:6379/0"),
		StorePrefix:       getEnv("STORE_PREFIX", "taskflow"),
		RabbitMQURL:       getEnv("RABBITMQ_URL", ""),
		NotifyWebhookURL:  getEnv("NOTIFY_WEBHOOK_URL", ""),
		NotifyPrefetch:    getEnvInt("NOTIFY_PREFETCH", 1),
		RateLimit:         getEnv("RATE_LIMIT", "100-M"),
		ServerDebugMode:   getEnvBool("SERVER_DEBUG_MODE", false),
		NotifierDebugMode: getEnvBool("NOTIFIER_DEBUG_MODE", false),
		OTELEnabled:       getEnvBool("OTEL_ENABLED", false),
		OTELEndpoint:      getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	if cfg.RedisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}

	return cfg, nil
}

// LoadNotifier loads configuration for the notifier worker, which
// additionally requires the queue and webhook endpoints.
func LoadNotifier() (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	if cfg.RabbitMQURL == "" {
		return nil, fmt.Errorf("RABBITMQ_URL is required for the notifier worker")
	}
	if cfg.NotifyWebhookURL == "" {
		return nil, fmt.Errorf("NOTIFY_WEBHOOK_URL is required for the notifier worker")
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
