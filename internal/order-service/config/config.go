// Package config reads the order service settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port     string
	LogLevel string

	CustomerURL string
	ProductURL  string
	PaymentURL  string

	// RedisAddr empty disables the customer cache and falls back to a
	// log-only confirmation publisher.
	RedisAddr           string
	ConfirmationChannel string
	CustomerCacheTTL    time.Duration

	// DBPath / StepLogPath empty keep orders and the ledger in memory.
	DBPath      string
	StepLogPath string

	CallTimeout     time.Duration
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration

	ServiceName      string
	OTLPEndpoint     string
	Environment      string
	TraceSampleRatio float64
}

func Load() (Config, error) {
	cfg := Config{
		Port:     getEnv("PORT", "8070"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		CustomerURL: getEnv("CUSTOMER_URL", "http://localhost:8090/api/v1/customers"),
		ProductURL:  getEnv("PRODUCT_URL", "http://localhost:8050/api/v1/products"),
		PaymentURL:  getEnv("PAYMENT_URL", "http://localhost:8060/api/v1/payments"),

		RedisAddr:           getEnv("REDIS_ADDR", ""),
		ConfirmationChannel: getEnv("CONFIRMATION_CHANNEL", "order-topic"),

		DBPath:      getEnv("DB_PATH", ""),
		StepLogPath: getEnv("STEPLOG_PATH", ""),

		ServiceName:  getEnv("OTEL_SERVICE_NAME", "order-service"),
		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		Environment:  getEnv("OTEL_RESOURCE_ATTRIBUTES_ENV", "local"),
	}

	var err error
	if cfg.CallTimeout, err = getDuration("CALL_TIMEOUT", 5*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.RequestTimeout, err = getDuration("REQUEST_TIMEOUT", 30*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.ShutdownTimeout, err = getDuration("SHUTDOWN_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.CustomerCacheTTL, err = getDuration("CUSTOMER_CACHE_TTL", 5*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.TraceSampleRatio, err = getFloat("OTEL_TRACES_SAMPLER_ARG", 1); err != nil {
		return Config{}, err
	}

	if cfg.CallTimeout <= 0 {
		return Config{}, fmt.Errorf("config: CALL_TIMEOUT must be positive, got %s", cfg.CallTimeout)
	}
	if cfg.RequestTimeout < cfg.CallTimeout {
		return Config{}, fmt.Errorf("config: REQUEST_TIMEOUT (%s) must not be shorter than CALL_TIMEOUT (%s)", cfg.RequestTimeout, cfg.CallTimeout)
	}
	return cfg, nil
}

// Addr is the HTTP listen address.
func (c Config) Addr() string {
	return ":" + c.Port
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return d, nil
}

func getFloat(key string, fallback float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return f, nil
}
