package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port               string
	RateLimitPerMinute int

	// Session state
	DataBackend       string
	SQLiteDSNTemplate string
	SessionTTL        time.Duration
	MaxSessions       int

	// Dashboard
	MonthOrder string

	// AMQP activity feed, disabled when AMQPURL is empty
	AMQPURL           string
	AMQPExchange      string
	AMQPRoutingPrefix string

	// Logging
	LogLevel  string
	LogFormat string
}

func Load() *Config {
	cfg := &Config{
		Port:               getEnv("PORT", "8081"),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 60),

		DataBackend:       getEnv("DATA_BACKEND", "memory"),
		SQLiteDSNTemplate: getEnv("SQLITE_DSN_TEMPLATE", "file:spendwise-%s?mode=memory&cache=shared"),
		SessionTTL:        getEnvDuration("SESSION_TTL", 2*time.Hour),
		MaxSessions:       getEnvInt("MAX_SESSIONS", 1000),

		MonthOrder: getEnv("MONTH_ORDER", "first_seen"),

		AMQPURL:           getEnv("AMQP_URL", ""),
		AMQPExchange:      getEnv("AMQP_EXCHANGE", "spendwise"),
		AMQPRoutingPrefix: getEnv("AMQP_ROUTING_PREFIX", "spendwise"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.RateLimitPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1 request per minute", c.RateLimitPerMinute))
	}

	// Validate data backend
	validBackends := []string{"memory", "sqlite"}
	if !contains(validBackends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.DataBackend == "sqlite" {
		if strings.Count(c.SQLiteDSNTemplate, "%s") != 1 {
			errors = append(errors, fmt.Sprintf("invalid SQLite DSN template '%s': must contain exactly one %%s for the session id", c.SQLiteDSNTemplate))
		}
	}

	// Validate sessions
	if c.SessionTTL < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid session TTL %v: must be at least 1 minute", c.SessionTTL))
	} else if c.SessionTTL > 7*24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid session TTL %v: must be at most 7 days", c.SessionTTL))
	}
	if c.MaxSessions < 1 {
		errors = append(errors, fmt.Sprintf("invalid max sessions %d: must be at least 1", c.MaxSessions))
	}

	validOrders := []string{"first_seen", "chronological"}
	if !contains(validOrders, c.MonthOrder) {
		errors = append(errors, fmt.Sprintf("invalid month order '%s': must be one of %v", c.MonthOrder, validOrders))
	}

	// Validate AMQP URL if provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLevels, strings.ToLower(c.LogLevel)) {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of %v", c.LogLevel, validLevels))
	}
	validFormats := []string{"text", "json"}
	if !contains(validFormats, strings.ToLower(c.LogFormat)) {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be one of %v", c.LogFormat, validFormats))
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

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

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
