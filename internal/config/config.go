package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// AllowedMaxItems is the fixed set of per-platform item caps a caller
// may request. Anything else is clamped to the default.
var AllowedMaxItems = []int{50, 100, 200}

// DefaultMaxItems is the smallest allowed cap and the fallback.
const DefaultMaxItems = 50

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Port  string
	Debug bool

	// Scraping provider configuration. Token absence is not a load
	// error: endpoints that reach the provider return 500 instead.
	ApifyToken   string
	ApifyBaseURL string
	SyncTimeout  time.Duration

	// Persistence
	DatabasePath string

	// Authentication: "token:userID" pairs for the bearer middleware.
	APITokens map[string]string

	// Notification configuration
	TeamsWebhookURL   string
	NotificationEmail string
	SMTPHost          string
	SMTPPort          int
	SMTPUsername      string
	SMTPPassword      string

	// Azure Blob archival of completed searches (optional)
	StorageAccount   string
	StorageContainer string

	// Searches stuck in "running" longer than this are failed by the
	// reaper.
	StaleSearchTTL time.Duration
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:  getEnv("PORT", "8080"),
		Debug: getBoolEnv("DEBUG", false),

		ApifyToken:   getEnv("APIFY_API_TOKEN", ""),
		ApifyBaseURL: getEnv("APIFY_BASE_URL", "https://api.apify.com"),
		SyncTimeout:  getDurationEnv("SYNC_TIMEOUT", 300*time.Second),

		DatabasePath: getEnv("DATABASE_PATH", "deepsocial.db"),

		APITokens: getTokenMapEnv("API_TOKENS"),

		TeamsWebhookURL:   getEnv("TEAMS_WEBHOOK_URL", ""),
		NotificationEmail: getEnv("NOTIFICATION_EMAIL", ""),
		SMTPHost:          getEnv("SMTP_HOST", ""),
		SMTPPort:          getIntEnv("SMTP_PORT", 587),
		SMTPUsername:      getEnv("SMTP_USERNAME", ""),
		SMTPPassword:      getEnv("SMTP_PASSWORD", ""),

		StorageAccount:   getEnv("AZURE_STORAGE_ACCOUNT", ""),
		StorageContainer: getEnv("AZURE_STORAGE_CONTAINER", "search-archives"),

		StaleSearchTTL: getDurationEnv("STALE_SEARCH_TTL", 2*time.Hour),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.NotificationEmail != "" {
		if c.SMTPHost == "" || c.SMTPUsername == "" || c.SMTPPassword == "" {
			return fmt.Errorf("SMTP configuration is required when NOTIFICATION_EMAIL is set")
		}
	}

	if c.StaleSearchTTL <= 0 {
		return fmt.Errorf("STALE_SEARCH_TTL must be positive")
	}

	return nil
}

// ClampMaxItems maps a requested item cap onto the allow-list,
// defaulting to the smallest value.
func ClampMaxItems(requested int) int {
	for _, allowed := range AllowedMaxItems {
		if requested == allowed {
			return requested
		}
	}
	return DefaultMaxItems
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getTokenMapEnv parses comma-separated "token:userID" pairs.
func getTokenMapEnv(key string) map[string]string {
	tokens := make(map[string]string)
	value := os.Getenv(key)
	if value == "" {
		return tokens
	}

	for _, pair := range strings.Split(value, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), ":", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			continue
		}
		tokens[parts[0]] = parts[1]
	}

	return tokens
}
