// Package config provides configuration management for the HubSpot connector.
// It handles loading configuration from environment variables with sensible defaults
// and validates the configuration so the service refuses to start half-configured.
//
// Environment Variables:
//
// Application Settings:
//   - PORT: Server port (default: 8000)
//   - LOG_LEVEL: Logging level (default: info)
//   - TLS_CERT_FILE / TLS_KEY_FILE: Serve HTTPS when both are set
//
// Redis Configuration (optional, the in-memory cache is used when unset):
//   - REDIS_ADDRESS: Redis server address
//   - REDIS_PASSWORD: Redis password
//   - REDIS_DB: Redis database number 0-15 (default: 0)
//   - REDIS_POOL_SIZE: Redis connection pool size (default: 10)
//
// OAuth Flow:
//   - HUBSPOT_CLIENT_ID: HubSpot app client id (required)
//   - HUBSPOT_CLIENT_SECRET: HubSpot app client secret (required)
//   - HUBSPOT_REDIRECT_URI: Callback URL registered with HubSpot
//     (default: http://localhost:8000/integrations/hubspot/oauth2callback)
//   - HUBSPOT_AUTH_URL: Authorization endpoint (default: https://app.hubspot.com/oauth/authorize)
//   - HUBSPOT_TOKEN_URL: Token endpoint (default: https://api.hubapi.com/oauth/v1/token)
//   - HUBSPOT_API_BASE_URL: CRM API base (default: https://api.hubapi.com)
//   - HUBSPOT_SCOPES: Space separated scopes
//     (default: crm.objects.contacts.read crm.objects.companies.read)
//   - HUBSPOT_USE_PKCE: Send an S256 code challenge (default: false)
//   - OAUTH_STATE_TTL: Lifetime of cached state and credentials (default: 600s)
//
// Security Configuration:
//   - STATE_SIGNING_SECRET: Signs the state parameter when set (minimum 32 characters)
//   - CONFIG_ENCRYPTION_KEY: Encrypts cached values when set (32 characters)
//
// Rate Limiting (authorize endpoint):
//   - RATE_LIMIT_ENABLED: Enable rate limiting (default: true)
//   - RATE_LIMIT_DEFAULT: Requests per window (default: 20)
//   - RATE_LIMIT_WINDOW: Rate limit window (default: 60s)
//
// Example usage:
//
//	cfg := config.Load()
//	if err := cfg.Validate(); err != nil {
//		log.Fatalf("Invalid configuration: %v", err)
//	}
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Default HubSpot endpoints
const (
	DefaultHubSpotAuthURL    = "https://app.hubspot.com/oauth/authorize"
	DefaultHubSpotTokenURL   = "https://api.hubapi.com/oauth/v1/token"
	DefaultHubSpotAPIBaseURL = "https://api.hubapi.com"
	DefaultHubSpotScopes     = "crm.objects.contacts.read crm.objects.companies.read"
	DefaultRedirectURI       = "http://localhost:8000/integrations/hubspot/oauth2callback"
)

// Config holds all configuration values for the connector.
// All string fields correspond to environment variables that can be set to
// override the default values.
type Config struct {
	// Application settings
	Port        string
	TLSCertFile string
	TLSKeyFile  string

	// Redis configuration for the shared cache
	RedisAddress  string
	RedisPassword string
	RedisDB       string
	RedisPoolSize string

	// Rate limiting configuration
	RateLimitEnabled bool
	RateLimitDefault string
	RateLimitWindow  string

	// HubSpot OAuth application
	HubSpotClientID     string
	HubSpotClientSecret string
	HubSpotRedirectURI  string
	HubSpotAuthURL      string
	HubSpotTokenURL     string
	HubSpotAPIBaseURL   string
	HubSpotScopes       string
	HubSpotUsePKCE      bool

	// Lifetime of cached OAuth state and credentials
	StateTTL string

	StateSigningSecret string
	EncryptionKey      string
}

// Load creates a new Config instance with values loaded from environment variables.
// It does not validate; call Validate on the result.
func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8000"),
		TLSCertFile: getEnv("TLS_CERT_FILE", ""),
		TLSKeyFile:  getEnv("TLS_KEY_FILE", ""),

		RedisAddress:  getEnv("REDIS_ADDRESS", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnv("REDIS_DB", "0"),
		RedisPoolSize: getEnv("REDIS_POOL_SIZE", "10"),

		RateLimitEnabled: getBoolEnv("RATE_LIMIT_ENABLED", true),
		RateLimitDefault: getEnv("RATE_LIMIT_DEFAULT", "20"),
		RateLimitWindow:  getEnv("RATE_LIMIT_WINDOW", "60s"),

		HubSpotClientID:     getEnv("HUBSPOT_CLIENT_ID", ""),
		HubSpotClientSecret: getEnv("HUBSPOT_CLIENT_SECRET", ""),
		HubSpotRedirectURI:  getEnv("HUBSPOT_REDIRECT_URI", DefaultRedirectURI),
		HubSpotAuthURL:      getEnv("HUBSPOT_AUTH_URL", DefaultHubSpotAuthURL),
		HubSpotTokenURL:     getEnv("HUBSPOT_TOKEN_URL", DefaultHubSpotTokenURL),
		HubSpotAPIBaseURL:   getEnv("HUBSPOT_API_BASE_URL", DefaultHubSpotAPIBaseURL),
		HubSpotScopes:       getEnv("HUBSPOT_SCOPES", DefaultHubSpotScopes),
		HubSpotUsePKCE:      getBoolEnv("HUBSPOT_USE_PKCE", false),

		StateTTL: getEnv("OAUTH_STATE_TTL", "600s"),

		StateSigningSecret: getEnv("STATE_SIGNING_SECRET", ""),
		EncryptionKey:      getEnv("CONFIG_ENCRYPTION_KEY", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getBoolEnv accepts anything strconv.ParseBool does and falls back to
// defaultValue on unset or unparsable values.
func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// Validate checks required fields, formats and cross-field dependencies.
//
// Returns:
//   - error: A descriptive error if validation fails, nil if configuration is valid
func (c *Config) Validate() error {
	if c.HubSpotClientID == "" {
		return fmt.Errorf("HUBSPOT_CLIENT_ID environment variable is required")
	}
	if c.HubSpotClientSecret == "" {
		return fmt.Errorf("HUBSPOT_CLIENT_SECRET environment variable is required")
	}

	if port, err := strconv.Atoi(c.Port); err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("PORT must be a valid port number between 1 and 65535")
	}

	if (c.TLSCertFile == "") != (c.TLSKeyFile == "") {
		return fmt.Errorf("TLS_CERT_FILE and TLS_KEY_FILE must be set together")
	}

	for name, value := range map[string]string{
		"HUBSPOT_REDIRECT_URI": c.HubSpotRedirectURI,
		"HUBSPOT_AUTH_URL":     c.HubSpotAuthURL,
		"HUBSPOT_TOKEN_URL":    c.HubSpotTokenURL,
		"HUBSPOT_API_BASE_URL": c.HubSpotAPIBaseURL,
	} {
		if !strings.HasPrefix(value, "http://") && !strings.HasPrefix(value, "https://") {
			return fmt.Errorf("%s must be an absolute http(s) URL", name)
		}
	}

	if len(c.Scopes()) == 0 {
		return fmt.Errorf("HUBSPOT_SCOPES must name at least one scope")
	}

	if ttl, err := time.ParseDuration(c.StateTTL); err != nil || ttl <= 0 {
		return fmt.Errorf("OAUTH_STATE_TTL must be a positive duration (e.g., '600s', '10m')")
	}

	if c.RedisAddress != "" {
		if db, err := strconv.Atoi(c.RedisDB); err != nil || db < 0 || db > 15 {
			return fmt.Errorf("REDIS_DB must be a number between 0 and 15")
		}
		if poolSize, err := strconv.Atoi(c.RedisPoolSize); err != nil || poolSize < 1 {
			return fmt.Errorf("REDIS_POOL_SIZE must be a positive number")
		}
	}

	if c.RateLimitEnabled {
		if limit, err := strconv.Atoi(c.RateLimitDefault); err != nil || limit < 1 {
			return fmt.Errorf("RATE_LIMIT_DEFAULT must be a positive number")
		}
		if window, err := time.ParseDuration(c.RateLimitWindow); err != nil || window <= 0 {
			return fmt.Errorf("RATE_LIMIT_WINDOW must be a valid duration (e.g., '60s', '1m')")
		}
	}

	if c.StateSigningSecret != "" && len(c.StateSigningSecret) < 32 {
		return fmt.Errorf("STATE_SIGNING_SECRET must be at least 32 characters long when provided")
	}

	if c.EncryptionKey != "" && len(c.EncryptionKey) != 32 {
		return fmt.Errorf("CONFIG_ENCRYPTION_KEY must be exactly 32 characters (256 bits) when provided")
	}

	return nil
}

// Scopes returns HUBSPOT_SCOPES split on whitespace or commas.
func (c *Config) Scopes() []string {
	return strings.FieldsFunc(c.HubSpotScopes, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t'
	})
}

// StateTTLDuration returns the parsed OAUTH_STATE_TTL, 600 seconds when unparsable.
func (c *Config) StateTTLDuration() time.Duration {
	ttl, err := time.ParseDuration(c.StateTTL)
	if err != nil || ttl <= 0 {
		return 600 * time.Second
	}
	return ttl
}

// RedisDBNumber returns REDIS_DB as an int.
func (c *Config) RedisDBNumber() int {
	db, _ := strconv.Atoi(c.RedisDB)
	return db
}

// RedisPoolSizeNumber returns REDIS_POOL_SIZE as an int.
func (c *Config) RedisPoolSizeNumber() int {
	size, _ := strconv.Atoi(c.RedisPoolSize)
	return size
}

// RateLimit returns the parsed request budget and window.
func (c *Config) RateLimit() (int, time.Duration) {
	limit, err := strconv.Atoi(c.RateLimitDefault)
	if err != nil || limit < 1 {
		limit = 20
	}
	window, err := time.ParseDuration(c.RateLimitWindow)
	if err != nil || window <= 0 {
		window = time.Minute
	}
	return limit, window
}
