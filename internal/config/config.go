// Package config provides application configuration through environment variables.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/allisson/go-env"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// ServerHost is the host address the server will bind to.
	ServerHost string
	// ServerPort is the port number the server will listen on.
	ServerPort int

	// LogLevel is the logging level (e.g., "debug", "info", "warn", "error").
	LogLevel string

	// SessionTTL is how long an issued encryption session stays resolvable.
	SessionTTL time.Duration
	// SessionSweepInterval is how often expired sessions are reclaimed.
	SessionSweepInterval time.Duration

	// ResponseEncryptionFailClosed selects the policy when sealing a response
	// fails: true rejects the request, false serves the plaintext and logs.
	ResponseEncryptionFailClosed bool

	// CardStorageKey is the base64-encoded 32-byte installation key for
	// deterministic card number storage encryption. Ignored when
	// CardStorageKeyCiphertext is set.
	CardStorageKey string
	// CardStorageKeyCiphertext is the base64-encoded KMS-wrapped storage key.
	// When set, the key is unwrapped through KMSKeyURI at startup.
	CardStorageKeyCiphertext string
	// CardStorageAlgorithm selects the storage AEAD ("aes-gcm" or "chacha20-poly1305").
	CardStorageAlgorithm string

	// AdminPasswordHash is the Argon2id hash authorizing storage decryption.
	AdminPasswordHash string

	// RateLimitEnabled indicates whether rate limiting for API endpoints is enabled.
	RateLimitEnabled bool
	// RateLimitRequestsPerSec is the number of requests allowed per second for API endpoints.
	RateLimitRequestsPerSec float64
	// RateLimitBurst is the burst size for API endpoint rate limiting.
	RateLimitBurst int

	// RateLimitPublicKeyEnabled indicates whether IP-based rate limiting for
	// public-key issuance is enabled. Each issued key pins server memory until
	// its TTL elapses, so issuance gets its own tighter limit.
	RateLimitPublicKeyEnabled bool
	// RateLimitPublicKeyRequestsPerSec is the per-IP issuance rate.
	RateLimitPublicKeyRequestsPerSec float64
	// RateLimitPublicKeyBurst is the per-IP issuance burst size.
	RateLimitPublicKeyBurst int

	// CORSEnabled indicates whether CORS is enabled.
	CORSEnabled bool
	// CORSAllowOrigins is a comma-separated list of allowed origins for CORS.
	CORSAllowOrigins string

	// MetricsEnabled indicates whether metrics collection is enabled.
	MetricsEnabled bool
	// MetricsNamespace is the namespace for the application metrics.
	MetricsNamespace string
	// MetricsPort is the port number for the metrics server.
	MetricsPort int

	// KMSProvider is the KMS provider to use (e.g., "google", "aws", "azure").
	KMSProvider string
	// KMSKeyURI is the URI of the key that wraps the card storage key.
	KMSKeyURI string
}

// Load loads configuration from environment variables and .env file.
func Load() *Config {
	// Try to load .env file recursively
	loadDotEnv()

	return &Config{
		// Server configuration
		ServerHost: env.GetString("SERVER_HOST", "0.0.0.0"),
		ServerPort: env.GetInt("SERVER_PORT", 8080),

		// Logging
		LogLevel: env.GetString("LOG_LEVEL", "info"),

		// Encryption sessions
		SessionTTL:           env.GetDuration("SESSION_TTL_SECONDS", 300, time.Second),
		SessionSweepInterval: env.GetDuration("SESSION_SWEEP_INTERVAL_SECONDS", 60, time.Second),

		// Response encryption policy
		ResponseEncryptionFailClosed: env.GetBool("RESPONSE_ENCRYPTION_FAIL_CLOSED", false),

		// Card storage encryption
		CardStorageKey:           env.GetString("CARD_STORAGE_KEY", ""),
		CardStorageKeyCiphertext: env.GetString("CARD_STORAGE_KEY_CIPHERTEXT", ""),
		CardStorageAlgorithm:     env.GetString("CARD_STORAGE_ALGORITHM", "aes-gcm"),

		// Admin access
		AdminPasswordHash: env.GetString("ADMIN_PASSWORD_HASH", ""),

		// Rate Limiting (API endpoints)
		RateLimitEnabled:        env.GetBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequestsPerSec: env.GetFloat64("RATE_LIMIT_REQUESTS_PER_SEC", 10.0),
		RateLimitBurst:          env.GetInt("RATE_LIMIT_BURST", 20),

		// Rate Limiting for public-key issuance (IP-based, unauthenticated)
		RateLimitPublicKeyEnabled:        env.GetBool("RATE_LIMIT_PUBLIC_KEY_ENABLED", true),
		RateLimitPublicKeyRequestsPerSec: env.GetFloat64("RATE_LIMIT_PUBLIC_KEY_REQUESTS_PER_SEC", 5.0),
		RateLimitPublicKeyBurst:          env.GetInt("RATE_LIMIT_PUBLIC_KEY_BURST", 10),

		// CORS
		CORSEnabled:      env.GetBool("CORS_ENABLED", false),
		CORSAllowOrigins: env.GetString("CORS_ALLOW_ORIGINS", ""),

		// Metrics
		MetricsEnabled:   env.GetBool("METRICS_ENABLED", true),
		MetricsNamespace: env.GetString("METRICS_NAMESPACE", "cardvault"),
		MetricsPort:      env.GetInt("METRICS_PORT", 8081),

		// KMS configuration
		KMSProvider: env.GetString("KMS_PROVIDER", ""),
		KMSKeyURI:   env.GetString("KMS_KEY_URI", ""),
	}
}

// GetGinMode returns the appropriate Gin mode based on log level.
func (c *Config) GetGinMode() string {
	switch c.LogLevel {
	case "debug":
		return "debug"
	case "info", "warn", "error":
		return "release"
	default:
		return "release"
	}
}

// loadDotEnv searches for a .env file recursively from the current directory
// up to the root directory and loads it if found.
func loadDotEnv() {
	// Get current working directory
	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	// Search for .env file recursively up the directory tree
	dir := cwd
	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			// .env file found, load it
			_ = godotenv.Load(envPath)
			return
		}

		// Move to parent directory
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root directory
			break
		}
		dir = parent
	}
}
