package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration
type Config struct {
	Port     string // Service port
	LogLevel string // slog level

	SigningSecret    string        // Secret for signing session credentials
	CredentialTTL    time.Duration // Session credential lifetime
	CookieExpiryDays int           // Session cookie lifetime in days

	ProfileCacheTTL      time.Duration // Freshness window for cached profiles
	GuildCacheTTL        time.Duration // Freshness window for cached guild lists
	ProfileSweepInterval time.Duration // Full-flush interval for the profile cache
	GuildSweepInterval   time.Duration // Full-flush interval for the guild cache

	DiscordClientID     string // OAuth application client ID
	DiscordClientSecret string // OAuth application client secret
	DiscordRedirectURI  string // OAuth redirect URI
	DiscordAPIBaseURL   string // Discord API base URL

	DatabaseURL      string // PostgreSQL DSN for the user record store
	AuthSharedSecret string // Shared secret protecting internal endpoints
}

// Load reads configuration from environment variables with sensible defaults
func Load() (*Config, error) {
	config := &Config{
		Port:     getEnv("PORT", "8890"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		SigningSecret:    getEnv("JWT_SECRET", ""),
		CredentialTTL:    24 * time.Hour,
		CookieExpiryDays: 7,

		ProfileCacheTTL:      15 * time.Minute,
		GuildCacheTTL:        1 * time.Minute,
		ProfileSweepInterval: 15 * time.Minute,
		GuildSweepInterval:   1 * time.Minute,

		DiscordClientID:     getEnv("DISCORD_CLIENT_ID", ""),
		DiscordClientSecret: getEnv("DISCORD_CLIENT_SECRET", ""),
		DiscordRedirectURI:  getEnv("DISCORD_REDIRECT_URI", ""),
		DiscordAPIBaseURL:   getEnv("DISCORD_API_BASE_URL", "https://discord.com/api/v10"),

		DatabaseURL:      getEnv("DATABASE_URL", ""),
		AuthSharedSecret: getEnv("AUTH_SHARED_SECRET", ""),
	}

	durations := []struct {
		env    string
		target *time.Duration
	}{
		{"JWT_EXPIRES_IN", &config.CredentialTTL},
		{"PROFILE_CACHE_TTL", &config.ProfileCacheTTL},
		{"GUILD_CACHE_TTL", &config.GuildCacheTTL},
		{"PROFILE_SWEEP_INTERVAL", &config.ProfileSweepInterval},
		{"GUILD_SWEEP_INTERVAL", &config.GuildSweepInterval},
	}
	for _, d := range durations {
		if v := os.Getenv(d.env); v != "" {
			duration, err := time.ParseDuration(v)
			if err != nil {
				return nil, fmt.Errorf("invalid %s format: %w", d.env, err)
			}
			*d.target = duration
		}
	}

	if v := os.Getenv("JWT_COOKIE_EXPIRES_IN"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid JWT_COOKIE_EXPIRES_IN format: %w", err)
		}
		config.CookieExpiryDays = days
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}

	if c.SigningSecret == "" {
		return fmt.Errorf("JWT_SECRET cannot be empty")
	}

	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL cannot be empty")
	}

	if c.DiscordClientID == "" || c.DiscordClientSecret == "" || c.DiscordRedirectURI == "" {
		return fmt.Errorf("DISCORD_CLIENT_ID, DISCORD_CLIENT_SECRET and DISCORD_REDIRECT_URI must be set")
	}

	if c.CredentialTTL <= 0 {
		return fmt.Errorf("JWT_EXPIRES_IN must be positive")
	}

	if c.CookieExpiryDays <= 0 {
		return fmt.Errorf("JWT_COOKIE_EXPIRES_IN must be positive")
	}

	if c.ProfileCacheTTL <= 0 || c.GuildCacheTTL <= 0 {
		return fmt.Errorf("cache TTLs must be positive")
	}

	if c.ProfileSweepInterval <= 0 || c.GuildSweepInterval <= 0 {
		return fmt.Errorf("sweep intervals must be positive")
	}

	return nil
}

// getEnv retrieves an environment variable or returns a fallback value
func getEnv(key, fallback string) string {
	// Check for _FILE suffix
	if fileValue := os.Getenv(key + "_FILE"); fileValue != "" {
		content, err := os.ReadFile(fileValue)
		if err == nil {
			return strings.TrimSpace(string(content))
		}
	}

	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
