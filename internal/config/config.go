package config

import (
	"os"
	"strings"
)

// Config holds all runtime configuration for the API server
type Config struct {
	Port           string
	Env            string
	Debug          bool
	JWTSecret      string
	DatabasePath   string
	AllowedOrigins []string
}

// Load reads configuration from environment variables, falling back to
// development defaults. Callers load .env files before calling this.
func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8080"),
		Env:            getEnv("ENV", "development"),
		Debug:          getEnv("DEBUG", "") == "true",
		JWTSecret:      getEnv("JWT_SECRET", "mt5-portal-secret"),
		DatabasePath:   getEnv("DATABASE_PATH", "portal.db"),
		AllowedOrigins: splitOrigins(getEnv("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:3001")),
	}
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
