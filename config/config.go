package config

import (
	"os"
	"strconv"
)

// Config holds the process configuration.
type Config struct {
	Port            string
	OpenRouterKey   string
	OpenRouterModel string
	DatabaseURL     string
	AugmentTimeout  int // seconds, bounds the single augmentation call
}

// Load reads configuration from environment variables.
func Load() *Config {
	return &Config{
		Port:            getEnv("PORT", "8080"),
		OpenRouterKey:   getEnv("OPENROUTER_API_KEY", ""),
		OpenRouterModel: getEnv("OPENROUTER_MODEL", "google/gemini-3-flash-preview"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		AugmentTimeout:  getEnvInt("AUGMENT_TIMEOUT_SECONDS", 60),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}
