// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment string
	Server      ServerConfig
	Strapi      StrapiConfig
	Email       EmailConfig
	Cache       CacheConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	ReadTimeout  int
	WriteTimeout int
	IdleTimeout  int
}

type StrapiConfig struct {
	BaseURL  string
	APIToken string
	Timeout  int // in seconds
	PageSize int
}

type EmailConfig struct {
	SMTPHost     string
	SMTPPort     string
	SMTPSecure   bool
	SMTPUsername string
	SMTPPassword string
	FromEmail    string
	FromName     string
}

type CacheConfig struct {
	Dir         string
	TaxonomyTTL time.Duration
	QueryTTL    time.Duration
}

func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Port:         getEnv("PORT", "3001"),
			Host:         getEnv("SERVER_HOST", "localhost"),
			ReadTimeout:  getEnvAsInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvAsInt("SERVER_WRITE_TIMEOUT", 15),
			IdleTimeout:  getEnvAsInt("SERVER_IDLE_TIMEOUT", 60),
		},
		Strapi: StrapiConfig{
			BaseURL:  getEnv("STRAPI_API_URL", "http://localhost:1337"),
			APIToken: getEnv("STRAPI_API_TOKEN", ""),
			Timeout:  getEnvAsInt("STRAPI_TIMEOUT", 15),
			PageSize: getEnvAsInt("STRAPI_PAGE_SIZE", 12),
		},
		Email: EmailConfig{
			SMTPHost:     getEnv("SMTP_HOST", ""),
			SMTPPort:     getEnv("SMTP_PORT", "587"),
			SMTPSecure:   getEnvAsBool("SMTP_SECURE", false),
			SMTPUsername: getEnv("SMTP_USER", ""),
			SMTPPassword: getEnv("SMTP_PASS", ""),
			FromEmail:    getEnv("FROM_EMAIL", "noreply@giftcraft.store"),
			FromName:     getEnv("FROM_NAME", "Giftcraft"),
		},
		Cache: CacheConfig{
			Dir:         getEnv("CACHE_DIR", ".cache"),
			TaxonomyTTL: getEnvAsDuration("TAXONOMY_CACHE_TTL", 24*time.Hour),
			QueryTTL:    getEnvAsDuration("QUERY_CACHE_TTL", 30*time.Second),
		},
	}

	return config, config.Validate()
}

func (c *Config) Validate() error {
	if c.Strapi.BaseURL == "" {
		return fmt.Errorf("STRAPI_API_URL is required")
	}

	c.Strapi.BaseURL = strings.TrimRight(c.Strapi.BaseURL, "/")

	if c.Environment == "production" && c.Strapi.APIToken == "" {
		return fmt.Errorf("STRAPI_API_TOKEN is required in production")
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(strings.ToLower(value)); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
