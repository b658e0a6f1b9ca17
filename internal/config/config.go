package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application. Collaborator endpoints
// are explicit here and injected at construction; nothing reads them from the
// environment after startup.
type Config struct {
	AppMode  string
	Port     string
	Database DatabaseConfig
	Services ServicesConfig
	Email    EmailConfig
	Redis    RedisConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// ServicesConfig holds the external collaborator endpoints
type ServicesConfig struct {
	// UserServiceURL is the identity provider used for token introspection.
	// Required: without it no request can be authenticated.
	UserServiceURL string
	// PointsServiceURL is the rewards microservice notified on contract
	// signing. Optional; empty disables the notification.
	PointsServiceURL string
	// VehicleAPIURL is the vehicle catalog used to fill descriptors on
	// create. Optional.
	VehicleAPIURL string
}

// EmailConfig holds SendGrid configuration
type EmailConfig struct {
	SendGridAPIKey string
	FromEmail      string
	FromName       string
}

// RedisConfig holds the introspection cache configuration. Optional; an empty
// Addr disables caching.
type RedisConfig struct {
	Addr string
	DB   int
}

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))

	config := &Config{
		AppMode: appMode,
		Port:    getEnv("PORT", "3000"),
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "3306"),
			User:     getEnv("DB_USER", "root"),
			Password: getEnv("DB_PASS", ""),
			DBName:   getEnv("DB_NAME", "fintech_financing"),
		},
		Services: ServicesConfig{
			UserServiceURL:   getEnv("USER_SERVICE_URL", ""),
			PointsServiceURL: getEnv("POINTS_SERVICE_URL", ""),
			VehicleAPIURL:    getEnv("VEHICLE_API_URL", ""),
		},
		Email: EmailConfig{
			SendGridAPIKey: getEnv("SENDGRID_API_KEY", ""),
			FromEmail:      getEnv("EMAIL_FROM", "no-reply@fintech.example"),
			FromName:       getEnv("EMAIL_FROM_NAME", "FinTech Financing"),
		},
		Redis: RedisConfig{
			Addr: getEnv("REDIS_ADDR", ""),
			DB:   redisDB,
		},
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	log.Printf("configuration loaded [MODE: %s]", appMode)
	return config, nil
}

// validate rejects configurations that cannot possibly serve requests.
func (c *Config) validate() error {
	if c.Services.UserServiceURL == "" {
		return fmt.Errorf("USER_SERVICE_URL is required: authentication is delegated to the user service")
	}
	if c.Email.SendGridAPIKey != "" && c.Email.FromEmail == "" {
		return fmt.Errorf("EMAIL_FROM is required when SENDGRID_API_KEY is set")
	}
	return nil
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}

// IsProd returns true if running in production mode
func (c *Config) IsProd() bool {
	return c.AppMode == "prod"
}

// GetAllowedOrigins returns allowed origins for CORS
func (c *Config) GetAllowedOrigins() string {
	origins := getEnv("ALLOWED_ORIGINS", "")
	if origins == "" && c.IsDev() {
		return "*"
	}
	return origins
}
