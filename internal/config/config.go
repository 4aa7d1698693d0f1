package config

import (
	"fmt"
	"log"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// It is read once at start and never modified afterwards.
type Config struct {
	// Server configuration
	Host            string        `json:"host" validate:"omitempty,hostname|ip"`
	Port            int           `json:"port" validate:"min=1,max=65535"`
	Env             string        `json:"env"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout" validate:"gt=0"`

	// Public root
	PublicRoot string `json:"public_root" validate:"required"`
	IndexFile  string `json:"index_file" validate:"required,excludes=/"`

	// Asset bucket mirrored into the public root at start
	AssetsBucket    string `json:"assets_bucket"`
	AssetsPrefix    string `json:"assets_prefix"`
	AssetsEndpoint  string `json:"assets_endpoint" validate:"omitempty,url"`
	AssetsRegion    string `json:"assets_region" validate:"required_with=AssetsBucket"`
	AssetsAccessKey string `json:"assets_access_key" validate:"required_with=AssetsSecretKey"`
	AssetsSecretKey string `json:"assets_secret_key" validate:"required_with=AssetsAccessKey"`

	// Logging
	LogLevel  string `json:"log_level" validate:"oneof=trace debug info warn error fatal panic disabled"`
	LogFile   string `json:"log_file"`
	LogPretty bool   `json:"log_pretty"`
}

// Load loads configuration from an optional .env file and the environment,
// then validates it.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	// A malformed port is an error, not a silent default
	port, err := strconv.Atoi(getEnv("PORT", "8000"))
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: PORT: %w", err)
	}

	cfg := &Config{
		Host:            getEnv("HOST", ""),
		Port:            port,
		Env:             getEnv("APP_ENV", "development"),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),

		PublicRoot: getEnv("PUBLIC_ROOT", "server/public"),
		IndexFile:  getEnv("INDEX_FILE", "index.html"),

		AssetsBucket:    getEnv("ASSETS_BUCKET", ""),
		AssetsPrefix:    getEnv("ASSETS_PREFIX", ""),
		AssetsEndpoint:  getEnv("ASSETS_ENDPOINT", ""),
		AssetsRegion:    getEnv("ASSETS_REGION", "auto"),
		AssetsAccessKey: getEnv("ASSETS_ACCESS_KEY", ""),
		AssetsSecretKey: getEnv("ASSETS_SECRET_KEY", ""),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFile:   getEnv("LOG_FILE", ""),
		LogPretty: getEnvAsBool("LOG_PRETTY", false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration against its struct tags.
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

// Addr returns the listen address in host:port form.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// MirrorEnabled reports whether an asset bucket should be mirrored at start.
func (c *Config) MirrorEnabled() bool {
	return c.AssetsBucket != ""
}

// Helper functions for environment variable handling
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsBool(name string, defaultVal bool) bool {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %t", name, err, defaultVal)
		return defaultVal
	}
	return value
}

func getEnvAsDuration(name string, defaultVal time.Duration) time.Duration {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %v", name, err, defaultVal)
		return defaultVal
	}
	return value
}
