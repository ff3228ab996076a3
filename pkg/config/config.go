// pkg/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment string
	Ledger      LedgerConfig
	Database    DatabaseConfig
	Log         LogConfig
}

type LedgerConfig struct {
	// PlatformFeeBps is the platform cut on primary sales, in basis points.
	PlatformFeeBps int64
	// MinLicenseFee is the smallest fee accepted when granting a license,
	// in the ledger's smallest currency unit.
	MinLicenseFee int64
	// Treasury receives platform fees and may update the platform fee.
	Treasury string
}

type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	Database     string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  int
	LogLevel     string
}

type LogConfig struct {
	Level string
}

func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Ledger: LedgerConfig{
			PlatformFeeBps: getEnvAsInt64("LEDGER_PLATFORM_FEE_BPS", 500),
			MinLicenseFee:  getEnvAsInt64("LEDGER_MIN_LICENSE_FEE", 100),
			Treasury:       getEnv("LEDGER_TREASURY", "platform-treasury"),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", ""),
			Database:     getEnv("DB_NAME", "art_drm"),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  getEnvAsInt("DB_MAX_LIFETIME", 300),
			LogLevel:     getEnv("DB_LOG_LEVEL", "silent"),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	return config, config.Validate()
}

func (c *Config) Validate() error {
	if c.Ledger.PlatformFeeBps < 0 || c.Ledger.PlatformFeeBps >= 10000 {
		return fmt.Errorf("platform fee must be in [0, 10000) basis points, got %d", c.Ledger.PlatformFeeBps)
	}

	if c.Ledger.MinLicenseFee < 0 {
		return fmt.Errorf("minimum license fee cannot be negative")
	}

	if c.Ledger.Treasury == "" {
		return fmt.Errorf("treasury identity is required")
	}

	if c.Database.Password == "" && c.Environment == "production" {
		return fmt.Errorf("database password is required in production")
	}

	return nil
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
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

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
