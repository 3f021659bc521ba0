package registry

import (
	"fmt"
	"os"
)

// Config holds the database connection settings for the run registry.
type Config struct {
	// DSN is the Postgres connection string.
	DSN string `yaml:"dsn" envconfig:"REGISTRY_DSN"`

	// AutoMigrate creates or updates the runs table at startup.
	AutoMigrate bool `yaml:"auto_migrate" envconfig:"REGISTRY_AUTO_MIGRATE"`
}

// NewConfig reads the registry configuration from environment variables.
func NewConfig() Config {
	return Config{
		DSN:         os.Getenv("REGISTRY_DSN"),
		AutoMigrate: os.Getenv("REGISTRY_AUTO_MIGRATE") != "false",
	}
}

// Validate checks the settings a connection attempt cannot succeed without.
func (c Config) Validate() error {
	if c.DSN == "" {
		return fmt.Errorf("registry: dsn cannot be empty")
	}
	return nil
}
