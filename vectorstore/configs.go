package vectorstore

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the Qdrant connection settings.
type Config struct {
	Host   string `yaml:"host" envconfig:"VECTORSTORE_HOST"`
	Port   int    `yaml:"port" envconfig:"VECTORSTORE_PORT"`
	APIKey string `yaml:"api_key" envconfig:"VECTORSTORE_API_KEY"`
	UseTLS bool   `yaml:"use_tls" envconfig:"VECTORSTORE_USE_TLS"`

	// Collection receives the run's sentence embeddings.
	Collection string `yaml:"collection" envconfig:"VECTORSTORE_COLLECTION"`

	// Timeout bounds individual operations.
	Timeout time.Duration `yaml:"timeout" envconfig:"VECTORSTORE_TIMEOUT"`
}

// NewConfig reads the vector store configuration from environment variables.
func NewConfig() Config {
	port := 6334
	if raw := os.Getenv("VECTORSTORE_PORT"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			port = parsed
		}
	}

	collection := os.Getenv("VECTORSTORE_COLLECTION")
	if collection == "" {
		collection = "sentence-embeddings"
	}

	return Config{
		Host:       os.Getenv("VECTORSTORE_HOST"),
		Port:       port,
		APIKey:     os.Getenv("VECTORSTORE_API_KEY"),
		UseTLS:     os.Getenv("VECTORSTORE_USE_TLS") == "true",
		Collection: collection,
		Timeout:    10 * time.Second,
	}
}

// Validate checks the settings a connection attempt cannot succeed without.
func (c Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("vectorstore: host cannot be empty")
	}
	if c.Port <= 0 {
		return fmt.Errorf("vectorstore: port must be positive, got %d", c.Port)
	}
	if c.Collection == "" {
		return fmt.Errorf("vectorstore: collection cannot be empty")
	}
	return nil
}
