package artifacts

import (
	"fmt"
	"os"
)

// Config holds the object storage connection settings.
type Config struct {
	Endpoint        string `yaml:"endpoint" envconfig:"ARTIFACTS_ENDPOINT"`
	AccessKeyID     string `yaml:"access_key_id" envconfig:"ARTIFACTS_ACCESS_KEY_ID"`
	SecretAccessKey string `yaml:"secret_access_key" envconfig:"ARTIFACTS_SECRET_ACCESS_KEY"`
	UseSSL          bool   `yaml:"use_ssl" envconfig:"ARTIFACTS_USE_SSL"`
	Region          string `yaml:"region" envconfig:"ARTIFACTS_REGION"`

	// Bucket is where every run writes its artifacts.
	Bucket string `yaml:"bucket" envconfig:"ARTIFACTS_BUCKET"`

	// CreateBucket allows the client to create the bucket when missing.
	CreateBucket bool `yaml:"create_bucket" envconfig:"ARTIFACTS_CREATE_BUCKET"`
}

// NewConfig reads the artifact store configuration from environment variables.
func NewConfig() Config {
	bucket := os.Getenv("ARTIFACTS_BUCKET")
	if bucket == "" {
		bucket = "training-runs"
	}

	return Config{
		Endpoint:        os.Getenv("ARTIFACTS_ENDPOINT"),
		AccessKeyID:     os.Getenv("ARTIFACTS_ACCESS_KEY_ID"),
		SecretAccessKey: os.Getenv("ARTIFACTS_SECRET_ACCESS_KEY"),
		UseSSL:          os.Getenv("ARTIFACTS_USE_SSL") == "true",
		Region:          os.Getenv("ARTIFACTS_REGION"),
		Bucket:          bucket,
		CreateBucket:    os.Getenv("ARTIFACTS_CREATE_BUCKET") != "false",
	}
}

// Validate checks the settings a connection attempt cannot succeed without.
func (c Config) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("artifacts: endpoint cannot be empty")
	}
	if c.Bucket == "" {
		return fmt.Errorf("artifacts: bucket cannot be empty")
	}
	return nil
}
