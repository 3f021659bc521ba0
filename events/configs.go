package events

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds the Kafka publisher settings.
type Config struct {
	// Brokers is the bootstrap broker list.
	Brokers []string `yaml:"brokers" envconfig:"EVENTS_BROKERS"`

	// Topic receives all training events.
	Topic string `yaml:"topic" envconfig:"EVENTS_TOPIC"`

	// BatchTimeout bounds how long events buffer before a flush.
	BatchTimeout time.Duration `yaml:"batch_timeout" envconfig:"EVENTS_BATCH_TIMEOUT"`

	// WriteTimeout bounds one publish attempt.
	WriteTimeout time.Duration `yaml:"write_timeout" envconfig:"EVENTS_WRITE_TIMEOUT"`
}

// NewConfig reads the publisher configuration from environment variables.
func NewConfig() Config {
	topic := os.Getenv("EVENTS_TOPIC")
	if topic == "" {
		topic = "training-events"
	}

	var brokers []string
	if raw := os.Getenv("EVENTS_BROKERS"); raw != "" {
		brokers = strings.Split(raw, ",")
	}

	return Config{
		Brokers:      brokers,
		Topic:        topic,
		BatchTimeout: 100 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
	}
}

// Validate checks the settings a publisher cannot run without.
func (c Config) Validate() error {
	if len(c.Brokers) == 0 {
		return fmt.Errorf("events: broker list cannot be empty")
	}
	if c.Topic == "" {
		return fmt.Errorf("events: topic cannot be empty")
	}
	return nil
}
