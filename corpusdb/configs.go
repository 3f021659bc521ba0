package corpusdb

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds the corpus database settings.
type Config struct {
	// DSN is the Postgres connection string.
	DSN string `yaml:"dsn" envconfig:"CORPUS_DSN"`

	// Table and Column locate the sentence text.
	Table  string `yaml:"table" envconfig:"CORPUS_TABLE"`
	Column string `yaml:"column" envconfig:"CORPUS_COLUMN"`

	// Limit caps how many sentences are loaded; zero means no cap.
	Limit int `yaml:"limit" envconfig:"CORPUS_LIMIT"`
}

// NewConfig reads the corpus database configuration from environment
// variables.
func NewConfig() Config {
	table := os.Getenv("CORPUS_TABLE")
	if table == "" {
		table = "sentences"
	}
	column := os.Getenv("CORPUS_COLUMN")
	if column == "" {
		column = "text"
	}

	limit := 0
	if raw := os.Getenv("CORPUS_LIMIT"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	return Config{
		DSN:    os.Getenv("CORPUS_DSN"),
		Table:  table,
		Column: column,
		Limit:  limit,
	}
}

// Validate checks the settings a connection attempt cannot succeed without.
func (c Config) Validate() error {
	if c.DSN == "" {
		return fmt.Errorf("corpusdb: dsn cannot be empty")
	}
	if c.Table == "" || c.Column == "" {
		return fmt.Errorf("corpusdb: table and column cannot be empty")
	}
	if c.Limit < 0 {
		return fmt.Errorf("corpusdb: limit must be non-negative, got %d", c.Limit)
	}
	return nil
}
