package trainer

import (
	"fmt"
	"time"

	"github.com/sentencelab/simcl/augment"
	"github.com/sentencelab/simcl/represent"
)

// Defaults applied by Config.ApplyDefaults.
const (
	DefaultMaxSeqLength = 32
	DefaultTemperature  = 0.05
	DefaultTokenCoeff   = 0.1
	DefaultBatchSize    = 64
	DefaultEpochs       = 1
	DefaultDupRate      = 0.32
)

// Config is the resolved configuration of one training run.
type Config struct {
	// RunName identifies the run in the registry, artifacts and events.
	RunName string `json:"run_name"`

	// TrainFile is the corpus path (.txt, .csv or .json). Required unless
	// the corpus comes from the database source.
	TrainFile string `json:"train_file"`

	// Strategy selects the augmentation: identity, repetition or eda.
	Strategy string `json:"strategy"`

	// DupRate is the word-repetition duplication rate.
	DupRate float64 `json:"dup_rate"`

	// Pooler selects the pooling strategy by name.
	Pooler string `json:"pooler"`

	// MaxSeqLength is the fixed encoding length.
	MaxSeqLength int `json:"max_seq_length"`

	// Temperature scales similarities in both objectives.
	Temperature float64 `json:"temperature"`

	// SentenceObjective and TokenObjective toggle the two losses.
	SentenceObjective bool `json:"sentence_objective"`
	TokenObjective    bool `json:"token_objective"`

	// TokenCoeff weighs the token objective in the combined loss.
	TokenCoeff float64 `json:"token_coeff"`

	Epochs    int   `json:"epochs"`
	BatchSize int   `json:"batch_size"`
	Seed      int64 `json:"seed"`

	// EncoderHidden and EncoderDropout size the built-in encoder.
	// EncoderVocabCapacity caps its embedding table; zero derives it from
	// the tokenizer vocabulary.
	EncoderHidden        int     `json:"encoder_hidden"`
	EncoderDropout       float64 `json:"encoder_dropout"`
	EncoderVocabCapacity int     `json:"encoder_vocab_capacity"`

	// CheckpointEvery writes a projection head checkpoint every N epochs;
	// zero disables checkpointing.
	CheckpointEvery int `json:"checkpoint_every"`

	// LogEvery logs step progress every N steps.
	LogEvery int `json:"log_every"`
}

// ApplyDefaults fills unset numeric fields with the standard values.
func (c *Config) ApplyDefaults() {
	if c.RunName == "" {
		c.RunName = fmt.Sprintf("run-%d", time.Now().UTC().Unix())
	}
	if c.Strategy == "" {
		c.Strategy = augment.StrategyIdentity
	}
	if c.DupRate == 0 {
		c.DupRate = DefaultDupRate
	}
	if c.Pooler == "" {
		c.Pooler = "cls"
	}
	if c.MaxSeqLength == 0 {
		c.MaxSeqLength = DefaultMaxSeqLength
	}
	if c.Temperature == 0 {
		c.Temperature = DefaultTemperature
	}
	if c.TokenCoeff == 0 {
		c.TokenCoeff = DefaultTokenCoeff
	}
	if c.Epochs == 0 {
		c.Epochs = DefaultEpochs
	}
	if c.BatchSize == 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.EncoderHidden == 0 {
		c.EncoderHidden = 128
	}
	if c.EncoderDropout == 0 {
		c.EncoderDropout = 0.1
	}
	if c.LogEvery == 0 {
		c.LogEvery = 10
	}
	if !c.SentenceObjective && !c.TokenObjective {
		c.SentenceObjective = true
	}
}

// Validate rejects configurations the trainer cannot run with. An empty
// TrainFile passes here; corpus loading reports it when no database source
// covers for it.
func (c Config) Validate() error {
	if _, err := represent.ParsePoolerType(c.Pooler); err != nil {
		return err
	}
	if c.MaxSeqLength < 2 {
		return fmt.Errorf("trainer: max sequence length must be at least 2, got %d", c.MaxSeqLength)
	}
	if c.Temperature <= 0 {
		return fmt.Errorf("trainer: temperature must be positive, got %g", c.Temperature)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("trainer: batch size must be positive, got %d", c.BatchSize)
	}
	if c.Epochs <= 0 {
		return fmt.Errorf("trainer: epochs must be positive, got %d", c.Epochs)
	}
	switch c.Strategy {
	case augment.StrategyIdentity, augment.StrategyRepetition, augment.StrategyEDA:
	default:
		return fmt.Errorf("trainer: unknown augmentation strategy %q", c.Strategy)
	}
	return nil
}

// RunArgs is the snapshot persisted to the artifact store when a run starts.
// It records the exact configuration plus environment facts a later reader
// needs to reproduce the run.
type RunArgs struct {
	Config    Config    `json:"config"`
	RunID     string    `json:"run_id"`
	WorldSize int       `json:"world_size"`
	Rank      int       `json:"rank"`
	StartedAt time.Time `json:"started_at"`
}
