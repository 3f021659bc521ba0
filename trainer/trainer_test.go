package trainer

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/sentencelab/simcl/augment"
	"github.com/sentencelab/simcl/logger"
	"github.com/sentencelab/simcl/loss"
)

func testLogger() *logger.LoggerClient {
	return logger.NewLoggerClient(logger.Config{Level: logger.Error, ServiceName: "trainer-test"})
}

func writeCorpusFile(t *testing.T, sentences []string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "train.txt")
	content := ""
	for _, s := range sentences {
		content += s + "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("cannot write corpus file: %v", err)
	}
	return path
}

var testSentences = []string{
	"the quick brown fox jumps over the lazy dog",
	"a cat sat on the warm mat",
	"ships sail across the open sea",
	"music fills the quiet room tonight",
	"rivers carve valleys through ancient stone",
	"the lazy dog sleeps in the sun",
}

func buildTrainer(t *testing.T, cfg Config, opts ...Option) *Trainer {
	t.Helper()
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("invalid test configuration: %v", err)
	}

	log := testLogger()
	corpus, err := LoadCorpus(cfg, log)
	if err != nil {
		t.Fatalf("cannot load corpus: %v", err)
	}
	tok, err := NewTokenizer(corpus)
	if err != nil {
		t.Fatalf("cannot build tokenizer: %v", err)
	}
	ds, err := NewPairDataset(cfg, corpus, tok)
	if err != nil {
		t.Fatalf("cannot build dataset: %v", err)
	}
	enc, err := NewEncoder(cfg, tok)
	if err != nil {
		t.Fatalf("cannot build encoder: %v", err)
	}
	extractor, err := NewExtractor(cfg, enc)
	if err != nil {
		t.Fatalf("cannot build extractor: %v", err)
	}
	engine, err := NewEngine(cfg)
	if err != nil {
		t.Fatalf("cannot build loss engine: %v", err)
	}

	tr, err := New(cfg, ds, extractor, engine, log, opts...)
	if err != nil {
		t.Fatalf("cannot build trainer: %v", err)
	}
	return tr
}

func TestRunSentenceObjective(t *testing.T) {
	cfg := Config{
		RunName:   "unit-sentence",
		TrainFile: writeCorpusFile(t, testSentences),
		Strategy:  augment.StrategyIdentity,
		Epochs:    2,
		BatchSize: 4,
		Seed:      7,
	}
	tr := buildTrainer(t, cfg)

	summary, err := tr.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	// 6 examples in batches of 4 gives 2 steps per epoch.
	if summary.Steps != 4 {
		t.Errorf("expected 4 steps, got %d", summary.Steps)
	}
	if math.IsNaN(summary.FinalLoss) || math.IsInf(summary.FinalLoss, 0) {
		t.Errorf("final loss must be finite, got %g", summary.FinalLoss)
	}
	if summary.FinalLoss < 0 {
		t.Errorf("cross-entropy loss cannot be negative, got %g", summary.FinalLoss)
	}
}

func TestRunWithTokenObjective(t *testing.T) {
	cfg := Config{
		RunName:           "unit-token",
		TrainFile:         writeCorpusFile(t, testSentences),
		Strategy:          augment.StrategyRepetition,
		SentenceObjective: true,
		TokenObjective:    true,
		Epochs:            1,
		BatchSize:         3,
		Seed:              11,
	}
	tr := buildTrainer(t, cfg)

	summary, err := tr.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if summary.Steps != 2 {
		t.Errorf("expected 2 steps, got %d", summary.Steps)
	}
	if math.IsNaN(summary.FinalLoss) {
		t.Errorf("final loss must be finite, got %g", summary.FinalLoss)
	}
}

func TestRunIsDeterministicForFixedSeed(t *testing.T) {
	path := writeCorpusFile(t, testSentences)
	cfg := Config{
		RunName:   "unit-determinism",
		TrainFile: path,
		Strategy:  augment.StrategyIdentity,
		Epochs:    1,
		BatchSize: 6,
		Seed:      42,
	}

	first, err := buildTrainer(t, cfg).Run(context.Background())
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	second, err := buildTrainer(t, cfg).Run(context.Background())
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	// The encoder applies dropout in training mode, so losses may differ
	// between runs, but the step counts must not.
	if first.Steps != second.Steps {
		t.Errorf("step counts diverged: %d vs %d", first.Steps, second.Steps)
	}
}

type recordingStepper struct {
	results []loss.Result
}

func (s *recordingStepper) Step(_ context.Context, result loss.Result) error {
	s.results = append(s.results, result)
	return nil
}

func TestRunForwardsEveryStepToStepper(t *testing.T) {
	cfg := Config{
		RunName:   "unit-stepper",
		TrainFile: writeCorpusFile(t, testSentences),
		Strategy:  augment.StrategyEDA,
		Epochs:    1,
		BatchSize: 2,
		Seed:      3,
	}
	stepper := &recordingStepper{}
	tr := buildTrainer(t, cfg, WithStepper(stepper))

	summary, err := tr.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(stepper.results) != summary.Steps {
		t.Errorf("stepper saw %d steps, summary reports %d", len(stepper.results), summary.Steps)
	}
	for i, r := range stepper.results {
		if r.Total != r.Sentence+cfg.TokenCoeff*r.Token {
			t.Errorf("step %d: total %g does not combine sentence %g and token %g", i, r.Total, r.Sentence, r.Token)
		}
	}
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	cfg := Config{
		RunName:   "unit-cancel",
		TrainFile: writeCorpusFile(t, testSentences),
		Epochs:    3,
		BatchSize: 2,
		Seed:      5,
	}
	tr := buildTrainer(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := tr.Run(ctx); err == nil {
		t.Error("expected an error for a cancelled context")
	}
}

func TestNewRejectsMissingCollaborators(t *testing.T) {
	cfg := Config{TrainFile: "corpus.txt"}
	if _, err := New(cfg, nil, nil, nil, testLogger()); err == nil {
		t.Error("expected error for missing collaborators")
	}
}

func TestConfigApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	if cfg.Strategy != augment.StrategyIdentity {
		t.Errorf("expected identity strategy default, got %q", cfg.Strategy)
	}
	if cfg.Pooler != "cls" {
		t.Errorf("expected cls pooler default, got %q", cfg.Pooler)
	}
	if cfg.MaxSeqLength != DefaultMaxSeqLength {
		t.Errorf("expected max length %d, got %d", DefaultMaxSeqLength, cfg.MaxSeqLength)
	}
	if cfg.Temperature != DefaultTemperature {
		t.Errorf("expected temperature %g, got %g", DefaultTemperature, cfg.Temperature)
	}
	if cfg.BatchSize != DefaultBatchSize {
		t.Errorf("expected batch size %d, got %d", DefaultBatchSize, cfg.BatchSize)
	}
	if !cfg.SentenceObjective {
		t.Error("expected the sentence objective to be enabled by default")
	}
	if cfg.RunName == "" {
		t.Error("expected a generated run name")
	}
}

func TestConfigValidate(t *testing.T) {
	valid := Config{TrainFile: "corpus.txt"}
	valid.ApplyDefaults()
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid configuration, got %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown pooler", func(c *Config) { c.Pooler = "median" }},
		{"max length too small", func(c *Config) { c.MaxSeqLength = 1 }},
		{"negative temperature", func(c *Config) { c.Temperature = -0.1 }},
		{"zero batch size", func(c *Config) { c.BatchSize = -1 }},
		{"unknown strategy", func(c *Config) { c.Strategy = "shuffle" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}
