package trainer

import (
	"context"
	"fmt"

	"go.uber.org/fx"

	"github.com/sentencelab/simcl/corpusdb"
	"github.com/sentencelab/simcl/dataset"
	"github.com/sentencelab/simcl/encoder"
	"github.com/sentencelab/simcl/logger"
	"github.com/sentencelab/simcl/loss"
	"github.com/sentencelab/simcl/represent"
	"github.com/sentencelab/simcl/tokenizer"
)

// Corpus is the loaded training sentences, shared between the tokenizer and
// dataset providers.
type Corpus []string

// LoadCorpus reads the training file named in the configuration.
func LoadCorpus(cfg Config, log *logger.LoggerClient) (Corpus, error) {
	if cfg.TrainFile == "" {
		return nil, fmt.Errorf("trainer: no training file configured")
	}
	sentences, err := dataset.ReadCorpus(cfg.TrainFile)
	if err != nil {
		return nil, err
	}
	log.Info("loaded corpus", nil, map[string]interface{}{
		"file":      cfg.TrainFile,
		"sentences": len(sentences),
	})
	return Corpus(sentences), nil
}

// CorpusParams lets the corpus come from the database source when one is
// registered; otherwise the training file is read.
type CorpusParams struct {
	fx.In

	Config Config
	Logger *logger.LoggerClient
	Source *corpusdb.Source `optional:"true"`
}

// LoadCorpusWithDI prefers the database source over the training file.
func LoadCorpusWithDI(p CorpusParams) (Corpus, error) {
	if p.Source != nil {
		sentences, err := p.Source.LoadSentences(context.Background())
		if err != nil {
			return nil, err
		}
		p.Logger.Info("loaded corpus", nil, map[string]interface{}{
			"source":    "postgres",
			"sentences": len(sentences),
		})
		return Corpus(sentences), nil
	}
	return LoadCorpus(p.Config, p.Logger)
}

// NewTokenizer derives a deterministic vocabulary tokenizer from the corpus.
func NewTokenizer(corpus Corpus) (tokenizer.Tokenizer, error) {
	return tokenizer.NewVocabTokenizerFromCorpus(corpus)
}

// NewPairDataset builds the dataset flavor selected by the configuration.
func NewPairDataset(cfg Config, corpus Corpus, tok tokenizer.Tokenizer) (dataset.PairDataset, error) {
	return dataset.New(cfg.Strategy, corpus, tok, cfg.MaxSeqLength, cfg.DupRate, cfg.Seed)
}

// NewEncoder builds the built-in encoder sized to the corpus vocabulary.
func NewEncoder(cfg Config, tok tokenizer.Tokenizer) (encoder.Encoder, error) {
	vocabSize := cfg.EncoderVocabCapacity
	if vt, ok := tok.(*tokenizer.VocabTokenizer); ok && vocabSize == 0 {
		// Reserved specials occupy the first four ids.
		vocabSize = vt.VocabSize() + 4
	}
	return encoder.NewStatic(vocabSize, cfg.EncoderHidden, cfg.EncoderDropout, cfg.Seed)
}

// NewExtractor builds the representation extractor in training mode.
func NewExtractor(cfg Config, enc encoder.Encoder) (*represent.Extractor, error) {
	pooler, err := represent.ParsePoolerType(cfg.Pooler)
	if err != nil {
		return nil, err
	}
	return represent.NewExtractor(enc, pooler, true, cfg.Seed)
}

// NewEngine builds the loss engine from the run configuration.
func NewEngine(cfg Config) (*loss.Engine, error) {
	return loss.NewEngine(loss.Config{
		Temperature:     cfg.Temperature,
		SentenceEnabled: cfg.SentenceObjective,
		TokenEnabled:    cfg.TokenObjective,
		TokenCoeff:      cfg.TokenCoeff,
	}, nil)
}
