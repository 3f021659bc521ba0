package dataset

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"

	"github.com/sentencelab/simcl/augment"
	"github.com/sentencelab/simcl/tokenizer"
)

// PlainDataset pairs every sentence with an identical encoding of itself.
// The two views only diverge inside the encoder, through dropout.
type PlainDataset struct {
	sentences []string
	tok       tokenizer.Tokenizer
	maxLen    int
}

// NewPlainDataset builds an identity-augmentation dataset.
func NewPlainDataset(sentences []string, tok tokenizer.Tokenizer, maxLen int) (*PlainDataset, error) {
	if err := validateCorpus(sentences, maxLen); err != nil {
		return nil, err
	}
	return &PlainDataset{sentences: sentences, tok: tok, maxLen: maxLen}, nil
}

func (d *PlainDataset) Len() int { return len(d.sentences) }

func (d *PlainDataset) Get(index int) (Pair, error) {
	if index < 0 || index >= len(d.sentences) {
		return Pair{}, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, index, len(d.sentences))
	}

	enc := tokenizer.Encode(d.tok, d.sentences[index], d.maxLen)

	real := enc.RealTokens()
	positions := make([][2]int, 0, real)
	for p := 0; p < real; p++ {
		positions = append(positions, [2]int{p, p})
	}

	variant := tokenizer.Encoding{
		InputIDs:      append([]int64(nil), enc.InputIDs...),
		AttentionMask: append([]int64(nil), enc.AttentionMask...),
	}

	return Pair{Anchor: enc, Variant: variant, Positions: positions}, nil
}

// RepetitionDataset pairs every sentence with a copy in which randomly chosen
// sub-word tokens are duplicated. It tracks where each anchor token ended up
// in the variant so token-level objectives can align the two views.
type RepetitionDataset struct {
	sentences []string
	tok       tokenizer.Tokenizer
	maxLen    int
	rep       augment.Repetition

	mu  sync.Mutex
	rng *rand.Rand
}

// NewRepetitionDataset builds a word-repetition dataset. The same seed always
// replays the same sequence of variants for sequential access.
func NewRepetitionDataset(sentences []string, tok tokenizer.Tokenizer, maxLen int, dupRate float64, seed int64) (*RepetitionDataset, error) {
	if err := validateCorpus(sentences, maxLen); err != nil {
		return nil, err
	}
	rep, err := augment.NewRepetition(dupRate)
	if err != nil {
		return nil, err
	}
	return &RepetitionDataset{
		sentences: sentences,
		tok:       tok,
		maxLen:    maxLen,
		rep:       rep,
		rng:       rand.New(rand.NewSource(seed)),
	}, nil
}

func (d *RepetitionDataset) Len() int { return len(d.sentences) }

func (d *RepetitionDataset) Get(index int) (Pair, error) {
	if index < 0 || index >= len(d.sentences) {
		return Pair{}, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, index, len(d.sentences))
	}

	ids := d.tok.Tokenize(d.sentences[index])

	d.mu.Lock()
	dup, rawPairs := d.rep.ApplyWithPairs(d.rng, ids)
	d.mu.Unlock()

	anchor := tokenizer.BuildEncoding(d.tok, ids, d.maxLen)
	variant := tokenizer.BuildEncoding(d.tok, dup, d.maxLen)

	// Content positions shift by one for BOS; pairs past the truncation
	// boundary in either view are dropped.
	contentLimit := d.maxLen - 2
	positions := make([][2]int, 0, len(rawPairs)+2)
	positions = append(positions, [2]int{0, 0})
	for _, p := range rawPairs {
		if p[0] >= contentLimit || p[1] >= contentLimit {
			continue
		}
		positions = append(positions, [2]int{p[0] + 1, p[1] + 1})
	}
	positions = append(positions, [2]int{anchor.RealTokens() - 1, variant.RealTokens() - 1})

	return Pair{Anchor: anchor, Variant: variant, Positions: positions}, nil
}

// EDADataset pairs every sentence with a word-level perturbation of itself.
// Word operations reorder or drop tokens unpredictably, so no position
// mapping is produced.
type EDADataset struct {
	sentences []string
	tok       tokenizer.Tokenizer
	maxLen    int
	eda       augment.EDA

	mu  sync.Mutex
	rng *rand.Rand
}

// NewEDADataset builds an easy-data-augmentation dataset.
func NewEDADataset(sentences []string, tok tokenizer.Tokenizer, maxLen int, seed int64) (*EDADataset, error) {
	if err := validateCorpus(sentences, maxLen); err != nil {
		return nil, err
	}
	return &EDADataset{
		sentences: sentences,
		tok:       tok,
		maxLen:    maxLen,
		rng:       rand.New(rand.NewSource(seed)),
	}, nil
}

func (d *EDADataset) Len() int { return len(d.sentences) }

func (d *EDADataset) Get(index int) (Pair, error) {
	if index < 0 || index >= len(d.sentences) {
		return Pair{}, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, index, len(d.sentences))
	}

	sentence := d.sentences[index]
	words := strings.Fields(sentence)

	d.mu.Lock()
	perturbed := d.eda.ApplyWords(d.rng, words)
	d.mu.Unlock()

	anchor := tokenizer.Encode(d.tok, sentence, d.maxLen)
	variant := tokenizer.Encode(d.tok, strings.Join(perturbed, " "), d.maxLen)

	return Pair{Anchor: anchor, Variant: variant}, nil
}

// New builds the dataset flavor matching the augmentation strategy name.
func New(strategy string, sentences []string, tok tokenizer.Tokenizer, maxLen int, dupRate float64, seed int64) (PairDataset, error) {
	switch strategy {
	case augment.StrategyIdentity:
		return NewPlainDataset(sentences, tok, maxLen)
	case augment.StrategyRepetition:
		return NewRepetitionDataset(sentences, tok, maxLen, dupRate, seed)
	case augment.StrategyEDA:
		return NewEDADataset(sentences, tok, maxLen, seed)
	default:
		return nil, fmt.Errorf("dataset: unknown augmentation strategy %q", strategy)
	}
}

func validateCorpus(sentences []string, maxLen int) error {
	if len(sentences) == 0 {
		return ErrEmptyCorpus
	}
	if maxLen < 2 {
		return fmt.Errorf("dataset: max sequence length must fit BOS and EOS, got %d", maxLen)
	}
	return nil
}
