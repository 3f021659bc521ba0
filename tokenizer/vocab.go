package tokenizer

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Reserved ids shared by every vocabulary this trainer loads. They mirror the
// RoBERTa convention of BOS=0, PAD=1, EOS=2, UNK=3.
const (
	bosID int64 = 0
	padID int64 = 1
	eosID int64 = 2
	unkID int64 = 3
)

// firstVocabID is the lowest id a regular vocabulary entry may use.
const firstVocabID int64 = 4

// VocabTokenizer is a deterministic whitespace tokenizer backed by a fixed
// word-to-id vocabulary. Words absent from the vocabulary map to the unknown
// id. It is intentionally simple; the encoder boundary decides which
// real tokenizer ships to production, this one keeps the training core
// testable without external model files.
type VocabTokenizer struct {
	vocab map[string]int64
}

// NewVocabTokenizer builds a tokenizer from an explicit vocabulary. Entries
// colliding with the reserved special ids are rejected.
func NewVocabTokenizer(vocab map[string]int64) (*VocabTokenizer, error) {
	owned := make(map[string]int64, len(vocab))
	for word, id := range vocab {
		if id < firstVocabID {
			return nil, fmt.Errorf("tokenizer: word %q uses reserved id %d", word, id)
		}
		owned[word] = id
	}
	return &VocabTokenizer{vocab: owned}, nil
}

// NewVocabTokenizerFromFile loads a JSON object mapping words to ids.
func NewVocabTokenizerFromFile(path string) (*VocabTokenizer, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("tokenizer: cannot read vocabulary file: %w", err)
	}

	var vocab map[string]int64
	if err := json.Unmarshal(raw, &vocab); err != nil {
		return nil, fmt.Errorf("tokenizer: cannot parse vocabulary file: %w", err)
	}

	return NewVocabTokenizer(vocab)
}

// NewVocabTokenizerFromCorpus derives a vocabulary from the corpus itself:
// unique lowercased words, sorted, assigned ids from the first free slot
// after the reserved specials. The same corpus always yields the same ids.
func NewVocabTokenizerFromCorpus(sentences []string) (*VocabTokenizer, error) {
	seen := make(map[string]bool)
	for _, s := range sentences {
		for _, word := range strings.Fields(s) {
			seen[strings.ToLower(word)] = true
		}
	}

	words := make([]string, 0, len(seen))
	for word := range seen {
		words = append(words, word)
	}
	sort.Strings(words)

	vocab := make(map[string]int64, len(words))
	for i, word := range words {
		vocab[word] = firstVocabID + int64(i)
	}
	return NewVocabTokenizer(vocab)
}

// Tokenize splits text on whitespace and maps each lowercased word to its id.
func (t *VocabTokenizer) Tokenize(text string) []int64 {
	words := strings.Fields(text)
	ids := make([]int64, 0, len(words))
	for _, word := range words {
		id, ok := t.vocab[strings.ToLower(word)]
		if !ok {
			id = unkID
		}
		ids = append(ids, id)
	}
	return ids
}

func (t *VocabTokenizer) PadID() int64 { return padID }

func (t *VocabTokenizer) BOSID() int64 { return bosID }

func (t *VocabTokenizer) EOSID() int64 { return eosID }

// VocabSize returns the number of regular vocabulary entries.
func (t *VocabTokenizer) VocabSize() int { return len(t.vocab) }
