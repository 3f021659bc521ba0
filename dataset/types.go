package dataset

import (
	"errors"

	"github.com/sentencelab/simcl/tokenizer"
)

var (
	// ErrUnsupportedExtension rejects corpus files that are not .txt, .csv
	// or .json.
	ErrUnsupportedExtension = errors.New("dataset: training file must be csv, json or txt")

	// ErrEmptyCorpus rejects corpora that contain no usable sentences.
	ErrEmptyCorpus = errors.New("dataset: corpus contains no sentences")

	// ErrIndexOutOfRange signals access past the end of a dataset.
	ErrIndexOutOfRange = errors.New("dataset: index out of range")
)

// Pair is one training example: two views of the same sentence.
//
// Positions maps anchor encoding positions to variant encoding positions that
// hold the same originating token, padding and truncation already accounted
// for. It is nil for augmentations that cannot track token provenance.
type Pair struct {
	Anchor    tokenizer.Encoding
	Variant   tokenizer.Encoding
	Positions [][2]int
}

// PairDataset is an indexed collection of contrastive pairs.
type PairDataset interface {
	Len() int
	Get(index int) (Pair, error)
}
