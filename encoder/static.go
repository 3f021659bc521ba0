package encoder

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"
)

// Static is a small self-contained encoder: a seeded embedding table followed
// by two deterministic mixing layers and optional dropout. It exists so the
// training loop, the poolers and the loss engine can be exercised end to end
// without an external model server. Same seed, same weights.
type Static struct {
	hiddenSize int
	table      [][]float64
	dropout    float64

	mu  sync.Mutex
	rng *rand.Rand
}

// NewStatic builds a static encoder with the given vocabulary capacity and
// hidden size. Dropout above zero makes repeated forward passes of the same
// input diverge, which is what identity augmentation relies on.
func NewStatic(vocabSize, hiddenSize int, dropout float64, seed int64) (*Static, error) {
	if vocabSize <= 0 || hiddenSize <= 0 {
		return nil, fmt.Errorf("encoder: vocabulary and hidden size must be positive, got %d and %d", vocabSize, hiddenSize)
	}
	if dropout < 0 || dropout >= 1 {
		return nil, fmt.Errorf("encoder: dropout must be in [0, 1), got %g", dropout)
	}

	weightRNG := rand.New(rand.NewSource(seed))
	table := make([][]float64, vocabSize)
	scale := 1.0 / math.Sqrt(float64(hiddenSize))
	for i := range table {
		row := make([]float64, hiddenSize)
		for j := range row {
			row[j] = weightRNG.NormFloat64() * scale
		}
		table[i] = row
	}

	return &Static{
		hiddenSize: hiddenSize,
		table:      table,
		dropout:    dropout,
		rng:        rand.New(rand.NewSource(seed + 1)),
	}, nil
}

func (s *Static) HiddenSize() int { return s.hiddenSize }

func (s *Static) OutputsHiddenStates() bool { return true }

// Forward embeds every token, mixes neighbors in a second layer and squashes
// in a third. HiddenStates holds all three stages.
func (s *Static) Forward(ctx context.Context, inputIDs, attentionMask [][]int64) (*Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(inputIDs) != len(attentionMask) {
		return nil, fmt.Errorf("encoder: %d id rows but %d mask rows", len(inputIDs), len(attentionMask))
	}

	embedded := make([][][]float64, len(inputIDs))
	for b, row := range inputIDs {
		if len(row) != len(attentionMask[b]) {
			return nil, fmt.Errorf("encoder: row %d has %d ids but %d mask entries", b, len(row), len(attentionMask[b]))
		}
		embedded[b] = make([][]float64, len(row))
		for t, id := range row {
			vec := make([]float64, s.hiddenSize)
			copy(vec, s.table[int(id)%len(s.table)])
			embedded[b][t] = vec
		}
	}

	mixed := s.mixNeighbors(embedded)
	last := s.squash(mixed)
	if s.dropout > 0 {
		s.applyDropout(last)
	}

	return &Output{
		LastHiddenState: last,
		HiddenStates:    [][][][]float64{embedded, mixed, last},
	}, nil
}

func (s *Static) mixNeighbors(in [][][]float64) [][][]float64 {
	out := make([][][]float64, len(in))
	for b := range in {
		out[b] = make([][]float64, len(in[b]))
		for t := range in[b] {
			vec := make([]float64, s.hiddenSize)
			copy(vec, in[b][t])
			if t > 0 {
				for j := range vec {
					vec[j] += 0.5 * in[b][t-1][j]
				}
			}
			if t+1 < len(in[b]) {
				for j := range vec {
					vec[j] += 0.5 * in[b][t+1][j]
				}
			}
			out[b][t] = vec
		}
	}
	return out
}

func (s *Static) squash(in [][][]float64) [][][]float64 {
	out := make([][][]float64, len(in))
	for b := range in {
		out[b] = make([][]float64, len(in[b]))
		for t := range in[b] {
			vec := make([]float64, s.hiddenSize)
			for j := range vec {
				vec[j] = math.Tanh(in[b][t][j])
			}
			out[b][t] = vec
		}
	}
	return out
}

func (s *Static) applyDropout(states [][][]float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	keep := 1 - s.dropout
	for b := range states {
		for t := range states[b] {
			for j := range states[b][t] {
				if s.rng.Float64() < s.dropout {
					states[b][t][j] = 0
				} else {
					states[b][t][j] /= keep
				}
			}
		}
	}
}
