package represent

import (
	"fmt"
	"math"
	"math/rand"
)

// ProjectionHead is a single dense layer with tanh activation. During
// training it projects the CLS sentence vector and every token position
// consumed by the token-level objective. At inference the raw encoder output
// is used instead, so the head never ships with the serving path.
type ProjectionHead struct {
	Weight [][]float64
	Bias   []float64
}

// NewProjectionHead initializes a square head for the given hidden size with
// seeded scaled-normal weights.
func NewProjectionHead(hiddenSize int, seed int64) (*ProjectionHead, error) {
	if hiddenSize <= 0 {
		return nil, fmt.Errorf("represent: hidden size must be positive, got %d", hiddenSize)
	}

	rng := rand.New(rand.NewSource(seed))
	scale := 1.0 / math.Sqrt(float64(hiddenSize))

	weight := make([][]float64, hiddenSize)
	for i := range weight {
		row := make([]float64, hiddenSize)
		for j := range row {
			row[j] = rng.NormFloat64() * scale
		}
		weight[i] = row
	}

	return &ProjectionHead{
		Weight: weight,
		Bias:   make([]float64, hiddenSize),
	}, nil
}

// Apply computes tanh(W*x + b).
func (h *ProjectionHead) Apply(vec []float64) ([]float64, error) {
	if len(vec) != len(h.Weight) {
		return nil, fmt.Errorf("represent: projection head expects dimension %d, got %d", len(h.Weight), len(vec))
	}

	out := make([]float64, len(h.Weight))
	for i, row := range h.Weight {
		sum := h.Bias[i]
		for j, w := range row {
			sum += w * vec[j]
		}
		out[i] = math.Tanh(sum)
	}
	return out, nil
}

// ApplyBatch projects every row of a (N, H) matrix.
func (h *ProjectionHead) ApplyBatch(vecs [][]float64) ([][]float64, error) {
	out := make([][]float64, len(vecs))
	for i, vec := range vecs {
		projected, err := h.Apply(vec)
		if err != nil {
			return nil, err
		}
		out[i] = projected
	}
	return out, nil
}

// ApplyTokens projects every position of a (N, L, H) hidden-state tensor.
func (h *ProjectionHead) ApplyTokens(hidden [][][]float64) ([][][]float64, error) {
	out := make([][][]float64, len(hidden))
	for i, seq := range hidden {
		projected, err := h.ApplyBatch(seq)
		if err != nil {
			return nil, err
		}
		out[i] = projected
	}
	return out, nil
}
