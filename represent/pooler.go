package represent

import (
	"errors"
	"fmt"

	"github.com/sentencelab/simcl/encoder"
)

var (
	// ErrUnknownPooler rejects pooling strategy names outside the closed set.
	ErrUnknownPooler = errors.New("represent: unrecognized pooling strategy")

	// ErrMissingHiddenStates signals a pooler that averages across layers
	// running against an encoder that only exposes the last layer.
	ErrMissingHiddenStates = errors.New("represent: pooler requires intermediate hidden states")
)

// PoolerType selects how per-token hidden states collapse into one sentence
// vector.
type PoolerType int

const (
	// PoolerCLS takes the first token's last hidden state and, during
	// training only, passes it through the projection head.
	PoolerCLS PoolerType = iota
	// PoolerCLSBeforeProjection takes the raw first-token state in both
	// training and inference.
	PoolerCLSBeforeProjection
	// PoolerAvg averages the last hidden state over unmasked positions.
	PoolerAvg
	// PoolerAvgTop2 averages the last two layers, then over positions.
	PoolerAvgTop2
	// PoolerAvgFirstLast averages the embedding layer and the last layer,
	// then over positions.
	PoolerAvgFirstLast
)

var poolerNames = map[string]PoolerType{
	"cls":               PoolerCLS,
	"cls_before_pooler": PoolerCLSBeforeProjection,
	"avg":               PoolerAvg,
	"avg_top2":          PoolerAvgTop2,
	"avg_first_last":    PoolerAvgFirstLast,
}

// ParsePoolerType resolves a strategy name from configuration.
func ParsePoolerType(name string) (PoolerType, error) {
	p, ok := poolerNames[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownPooler, name)
	}
	return p, nil
}

func (p PoolerType) String() string {
	for name, v := range poolerNames {
		if v == p {
			return name
		}
	}
	return fmt.Sprintf("pooler(%d)", int(p))
}

// poolFunc collapses (N, L, H) hidden states into (N, H) sentence vectors.
type poolFunc func(mask [][]int64, out *encoder.Output) ([][]float64, error)

// resolvePooler maps a pooler type to its implementation exactly once, so the
// per-batch path carries no string dispatch.
func resolvePooler(p PoolerType) (poolFunc, error) {
	switch p {
	case PoolerCLS, PoolerCLSBeforeProjection:
		return poolCLS, nil
	case PoolerAvg:
		return poolAvg, nil
	case PoolerAvgTop2:
		return poolAvgLayers(-2, -1), nil
	case PoolerAvgFirstLast:
		return poolAvgLayers(0, -1), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownPooler, int(p))
	}
}

func poolCLS(_ [][]int64, out *encoder.Output) ([][]float64, error) {
	vecs := make([][]float64, len(out.LastHiddenState))
	for b, row := range out.LastHiddenState {
		if len(row) == 0 {
			return nil, fmt.Errorf("represent: example %d has no token positions", b)
		}
		vec := make([]float64, len(row[0]))
		copy(vec, row[0])
		vecs[b] = vec
	}
	return vecs, nil
}

func poolAvg(mask [][]int64, out *encoder.Output) ([][]float64, error) {
	return maskedMean(mask, out.LastHiddenState)
}

// poolAvgLayers averages two layers of the hidden state stack elementwise
// before pooling over positions. Negative indices count from the end.
func poolAvgLayers(first, second int) poolFunc {
	return func(mask [][]int64, out *encoder.Output) ([][]float64, error) {
		if len(out.HiddenStates) < 2 {
			return nil, ErrMissingHiddenStates
		}

		a := layerAt(out.HiddenStates, first)
		b := layerAt(out.HiddenStates, second)

		avg := make([][][]float64, len(a))
		for bi := range a {
			avg[bi] = make([][]float64, len(a[bi]))
			for t := range a[bi] {
				vec := make([]float64, len(a[bi][t]))
				for j := range vec {
					vec[j] = (a[bi][t][j] + b[bi][t][j]) / 2
				}
				avg[bi][t] = vec
			}
		}

		return maskedMean(mask, avg)
	}
}

func layerAt(layers [][][][]float64, index int) [][][]float64 {
	if index < 0 {
		index += len(layers)
	}
	return layers[index]
}

// maskedMean averages token vectors over positions with mask 1. A row whose
// mask is all zeros would divide by zero; encodings always carry at least BOS
// and EOS, so that is treated as corrupt input.
func maskedMean(mask [][]int64, states [][][]float64) ([][]float64, error) {
	if len(mask) != len(states) {
		return nil, fmt.Errorf("represent: %d mask rows for %d state rows", len(mask), len(states))
	}

	vecs := make([][]float64, len(states))
	for b := range states {
		if len(mask[b]) != len(states[b]) {
			return nil, fmt.Errorf("represent: row %d mask length %d does not match %d positions", b, len(mask[b]), len(states[b]))
		}

		hidden := 0
		if len(states[b]) > 0 {
			hidden = len(states[b][0])
		}
		sum := make([]float64, hidden)
		count := 0.0
		for t := range states[b] {
			if mask[b][t] != 1 {
				continue
			}
			for j := range sum {
				sum[j] += states[b][t][j]
			}
			count++
		}
		if count == 0 {
			return nil, fmt.Errorf("represent: row %d has an all-zero attention mask", b)
		}
		for j := range sum {
			sum[j] /= count
		}
		vecs[b] = sum
	}
	return vecs, nil
}
