package distributed

import "fmt"

// AllGatherer exchanges embedding matrices across training workers.
//
// AllGather returns one (N, H) matrix per rank, ordered by rank. Every slot
// holds a detached copy, including the caller's own; callers that need the
// original, differentiable slice back must restore it with ReplaceSelfSlice.
type AllGatherer interface {
	AllGather(local [][]float64) ([][][]float64, error)
	Rank() int
	WorldSize() int
}

// NoopGatherer is the single-worker gatherer: world size one, the local
// matrix is the whole world.
type NoopGatherer struct{}

func (NoopGatherer) AllGather(local [][]float64) ([][][]float64, error) {
	return [][][]float64{local}, nil
}

func (NoopGatherer) Rank() int { return 0 }

func (NoopGatherer) WorldSize() int { return 1 }

// ReplaceSelfSlice swaps the caller's own gathered slot back to its original
// local matrix. Gathered slots are detached copies; only the restored slice
// participates in the caller's gradient computation, so this substitution is
// what keeps the contrastive loss differentiable under distribution.
func ReplaceSelfSlice(gathered [][][]float64, rank int, local [][]float64) ([][][]float64, error) {
	if rank < 0 || rank >= len(gathered) {
		return nil, fmt.Errorf("distributed: rank %d outside gathered world of %d", rank, len(gathered))
	}
	gathered[rank] = local
	return gathered, nil
}

// Concat flattens gathered per-rank matrices into one (worldSize*N, H) matrix
// without copying rows.
func Concat(gathered [][][]float64) [][]float64 {
	total := 0
	for _, g := range gathered {
		total += len(g)
	}
	out := make([][]float64, 0, total)
	for _, g := range gathered {
		out = append(out, g...)
	}
	return out
}
