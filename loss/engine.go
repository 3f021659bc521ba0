package loss

import (
	"errors"
	"fmt"
	"sort"

	"github.com/sentencelab/simcl/distributed"
)

var (
	// ErrNoPairs signals a token-level loss invocation without any token
	// position mapping, which is a configuration error, not a data quirk.
	ErrNoPairs = errors.New("loss: token objective requires position mappings")

	// ErrTokenMismatch signals a position pair whose anchor and variant
	// tokens differ, meaning the dataset produced a corrupt mapping.
	ErrTokenMismatch = errors.New("loss: paired positions hold different tokens")
)

// DefaultTokenCutoff bounds which token ids participate in the token-level
// objective. Groups are only built from ids below the cutoff.
const DefaultTokenCutoff int64 = 10

// Config selects and parameterizes the objectives.
type Config struct {
	// Temperature scales similarities into logits. Must be positive.
	Temperature float64
	// SentenceEnabled turns the sentence-level objective on.
	SentenceEnabled bool
	// TokenEnabled turns the token-level objective on.
	TokenEnabled bool
	// TokenCoeff weighs the token objective in the combined loss.
	TokenCoeff float64
	// TokenCutoff bounds participating token ids; zero selects the default.
	TokenCutoff int64
}

// Validate rejects configurations the engine cannot run with.
func (c Config) Validate() error {
	if c.Temperature <= 0 {
		return fmt.Errorf("loss: temperature must be positive, got %g", c.Temperature)
	}
	if !c.SentenceEnabled && !c.TokenEnabled {
		return errors.New("loss: at least one objective must be enabled")
	}
	if c.TokenCoeff < 0 {
		return fmt.Errorf("loss: token coefficient must be non-negative, got %g", c.TokenCoeff)
	}
	if c.TokenCutoff < 0 {
		return fmt.Errorf("loss: token cutoff must be non-negative, got %d", c.TokenCutoff)
	}
	return nil
}

// Result carries the per-objective values and their weighted combination.
type Result struct {
	Sentence float64
	Token    float64
	Total    float64
}

// Engine computes training losses over extracted views. It is stateless
// between calls apart from the gatherer, so one engine serves a whole run.
type Engine struct {
	cfg      Config
	gatherer distributed.AllGatherer
}

// NewEngine validates the configuration and binds the gatherer. A nil
// gatherer means single-worker training.
func NewEngine(cfg Config, gatherer distributed.AllGatherer) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.TokenCutoff == 0 {
		cfg.TokenCutoff = DefaultTokenCutoff
	}
	if gatherer == nil {
		gatherer = distributed.NoopGatherer{}
	}
	return &Engine{cfg: cfg, gatherer: gatherer}, nil
}

// SentenceLoss is the in-batch-negative contrastive objective. Under
// distributed training both embedding matrices are gathered across workers
// first, widening the negative pool; the worker's own slot is restored to the
// original matrix so its gradient path survives the exchange.
func (e *Engine) SentenceLoss(anchor, variant [][]float64) (float64, error) {
	if len(anchor) == 0 || len(anchor) != len(variant) {
		return 0, fmt.Errorf("loss: need matching non-empty views, got %d anchors and %d variants", len(anchor), len(variant))
	}

	if e.gatherer.WorldSize() > 1 {
		var err error
		anchor, err = e.gatherAcrossWorkers(anchor)
		if err != nil {
			return 0, err
		}
		variant, err = e.gatherAcrossWorkers(variant)
		if err != nil {
			return 0, err
		}
	}

	sim, err := CosineSimilarityMatrix(anchor, variant)
	if err != nil {
		return 0, err
	}
	return crossEntropyDiagonal(sim, e.cfg.Temperature)
}

func (e *Engine) gatherAcrossWorkers(local [][]float64) ([][]float64, error) {
	gathered, err := e.gatherer.AllGather(local)
	if err != nil {
		return nil, fmt.Errorf("loss: all-gather failed: %w", err)
	}
	gathered, err = distributed.ReplaceSelfSlice(gathered, e.gatherer.Rank(), local)
	if err != nil {
		return nil, err
	}
	return distributed.Concat(gathered), nil
}

// tokenRecord is one aligned occurrence of a token in both views.
type tokenRecord struct {
	anchor  []float64
	variant []float64
}

// TokenLoss aligns projected token outputs shared between the two views.
// Occurrences are grouped by token id; within a group, each anchor occurrence
// must be most similar to its own variant occurrence, with the group's other
// occurrences as negatives. Only ids below the cutoff participate. The result
// is the mean over non-empty groups, zero when no id survives the cutoff.
func (e *Engine) TokenLoss(anchorIDs, variantIDs [][]int64, anchorTokens, variantTokens [][][]float64, positions [][][2]int) (float64, error) {
	if len(positions) == 0 {
		return 0, ErrNoPairs
	}

	groups := make(map[int64][]tokenRecord)
	sawPairs := false
	for b, pairs := range positions {
		for _, p := range pairs {
			sawPairs = true
			idA := anchorIDs[b][p[0]]
			idV := variantIDs[b][p[1]]
			if idA != idV {
				return 0, fmt.Errorf("%w: example %d positions (%d,%d) hold %d and %d", ErrTokenMismatch, b, p[0], p[1], idA, idV)
			}
			if idA >= e.cfg.TokenCutoff {
				continue
			}
			groups[idA] = append(groups[idA], tokenRecord{
				anchor:  anchorTokens[b][p[0]],
				variant: variantTokens[b][p[1]],
			})
		}
	}
	if !sawPairs {
		return 0, ErrNoPairs
	}
	if len(groups) == 0 {
		return 0, nil
	}

	ids := make([]int64, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	total := 0.0
	for _, id := range ids {
		records := groups[id]
		anchors := make([][]float64, len(records))
		variants := make([][]float64, len(records))
		for i, rec := range records {
			anchors[i] = rec.anchor
			variants[i] = rec.variant
		}

		sim, err := CosineSimilarityMatrix(anchors, variants)
		if err != nil {
			return 0, err
		}
		groupLoss, err := crossEntropyDiagonal(sim, e.cfg.Temperature)
		if err != nil {
			return 0, err
		}
		total += groupLoss
	}

	return total / float64(len(groups)), nil
}

// Compute evaluates the enabled objectives and combines them: sentence loss
// plus the weighted token loss.
func (e *Engine) Compute(anchorIDs, variantIDs [][]int64, anchorEmb, variantEmb [][]float64, anchorTokens, variantTokens [][][]float64, positions [][][2]int) (Result, error) {
	var res Result

	if e.cfg.SentenceEnabled {
		s, err := e.SentenceLoss(anchorEmb, variantEmb)
		if err != nil {
			return Result{}, err
		}
		res.Sentence = s
		res.Total += s
	}

	if e.cfg.TokenEnabled {
		t, err := e.TokenLoss(anchorIDs, variantIDs, anchorTokens, variantTokens, positions)
		if err != nil {
			return Result{}, err
		}
		res.Token = t
		res.Total += e.cfg.TokenCoeff * t
	}

	return res, nil
}
