package represent

import (
	"context"
	"fmt"

	"github.com/sentencelab/simcl/dataset"
	"github.com/sentencelab/simcl/encoder"
)

// Views holds the per-view results of one extraction: pooled sentence
// embeddings for the contrastive objective and head-projected token outputs
// for token-level alignment.
type Views struct {
	AnchorEmbeddings  [][]float64
	VariantEmbeddings [][]float64
	AnchorTokens      [][][]float64
	VariantTokens     [][][]float64
}

// Extractor runs both views of a batch through the encoder in a single
// forward pass and pools the result into sentence embeddings. The pooling
// function is resolved once at construction.
type Extractor struct {
	enc      encoder.Encoder
	head     *ProjectionHead
	pooler   PoolerType
	pool     poolFunc
	training bool
}

// NewExtractor wires an encoder to a pooling strategy. The projection head
// always exists: the CLS pooler consumes it for sentence embeddings and the
// token-level objective consumes it at every position, whatever the pooler.
func NewExtractor(enc encoder.Encoder, pooler PoolerType, training bool, seed int64) (*Extractor, error) {
	pool, err := resolvePooler(pooler)
	if err != nil {
		return nil, err
	}

	if (pooler == PoolerAvgTop2 || pooler == PoolerAvgFirstLast) && !enc.OutputsHiddenStates() {
		return nil, fmt.Errorf("%w: %s", ErrMissingHiddenStates, pooler)
	}

	head, err := NewProjectionHead(enc.HiddenSize(), seed)
	if err != nil {
		return nil, err
	}

	return &Extractor{enc: enc, head: head, pooler: pooler, pool: pool, training: training}, nil
}

// Pooler reports the configured strategy.
func (e *Extractor) Pooler() PoolerType { return e.pooler }

// Head exposes the projection head for checkpointing.
func (e *Extractor) Head() *ProjectionHead { return e.head }

// EmbeddingSize reports the dimension of pooled sentence embeddings.
func (e *Extractor) EmbeddingSize() int { return e.enc.HiddenSize() }

// Extract encodes all 2N sequences of the batch at once, then splits hidden
// states and pooled embeddings back into anchor and variant halves. Keeping
// both views in one pass matters: batch statistics such as dropout draws stay
// coupled the same way for every example.
func (e *Extractor) Extract(ctx context.Context, batch *dataset.Batch) (*Views, error) {
	if batch == nil || batch.Size() == 0 {
		return nil, fmt.Errorf("represent: cannot extract from an empty batch")
	}

	n := batch.Size()
	anchorIDs, variantIDs, anchorMask, variantMask := batch.Views()

	ids := make([][]int64, 0, 2*n)
	ids = append(ids, anchorIDs...)
	ids = append(ids, variantIDs...)
	mask := make([][]int64, 0, 2*n)
	mask = append(mask, anchorMask...)
	mask = append(mask, variantMask...)

	out, err := e.enc.Forward(ctx, ids, mask)
	if err != nil {
		return nil, fmt.Errorf("represent: encoder forward failed: %w", err)
	}
	if len(out.LastHiddenState) != 2*n {
		return nil, fmt.Errorf("represent: encoder returned %d rows for %d inputs", len(out.LastHiddenState), 2*n)
	}

	pooled, err := e.pool(mask, out)
	if err != nil {
		return nil, err
	}

	if e.pooler == PoolerCLS && e.training {
		pooled, err = e.head.ApplyBatch(pooled)
		if err != nil {
			return nil, err
		}
	}

	// Token-level alignment consumes the head's projection of every
	// position, not the raw hidden state.
	tokens, err := e.head.ApplyTokens(out.LastHiddenState)
	if err != nil {
		return nil, err
	}

	return &Views{
		AnchorEmbeddings:  pooled[:n],
		VariantEmbeddings: pooled[n:],
		AnchorTokens:      tokens[:n],
		VariantTokens:     tokens[n:],
	}, nil
}

// EmbedSentences pools already-encoded single-view inputs. This is the
// inference path: no pairing, no projection head for the CLS pooler.
func (e *Extractor) EmbedSentences(ctx context.Context, inputIDs, attentionMask [][]int64) ([][]float64, error) {
	if len(inputIDs) == 0 {
		return nil, fmt.Errorf("represent: cannot embed zero sentences")
	}

	out, err := e.enc.Forward(ctx, inputIDs, attentionMask)
	if err != nil {
		return nil, fmt.Errorf("represent: encoder forward failed: %w", err)
	}

	pooled, err := e.pool(attentionMask, out)
	if err != nil {
		return nil, err
	}

	if e.pooler == PoolerCLS && e.training {
		return e.head.ApplyBatch(pooled)
	}
	return pooled, nil
}
