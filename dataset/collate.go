package dataset

import (
	"errors"
	"fmt"
)

// ErrEmptyBatch rejects collation of zero pairs.
var ErrEmptyBatch = errors.New("dataset: cannot collate an empty batch")

// Batch is a collated group of pairs laid out as (N, 2, L): for each of the
// N examples, view 0 is the anchor and view 1 is the variant, both of length
// L. Positions carries each example's anchor-to-variant token mapping and may
// hold nil entries for augmentations without provenance.
type Batch struct {
	InputIDs      [][][]int64
	AttentionMask [][][]int64
	Positions     [][][2]int
}

// Size returns the number of examples in the batch.
func (b *Batch) Size() int { return len(b.InputIDs) }

// SeqLen returns the shared sequence length of all encodings in the batch.
func (b *Batch) SeqLen() int {
	if len(b.InputIDs) == 0 {
		return 0
	}
	return len(b.InputIDs[0][0])
}

// Collate stacks pairs into a batch. All encodings must share one sequence
// length; datasets built with a fixed max length guarantee that, so a
// mismatch here means pairs from differently configured datasets were mixed.
func Collate(pairs []Pair) (*Batch, error) {
	if len(pairs) == 0 {
		return nil, ErrEmptyBatch
	}

	seqLen := len(pairs[0].Anchor.InputIDs)
	batch := &Batch{
		InputIDs:      make([][][]int64, 0, len(pairs)),
		AttentionMask: make([][][]int64, 0, len(pairs)),
		Positions:     make([][][2]int, 0, len(pairs)),
	}

	for i, p := range pairs {
		for _, enc := range []struct {
			name string
			ids  []int64
			mask []int64
		}{
			{"anchor", p.Anchor.InputIDs, p.Anchor.AttentionMask},
			{"variant", p.Variant.InputIDs, p.Variant.AttentionMask},
		} {
			if len(enc.ids) != seqLen || len(enc.mask) != seqLen {
				return nil, fmt.Errorf("dataset: pair %d %s has length %d, batch expects %d", i, enc.name, len(enc.ids), seqLen)
			}
		}

		batch.InputIDs = append(batch.InputIDs, [][]int64{p.Anchor.InputIDs, p.Variant.InputIDs})
		batch.AttentionMask = append(batch.AttentionMask, [][]int64{p.Anchor.AttentionMask, p.Variant.AttentionMask})
		batch.Positions = append(batch.Positions, p.Positions)
	}

	return batch, nil
}

// Views splits the batch into per-view matrices: anchors first, variants
// second, each of shape (N, L). The encoder consumes these as one
// concatenated forward pass.
func (b *Batch) Views() (anchorIDs, variantIDs, anchorMask, variantMask [][]int64) {
	n := b.Size()
	anchorIDs = make([][]int64, n)
	variantIDs = make([][]int64, n)
	anchorMask = make([][]int64, n)
	variantMask = make([][]int64, n)
	for i := 0; i < n; i++ {
		anchorIDs[i] = b.InputIDs[i][0]
		variantIDs[i] = b.InputIDs[i][1]
		anchorMask[i] = b.AttentionMask[i][0]
		variantMask[i] = b.AttentionMask[i][1]
	}
	return anchorIDs, variantIDs, anchorMask, variantMask
}
