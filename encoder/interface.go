package encoder

import "context"

//go:generate mockgen -source=interface.go -destination=mocks/mock_encoder.go -package=mocks

// Output carries the hidden states of one forward pass.
//
// LastHiddenState has shape (batch, seqLen, hiddenSize). HiddenStates, when
// the encoder exposes intermediate layers, holds the embedding output followed
// by every layer output, each with the same shape as LastHiddenState; it is
// nil otherwise. Poolers that average across layers require it.
type Output struct {
	LastHiddenState [][][]float64
	HiddenStates    [][][][]float64
}

// Encoder is the boundary to the transformer backbone. The training core
// never assumes a concrete architecture; anything that maps padded token ids
// to hidden states can sit behind this interface, including a remote model
// server.
//
// Forward must accept a batch of padded sequences and return hidden states
// aligned row for row with its input.
type Encoder interface {
	Forward(ctx context.Context, inputIDs, attentionMask [][]int64) (*Output, error)
	HiddenSize() int
	OutputsHiddenStates() bool
}
