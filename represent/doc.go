// Package represent turns encoder hidden states into sentence embeddings.
//
// A batch of pairs is pushed through the encoder as one forward pass covering
// both views of every example, then split back into per-view embeddings. The
// pooling strategy is resolved once at construction; unknown names fail fast
// instead of falling back to a default.
package represent
