// Package loss implements the contrastive training objectives: a
// sentence-level objective that pulls each anchor toward its own variant and
// pushes it away from every other variant in the batch, and a token-level
// objective that aligns hidden states of tokens shared between the two views.
package loss
