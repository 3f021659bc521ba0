// Package augment produces perturbed views of sentences for contrastive
// training. Strategies are deterministic given a seeded random source, never
// reorder surviving tokens, and never empty a non-empty sentence.
package augment
