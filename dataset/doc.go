// Package dataset turns a sentence corpus into contrastive training pairs.
//
// A pair holds two fixed-length encodings of the same sentence: the anchor
// and an augmented variant. Three dataset flavors exist, one per augmentation
// strategy. Tokenization happens lazily on access so corpora only pay for the
// sentences a run actually visits.
package dataset
