// Package trainer orchestrates a contrastive training run: it loads the
// corpus, builds the pair dataset, drives the batch loop through the
// representation extractor and loss engine, and reports progress through
// metrics, events and the run registry.
package trainer
