// Package distributed widens the pool of in-batch negatives across training
// workers. Each worker contributes its local embeddings to an all-gather and
// receives every worker's contribution back; detached copies stand in for the
// remote slices while the worker's own slot keeps its original, so downstream
// consumers still operate on the caller's live data.
package distributed
