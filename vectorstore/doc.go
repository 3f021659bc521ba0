// Package vectorstore ships trained sentence embeddings to Qdrant and serves
// nearest-neighbor queries over them. It is the inference-side consumer of
// the training core: once a run finishes, its encoder embeds sentences and
// this package makes them searchable.
package vectorstore
