package trainer

import (
	"context"
	"fmt"

	"github.com/sentencelab/simcl/logger"
	"github.com/sentencelab/simcl/represent"
	"github.com/sentencelab/simcl/tokenizer"
	"github.com/sentencelab/simcl/vectorstore"
)

// Exporter embeds the corpus with a trained extractor and writes the vectors
// to the vector store for nearest-neighbor evaluation.
type Exporter struct {
	cfg       Config
	corpus    Corpus
	tok       tokenizer.Tokenizer
	extractor *represent.Extractor
	store     *vectorstore.Client
	log       *logger.LoggerClient
}

// NewExporter wires the inference path to the vector store sink.
func NewExporter(cfg Config, corpus Corpus, tok tokenizer.Tokenizer, extractor *represent.Extractor, store *vectorstore.Client, log *logger.LoggerClient) (*Exporter, error) {
	if len(corpus) == 0 || tok == nil || extractor == nil || store == nil || log == nil {
		return nil, fmt.Errorf("trainer: exporter needs a corpus, tokenizer, extractor, store and logger")
	}
	return &Exporter{cfg: cfg, corpus: corpus, tok: tok, extractor: extractor, store: store, log: log}, nil
}

// Export embeds every corpus sentence batch by batch and upserts the vectors
// under the run name. The collection is created on first use.
func (e *Exporter) Export(ctx context.Context) error {
	if err := e.store.EnsureCollection(ctx, e.extractor.EmbeddingSize()); err != nil {
		return err
	}

	exported := 0
	for start := 0; start < len(e.corpus); start += e.cfg.BatchSize {
		end := start + e.cfg.BatchSize
		if end > len(e.corpus) {
			end = len(e.corpus)
		}
		sentences := e.corpus[start:end]

		ids := make([][]int64, len(sentences))
		mask := make([][]int64, len(sentences))
		for i, s := range sentences {
			enc := tokenizer.Encode(e.tok, s, e.cfg.MaxSeqLength)
			ids[i] = enc.InputIDs
			mask[i] = enc.AttentionMask
		}

		embeddings, err := e.extractor.EmbedSentences(ctx, ids, mask)
		if err != nil {
			return fmt.Errorf("trainer: cannot embed sentences %d..%d: %w", start, end, err)
		}

		vectors := make([]vectorstore.SentenceVector, len(sentences))
		for i, s := range sentences {
			vectors[i] = vectorstore.SentenceVector{
				Sentence: s,
				RunName:  e.cfg.RunName,
				Vector:   embeddings[i],
			}
		}
		if err := e.store.UpsertSentences(ctx, vectors); err != nil {
			return err
		}
		exported += len(vectors)
	}

	e.log.Info("exported sentence embeddings", nil, map[string]interface{}{
		"run_name":  e.cfg.RunName,
		"sentences": exported,
	})
	return nil
}
