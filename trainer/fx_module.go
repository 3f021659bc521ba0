package trainer

import (
	"go.uber.org/fx"

	"github.com/sentencelab/simcl/artifacts"
	"github.com/sentencelab/simcl/dataset"
	"github.com/sentencelab/simcl/events"
	"github.com/sentencelab/simcl/logger"
	"github.com/sentencelab/simcl/loss"
	"github.com/sentencelab/simcl/metrics"
	"github.com/sentencelab/simcl/registry"
	"github.com/sentencelab/simcl/represent"
	"github.com/sentencelab/simcl/tracer"
)

// FXModule wires the training pipeline: corpus, tokenizer, dataset, encoder,
// extractor, loss engine and the trainer itself. Backends (metrics, tracing,
// events, registry, artifacts) are optional; the trainer runs without any of
// them.
var FXModule = fx.Module("trainer",
	fx.Provide(
		LoadCorpusWithDI,
		NewTokenizer,
		NewPairDataset,
		NewEncoder,
		NewExtractor,
		NewEngine,
		NewWithDI,
	),
)

// Params collects the trainer dependencies from the container. The optional
// collaborators stay nil when their modules are not registered.
type Params struct {
	fx.In

	Config    Config
	Dataset   dataset.PairDataset
	Extractor *represent.Extractor
	Engine    *loss.Engine
	Logger    *logger.LoggerClient

	Metrics   *metrics.Metrics   `optional:"true"`
	Tracer    *tracer.Tracer     `optional:"true"`
	Publisher *events.Publisher  `optional:"true"`
	Registry  *registry.Registry `optional:"true"`
	Artifacts *artifacts.Store   `optional:"true"`
}

// NewWithDI builds the trainer from container-provided dependencies.
func NewWithDI(p Params) (*Trainer, error) {
	opts := make([]Option, 0, 5)
	if p.Metrics != nil {
		opts = append(opts, WithMetrics(p.Metrics))
	}
	if p.Tracer != nil {
		opts = append(opts, WithTracer(p.Tracer))
	}
	if p.Publisher != nil {
		opts = append(opts, WithPublisher(p.Publisher))
	}
	if p.Registry != nil {
		opts = append(opts, WithRegistry(p.Registry))
	}
	if p.Artifacts != nil {
		opts = append(opts, WithArtifacts(p.Artifacts))
	}
	return New(p.Config, p.Dataset, p.Extractor, p.Engine, p.Logger, opts...)
}
