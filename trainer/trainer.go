package trainer

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"time"

	"github.com/google/uuid"
	oteltrace "go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/sentencelab/simcl/artifacts"
	"github.com/sentencelab/simcl/dataset"
	"github.com/sentencelab/simcl/distributed"
	"github.com/sentencelab/simcl/events"
	"github.com/sentencelab/simcl/logger"
	"github.com/sentencelab/simcl/loss"
	"github.com/sentencelab/simcl/metrics"
	"github.com/sentencelab/simcl/registry"
	"github.com/sentencelab/simcl/represent"
	"github.com/sentencelab/simcl/tracer"
)

// Summary is what a finished run reports back.
type Summary struct {
	RunID     uuid.UUID
	Steps     int
	FinalLoss float64
}

// Checkpoint is the JSON structure written to the artifact store per epoch.
type Checkpoint struct {
	Epoch  int                       `json:"epoch"`
	Pooler string                    `json:"pooler"`
	Head   *represent.ProjectionHead `json:"head,omitempty"`
}

// Trainer drives the batch loop. The required collaborators are the dataset,
// extractor, loss engine and logger; metrics, tracing, events, registry and
// artifacts are optional and skipped when nil.
type Trainer struct {
	cfg       Config
	ds        dataset.PairDataset
	extractor *represent.Extractor
	engine    *loss.Engine
	stepper   Stepper
	gatherer  distributed.AllGatherer

	log   *logger.LoggerClient
	met   *metrics.Metrics
	trc   *tracer.Tracer
	pub   *events.Publisher
	reg   *registry.Registry
	store *artifacts.Store
}

// Option attaches an optional collaborator.
type Option func(*Trainer)

func WithMetrics(m *metrics.Metrics) Option         { return func(t *Trainer) { t.met = m } }
func WithTracer(tr *tracer.Tracer) Option           { return func(t *Trainer) { t.trc = tr } }
func WithPublisher(p *events.Publisher) Option      { return func(t *Trainer) { t.pub = p } }
func WithRegistry(r *registry.Registry) Option      { return func(t *Trainer) { t.reg = r } }
func WithArtifacts(s *artifacts.Store) Option       { return func(t *Trainer) { t.store = s } }
func WithStepper(s Stepper) Option                  { return func(t *Trainer) { t.stepper = s } }
func WithGatherer(g distributed.AllGatherer) Option { return func(t *Trainer) { t.gatherer = g } }

// New builds a trainer over prepared collaborators.
func New(cfg Config, ds dataset.PairDataset, extractor *represent.Extractor, engine *loss.Engine, log *logger.LoggerClient, opts ...Option) (*Trainer, error) {
	cfg.ApplyDefaults()
	if ds == nil || extractor == nil || engine == nil || log == nil {
		return nil, fmt.Errorf("trainer: dataset, extractor, engine and logger are required")
	}

	t := &Trainer{
		cfg:       cfg,
		ds:        ds,
		extractor: extractor,
		engine:    engine,
		stepper:   NoopStepper{},
		gatherer:  distributed.NoopGatherer{},
		log:       log,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Run executes the configured number of epochs and returns a summary. The
// run is registered, its arguments persisted, and every step reported before
// the first batch is touched, so even an immediately failing run leaves a
// record.
func (t *Trainer) Run(ctx context.Context) (*Summary, error) {
	runID, err := t.begin(ctx)
	if err != nil {
		return nil, err
	}

	summary := &Summary{RunID: runID}
	if err := t.trainLoop(ctx, runID, summary); err != nil {
		t.finish(ctx, runID, summary, err)
		return nil, err
	}

	t.finish(ctx, runID, summary, nil)
	return summary, nil
}

func (t *Trainer) begin(ctx context.Context) (uuid.UUID, error) {
	runID := uuid.New()

	if t.reg != nil {
		run := &registry.Run{
			ID:          runID,
			Name:        t.cfg.RunName,
			Strategy:    t.cfg.Strategy,
			Pooler:      t.cfg.Pooler,
			Temperature: t.cfg.Temperature,
			TokenCoeff:  t.cfg.TokenCoeff,
			Epochs:      t.cfg.Epochs,
			BatchSize:   t.cfg.BatchSize,
			Seed:        t.cfg.Seed,
		}
		if err := t.reg.CreateRun(ctx, run); err != nil {
			return uuid.Nil, err
		}
	}

	if t.store != nil {
		args := RunArgs{
			Config:    t.cfg,
			RunID:     runID.String(),
			WorldSize: t.gatherer.WorldSize(),
			Rank:      t.gatherer.Rank(),
			StartedAt: time.Now().UTC(),
		}
		if err := t.store.SaveRunArgs(ctx, t.cfg.RunName, args); err != nil {
			return uuid.Nil, err
		}
	}

	if t.met != nil {
		t.met.SetDatasetSize(t.ds.Len(), "train")
	}
	t.publishRun(ctx, runID, registry.StatusRunning, "")

	t.log.Info("starting training run", nil, map[string]interface{}{
		"run_id":   runID.String(),
		"run_name": t.cfg.RunName,
		"strategy": t.cfg.Strategy,
		"pooler":   t.cfg.Pooler,
		"examples": t.ds.Len(),
		"epochs":   t.cfg.Epochs,
	})

	return runID, nil
}

func (t *Trainer) trainLoop(ctx context.Context, runID uuid.UUID, summary *Summary) error {
	for epoch := 0; epoch < t.cfg.Epochs; epoch++ {
		if err := t.runEpoch(ctx, runID, epoch, summary); err != nil {
			return err
		}

		if err := t.checkpoint(ctx, epoch); err != nil {
			return err
		}
	}
	return nil
}

func (t *Trainer) runEpoch(ctx context.Context, runID uuid.UUID, epoch int, summary *Summary) error {
	ctx, span := t.startSpan(ctx, "train-epoch")
	defer t.endSpan(span)

	order := rand.New(rand.NewSource(t.cfg.Seed + int64(epoch))).Perm(t.ds.Len())

	for start := 0; start < len(order); start += t.cfg.BatchSize {
		end := start + t.cfg.BatchSize
		if end > len(order) {
			end = len(order)
		}

		result, err := t.step(ctx, order[start:end])
		if err != nil {
			if t.met != nil {
				t.met.IncrementSteps("error")
			}
			t.recordSpanError(span, err)
			return err
		}

		summary.Steps++
		summary.FinalLoss = result.Total
		t.report(ctx, runID, epoch, summary.Steps, result)
	}
	return nil
}

// step assembles one batch, extracts both views and computes the loss.
// Pair construction is fanned out because tokenization and augmentation
// dominate batch assembly for large corpora.
func (t *Trainer) step(ctx context.Context, indices []int) (loss.Result, error) {
	stepStart := time.Now()

	pairs := make([]dataset.Pair, len(indices))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for i, index := range indices {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			p, err := t.ds.Get(index)
			if err != nil {
				return err
			}
			pairs[i] = p
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return loss.Result{}, fmt.Errorf("trainer: batch assembly failed: %w", err)
	}

	batch, err := dataset.Collate(pairs)
	if err != nil {
		return loss.Result{}, err
	}

	ctx, span := t.startSpan(ctx, "train-step")
	defer t.endSpan(span)

	forwardStart := time.Now()
	views, err := t.extractor.Extract(ctx, batch)
	if err != nil {
		t.recordSpanError(span, err)
		return loss.Result{}, err
	}
	if t.met != nil {
		t.met.RecordStepDuration(forwardStart, "forward")
	}

	anchorIDs, variantIDs, _, _ := batch.Views()
	result, err := t.engine.Compute(anchorIDs, variantIDs, views.AnchorEmbeddings, views.VariantEmbeddings, views.AnchorTokens, views.VariantTokens, batch.Positions)
	if err != nil {
		t.recordSpanError(span, err)
		return loss.Result{}, err
	}

	if err := t.stepper.Step(ctx, result); err != nil {
		t.recordSpanError(span, err)
		return loss.Result{}, fmt.Errorf("trainer: optimizer step failed: %w", err)
	}

	if t.met != nil {
		t.met.RecordStepDuration(stepStart, "step")
	}
	return result, nil
}

// startSpan opens a tracing span when a tracer is attached; otherwise the
// returned span is nil and the helpers below become no-ops.
func (t *Trainer) startSpan(ctx context.Context, name string) (context.Context, oteltrace.Span) {
	if t.trc == nil {
		return ctx, nil
	}
	return t.trc.StartSpan(ctx, name)
}

func (t *Trainer) endSpan(span oteltrace.Span) {
	if span != nil {
		span.End()
	}
}

func (t *Trainer) recordSpanError(span oteltrace.Span, err error) {
	if span != nil && t.trc != nil {
		t.trc.RecordErrorOnSpan(span, err)
	}
}

func (t *Trainer) report(ctx context.Context, runID uuid.UUID, epoch, step int, result loss.Result) {
	if t.met != nil {
		t.met.IncrementSteps("ok")
		t.met.ObserveLoss(result.Sentence, "sentence")
		t.met.ObserveLoss(result.Token, "token")
		t.met.ObserveLoss(result.Total, "total")
	}

	if t.pub != nil {
		ev := events.StepEvent{
			RunID:        runID.String(),
			RunName:      t.cfg.RunName,
			Epoch:        epoch,
			Step:         step,
			SentenceLoss: result.Sentence,
			TokenLoss:    result.Token,
			TotalLoss:    result.Total,
		}
		if err := t.pub.PublishStep(ctx, ev); err != nil {
			t.log.Warn("cannot publish step event", err, nil)
		}
	}

	if step%t.cfg.LogEvery == 0 {
		t.log.Info("training step", nil, map[string]interface{}{
			"epoch":         epoch,
			"step":          step,
			"sentence_loss": result.Sentence,
			"token_loss":    result.Token,
			"total_loss":    result.Total,
		})
	}
}

func (t *Trainer) checkpoint(ctx context.Context, epoch int) error {
	if t.store == nil || t.cfg.CheckpointEvery <= 0 || (epoch+1)%t.cfg.CheckpointEvery != 0 {
		return nil
	}

	cp := Checkpoint{
		Epoch:  epoch,
		Pooler: t.cfg.Pooler,
		Head:   t.extractor.Head(),
	}
	if err := t.store.SaveCheckpoint(ctx, t.cfg.RunName, epoch, cp); err != nil {
		return err
	}

	t.log.Info("wrote checkpoint", nil, map[string]interface{}{"epoch": epoch})
	return nil
}

func (t *Trainer) finish(ctx context.Context, runID uuid.UUID, summary *Summary, runErr error) {
	if runErr != nil {
		t.log.Error("training run failed", runErr, map[string]interface{}{
			"run_id": runID.String(),
			"steps":  summary.Steps,
		})
		if t.reg != nil {
			if err := t.reg.FailRun(ctx, runID, runErr); err != nil {
				t.log.Warn("cannot mark run failed", err, nil)
			}
		}
		t.publishRun(ctx, runID, registry.StatusFailed, runErr.Error())
		return
	}

	t.log.Info("training run completed", nil, map[string]interface{}{
		"run_id":     runID.String(),
		"steps":      summary.Steps,
		"final_loss": summary.FinalLoss,
	})
	if t.reg != nil {
		if err := t.reg.CompleteRun(ctx, runID, summary.FinalLoss); err != nil {
			t.log.Warn("cannot mark run completed", err, nil)
		}
	}
	t.publishRun(ctx, runID, registry.StatusCompleted, "")
}

func (t *Trainer) publishRun(ctx context.Context, runID uuid.UUID, status, detail string) {
	if t.pub == nil {
		return
	}
	ev := events.RunEvent{
		RunID:   runID.String(),
		RunName: t.cfg.RunName,
		Status:  status,
		Detail:  detail,
	}
	if err := t.pub.PublishRun(ctx, ev); err != nil {
		t.log.Warn("cannot publish run event", err, nil)
	}
}
