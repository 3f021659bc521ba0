package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/fx"

	"github.com/sentencelab/simcl/artifacts"
	"github.com/sentencelab/simcl/corpusdb"
	"github.com/sentencelab/simcl/events"
	"github.com/sentencelab/simcl/logger"
	"github.com/sentencelab/simcl/metrics"
	"github.com/sentencelab/simcl/registry"
	"github.com/sentencelab/simcl/tracer"
	"github.com/sentencelab/simcl/trainer"
	"github.com/sentencelab/simcl/vectorstore"
)

func parseConfig() trainer.Config {
	var cfg trainer.Config

	flag.StringVar(&cfg.RunName, "run-name", "", "run name (default: generated)")
	flag.StringVar(&cfg.TrainFile, "train-file", "", "training corpus (.txt, .csv or .json); optional when CORPUS_DSN is set")
	flag.StringVar(&cfg.Strategy, "strategy", "", "augmentation strategy: identity, repetition or eda")
	flag.Float64Var(&cfg.DupRate, "dup-rate", 0, "word repetition duplication rate")
	flag.StringVar(&cfg.Pooler, "pooler", "", "pooler: cls, cls_before_pooler, avg, avg_top2 or avg_first_last")
	flag.IntVar(&cfg.MaxSeqLength, "max-seq-length", 0, "fixed encoding length")
	flag.Float64Var(&cfg.Temperature, "temperature", 0, "similarity temperature")
	flag.BoolVar(&cfg.SentenceObjective, "sentence-loss", true, "enable the sentence-level objective")
	flag.BoolVar(&cfg.TokenObjective, "token-loss", false, "enable the token-level objective")
	flag.Float64Var(&cfg.TokenCoeff, "token-coeff", 0, "token objective weight")
	flag.IntVar(&cfg.Epochs, "epochs", 0, "training epochs")
	flag.IntVar(&cfg.BatchSize, "batch-size", 0, "batch size")
	flag.Int64Var(&cfg.Seed, "seed", 0, "random seed")
	flag.IntVar(&cfg.CheckpointEvery, "checkpoint-every", 0, "write a checkpoint every N epochs (0 disables)")
	flag.IntVar(&cfg.LogEvery, "log-every", 0, "log step progress every N steps")
	flag.Parse()

	cfg.ApplyDefaults()
	return cfg
}

func main() {
	cfg := parseConfig()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	opts := []fx.Option{
		fx.Provide(func() trainer.Config { return cfg }),
		fx.Provide(logger.NewConfig, metrics.NewConfig, tracer.NewConfig),
		logger.FXModule,
		metrics.FXModule,
		tracer.FXModule,
		trainer.FXModule,
		fx.Provide(trainer.NewInfraObserver),
		fx.Invoke(attachObservers),
		fx.Invoke(run),
	}

	// Backends join the app only when configured; the trainer runs without
	// any of them.
	if os.Getenv("CORPUS_DSN") != "" {
		opts = append(opts, corpusdb.FXModule)
	}
	if os.Getenv("REGISTRY_DSN") != "" {
		opts = append(opts, registry.FXModule)
	}
	if os.Getenv("ARTIFACTS_ENDPOINT") != "" {
		opts = append(opts, artifacts.FXModule)
	}
	if os.Getenv("EVENTS_BROKERS") != "" {
		opts = append(opts, events.FXModule)
	}
	if os.Getenv("VECTORSTORE_HOST") != "" {
		opts = append(opts, vectorstore.FXModule, fx.Provide(trainer.NewExporter))
	}

	fx.New(opts...).Run()
}

type observedClients struct {
	fx.In

	Observer  *trainer.InfraObserver
	Artifacts *artifacts.Store    `optional:"true"`
	Publisher *events.Publisher   `optional:"true"`
	Vectors   *vectorstore.Client `optional:"true"`
}

// attachObservers routes storage and event operations into the training
// metrics.
func attachObservers(c observedClients) {
	if c.Artifacts != nil {
		c.Artifacts.WithObserver(c.Observer)
	}
	if c.Publisher != nil {
		c.Publisher.WithObserver(c.Observer)
	}
	if c.Vectors != nil {
		c.Vectors.WithObserver(c.Observer)
	}
}

type runParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Trainer    *trainer.Trainer
	Logger     *logger.LoggerClient
	Exporter   *trainer.Exporter `optional:"true"`
}

// run executes the training run in the background and shuts the app down
// when it finishes. Exporting embeddings happens after a successful run when
// a vector store is configured.
func run(p runParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer func() { _ = p.Shutdowner.Shutdown() }()

				ctx := context.Background()
				summary, err := p.Trainer.Run(ctx)
				if err != nil {
					p.Logger.Error("training failed", err, nil)
					return
				}

				if p.Exporter != nil {
					if err := p.Exporter.Export(ctx); err != nil {
						p.Logger.Error("embedding export failed", err, nil)
						return
					}
				}

				p.Logger.Info("run finished", nil, map[string]interface{}{
					"run_id":     summary.RunID.String(),
					"steps":      summary.Steps,
					"final_loss": summary.FinalLoss,
				})
			}()
			return nil
		},
	})
}
