package trainer

import (
	"context"
	"testing"

	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/sentencelab/simcl/logger"
)

func TestFXModuleWiresTheTrainingPipeline(t *testing.T) {
	cfg := Config{TrainFile: writeCorpusFile(t, testSentences)}
	cfg.ApplyDefaults()

	var tr *Trainer
	app := fxtest.New(t,
		fx.Provide(func() Config { return cfg }),
		fx.Provide(func() *logger.LoggerClient { return testLogger() }),
		FXModule,
		fx.Populate(&tr),
	)
	app.RequireStart()
	defer app.RequireStop()

	if tr == nil {
		t.Fatal("expected a trainer from the container")
	}

	summary, err := tr.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if summary.Steps == 0 {
		t.Error("expected at least one training step")
	}
}
