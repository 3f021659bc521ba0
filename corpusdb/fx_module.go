package corpusdb

import (
	"context"

	"go.uber.org/fx"

	"github.com/sentencelab/simcl/logger"
)

var FXModule = fx.Module("corpusdb",
	fx.Provide(
		NewConfig,
		NewSourceWithDI,
	),
)

// NewSourceWithDI builds the source and ties pool shutdown to the fx
// lifecycle.
func NewSourceWithDI(lc fx.Lifecycle, cfg Config, log *logger.LoggerClient) (*Source, error) {
	source, err := NewSource(context.Background(), cfg)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Info("closing corpus database pool...", nil, nil)
			source.Close()
			return nil
		},
	})

	return source, nil
}
