package events

import (
	"context"

	"go.uber.org/fx"

	"github.com/sentencelab/simcl/logger"
)

var FXModule = fx.Module("events",
	fx.Provide(
		NewConfig,
		NewPublisher,
	),
	fx.Invoke(RegisterPublisherLifecycle),
)

// RegisterPublisherLifecycle flushes and closes the writer on shutdown.
func RegisterPublisherLifecycle(lc fx.Lifecycle, p *Publisher, log *logger.LoggerClient) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Info("closing event publisher...", nil, nil)
			return p.Close()
		},
	})
}
