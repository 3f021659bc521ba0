package vectorstore

import (
	"context"

	"go.uber.org/fx"

	"github.com/sentencelab/simcl/logger"
)

var FXModule = fx.Module("vectorstore",
	fx.Provide(
		NewConfig,
		NewClient,
	),
	fx.Invoke(RegisterClientLifecycle),
)

// RegisterClientLifecycle closes the gRPC connection on shutdown.
func RegisterClientLifecycle(lc fx.Lifecycle, c *Client, log *logger.LoggerClient) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Info("closing vector store connection...", nil, nil)
			return c.Close()
		},
	})
}
