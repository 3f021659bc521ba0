package artifacts

import (
	"go.uber.org/fx"

	"github.com/sentencelab/simcl/logger"
)

var FXModule = fx.Module("artifacts",
	fx.Provide(
		NewConfig,
		NewStoreWithDI,
	),
)

// NewStoreWithDI builds the store with the injected logger attached.
func NewStoreWithDI(cfg Config, log *logger.LoggerClient) (*Store, error) {
	store, err := NewStore(cfg)
	if err != nil {
		return nil, err
	}
	return store.WithLogger(log), nil
}
