package registry

import "go.uber.org/fx"

var FXModule = fx.Module("registry",
	fx.Provide(
		NewConfig,
		NewRegistry,
	),
)
