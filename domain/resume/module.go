package resume

import "go.uber.org/fx"

var Module = fx.Module("resume",
	fx.Provide(
		NewController,
		NewHandler,
	),
	fx.Invoke(RegisterRoutes),
)
