package stream

import "go.uber.org/fx"

var Module = fx.Module("stream",
	fx.Provide(
		NewService,
		NewHandler,
	),
	fx.Invoke(RegisterRoutes),
)
