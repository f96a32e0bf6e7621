package supervisor

import "go.uber.org/fx"

var Module = fx.Module("supervisor",
	fx.Provide(
		NewService,
		NewHandler,
	),
	fx.Invoke(RegisterRoutes),
)
