package users

import (
	"go.uber.org/fx"
)

// Module wires the users domain package into the fx graph.
var Module = fx.Module("users",
	fx.Provide(
		NewRepository,
		NewService,
		NewHandler,
	),
	fx.Invoke(RegisterRoutes),
)
