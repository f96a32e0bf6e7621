package agents

import (
	"go.uber.org/fx"
)

// Module wires the agents domain package into the fx graph.
var Module = fx.Module("agents",
	fx.Provide(
		NewRepository,
		NewService,
		NewHandler,
	),
	fx.Invoke(RegisterRoutes),
)
