package runs

import (
	"go.uber.org/fx"
)

// Module wires the runs domain package into the fx graph. The Run
// Registry has no standalone HTTP surface; supervisor and stream read
// and transition runs directly through Service.
var Module = fx.Module("runs",
	fx.Provide(
		NewRepository,
		NewService,
	),
)
