package threads

import (
	"go.uber.org/fx"
)

// Module wires the threads domain package into the fx graph. Threads
// have no standalone HTTP surface; they're driven entirely by
// domain/supervisor and domain/resume.
var Module = fx.Module("threads",
	fx.Provide(
		NewRepository,
		NewService,
	),
)
