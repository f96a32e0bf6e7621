package eventstore

import (
	"go.uber.org/fx"
)

// Module wires the event store into the fx graph.
var Module = fx.Module("eventstore",
	fx.Provide(NewStore),
)
