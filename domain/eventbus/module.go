package eventbus

import (
	"go.uber.org/fx"
)

// Module wires the event bus into the fx graph.
var Module = fx.Module("eventbus",
	fx.Provide(
		NewBus,
		NewPublisher,
	),
)
