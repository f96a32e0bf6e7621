package roundabout

import "go.uber.org/fx"

var Module = fx.Module("roundabout",
	fx.Provide(NewMonitor),
)
